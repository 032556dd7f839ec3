package plugin

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

// scriptPlugin writes a shell script plugin into a temp dir.
func scriptPlugin(t *testing.T, name, script string) *Plugin {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("skipping test on Windows")
	}

	tmpDir := t.TempDir()
	scriptPath := filepath.Join(tmpDir, name+".sh")
	if err := os.WriteFile(scriptPath, []byte(script), 0755); err != nil {
		t.Fatalf("failed to write script: %v", err)
	}

	return &Plugin{
		Manifest: Manifest{
			Name:       name,
			Version:    "1.0.0",
			Executable: name + ".sh",
			Actions:    []string{"press", "type"},
		},
		Path:       tmpDir,
		Executable: scriptPath,
	}
}

func TestExecutor_Execute(t *testing.T) {
	plugin := scriptPlugin(t, "test-plugin", `#!/bin/sh
cat > /dev/null
echo '{"success":true,"data":{"message":"hello world"}}'
`)

	executor := NewExecutor(5 * time.Second)
	response, err := executor.Execute(context.Background(), plugin, &Request{
		Action: "press",
		Source: "voice",
		Params: json.RawMessage(`{"key":"enter"}`),
	})
	if err != nil {
		t.Fatalf("Execute() failed: %v", err)
	}

	if !response.Success {
		t.Errorf("expected success=true, got false")
	}
	if response.Err() != nil {
		t.Errorf("Err() = %v, want nil", response.Err())
	}

	var data map[string]interface{}
	if err := json.Unmarshal(response.Data, &data); err != nil {
		t.Fatalf("failed to unmarshal response data: %v", err)
	}
	if data["message"] != "hello world" {
		t.Errorf("expected message 'hello world', got %v", data["message"])
	}
}

func TestExecutor_Execute_ReadsStdin(t *testing.T) {
	plugin := scriptPlugin(t, "echo-plugin", `#!/bin/sh
INPUT=$(cat)
echo "{\"success\":true,\"data\":{\"received\":$INPUT}}"
`)

	executor := NewExecutor(5 * time.Second)
	response, err := executor.Execute(context.Background(), plugin, &Request{
		Action: "type",
		Source: "voice",
		Params: json.RawMessage(`{"text":"hello"}`),
	})
	if err != nil {
		t.Fatalf("Execute() failed: %v", err)
	}

	var data struct {
		Received Request `json:"received"`
	}
	if err := json.Unmarshal(response.Data, &data); err != nil {
		t.Fatalf("failed to unmarshal response data: %v", err)
	}

	if data.Received.Action != "type" {
		t.Errorf("expected action 'type', got %q", data.Received.Action)
	}
	if data.Received.Source != "voice" {
		t.Errorf("expected source 'voice', got %q", data.Received.Source)
	}
	if string(data.Received.Params) != `{"text":"hello"}` {
		t.Errorf("unexpected params %s", data.Received.Params)
	}
}

func TestExecutor_Timeout(t *testing.T) {
	plugin := scriptPlugin(t, "slow-plugin", `#!/bin/sh
sleep 10
echo '{"success":true}'
`)

	executor := NewExecutor(100 * time.Millisecond)

	start := time.Now()
	_, err := executor.Execute(context.Background(), plugin, &Request{Action: "press"})
	elapsed := time.Since(start)

	if err == nil {
		t.Fatal("expected timeout error, got nil")
	}
	if !strings.Contains(err.Error(), "timed out") {
		t.Errorf("expected timeout error, got: %v", err)
	}
	if elapsed > 5*time.Second {
		t.Errorf("timeout took too long: %v", elapsed)
	}
}

func TestExecutor_Call(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		plugin := scriptPlugin(t, "ok-plugin", `#!/bin/sh
cat > /dev/null
echo '{"success":true}'
`)
		executor := NewExecutor(5 * time.Second)

		err := executor.Call(context.Background(), plugin, "voice", "press", map[string]string{"key": "enter"})
		if err != nil {
			t.Errorf("Call() error = %v", err)
		}
	})

	t.Run("error response", func(t *testing.T) {
		plugin := scriptPlugin(t, "err-plugin", `#!/bin/sh
cat > /dev/null
echo '{"success":false,"error":"unknown key"}'
`)
		executor := NewExecutor(5 * time.Second)

		err := executor.Call(context.Background(), plugin, "voice", "press", map[string]string{"key": "hyper"})
		if err == nil || !strings.Contains(err.Error(), "unknown key") {
			t.Errorf("Call() error = %v, want plugin error", err)
		}
	})
}

func TestExecutor_Execute_InvalidJSON(t *testing.T) {
	plugin := scriptPlugin(t, "bad-plugin", `#!/bin/sh
echo 'this is not json'
`)

	_, err := NewExecutor(5*time.Second).Execute(context.Background(), plugin, &Request{Action: "press"})
	if err == nil {
		t.Fatal("expected error for invalid JSON, got nil")
	}
	if !strings.Contains(err.Error(), "parse plugin response") {
		t.Errorf("expected parse error, got: %v", err)
	}
}

func TestExecutor_Execute_NonZeroExit(t *testing.T) {
	plugin := scriptPlugin(t, "fail-plugin", `#!/bin/sh
echo "something went wrong" >&2
exit 1
`)

	_, err := NewExecutor(5*time.Second).Execute(context.Background(), plugin, &Request{Action: "press"})
	if err == nil {
		t.Fatal("expected error for non-zero exit, got nil")
	}
	if !strings.Contains(err.Error(), "something went wrong") {
		t.Errorf("expected stderr in error, got: %v", err)
	}
}

func TestNewExecutor(t *testing.T) {
	if got := NewExecutor(0).Timeout(); got != DefaultTimeout {
		t.Errorf("Timeout() = %v, want %v", got, DefaultTimeout)
	}
	if got := NewExecutor(time.Second).Timeout(); got != time.Second {
		t.Errorf("Timeout() = %v, want 1s", got)
	}
}

func TestResponse_Err(t *testing.T) {
	if (&Response{Success: false}).Err() == nil {
		t.Error("expected error for unsuccessful response without message")
	}
	if err := (&Response{Error: "boom"}).Err(); err == nil || err.Error() != "boom" {
		t.Errorf("Err() = %v, want boom", err)
	}
}
