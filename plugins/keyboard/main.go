// Package main provides a keyboard plugin for macOS.
// It presses named keys and types text via AppleScript.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Request represents the input from the plugin executor.
type Request struct {
	Action string          `json:"action"`
	Source string          `json:"source"`
	Params json.RawMessage `json:"params"`
}

// Response represents the output to the plugin executor.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// PressParams defines parameters for the press action.
type PressParams struct {
	Key string `json:"key"`
}

// TypeParams defines parameters for the type action.
type TypeParams struct {
	Text string `json:"text"`
}

// keyCodes maps key names to macOS virtual key codes. Keys not listed are
// sent as a single keystroke.
var keyCodes = map[string]int{
	"enter":     36,
	"return":    36,
	"tab":       48,
	"space":     49,
	"backspace": 51,
	"escape":    53,
	"esc":       53,
	"delete":    117,
	"home":      115,
	"end":       119,
	"pageup":    116,
	"pagedown":  121,
	"left":      123,
	"right":     124,
	"down":      125,
	"up":        126,
}

func main() {
	// Read request from stdin
	var req Request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		writeErrorResponse(fmt.Sprintf("failed to decode request: %v", err))
		return
	}

	var err error
	switch req.Action {
	case "press":
		err = handlePress(req.Params)
	case "type":
		err = handleType(req.Params)
	default:
		writeErrorResponse(fmt.Sprintf("unknown action: %s", req.Action))
		return
	}
	if err != nil {
		writeErrorResponse(fmt.Sprintf("action %s failed: %v", req.Action, err))
		return
	}

	writeSuccessResponse()
}

func handlePress(params json.RawMessage) error {
	var p PressParams
	if err := json.Unmarshal(params, &p); err != nil {
		return fmt.Errorf("failed to parse params: %w", err)
	}

	key := strings.ToLower(strings.TrimSpace(p.Key))
	if key == "" {
		return fmt.Errorf("key is required")
	}

	return runAppleScript(buildPressScript(key))
}

func handleType(params json.RawMessage) error {
	var p TypeParams
	if err := json.Unmarshal(params, &p); err != nil {
		return fmt.Errorf("failed to parse params: %w", err)
	}

	if p.Text == "" {
		return fmt.Errorf("text is required")
	}

	return runAppleScript(buildTypeScript(p.Text))
}

// buildPressScript generates an AppleScript pressing a single key.
func buildPressScript(key string) string {
	if code, ok := keyCodes[key]; ok {
		return fmt.Sprintf(`tell application "System Events" to key code %d`, code)
	}
	return buildTypeScript(key)
}

// buildTypeScript generates an AppleScript typing text verbatim.
func buildTypeScript(text string) string {
	return fmt.Sprintf(`tell application "System Events" to keystroke "%s"`, escapeAppleScript(text))
}

func escapeAppleScript(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `"`, `\"`)
}

// writeErrorResponse writes an error response to stdout.
func writeErrorResponse(errMsg string) {
	resp := Response{
		Success: false,
		Error:   errMsg,
	}
	json.NewEncoder(os.Stdout).Encode(resp)
}

// writeSuccessResponse writes a success response to stdout.
func writeSuccessResponse() {
	resp := Response{
		Success: true,
	}
	json.NewEncoder(os.Stdout).Encode(resp)
}

// runAppleScript executes an AppleScript command and returns any error.
func runAppleScript(script string) error {
	cmd := exec.Command("osascript", "-e", script)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: %s", err, string(output))
	}
	return nil
}
