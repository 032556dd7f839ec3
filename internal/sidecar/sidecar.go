// Package sidecar manages long-lived helper processes (MediaPipe, speech)
// that speak a request/response protocol over stdin and stdout.
//
// Each exchange writes one request and reads one newline-terminated JSON
// response. The process is started lazily on the first exchange and shut
// down after a period of inactivity.
package sidecar

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"
)

// DefaultIdleTimeout is how long a helper may sit unused before it is stopped.
const DefaultIdleTimeout = 30 * time.Second

// Process is a lazily started helper script.
type Process struct {
	script      string
	interpreter string
	args        []string
	idle        time.Duration
	cmd         *exec.Cmd
	stdin       io.WriteCloser
	stdout      *bufio.Reader
	mu          sync.Mutex
	started     bool
	idleTimer   *time.Timer
}

// New locates the named script and returns a Process for it.
// The process itself is not started until the first Exchange.
func New(scriptName string, args []string, idle time.Duration) (*Process, error) {
	script := FindScript(scriptName)
	if script == "" {
		return nil, fmt.Errorf("%s not found", scriptName)
	}
	if idle <= 0 {
		idle = DefaultIdleTimeout
	}

	// Use virtual environment Python if available
	interpreter := findVenvPython()
	if interpreter == "" {
		interpreter = "python3"
	}

	return &Process{
		script:      script,
		interpreter: interpreter,
		args:        args,
		idle:        idle,
	}, nil
}

// Script returns the absolute path of the helper script.
func (p *Process) Script() string {
	return p.script
}

// Exchange sends one request written by write and returns the response line.
// A failed exchange stops the helper so the next call starts a fresh one.
func (p *Process) Exchange(write func(w io.Writer) error) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.ensureStarted(); err != nil {
		return nil, err
	}

	if err := write(p.stdin); err != nil {
		p.shutdown()
		return nil, fmt.Errorf("write request: %w", err)
	}

	line, err := p.stdout.ReadBytes('\n')
	if err != nil {
		p.shutdown()
		return nil, fmt.Errorf("read response: %w", err)
	}

	p.resetIdleTimer()
	return line, nil
}

// Close shuts down the helper process.
func (p *Process) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.shutdown()
}

func (p *Process) ensureStarted() error {
	if p.started {
		return nil
	}

	p.cmd = exec.Command(p.interpreter, append([]string{p.script}, p.args...)...)

	stdin, err := p.cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("create stdin pipe: %w", err)
	}

	stdout, err := p.cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("create stdout pipe: %w", err)
	}

	// Helper diagnostics go straight to our stderr
	p.cmd.Stderr = os.Stderr

	if err := p.cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", filepath.Base(p.script), err)
	}

	p.stdin = stdin
	p.stdout = bufio.NewReader(stdout)
	p.started = true

	return nil
}

func (p *Process) shutdown() error {
	if !p.started {
		return nil
	}

	if p.idleTimer != nil {
		p.idleTimer.Stop()
		p.idleTimer = nil
	}

	if p.stdin != nil {
		p.stdin.Close()
	}

	err := p.cmd.Wait()
	p.started = false
	p.cmd = nil
	p.stdin = nil
	p.stdout = nil

	return err
}

func (p *Process) resetIdleTimer() {
	if p.idleTimer != nil {
		p.idleTimer.Stop()
	}
	p.idleTimer = time.AfterFunc(p.idle, func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		p.shutdown()
	})
}

// FindScript searches the usual install locations for a helper script.
// It checks ./scripts, ../scripts, the executable's directory and ~/.mudra/scripts.
// Returns an empty string if the script cannot be found.
func FindScript(name string) string {
	execPath, err := os.Executable()
	var execDir string
	if err == nil {
		execDir = filepath.Dir(execPath)
	}

	candidates := []string{
		filepath.Join("scripts", name),
		filepath.Join("..", "scripts", name),
		filepath.Join(execDir, "scripts", name),
		filepath.Join(os.Getenv("HOME"), ".mudra", "scripts", name),
	}

	return firstExisting(candidates)
}

// findVenvPython looks for a Python interpreter in a virtual environment.
func findVenvPython() string {
	execPath, err := os.Executable()
	if err != nil {
		return ""
	}
	execDir := filepath.Dir(execPath)

	candidates := []string{
		"venv/bin/python",
		"../venv/bin/python",
		"../../venv/bin/python",
		filepath.Join(execDir, "venv/bin/python"),
		filepath.Join(os.Getenv("HOME"), ".mudra/venv/bin/python"),
	}

	return firstExisting(candidates)
}

func firstExisting(paths []string) string {
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			absPath, err := filepath.Abs(path)
			if err == nil {
				return absPath
			}
			return path
		}
	}
	return ""
}
