package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"syscall"
	"time"
)

// daemonRuntimeState is what a running daemon writes to its pid file.
type daemonRuntimeState struct {
	PID       int       `json:"pid"`
	Addr      string    `json:"addr"`
	StartedAt time.Time `json:"started_at"`
	DBPath    string    `json:"db_path,omitempty"`
}

// pidFile is the JSON file that marks a running daemon.
type pidFile string

func (p pidFile) path() string { return string(p) }

func (p pidFile) read() (daemonRuntimeState, error) {
	var st daemonRuntimeState
	//nolint:gosec // daemon pid path is configured by the local user
	data, err := os.ReadFile(p.path())
	if err != nil {
		return st, err
	}
	if err := json.Unmarshal(data, &st); err != nil || st.PID <= 0 {
		return st, fmt.Errorf("invalid pid file %s", p.path())
	}
	return st, nil
}

// live returns the state of a daemon that is still running. A stale file is
// removed and reported as not running.
func (p pidFile) live() (daemonRuntimeState, bool, error) {
	st, err := p.read()
	if errors.Is(err, os.ErrNotExist) {
		return st, false, nil
	}
	if err != nil {
		return st, false, err
	}
	if !processAlive(st.PID) {
		p.release()
		return st, false, nil
	}
	return st, true, nil
}

// ensureFree fails when another daemon owns the file.
func (p pidFile) ensureFree() error {
	st, running, err := p.live()
	if err != nil {
		return err
	}
	if running {
		return fmt.Errorf("daemon already running (pid %d)", st.PID)
	}
	return nil
}

// claim checks no daemon is running and records st.
func (p pidFile) claim(st daemonRuntimeState) error {
	if err := p.ensureFree(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p.path()), 0o750); err != nil {
		return fmt.Errorf("create daemon directory: %w", err)
	}
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(p.path(), append(data, '\n'), 0o600)
}

func (p pidFile) release() {
	_ = os.Remove(p.path())
}

func processAlive(pid int) bool {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	err = proc.Signal(syscall.Signal(0))
	return err == nil || errors.Is(err, syscall.EPERM)
}

// waitExit polls until pid is gone or timeout passes.
func waitExit(pid int, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if !processAlive(pid) {
			return true
		}
		time.Sleep(150 * time.Millisecond)
	}
	return !processAlive(pid)
}
