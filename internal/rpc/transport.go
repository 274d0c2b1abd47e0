package rpc

import (
	"context"
	"fmt"
	"io"
	"os/exec"
)

// Transport provides the three byte streams the client multiplexes over.
type Transport interface {
	// Start opens the channel and returns the peer's stdin, stdout and
	// stderr streams.
	Start(ctx context.Context) (stdin io.WriteCloser, stdout, stderr io.Reader, err error)
	// Close tears the channel down. Must be idempotent.
	Close() error
}

// CommandTransport spawns a subprocess and exposes its standard streams.
type CommandTransport struct {
	Path string
	Args []string
	Env  []string // nil = inherit

	cmd *exec.Cmd
}

// Start launches the subprocess.
func (t *CommandTransport) Start(ctx context.Context) (io.WriteCloser, io.Reader, io.Reader, error) {
	cmd := exec.CommandContext(ctx, t.Path, t.Args...)
	if t.Env != nil {
		cmd.Env = t.Env
	}

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, nil, nil, fmt.Errorf("spawn %s: %w", t.Path, err)
	}

	t.cmd = cmd
	return stdin, stdout, stderr, nil
}

// Close kills the subprocess if it is still running and reaps it.
func (t *CommandTransport) Close() error {
	if t.cmd == nil || t.cmd.Process == nil {
		return nil
	}
	cmd := t.cmd
	t.cmd = nil

	_ = cmd.Process.Kill()
	_ = cmd.Wait()
	return nil
}
