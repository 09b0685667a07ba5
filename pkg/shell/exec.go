package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
)

// We prefer to return stderr over the process exit code
type ExitErrorVerbose struct {
	E exec.ExitError
}

func (e ExitErrorVerbose) Error() string {
	if len(e.E.Stderr) != 0 {
		return string(e.E.Stderr)
	}
	return e.E.Error()
}

func (e ExitErrorVerbose) ExitCode() int {
	return e.E.ExitCode()
}

// Run executes a program and returns its stdout
func Run(name string, args ...string) (string, error) {
	path, err := LookPath(name)
	if err != nil {
		return "", err
	}
	cmd := exec.Command(path, args...)
	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", ExitErrorVerbose{*exitErr}
		}
		return "", err
	}
	return string(out), nil
}

// LookPath finds an executable such as "ffmpeg" or "python3"
func LookPath(name string) (string, error) {
	path, err := exec.LookPath(name)
	if err != nil {
		return "", fmt.Errorf("Unable to find '%v' in your path (%w)", name, err)
	}
	return path, nil
}

// Command describes a long running child process whose output is streamed
type Command struct {
	Name   string
	Args   []string
	Env    []string // Extra KEY=VALUE pairs, appended to our own environment
	Dir    string
	Stdout io.Writer // Defaults to os.Stdout
	Stderr io.Writer // Defaults to os.Stderr
}

// RunStreaming runs cmd to completion, forwarding its output as it is produced.
// Cancelling ctx kills the child.
func RunStreaming(ctx context.Context, c Command) error {
	path, err := LookPath(c.Name)
	if err != nil {
		return err
	}
	cmd := exec.CommandContext(ctx, path, c.Args...)
	cmd.Dir = c.Dir
	cmd.Env = append(os.Environ(), c.Env...)
	cmd.Stdout = c.Stdout
	if cmd.Stdout == nil {
		cmd.Stdout = os.Stdout
	}
	cmd.Stderr = c.Stderr
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("%v was cancelled: %w", c.Name, ctx.Err())
		}
		return fmt.Errorf("%v failed: %w", c.Name, err)
	}
	return nil
}

// Start launches a child process with piped stdout, for readers that consume
// the output as a stream (eg raw video frames). The caller must call Wait.
func Start(ctx context.Context, name string, args ...string) (*exec.Cmd, io.ReadCloser, error) {
	path, err := LookPath(name)
	if err != nil {
		return nil, nil, err
	}
	cmd := exec.CommandContext(ctx, path, args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, nil, err
	}
	cmd.Stderr = &limitedBuffer{max: 4096}
	if err := cmd.Start(); err != nil {
		return nil, nil, fmt.Errorf("Failed to start %v: %w", name, err)
	}
	return cmd, stdout, nil
}

// Stderr returns the captured head of stderr of a process launched by Start
func Stderr(cmd *exec.Cmd) string {
	if b, ok := cmd.Stderr.(*limitedBuffer); ok {
		return string(b.buf)
	}
	return ""
}

type limitedBuffer struct {
	buf []byte
	max int
}

func (b *limitedBuffer) Write(p []byte) (int, error) {
	if room := b.max - len(b.buf); room > 0 {
		if len(p) < room {
			room = len(p)
		}
		b.buf = append(b.buf, p[:room]...)
	}
	return len(p), nil
}
