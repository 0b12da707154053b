//go:build !windows

package app

import (
	"errors"
	"fmt"
	"os"
	"os/exec"

	"github.com/creack/pty"
)

// unixConsole runs the program on a Unix pty.
type unixConsole struct {
	cmd  *exec.Cmd
	ptmx *os.File
}

func startConsoleProcess(name string, args []string, dir string, env []string, rows int, cols int) (consoleProcess, error) {
	cmd := exec.Command(name, args...)
	cmd.Dir = dir
	cmd.Env = env

	ptmx, err := pty.StartWithSize(cmd, &pty.Winsize{
		Rows: uint16(rows),
		Cols: uint16(cols),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start %s on pty: %w", name, err)
	}
	return &unixConsole{cmd: cmd, ptmx: ptmx}, nil
}

func (c *unixConsole) Read(p []byte) (int, error)  { return c.ptmx.Read(p) }
func (c *unixConsole) Write(p []byte) (int, error) { return c.ptmx.Write(p) }
func (c *unixConsole) Close() error                { return c.ptmx.Close() }

func (c *unixConsole) Resize(rows int, cols int) error {
	if err := pty.Setsize(c.ptmx, &pty.Winsize{Rows: uint16(rows), Cols: uint16(cols)}); err != nil {
		return fmt.Errorf("failed to resize console: %w", err)
	}
	return nil
}

func (c *unixConsole) Wait() (int, error) {
	err := c.cmd.Wait()
	var exitErr *exec.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		return -1, err
	}
	return c.cmd.ProcessState.ExitCode(), nil
}

func (c *unixConsole) Kill() error {
	if c.cmd.Process == nil {
		return nil
	}
	if err := c.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return err
	}
	return nil
}
