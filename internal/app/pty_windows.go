//go:build windows

package app

import (
	"context"
	"fmt"
	"strings"
	"syscall"

	"github.com/UserExistsError/conpty"
)

// windowsConsole runs the program on a ConPTY.
type windowsConsole struct {
	cpty *conpty.ConPty
}

func startConsoleProcess(name string, args []string, dir string, env []string, rows int, cols int) (consoleProcess, error) {
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, syscall.EscapeArg(name))
	for _, arg := range args {
		parts = append(parts, syscall.EscapeArg(arg))
	}

	cpty, err := conpty.Start(strings.Join(parts, " "),
		conpty.ConPtyDimensions(cols, rows),
		conpty.ConPtyWorkDir(dir),
		conpty.ConPtyEnv(env),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create ConPTY: %w", err)
	}
	return &windowsConsole{cpty: cpty}, nil
}

func (c *windowsConsole) Read(p []byte) (int, error)  { return c.cpty.Read(p) }
func (c *windowsConsole) Write(p []byte) (int, error) { return c.cpty.Write(p) }
func (c *windowsConsole) Close() error                { return c.cpty.Close() }

func (c *windowsConsole) Resize(rows int, cols int) error {
	if err := c.cpty.Resize(cols, rows); err != nil {
		return fmt.Errorf("failed to resize ConPTY: %w", err)
	}
	return nil
}

func (c *windowsConsole) Wait() (int, error) {
	code, err := c.cpty.Wait(context.Background())
	if err != nil {
		return -1, err
	}
	return int(code), nil
}

// Kill closes the pseudo console, which terminates the attached process.
func (c *windowsConsole) Kill() error {
	return c.cpty.Close()
}
