package app

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"
)

var errNoConsole = errors.New("no console run in progress")

// consoleReaderGrace is how long the exit monitor waits for the reader to
// drain the terminal after the process has exited.
const consoleReaderGrace = 500 * time.Millisecond

// consoleProcess is a runtime started on a pseudo-terminal.
type consoleProcess interface {
	io.ReadWriteCloser
	Resize(rows int, cols int) error
	// Wait blocks until the process exits and returns its exit code.
	Wait() (int, error)
	Kill() error
}

// consoleSession is the one interactive run that may be active.
type consoleSession struct {
	unit       string
	proc       consoleProcess
	utf8Buffer *UTF8SafeBuffer
	stopChan   chan struct{}
	stopOnce   sync.Once
	readerDone chan struct{}
}

// consoleEnv builds the child environment for a console run: inherited,
// minus Python venv variables, with a terminal type and UTF-8 locale.
func consoleEnv() []string {
	env := lo.Filter(os.Environ(), func(kv string, _ int) bool {
		return !strings.HasPrefix(kv, "VIRTUAL_ENV")
	})
	if !lo.ContainsBy(env, func(kv string) bool { return strings.HasPrefix(kv, "TERM=") }) {
		env = append(env, "TERM=xterm-256color")
	}
	return append(env, "LANG=en_US.UTF-8", "LC_ALL=en_US.UTF-8")
}

// StartConsoleRun compiles the saved document and, if the compiler reports
// no errors, starts the runtime on a pseudo-terminal so the program can read
// input. Output is posted as console:output events.
func (a *App) StartConsoleRun(text string, rows int, cols int) error {
	if err := a.begin("console"); err != nil {
		a.report(err)
		return err
	}
	started := false
	defer func() {
		if !started {
			a.end()
		}
	}()

	doc := a.takeText(text)
	inv, err := a.orch.Prepare(doc.Path, doc.Text)
	if err != nil {
		a.report(err)
		return err
	}

	compileErrors, err := a.orch.Compile(a.ctx, inv)
	if err != nil {
		a.report(err)
		return err
	}
	if compileErrors != "" {
		err := &CompilationFailedError{Errors: compileErrors}
		a.showResult(&CompileRunResult{Unit: inv.Unit, CompileErrors: compileErrors, ExitCode: -1}, err)
		return err
	}

	name, args := a.orch.Toolchain().RuntimeCommand(inv)
	proc, err := startConsoleProcess(name, args, inv.Dir, consoleEnv(), rows, cols)
	if err != nil {
		err = &OrchestrationError{Step: "run", Err: fmt.Errorf("failed to start console: %w", err)}
		a.report(err)
		return err
	}

	session := &consoleSession{
		unit:       inv.Unit,
		proc:       proc,
		utf8Buffer: &UTF8SafeBuffer{},
		stopChan:   make(chan struct{}),
		readerDone: make(chan struct{}),
	}

	a.mu.Lock()
	a.console = session
	a.mu.Unlock()
	started = true

	log.Printf("✅ [Console] Started %s %s (%dx%d)", name, strings.Join(args, " "), cols, rows)
	a.setOutput("")
	go a.readConsole(session)
	go a.monitorConsole(session)
	return nil
}

func (a *App) readConsole(session *consoleSession) {
	defer close(session.readerDone)
	defer func() {
		if r := recover(); r != nil {
			log.Printf("❌ PANIC RECOVERED in console reader for %s: %v", session.unit, r)
		}
		if remaining := session.utf8Buffer.Flush(); remaining != "" {
			a.ui.Emit(EventConsoleOutput, remaining)
		}
	}()

	buffer := make([]byte, IOBufferSize)
	for {
		n, err := session.proc.Read(buffer)
		if n > 0 {
			if text := session.utf8Buffer.AppendAndFlush(buffer[:n]); text != "" {
				a.ui.Emit(EventConsoleOutput, text)
			}
		}
		if err != nil {
			// Linux reports EIO once the child side of the pty is gone.
			if err != io.EOF {
				select {
				case <-session.stopChan:
				default:
					log.Printf("🔍 [Console] reader stopped: %v", err)
				}
			}
			return
		}
	}
}

func (a *App) monitorConsole(session *consoleSession) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("❌ PANIC RECOVERED in console monitor for %s: %v", session.unit, r)
		}
	}()

	exitCode, err := session.proc.Wait()
	if err != nil {
		log.Printf("⚠️ [Console] wait failed: %v", err)
	}

	select {
	case <-session.readerDone:
	case <-time.After(consoleReaderGrace):
	}
	session.stopOnce.Do(func() { close(session.stopChan) })
	session.proc.Close()
	<-session.readerDone

	a.mu.Lock()
	if a.console == session {
		a.console = nil
	}
	a.mu.Unlock()

	a.ui.Emit(EventConsoleExited, map[string]interface{}{
		"unit":     session.unit,
		"exitCode": exitCode,
	})
	log.Printf("Console run ended: %s (exit %d)", session.unit, exitCode)
	a.end()
}

func (a *App) currentConsole() (*consoleSession, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.console == nil {
		return nil, errNoConsole
	}
	return a.console, nil
}

// WriteConsoleInput sends keyboard input to the running program
func (a *App) WriteConsoleInput(data string) error {
	session, err := a.currentConsole()
	if err != nil {
		return err
	}
	if _, err := session.proc.Write([]byte(data)); err != nil {
		return fmt.Errorf("failed to write to console: %w", err)
	}
	return nil
}

// ResizeConsole resizes the console's pseudo-terminal
func (a *App) ResizeConsole(rows int, cols int) error {
	session, err := a.currentConsole()
	if err != nil {
		return err
	}
	return session.proc.Resize(rows, cols)
}

// StopConsoleRun kills the running program. The console:exited event
// follows once the process is gone.
func (a *App) StopConsoleRun() error {
	session, err := a.currentConsole()
	if err != nil {
		return err
	}
	session.stopOnce.Do(func() { close(session.stopChan) })
	if err := session.proc.Kill(); err != nil {
		return fmt.Errorf("failed to stop console run: %w", err)
	}
	return nil
}
