package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

// ErrNotSaved is returned when compilation is requested for a document
// that has never been written to disk.
var ErrNotSaved = errors.New("please save the file before compiling")

// NamingMismatchError means the source text does not declare a unit named
// after the file.
type NamingMismatchError struct {
	Unit        string
	Declaration string
}

func (e *NamingMismatchError) Error() string {
	return fmt.Sprintf("class name must match file name: %s", e.Unit)
}

// CompilationFailedError carries the compiler's error output.
type CompilationFailedError struct {
	Errors string
}

func (e *CompilationFailedError) Error() string {
	return "compilation failed:\n" + e.Errors
}

// OrchestrationError wraps a failure to spawn or wait for a child process.
type OrchestrationError struct {
	Step string // "compile" or "run"
	Err  error
}

func (e *OrchestrationError) Error() string {
	return fmt.Sprintf("error during %s: %v", e.Step, e.Err)
}

func (e *OrchestrationError) Unwrap() error {
	return e.Err
}

// CompileRunResult is the outcome of one compile/run sequence.
type CompileRunResult struct {
	Unit          string `json:"unit"`
	CompileErrors string `json:"compileErrors"`
	Stdout        string `json:"stdout"`
	Stderr        string `json:"stderr"`
	ExitCode      int    `json:"exitCode"`
}

// Succeeded reports whether compilation produced no error text.
func (r *CompileRunResult) Succeeded() bool {
	return r.CompileErrors == ""
}

// Format renders the result the way the output pane shows it.
func (r *CompileRunResult) Format() string {
	if !r.Succeeded() {
		return "Compilation Failed:\n" + r.CompileErrors
	}
	return "--- Output ---\n" + r.Stdout + "\n--- Errors ---\n" + r.Stderr
}

// UnitName derives the entry point name from a source path: the base name
// with its last extension removed.
func UnitName(path string) string {
	base := filepath.Base(path)
	if ext := filepath.Ext(base); ext != "" && ext != base {
		return strings.TrimSuffix(base, ext)
	}
	return base
}

// Orchestrator runs the external compiler and then the external runtime
// against a single source file. Both steps block until the child exits.
type Orchestrator struct {
	toolchain Toolchain
	drainer   *Drainer
}

// NewOrchestrator returns an Orchestrator for the given toolchain.
func NewOrchestrator(tc Toolchain) (*Orchestrator, error) {
	if err := tc.Validate(); err != nil {
		return nil, err
	}
	drainer, err := NewDrainer(tc.OutputEncoding)
	if err != nil {
		return nil, err
	}
	return &Orchestrator{toolchain: tc, drainer: drainer}, nil
}

// Toolchain returns the toolchain this orchestrator invokes.
func (o *Orchestrator) Toolchain() Toolchain {
	return o.toolchain
}

// Prepare checks the preconditions for a compile/run of path with the
// given in-memory text and returns the values for the argument templates.
// The naming check is a substring match, not a parse.
func (o *Orchestrator) Prepare(path string, text string) (Invocation, error) {
	if path == "" {
		return Invocation{}, ErrNotSaved
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return Invocation{}, &OrchestrationError{Step: "compile", Err: err}
	}

	unit := UnitName(abs)
	decl := o.toolchain.DeclarationFor(unit)
	if !strings.Contains(text, decl) {
		return Invocation{}, &NamingMismatchError{Unit: unit, Declaration: decl}
	}

	return Invocation{Source: abs, Dir: filepath.Dir(abs), Unit: unit}, nil
}

// CompileAndRun compiles path and, only if the compiler wrote nothing to its
// error channel, runs the produced unit. On compile failure the returned
// result carries the errors alongside a *CompilationFailedError.
func (o *Orchestrator) CompileAndRun(ctx context.Context, path string, text string) (*CompileRunResult, error) {
	inv, err := o.Prepare(path, text)
	if err != nil {
		return nil, err
	}

	result := &CompileRunResult{Unit: inv.Unit, ExitCode: -1}

	compileErrors, err := o.Compile(ctx, inv)
	if err != nil {
		return result, err
	}
	if compileErrors != "" {
		result.CompileErrors = compileErrors
		return result, &CompilationFailedError{Errors: compileErrors}
	}

	name, args := o.toolchain.RuntimeCommand(inv)
	out, err := o.execute(ctx, "run", name, args, inv.Dir)
	if err != nil {
		return result, err
	}

	result.Stdout = out.stdout
	result.Stderr = out.stderr
	result.ExitCode = out.exitCode
	return result, nil
}

// Compile runs only the compiler step and returns its error channel text.
func (o *Orchestrator) Compile(ctx context.Context, inv Invocation) (string, error) {
	name, args := o.toolchain.CompilerCommand(inv)
	out, err := o.execute(ctx, "compile", name, args, inv.Dir)
	if err != nil {
		return "", err
	}
	if out.exitCode != 0 && out.stderr == "" {
		log.Printf("⚠️ [Orchestrator] %s exited with %d but wrote no errors", name, out.exitCode)
	}
	return out.stderr, nil
}

type processOutput struct {
	stdout   string
	stderr   string
	exitCode int
}

// execute spawns one child process in dir and drains both output channels
// until it exits. The channels are drained concurrently since a child
// blocks once either pipe fills.
func (o *Orchestrator) execute(ctx context.Context, step string, name string, args []string, dir string) (processOutput, error) {
	var out processOutput

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return out, &OrchestrationError{Step: step, Err: err}
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return out, &OrchestrationError{Step: step, Err: err}
	}

	log.Printf("🚀 [Orchestrator] %s: %s %s (in %s)", step, name, strings.Join(args, " "), dir)
	start := time.Now()
	if err := cmd.Start(); err != nil {
		return out, &OrchestrationError{Step: step, Err: fmt.Errorf("failed to start %s: %w", name, err)}
	}

	var g errgroup.Group
	g.Go(func() error {
		var err error
		out.stdout, err = o.drainer.Drain(stdout)
		return err
	})
	g.Go(func() error {
		var err error
		out.stderr, err = o.drainer.Drain(stderr)
		return err
	})
	drainErr := g.Wait()
	waitErr := cmd.Wait()

	if ctx.Err() != nil {
		return out, &OrchestrationError{Step: step, Err: fmt.Errorf("interrupted while waiting for %s: %w", name, ctx.Err())}
	}
	if waitErr != nil {
		var exitErr *exec.ExitError
		if !errors.As(waitErr, &exitErr) {
			return out, &OrchestrationError{Step: step, Err: fmt.Errorf("failed to wait for %s: %w", name, waitErr)}
		}
	}
	if drainErr != nil {
		return out, &OrchestrationError{Step: step, Err: drainErr}
	}

	out.exitCode = cmd.ProcessState.ExitCode()
	log.Printf("✅ [Orchestrator] %s finished in %s (exit %d)", step, time.Since(start).Round(time.Millisecond), out.exitCode)
	return out, nil
}
