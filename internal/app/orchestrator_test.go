package app

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnitName(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/src/Hello.java", "Hello"},
		{"/src/Hello.src", "Hello"},
		{"/src/Archive.tar.gz", "Archive.tar"},
		{"/src/Makefile", "Makefile"},
		{"Main.java", "Main"},
		{"/src/.hidden", ".hidden"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, UnitName(tt.path), tt.path)
	}
}

func TestCompileAndRun_HelloWorld(t *testing.T) {
	orch := newTestOrchestrator(t)
	dir := t.TempDir()
	path := writeSource(t, dir, "Hello.src", "class Hello\nprint hi\n")

	result, err := orch.CompileAndRun(context.Background(), path, "class Hello\nprint hi\n")
	require.NoError(t, err)

	assert.Equal(t, "Hello", result.Unit)
	assert.Empty(t, result.CompileErrors)
	assert.Equal(t, "hi\n", result.Stdout)
	assert.Empty(t, result.Stderr)
	assert.Equal(t, 0, result.ExitCode)
	assert.Equal(t, "compile\nrun\n", readCalls(t, dir), "compiler must run before the runtime")
}

func TestCompileAndRun_CapturesStderrAndExitCode(t *testing.T) {
	orch := newTestOrchestrator(t)
	dir := t.TempDir()
	text := "class Fail\nprint before\neprint boom\nexit 3\n"
	path := writeSource(t, dir, "Fail.java", text)

	result, err := orch.CompileAndRun(context.Background(), path, text)
	require.NoError(t, err, "a non-zero runtime exit is not an orchestration error")

	assert.Equal(t, "before\n", result.Stdout)
	assert.Equal(t, "boom\n", result.Stderr)
	assert.Equal(t, 3, result.ExitCode)
}

func TestCompileAndRun_CompileErrorsSkipRuntime(t *testing.T) {
	orch := newTestOrchestrator(t)
	dir := t.TempDir()
	text := "class Broken\nSYNTAX_ERROR\nprint never\n"
	path := writeSource(t, dir, "Broken.java", text)

	result, err := orch.CompileAndRun(context.Background(), path, text)

	var compileErr *CompilationFailedError
	require.ErrorAs(t, err, &compileErr)
	assert.Contains(t, compileErr.Errors, "bad syntax")
	require.NotNil(t, result)
	assert.Equal(t, compileErr.Errors, result.CompileErrors)
	assert.Empty(t, result.Stdout)
	assert.Equal(t, -1, result.ExitCode)
	assert.Equal(t, "compile\n", readCalls(t, dir), "runtime must not be invoked")
}

func TestCompileAndRun_NamingMismatchSpawnsNothing(t *testing.T) {
	orch := newTestOrchestrator(t)
	dir := t.TempDir()
	path := writeSource(t, dir, "Foo.txt", "class Bar\nprint hi\n")

	result, err := orch.CompileAndRun(context.Background(), path, "class Bar\nprint hi\n")

	var mismatch *NamingMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, "Foo", mismatch.Unit)
	assert.Nil(t, result)
	assert.Empty(t, readCalls(t, dir), "no process may be spawned")
}

func TestCompileAndRun_NamingCheckUsesInMemoryText(t *testing.T) {
	orch := newTestOrchestrator(t)
	dir := t.TempDir()
	path := writeSource(t, dir, "Foo.java", "class Foo\nprint from disk\n")

	_, err := orch.CompileAndRun(context.Background(), path, "class Other\n")
	var mismatch *NamingMismatchError
	require.ErrorAs(t, err, &mismatch)

	// The declaration check is a plain substring match.
	result, err := orch.CompileAndRun(context.Background(), path, "// class Foo is declared in a comment")
	require.NoError(t, err)
	assert.Equal(t, "from disk\n", result.Stdout)
}

func TestCompileAndRun_NotSaved(t *testing.T) {
	orch := newTestOrchestrator(t)

	_, err := orch.CompileAndRun(context.Background(), "", "class Hello\n")
	assert.ErrorIs(t, err, ErrNotSaved)
}

func TestCompileAndRun_MissingCompiler(t *testing.T) {
	tc := fakeToolchain(t)
	tc.Compiler = filepath.Join(t.TempDir(), "no-such-compiler")
	orch, err := NewOrchestrator(tc)
	require.NoError(t, err)

	dir := t.TempDir()
	path := writeSource(t, dir, "Hello.java", "class Hello\n")

	_, err = orch.CompileAndRun(context.Background(), path, "class Hello\n")

	var orchErr *OrchestrationError
	require.ErrorAs(t, err, &orchErr)
	assert.Equal(t, "compile", orchErr.Step)
}

func TestCompileAndRun_Interrupted(t *testing.T) {
	orch := newTestOrchestrator(t)
	dir := t.TempDir()
	path := writeSource(t, dir, "Hello.java", "class Hello\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := orch.CompileAndRun(ctx, path, "class Hello\n")

	var orchErr *OrchestrationError
	require.ErrorAs(t, err, &orchErr)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Empty(t, readCalls(t, dir))
}

func TestCompileRunResult_Format(t *testing.T) {
	ok := &CompileRunResult{Stdout: "hi\n", Stderr: "warn\n"}
	assert.Equal(t, "--- Output ---\nhi\n\n--- Errors ---\nwarn\n", ok.Format())

	failed := &CompileRunResult{CompileErrors: "Hello.java:1: error\n"}
	assert.Equal(t, "Compilation Failed:\nHello.java:1: error\n", failed.Format())
}

func TestNewOrchestrator_RejectsInvalidToolchain(t *testing.T) {
	tc := DefaultToolchain()
	tc.Runtime = ""
	_, err := NewOrchestrator(tc)
	assert.Error(t, err)
}
