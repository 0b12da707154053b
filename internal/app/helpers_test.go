package app

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const (
	testWait = 5 * time.Second
	testTick = 10 * time.Millisecond
)

type recordedEvent struct {
	name string
	data []interface{}
}

// fakeUI records everything the shell shows instead of opening a window.
type fakeUI struct {
	mu       sync.Mutex
	openPath string
	savePath string
	errors   []string
	events   []recordedEvent
	title    string
}

func (f *fakeUI) OpenFileDialog(string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.openPath, nil
}

func (f *fakeUI) SaveFileDialog(string, string, string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.savePath, nil
}

func (f *fakeUI) ShowError(message string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errors = append(f.errors, message)
}

func (f *fakeUI) Emit(event string, data ...interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, recordedEvent{name: event, data: data})
}

func (f *fakeUI) SetTitle(title string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.title = title
}

func (f *fakeUI) shownErrors() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.errors...)
}

// eventData returns the payloads of every event with the given name.
func (f *fakeUI) eventData(name string) []interface{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []interface{}
	for _, e := range f.events {
		if e.name == name && len(e.data) > 0 {
			out = append(out, e.data[0])
		}
	}
	return out
}

// lastOutput returns the text of the most recent output:set event.
func (f *fakeUI) lastOutput() (string, bool) {
	data := f.eventData(EventOutputSet)
	if len(data) == 0 {
		return "", false
	}
	return data[len(data)-1].(OutputUpdate).Text, true
}

func (f *fakeUI) waitForEvent(t *testing.T, name string) interface{} {
	t.Helper()
	require.Eventually(t, func() bool {
		return len(f.eventData(name)) > 0
	}, testWait, testTick, "no %s event", name)
	data := f.eventData(name)
	return data[len(data)-1]
}

func requireShell(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake toolchain scripts need /bin/sh")
	}
}

// Fake compiler: logs the call, fails on SYNTAX_ERROR, otherwise copies the
// source next to itself as <unit>.out.
const fakeCompilerScript = `#!/bin/sh
echo compile >> "$(dirname "$1")/calls.log"
if grep -q SYNTAX_ERROR "$1"; then
  echo "$1:1: error: bad syntax" >&2
  exit 1
fi
cp "$1" "${1%.*}.out"
`

// Fake runtime, invoked as: -cp <dir> <unit>. Lines "print X" go to stdout,
// "eprint X" to stderr, "exit N" sets the exit status.
const fakeRuntimeScript = `#!/bin/sh
echo run >> "$2/calls.log"
sed -n 's/^print //p' "$2/$3.out"
sed -n 's/^eprint //p' "$2/$3.out" >&2
code=$(sed -n 's/^exit //p' "$2/$3.out")
exit ${code:-0}
`

func writeScript(t *testing.T, dir string, name string, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0755))
	return path
}

// fakeToolchain installs the fake compiler/runtime pair in a temp dir.
func fakeToolchain(t *testing.T) Toolchain {
	t.Helper()
	requireShell(t)
	bin := t.TempDir()
	return Toolchain{
		Compiler:     writeScript(t, bin, "fakec", fakeCompilerScript),
		CompilerArgs: []string{PlaceholderSource},
		Runtime:      writeScript(t, bin, "fakerun", fakeRuntimeScript),
		RuntimeArgs:  []string{"-cp", PlaceholderDir, PlaceholderUnit},
		Declaration:  "class " + PlaceholderUnit,
	}
}

func newTestOrchestrator(t *testing.T) *Orchestrator {
	t.Helper()
	orch, err := NewOrchestrator(fakeToolchain(t))
	require.NoError(t, err)
	return orch
}

func newTestApp(t *testing.T) (*App, *fakeUI) {
	t.Helper()
	ui := &fakeUI{}
	return newApp(context.Background(), ui, newTestOrchestrator(t)), ui
}

// writeSource saves a source file and returns its path.
func writeSource(t *testing.T, dir string, name string, text string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(text), 0644))
	return path
}

func readCalls(t *testing.T, dir string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, "calls.log"))
	if os.IsNotExist(err) {
		return ""
	}
	require.NoError(t, err)
	return string(data)
}
