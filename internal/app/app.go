package app

import (
	"context"
	"log"
	"sync"
)

// Shared constants
const (
	// AppName names the config and log directories
	AppName = "compilepad"

	// WindowTitle is the base title of the main window
	WindowTitle = "Compile Pad"

	// IOBufferSize is the standard buffer size for process and file I/O
	IOBufferSize = 32 * 1024
)

// App struct
type App struct {
	ctx   context.Context
	ui    uiRuntime
	store DocumentStore
	orch  *Orchestrator

	mu         sync.Mutex
	doc        Document
	activation string // name of the control activation in progress, "" when idle
	console    *consoleSession

	watcher *documentWatcher
	logFile *debugLogFile
}

// NewApp creates a new App application struct using the user's toolchain
// configuration.
func NewApp() *App {
	tc := LoadUserToolchain()
	orch, err := NewOrchestrator(tc)
	if err != nil {
		log.Printf("⚠️ Invalid toolchain (%v), using defaults", err)
		orch, _ = NewOrchestrator(DefaultToolchain())
	}
	return &App{ctx: context.Background(), orch: orch}
}

// newApp wires an App around an explicit runtime; Startup is not needed.
func newApp(ctx context.Context, ui uiRuntime, orch *Orchestrator) *App {
	return &App{ctx: ctx, ui: ui, orch: orch}
}

// Startup is called when the app starts. The context is saved
// so we can call the runtime methods
func (a *App) Startup(ctx context.Context) {
	a.ctx = ctx
	a.ui = &wailsUI{ctx: ctx}

	logFile, err := openDebugLog()
	if err != nil {
		log.Printf("⚠️ Failed to open debug log: %v", err)
	} else {
		a.logFile = logFile
	}

	watcher, err := newDocumentWatcher(a.onDocumentChangedOnDisk)
	if err != nil {
		log.Printf("⚠️ Failed to start document watcher: %v", err)
	} else {
		a.watcher = watcher
	}

	a.refreshTitle()
	log.Printf("✅ %s started", WindowTitle)
}

// Shutdown is called when the window closes. Any running child process is
// interrupted through the cancelled context.
func (a *App) Shutdown(ctx context.Context) {
	if err := a.StopConsoleRun(); err != nil && err != errNoConsole {
		log.Printf("⚠️ Failed to stop console run: %v", err)
	}
	if a.watcher != nil {
		a.watcher.Close()
	}
	if a.logFile != nil {
		a.logFile.Close()
	}
}

// GetToolchain is exposed to the frontend via Wails
func (a *App) GetToolchain() Toolchain {
	return a.orch.Toolchain()
}
