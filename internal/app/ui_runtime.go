package app

import (
	"context"
	"fmt"

	"github.com/wailsapp/wails/v2/pkg/runtime"
)

// Frontend event names
const (
	EventDocumentLoaded   = "document:loaded"
	EventDocumentChanged  = "document:changed-on-disk"
	EventOutputSet        = "output:set"
	EventRunStarted       = "run:started"
	EventRunFinished      = "run:finished"
	EventConsoleOutput    = "console:output"
	EventConsoleExited    = "console:exited"
	EventActivationStatus = "shell:status"

	// Menu requests answered by the source surface
	EventMenuSave       = "menu:save"
	EventMenuSaveAs     = "menu:save-as"
	EventMenuCompileRun = "menu:compile-run"
	EventMenuConsoleRun = "menu:console-run"
)

// uiRuntime is the part of the window runtime the shell talks to.
type uiRuntime interface {
	OpenFileDialog(title string) (string, error)
	SaveFileDialog(title string, defaultDir string, defaultName string) (string, error)
	ShowError(message string)
	Emit(event string, data ...interface{})
	SetTitle(title string)
}

// wailsUI implements uiRuntime on top of the Wails runtime package.
type wailsUI struct {
	ctx context.Context
}

func sourceFileFilters() []runtime.FileFilter {
	return []runtime.FileFilter{
		{DisplayName: "Java Files (*.java)", Pattern: "*.java"},
		{DisplayName: "All Files (*.*)", Pattern: "*.*"},
	}
}

func (w *wailsUI) OpenFileDialog(title string) (string, error) {
	filePath, err := runtime.OpenFileDialog(w.ctx, runtime.OpenDialogOptions{
		Title:   title,
		Filters: sourceFileFilters(),
	})
	if err != nil {
		return "", fmt.Errorf("failed to open file dialog: %w", err)
	}
	return filePath, nil
}

func (w *wailsUI) SaveFileDialog(title string, defaultDir string, defaultName string) (string, error) {
	filePath, err := runtime.SaveFileDialog(w.ctx, runtime.SaveDialogOptions{
		Title:            title,
		DefaultDirectory: defaultDir,
		DefaultFilename:  defaultName,
		Filters:          sourceFileFilters(),
	})
	if err != nil {
		return "", fmt.Errorf("failed to open save dialog: %w", err)
	}
	return filePath, nil
}

func (w *wailsUI) ShowError(message string) {
	_, err := runtime.MessageDialog(w.ctx, runtime.MessageDialogOptions{
		Type:    runtime.ErrorDialog,
		Title:   "Error",
		Message: message,
	})
	if err != nil {
		runtime.LogErrorf(w.ctx, "failed to show error dialog: %v", err)
	}
}

func (w *wailsUI) Emit(event string, data ...interface{}) {
	runtime.EventsEmit(w.ctx, event, data...)
}

func (w *wailsUI) SetTitle(title string) {
	runtime.WindowSetTitle(w.ctx, title)
}
