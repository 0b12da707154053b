package app

import (
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// ErrBusy is returned when a control is activated while another activation
// is still being handled.
var ErrBusy = errors.New("another operation is still in progress")

// saveCooldown is how long watcher events are ignored around our own save.
const saveCooldown = time.Second

// ShellStatus is posted to the frontend whenever the shell changes state.
type ShellStatus struct {
	Busy       bool   `json:"busy"`
	Activation string `json:"activation"`
}

// RunFinished is the payload of the run:finished event.
type RunFinished struct {
	RunID  string            `json:"runId"`
	Output string            `json:"output"`
	Error  string            `json:"error,omitempty"`
	Result *CompileRunResult `json:"result,omitempty"`
}

// begin marks the shell as handling one control activation.
func (a *App) begin(activation string) error {
	a.mu.Lock()
	if a.activation != "" {
		current := a.activation
		a.mu.Unlock()
		log.Printf("⚠️ [Shell] %s rejected, %s in progress", activation, current)
		return ErrBusy
	}
	a.activation = activation
	a.mu.Unlock()

	a.ui.Emit(EventActivationStatus, ShellStatus{Busy: true, Activation: activation})
	return nil
}

// end returns the shell to idle.
func (a *App) end() {
	a.mu.Lock()
	a.activation = ""
	a.mu.Unlock()

	a.ui.Emit(EventActivationStatus, ShellStatus{})
}

// report surfaces an error as a modal notification.
func (a *App) report(err error) {
	if err == nil {
		return
	}
	log.Printf("❌ [Shell] %v", err)

	var compileErr *CompilationFailedError
	if errors.As(err, &compileErr) {
		a.ui.ShowError("Compilation failed. See the output pane for details.")
		return
	}
	a.ui.ShowError(err.Error())
}

func (a *App) setDocument(doc Document) {
	a.mu.Lock()
	a.doc = doc
	a.mu.Unlock()

	a.ui.Emit(EventDocumentLoaded, doc)
	a.refreshTitle()
	a.watchDocument(doc.Path)
}

func (a *App) refreshTitle() {
	if a.ui == nil {
		return
	}
	a.ui.SetTitle(a.GetDocument().Name() + " - " + WindowTitle)
}

// OutputUpdate is the payload of the output:set event.
type OutputUpdate struct {
	Text string `json:"text"`
}

func (a *App) setOutput(text string) {
	a.ui.Emit(EventOutputSet, OutputUpdate{Text: text})
}

// GetDocument returns a copy of the current document
func (a *App) GetDocument() Document {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.doc
}

// UpdateText records an edit made in the source surface
func (a *App) UpdateText(text string) {
	a.mu.Lock()
	a.doc.Text = text
	a.mu.Unlock()
}

// NewDocument clears the document and forgets its path
func (a *App) NewDocument() error {
	if err := a.begin("new"); err != nil {
		a.report(err)
		return err
	}
	defer a.end()

	a.setDocument(Document{})
	return nil
}

// OpenDocument asks for a file and loads it. Cancelling the dialog is not
// an error.
func (a *App) OpenDocument() error {
	if err := a.begin("open"); err != nil {
		a.report(err)
		return err
	}
	defer a.end()

	path, err := a.ui.OpenFileDialog("Open")
	if err != nil {
		a.report(err)
		return err
	}
	if path == "" {
		return nil
	}
	return a.openPath(path)
}

// OpenDocumentPath loads the file at path without a dialog
func (a *App) OpenDocumentPath(path string) error {
	if err := a.begin("open"); err != nil {
		a.report(err)
		return err
	}
	defer a.end()

	return a.openPath(path)
}

func (a *App) openPath(path string) error {
	text, err := a.store.Open(path)
	if err != nil {
		a.report(err)
		return err
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	log.Printf("📂 [Shell] Opened %s (%d bytes)", abs, len(text))
	a.setDocument(Document{Path: abs, Text: text})
	return nil
}

// takeText records the source surface's text as part of an activation, so
// the activation never acts on an edit the surface has not pushed yet.
func (a *App) takeText(text string) Document {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.doc.Text = text
	return a.doc
}

// RequestActivation asks the source surface to start a text-carrying
// activation (menu:save, menu:save-as, menu:compile-run, menu:console-run).
// Menu callbacks go through here because only the surface holds the
// current text.
func (a *App) RequestActivation(event string) {
	a.ui.Emit(event)
}

// SaveDocument writes text to the document's path, asking for one first if
// the document has never been saved
func (a *App) SaveDocument(text string) error {
	if err := a.begin("save"); err != nil {
		a.report(err)
		return err
	}
	defer a.end()

	doc := a.takeText(text)
	if doc.Path == "" {
		return a.saveAs(doc)
	}
	return a.savePath(doc.Path, doc.Text)
}

// SaveDocumentAs asks for a path and writes text there
func (a *App) SaveDocumentAs(text string) error {
	if err := a.begin("save"); err != nil {
		a.report(err)
		return err
	}
	defer a.end()

	return a.saveAs(a.takeText(text))
}

func (a *App) saveAs(doc Document) error {
	defaultDir, defaultName := "", "Main.java"
	if doc.Path != "" {
		defaultDir, defaultName = filepath.Dir(doc.Path), filepath.Base(doc.Path)
	}

	path, err := a.ui.SaveFileDialog("Save", defaultDir, defaultName)
	if err != nil {
		a.report(err)
		return err
	}
	if path == "" {
		return nil
	}
	return a.savePath(path, doc.Text)
}

// SaveDocumentPath writes text to path without a dialog
func (a *App) SaveDocumentPath(path string, text string) error {
	if err := a.begin("save"); err != nil {
		a.report(err)
		return err
	}
	defer a.end()

	return a.savePath(path, a.takeText(text).Text)
}

func (a *App) savePath(path string, text string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}

	if a.watcher != nil {
		a.watcher.Suppress(saveCooldown)
	}
	if err := a.store.Save(abs, text); err != nil {
		a.report(err)
		return err
	}
	if a.watcher != nil {
		a.watcher.Suppress(saveCooldown)
	}

	log.Printf("💾 [Shell] Saved %s (%d bytes)", abs, len(text))
	a.mu.Lock()
	a.doc.Path = abs
	a.mu.Unlock()
	a.refreshTitle()
	a.watchDocument(abs)
	return nil
}

// CompileAndRun compiles the saved document and runs it, blocking until
// both child processes have exited. text is the current content of the
// source surface; the naming check runs against it.
func (a *App) CompileAndRun(text string) (*CompileRunResult, error) {
	if err := a.begin("compile-run"); err != nil {
		a.report(err)
		return nil, err
	}
	defer a.end()

	doc := a.takeText(text)
	result, err := a.orch.CompileAndRun(a.ctx, doc.Path, doc.Text)
	a.showResult(result, err)
	return result, err
}

// CompileAndRunAsync starts the same sequence as CompileAndRun in the
// background and returns its run ID. Completion is posted as run:finished;
// the shell stays busy until then.
func (a *App) CompileAndRunAsync(text string) (string, error) {
	if err := a.begin("compile-run"); err != nil {
		a.report(err)
		return "", err
	}

	doc := a.takeText(text)
	runID := uuid.NewString()
	a.ui.Emit(EventRunStarted, map[string]interface{}{
		"runId": runID,
		"path":  doc.Path,
	})

	go func() {
		defer a.end()
		defer func() {
			if r := recover(); r != nil {
				log.Printf("❌ PANIC RECOVERED in compile/run %s: %v", runID, r)
				a.ui.Emit(EventRunFinished, RunFinished{RunID: runID, Error: fmt.Sprint(r)})
			}
		}()

		result, err := a.orch.CompileAndRun(a.ctx, doc.Path, doc.Text)
		a.showResult(result, err)

		finished := RunFinished{RunID: runID, Result: result}
		if result != nil {
			finished.Output = result.Format()
		}
		if err != nil {
			finished.Error = err.Error()
		}
		a.ui.Emit(EventRunFinished, finished)
	}()

	return runID, nil
}

// showResult renders a compile/run outcome. Compile errors go to the output
// pane as well as the modal.
func (a *App) showResult(result *CompileRunResult, err error) {
	var compileErr *CompilationFailedError
	switch {
	case err == nil:
		a.setOutput(result.Format())
	case errors.As(err, &compileErr):
		a.setOutput(result.Format())
		a.report(err)
	default:
		a.report(err)
	}
}
