package app

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
)

// getDebugLogPath returns the user-specific debug log path.
// Uses ~/Library/Logs on macOS, ~/.cache on Linux, or os.TempDir() as fallback.
func getDebugLogPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), AppName+"-debug.log")
	}

	logDir := filepath.Join(homeDir, ".cache", AppName)
	if libLogs := filepath.Join(homeDir, "Library", "Logs"); dirExists(libLogs) {
		logDir = filepath.Join(libLogs, AppName)
	}

	os.MkdirAll(logDir, 0755)
	return filepath.Join(logDir, "debug.log")
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// debugLogFile mirrors the standard logger into the debug log.
type debugLogFile struct {
	mu   sync.Mutex
	path string
	f    *os.File
}

func (d *debugLogFile) Write(p []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.f.Write(p)
}

func (d *debugLogFile) truncate() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.f.Truncate(0)
}

func (d *debugLogFile) Close() error {
	log.SetOutput(os.Stderr)
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.f.Close()
}

// openDebugLog opens the debug log in append mode and routes the standard
// logger to both stderr and the file.
func openDebugLog() (*debugLogFile, error) {
	path := getDebugLogPath()
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	d := &debugLogFile{path: path, f: f}
	log.SetOutput(io.MultiWriter(os.Stderr, d))
	return d, nil
}

// WriteDebugLog appends frontend log lines to the debug log
func (a *App) WriteDebugLog(logContent string) error {
	if a.logFile == nil {
		return fmt.Errorf("debug log is not open")
	}
	if _, err := a.logFile.Write([]byte(logContent)); err != nil {
		return fmt.Errorf("failed to write log: %w", err)
	}
	return nil
}

// ClearDebugLog empties the debug log file
func (a *App) ClearDebugLog() error {
	if a.logFile == nil {
		if err := os.Remove(getDebugLogPath()); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to clear log file: %w", err)
		}
		return nil
	}
	if err := a.logFile.truncate(); err != nil {
		return fmt.Errorf("failed to clear log file: %w", err)
	}
	return nil
}

// GetDebugLogPath returns the debug log path (exposed to frontend for reference)
func (a *App) GetDebugLogPath() string {
	return getDebugLogPath()
}
