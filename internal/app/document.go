package app

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileError reports a failed open or save. It is shown to the user and is
// never fatal.
type FileError struct {
	Op   string // "open" or "save"
	Path string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("error %s file %s: %v", opVerb(e.Op), e.Path, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}

func opVerb(op string) string {
	switch op {
	case "open":
		return "opening"
	case "save":
		return "saving"
	}
	return op
}

// Document is the single file being edited. Path is empty until the first
// open or save.
type Document struct {
	Path string `json:"path"`
	Text string `json:"text"`
}

// Name returns the display name of the document.
func (d Document) Name() string {
	if d.Path == "" {
		return "Untitled"
	}
	return filepath.Base(d.Path)
}

// expandHome expands ~ in paths to the user's home directory
func expandHome(path string) (string, error) {
	if path == "~" {
		return os.UserHomeDir()
	}
	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		return filepath.Join(homeDir, path[2:]), nil
	}
	return path, nil
}

// DocumentStore loads and saves whole documents.
type DocumentStore struct{}

// Open reads the whole file at path.
func (DocumentStore) Open(path string) (string, error) {
	expanded, err := expandHome(path)
	if err != nil {
		return "", &FileError{Op: "open", Path: path, Err: err}
	}

	data, err := os.ReadFile(expanded)
	if err != nil {
		return "", &FileError{Op: "open", Path: expanded, Err: err}
	}
	return string(data), nil
}

// Save replaces the file at path with text. The target is never seen
// half-written and keeps its permissions.
func (DocumentStore) Save(path string, text string) error {
	expanded, err := expandHome(path)
	if err != nil {
		return &FileError{Op: "save", Path: path, Err: err}
	}
	if info, err := os.Stat(expanded); err == nil && info.IsDir() {
		return &FileError{Op: "save", Path: expanded, Err: fmt.Errorf("%s is a directory", expanded)}
	}
	if err := replaceFile(expanded, []byte(text)); err != nil {
		return &FileError{Op: "save", Path: expanded, Err: err}
	}
	return nil
}
