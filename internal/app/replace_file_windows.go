//go:build windows

package app

import (
	"bytes"

	"github.com/natefinch/atomic"
)

// renameio has no Windows support; atomic uses MoveFileEx there.
func replaceFile(path string, data []byte) error {
	return atomic.WriteFile(path, bytes.NewReader(data))
}
