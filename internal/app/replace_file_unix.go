//go:build !windows

package app

import "github.com/google/renameio/v2"

// replaceFile writes data through a temp file renamed over path. New files
// get 0644.
func replaceFile(path string, data []byte) error {
	return renameio.WriteFile(path, data, 0644, renameio.WithExistingPermissions(), renameio.IgnoreUmask())
}
