// Package safefile writes files which only the current user can access.
package safefile

import (
	"io"
	"os"
	"path/filepath"
)

// Replace writes a new content of path atomically.
//
// The content is written into a sibling temporary file created by Create, synced,
// and then renamed over path. Readers see the old or the new content, never a mix.
// Missing parent directories are created with permission 0700.
func Replace(path string, write func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), os.FileMode(0700)); err != nil {
		return err
	}

	tmp := path + ".tmp"
	f, err := Create(tmp)
	if err != nil {
		return err
	}
	renamed := false
	defer func() {
		if !renamed {
			os.Remove(tmp)
		}
	}()

	if err := write(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		return err
	}
	renamed = true
	return nil
}
