package manifest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// DefaultFileMode is used when rewriting the manifest.
const DefaultFileMode os.FileMode = 0o644

// errNoSnapshot is returned when Restore is called before Snapshot.
var errNoSnapshot = errors.New("no manifest snapshot captured")

// File binds the manifest operations to a concrete path and keeps the
// byte-exact snapshot needed for all-or-nothing rollback.
type File struct {
	// path is the location of the manifest on disk.
	path string
	// snapshot holds the manifest bytes captured before the rewrite.
	snapshot []byte
}

// NewFile returns a File bound to the provided path.
func NewFile(path string) *File {
	return &File{path: path}
}

// Path returns the manifest location.
func (f *File) Path() string {
	return f.path
}

// Read returns the current manifest content.
func (f *File) Read() (string, error) {
	contents, err := os.ReadFile(filepath.Clean(f.path))
	if err != nil {
		return "", fmt.Errorf("read manifest: %w", err)
	}

	return string(contents), nil
}

// Snapshot captures the manifest bytes so a later Restore can put them back
// exactly as they were.
func (f *File) Snapshot() error {
	contents, err := os.ReadFile(filepath.Clean(f.path))
	if err != nil {
		return fmt.Errorf("snapshot manifest: %w", err)
	}

	f.snapshot = contents

	return nil
}

// Write persists new manifest content.
func (f *File) Write(content string) error {
	if err := os.WriteFile(filepath.Clean(f.path), []byte(content), DefaultFileMode); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}

	return nil
}

// Restore writes the snapshot captured by Snapshot back to disk.
func (f *File) Restore() error {
	if f.snapshot == nil {
		return errNoSnapshot
	}

	if err := os.WriteFile(filepath.Clean(f.path), f.snapshot, DefaultFileMode); err != nil {
		return fmt.Errorf("restore manifest: %w", err)
	}

	return nil
}
