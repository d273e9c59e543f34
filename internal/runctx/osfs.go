package runctx

import "os"

// OSFS is the FS capability backed by the local filesystem.
type OSFS struct{}

// NewOSFS creates an OSFS.
func NewOSFS() *OSFS {
	return &OSFS{}
}

// Read implements FS.
func (f *OSFS) Read(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// Write implements FS.
func (f *OSFS) Write(path string, content []byte) error {
	return os.WriteFile(path, content, 0o644)
}

// Exists implements FS.
func (f *OSFS) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
