package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// FilesystemMirrorConfig configures the filesystem mirror.
type FilesystemMirrorConfig struct {
	// Path is the root directory the mirror writes under
	Path string `mapstructure:"path"`
}

// FilesystemMirror copies exports into a second directory tree, keeping
// the same relative layout as the case root.
type FilesystemMirror struct {
	root string
}

// NewFilesystemMirror creates a filesystem mirror rooted at cfg.Path.
// The root directory is created if missing.
func NewFilesystemMirror(cfg FilesystemMirrorConfig) (*FilesystemMirror, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("filesystem mirror: path is required")
	}
	if err := os.MkdirAll(cfg.Path, 0o755); err != nil {
		return nil, fmt.Errorf("filesystem mirror: creating root: %w", err)
	}
	return &FilesystemMirror{root: cfg.Path}, nil
}

// Put writes the content to root/relativePath, creating parent folders as
// needed.
func (m *FilesystemMirror) Put(ctx context.Context, relativePath string, r io.Reader) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	target := filepath.Join(m.root, filepath.FromSlash(relativePath))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("creating mirror folder: %w", err)
	}

	f, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("creating mirror file: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return fmt.Errorf("writing mirror file: %w", err)
	}
	return f.Close()
}
