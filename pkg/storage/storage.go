// Package storage mirrors exported files and metadata to secondary
// destinations. The primary write always goes to the case directory tree;
// mirrors are best-effort copies for consumers that read from object
// storage instead of the shared filesystem.
package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/mitchellh/mapstructure"
)

// Mirror receives a copy of every exported file and metadata document.
//
// Put failures are reported to the caller but do not fail the export; the
// authoritative copy on the case filesystem is already written when a
// mirror runs.
type Mirror interface {
	// Put stores the content under the path relative to the case root.
	Put(ctx context.Context, relativePath string, r io.Reader) error
}

// Config selects and configures a mirror backend.
//
// The Type field determines which backend is used. Only the corresponding
// type-specific section is read.
type Config struct {
	// Type specifies which mirror implementation to use
	// Valid values: filesystem, s3
	Type string `mapstructure:"type"`

	// Filesystem contains filesystem-specific configuration
	// Only used when Type = "filesystem"
	Filesystem map[string]any `mapstructure:"filesystem"`

	// S3 contains S3-specific configuration
	// Only used when Type = "s3"
	S3 map[string]any `mapstructure:"s3"`
}

// NewMirror creates a mirror backend from configuration.
//
// Parameters:
//   - ctx: Context for initialization operations
//   - cfg: Mirror configuration
//
// Returns:
//   - Mirror: Initialized mirror
//   - error: Configuration or initialization error
func NewMirror(ctx context.Context, cfg Config) (Mirror, error) {
	switch cfg.Type {
	case "filesystem":
		var fsCfg FilesystemMirrorConfig
		if err := mapstructure.Decode(cfg.Filesystem, &fsCfg); err != nil {
			return nil, fmt.Errorf("failed to decode filesystem mirror config: %w", err)
		}
		return NewFilesystemMirror(fsCfg)
	case "s3":
		var s3Cfg S3MirrorConfig
		if err := mapstructure.Decode(cfg.S3, &s3Cfg); err != nil {
			return nil, fmt.Errorf("failed to decode S3 mirror config: %w", err)
		}
		return NewS3Mirror(ctx, s3Cfg)
	default:
		return nil, fmt.Errorf("unknown mirror type: %q (supported: filesystem, s3)", cfg.Type)
	}
}
