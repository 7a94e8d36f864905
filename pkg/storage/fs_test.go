package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFilesystemMirrorPut(t *testing.T) {
	root := t.TempDir()
	mirror, err := NewFilesystemMirror(FilesystemMirrorConfig{Path: root})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	rel := "realization-0/iter-0/share/results/maps/topvolantis.gri"
	if err := mirror.Put(context.Background(), rel, strings.NewReader("payload")); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
	if err != nil {
		t.Fatalf("Expected mirrored file, got %v", err)
	}
	if string(data) != "payload" {
		t.Errorf("Expected payload, got %q", data)
	}
}

func TestFilesystemMirrorRequiresPath(t *testing.T) {
	if _, err := NewFilesystemMirror(FilesystemMirrorConfig{}); err == nil {
		t.Fatal("Expected error for missing path")
	}
}

func TestNewMirrorUnknownType(t *testing.T) {
	_, err := NewMirror(context.Background(), Config{Type: "tape"})
	if err == nil {
		t.Fatal("Expected error for unknown mirror type")
	}
	if !strings.Contains(err.Error(), "tape") {
		t.Errorf("Expected error to name the bad type, got: %v", err)
	}
}

func TestNewMirrorFilesystem(t *testing.T) {
	root := t.TempDir()
	mirror, err := NewMirror(context.Background(), Config{
		Type:       "filesystem",
		Filesystem: map[string]any{"path": root},
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if _, ok := mirror.(*FilesystemMirror); !ok {
		t.Errorf("Expected FilesystemMirror, got %T", mirror)
	}
}
