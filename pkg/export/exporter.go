package export

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/evenbre/fmio/internal/logger"
	"github.com/evenbre/fmio/pkg/inspect"
	"github.com/evenbre/fmio/pkg/meta"
	"github.com/evenbre/fmio/pkg/settings"
	"github.com/evenbre/fmio/pkg/storage"
)

// Exporter writes data objects and their metadata into the case directory
// layout.
//
// An Exporter carries settings resolved at construction; every call may
// layer additional overrides on a copy, so concurrent exports with
// different overrides do not interfere.
type Exporter struct {
	settings *settings.Settings
	mirror   storage.Mirror
}

// Result reports where an export landed.
type Result struct {
	// Path is the absolute path of the written data file
	Path string

	// MetadataPath is the absolute path of the metadata sidecar, empty
	// for data-only exports
	MetadataPath string

	// SymlinkPath is the absolute path of the realization symlink, only
	// set for case_symlink_realization exports
	SymlinkPath string

	// Metadata is the assembled document, nil for data-only exports
	Metadata *meta.ObjectMetadata
}

// NewExporter creates an exporter from the global configuration and
// construction-time settings.
//
// A nil or invalid configuration is accepted: exports still write data
// files but no metadata, with a warning per export.
func NewExporter(config *settings.GlobalConfig, overrides map[string]any) (*Exporter, error) {
	s, err := settings.New(config, overrides)
	if err != nil {
		return nil, err
	}
	return &Exporter{settings: s}, nil
}

// SetMirror attaches a mirror that receives a copy of every written file.
// Mirror failures are warnings, never export failures.
func (e *Exporter) SetMirror(m storage.Mirror) {
	e.mirror = m
}

// Settings exposes the exporter's resolved settings.
func (e *Exporter) Settings() *settings.Settings {
	return e.settings
}

// callSettings layers per-call overrides onto a copy of the exporter's
// settings.
func (e *Exporter) callSettings(overrides map[string]any) (*settings.Settings, error) {
	s := e.settings.Clone()
	if err := s.Update(overrides); err != nil {
		return nil, err
	}
	return s, nil
}

// GenerateMetadata assembles and validates the metadata document for an
// object without writing anything.
//
// The file block describes where Export would place the object, including
// checksum and size of the would-be file.
func (e *Exporter) GenerateMetadata(obj any, overrides map[string]any) (*meta.ObjectMetadata, error) {
	s, err := e.callSettings(overrides)
	if err != nil {
		return nil, err
	}
	rc := settings.ResolveRunContext(s)

	if path, ok := obj.(string); ok {
		return e.preprocessedMetadata(s, rc, path)
	}

	provider, err := inspect.ProviderFor(obj)
	if err != nil {
		return nil, err
	}
	plan, err := planExport(s, rc, provider)
	if err != nil {
		return nil, err
	}
	return plan.assemble(true)
}

// Export writes the object's data file and metadata sidecar.
//
// The data file is always written. When the global configuration is
// missing or invalid the export degrades to data-only with a warning;
// any other metadata failure fails the export.
func (e *Exporter) Export(ctx context.Context, obj any, overrides map[string]any) (*Result, error) {
	s, err := e.callSettings(overrides)
	if err != nil {
		return nil, err
	}
	rc := settings.ResolveRunContext(s)

	if path, ok := obj.(string); ok {
		return e.exportPreprocessed(ctx, s, rc, path)
	}

	provider, err := inspect.ProviderFor(obj)
	if err != nil {
		return nil, err
	}
	plan, err := planExport(s, rc, provider)
	if err != nil {
		return nil, err
	}

	doc, err := plan.assemble(false)
	if err != nil {
		var cfgErr *meta.ConfigurationError
		if !errors.As(err, &cfgErr) {
			return nil, err
		}
		logger.Warn("No metadata will be produced: %s", cfgErr.Message)
		doc = nil
	}

	sum, size, err := e.writeDataFile(plan)
	if err != nil {
		return nil, err
	}

	result := &Result{Path: plan.loc.absolutePath}

	if doc != nil {
		doc.File.ChecksumMD5 = sum
		doc.File.SizeBytes = size
		metaPath, err := e.writeSidecar(s, plan, doc)
		if err != nil {
			return nil, err
		}
		result.MetadataPath = metaPath
		result.Metadata = doc
	}

	if rc.Context == settings.ContextCaseSymlinkRealization && plan.loc.absolutePathSymlink != "" {
		if err := createSymlink(plan.loc.absolutePath, plan.loc.absolutePathSymlink); err != nil {
			return nil, err
		}
		result.SymlinkPath = plan.loc.absolutePathSymlink
	}

	e.mirrorResult(ctx, rc, result)
	return result, nil
}

// writeDataFile serializes the object to its planned location and returns
// the md5 and size of the written bytes.
func (e *Exporter) writeDataFile(plan *exportPlan) (string, int64, error) {
	target := plan.loc.absolutePath
	if err := e.prepareFolder(plan.s, filepath.Dir(target)); err != nil {
		return "", 0, err
	}

	f, err := os.Create(target)
	if err != nil {
		return "", 0, fmt.Errorf("creating %s: %w", target, err)
	}

	h := md5.New()
	counter := &countingWriter{}
	if err := plan.provider.Export(io.MultiWriter(f, h, counter), plan.format); err != nil {
		f.Close()
		return "", 0, fmt.Errorf("writing %s: %w", target, err)
	}
	if err := f.Close(); err != nil {
		return "", 0, fmt.Errorf("closing %s: %w", target, err)
	}

	logger.Info("Exported %s", target)
	return hex.EncodeToString(h.Sum(nil)), counter.n, nil
}

// prepareFolder creates the target folder per the createfolder and
// verifyfolder settings.
func (e *Exporter) prepareFolder(s *settings.Settings, dir string) error {
	if s.CreateFolder {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating export folder %s: %w", dir, err)
		}
	}
	if s.VerifyFolder {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			return meta.Validation(fmt.Sprintf(
				"the export folder %s does not exist; enable createfolder or create it first", dir))
		}
	}
	return nil
}

// writeSidecar persists the metadata document next to the data file, as a
// dotfile named after it.
func (e *Exporter) writeSidecar(s *settings.Settings, plan *exportPlan, doc *meta.ObjectMetadata) (string, error) {
	format := meta.Format(s.MetaFormat)
	raw, err := meta.Marshal(doc, format)
	if err != nil {
		return "", err
	}

	path := SidecarPath(plan.loc.absolutePath, format)
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return "", fmt.Errorf("writing metadata %s: %w", path, err)
	}
	return path, nil
}

// SidecarPath returns the metadata sidecar location for a data file:
// a dotfile next to it, e.g. .topvolantis.gri.yml for topvolantis.gri.
func SidecarPath(dataPath string, format meta.Format) string {
	dir, base := filepath.Split(dataPath)
	return filepath.Join(dir, "."+base+format.Extension())
}

// ReadMetadata reads the metadata sidecar of an exported data file.
func ReadMetadata(dataPath string) (*meta.ObjectMetadata, error) {
	var lastErr error
	for _, format := range []meta.Format{meta.FormatYAML, meta.FormatJSON} {
		path := SidecarPath(dataPath, format)
		raw, err := os.ReadFile(path)
		if err != nil {
			lastErr = err
			continue
		}
		return meta.DecodeObject(raw)
	}
	return nil, fmt.Errorf("no metadata found for %s: %w", dataPath, lastErr)
}

func createSymlink(target, link string) error {
	if err := os.MkdirAll(filepath.Dir(link), 0o755); err != nil {
		return fmt.Errorf("creating symlink folder: %w", err)
	}
	if err := os.Symlink(target, link); err != nil && !os.IsExist(err) {
		return fmt.Errorf("creating symlink %s: %w", link, err)
	}
	return nil
}

// mirrorResult copies the written files to the attached mirror, if any.
func (e *Exporter) mirrorResult(ctx context.Context, rc settings.RunContext, result *Result) {
	if e.mirror == nil {
		return
	}
	paths := []string{result.Path}
	if result.MetadataPath != "" {
		paths = append(paths, result.MetadataPath)
	}
	for _, p := range paths {
		rel, err := filepath.Rel(rc.Rootpath, p)
		if err != nil {
			rel = filepath.Base(p)
		}
		f, err := os.Open(p)
		if err != nil {
			logger.Warn("Cannot mirror %s: %v", p, err)
			continue
		}
		if err := e.mirror.Put(ctx, filepath.ToSlash(rel), f); err != nil {
			logger.Warn("Mirror upload of %s failed: %v", rel, err)
		}
		f.Close()
	}
}

// preprocessedMetadata rebuilds the metadata of a previously exported
// preprocessed file for its new place inside a case.
func (e *Exporter) preprocessedMetadata(s *settings.Settings, rc settings.RunContext, dataPath string) (*meta.ObjectMetadata, error) {
	doc, marker, err := loadPreprocessed(dataPath)
	if err != nil {
		return nil, err
	}
	applyPreprocessedMarker(s, marker)

	if s.Config == nil {
		return nil, &meta.ConfigurationError{Message: "no global configuration provided"}
	}
	if err := s.Config.Validate(); err != nil {
		return nil, err
	}

	fmu, err := buildFMU(s, rc)
	if err != nil {
		return nil, err
	}

	merged := *doc
	merged.FMU = *fmu
	merged.Preprocessed = nil
	merged.Tracklog = append(merged.Tracklog, meta.NewTracklogEvent("merged"))

	loc, err := preprocessedLocation(s, rc, doc.Class, dataPath)
	if err != nil {
		return nil, err
	}
	merged.File = meta.File{
		AbsolutePath:        loc.absolutePath,
		RelativePath:        loc.relativePath,
		AbsolutePathSymlink: loc.absolutePathSymlink,
		RelativePathSymlink: loc.relativePathSymlink,
		ChecksumMD5:         doc.File.ChecksumMD5,
		SizeBytes:           doc.File.SizeBytes,
	}

	if err := meta.Validate(&merged); err != nil {
		return nil, err
	}
	return &merged, nil
}

// exportPreprocessed copies a preprocessed file into the case and attaches
// the merged metadata.
func (e *Exporter) exportPreprocessed(ctx context.Context, s *settings.Settings, rc settings.RunContext, dataPath string) (*Result, error) {
	doc, err := e.preprocessedMetadata(s, rc, dataPath)
	if err != nil {
		var cfgErr *meta.ConfigurationError
		if !errors.As(err, &cfgErr) {
			return nil, err
		}
		logger.Warn("No metadata will be produced: %s", cfgErr.Message)
		doc = nil
	}

	var target string
	if doc != nil {
		target = doc.File.AbsolutePath
	} else {
		loc, err := preprocessedLocation(s, rc, "", dataPath)
		if err != nil {
			return nil, err
		}
		target = loc.absolutePath
	}

	if err := e.prepareFolder(s, filepath.Dir(target)); err != nil {
		return nil, err
	}
	sum, size, err := copyFileMD5(dataPath, target)
	if err != nil {
		return nil, err
	}

	result := &Result{Path: target}
	if doc != nil {
		doc.File.ChecksumMD5 = sum
		doc.File.SizeBytes = size
		format := meta.Format(s.MetaFormat)
		raw, err := meta.Marshal(doc, format)
		if err != nil {
			return nil, err
		}
		metaPath := SidecarPath(target, format)
		if err := os.WriteFile(metaPath, raw, 0o644); err != nil {
			return nil, fmt.Errorf("writing metadata %s: %w", metaPath, err)
		}
		result.MetadataPath = metaPath
		result.Metadata = doc
	}

	e.mirrorResult(ctx, rc, result)
	return result, nil
}

// loadPreprocessed reads the sidecar of a preprocessed file and checks
// the reuse marker.
func loadPreprocessed(dataPath string) (*meta.ObjectMetadata, *meta.Preprocessed, error) {
	doc, err := ReadMetadata(dataPath)
	if err != nil {
		return nil, nil, err
	}
	if doc.Preprocessed == nil {
		return nil, nil, meta.Validation(fmt.Sprintf(
			"%s is not a preprocessed export: its metadata has no _preprocessed block", dataPath))
	}
	return doc, doc.Preprocessed, nil
}

// applyPreprocessedMarker backfills identity settings recorded at
// preprocessing time, unless the caller overrides them now.
func applyPreprocessedMarker(s *settings.Settings, marker *meta.Preprocessed) {
	if s.Name == "" {
		s.Name = marker.Name
	}
	if s.Tagname == "" {
		s.Tagname = marker.Tagname
	}
	if s.Subfolder == "" {
		s.Subfolder = marker.Subfolder
	}
}

// preprocessedLocation places a preprocessed file inside the case, keeping
// its original file name.
func preprocessedLocation(s *settings.Settings, rc settings.RunContext, class meta.Class, dataPath string) (fileLocation, error) {
	folder := "preprocessed"
	if class != "" {
		if f, ok := classFolders[class]; ok {
			folder = f
		}
	}

	parts := []string{shareRoot(rc.Context, s.IsObservation), folder}
	if s.Subfolder != "" {
		parts = append(parts, slugify(s.Subfolder))
	}
	parts = append(parts, filepath.Base(dataPath))
	rel := filepath.ToSlash(filepath.Join(parts...))

	loc := fileLocation{relativePath: rel}
	loc.absolutePath = filepath.Join(rc.Rootpath, filepath.FromSlash(rel))
	return loc, nil
}

// copyFileMD5 copies src to dst, returning the md5 and size of the copied
// bytes.
func copyFileMD5(src, dst string) (string, int64, error) {
	in, err := os.Open(src)
	if err != nil {
		return "", 0, fmt.Errorf("opening %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return "", 0, fmt.Errorf("creating %s: %w", dst, err)
	}

	h := md5.New()
	n, err := io.Copy(io.MultiWriter(out, h), in)
	if err != nil {
		out.Close()
		return "", 0, fmt.Errorf("copying to %s: %w", dst, err)
	}
	if err := out.Close(); err != nil {
		return "", 0, err
	}
	return hex.EncodeToString(h.Sum(nil)), n, nil
}
