package export

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"

	"github.com/evenbre/fmio/internal/logger"
	"github.com/evenbre/fmio/pkg/content"
	"github.com/evenbre/fmio/pkg/inspect"
	"github.com/evenbre/fmio/pkg/meta"
	"github.com/evenbre/fmio/pkg/settings"
)

// exportPlan is the resolved placement of one export: what the object is,
// where its file goes and under which name and format.
//
// Planning needs no valid global configuration, so a data-only export
// (file without metadata) can still be placed correctly.
type exportPlan struct {
	s        *settings.Settings
	rc       settings.RunContext
	provider inspect.Provider
	format   string
	ext      string
	nameRes  inspect.NameResult
	times    *timeInfo
	loc      fileLocation
}

// planExport resolves names, formats and file placement for one object.
func planExport(s *settings.Settings, rc settings.RunContext, provider inspect.Provider) (*exportPlan, error) {
	declared := s.Name
	if declared == "" {
		declared = provider.ObjectName()
	}
	if declared == "" {
		return nil, meta.Validation(
			"no name provided: set the name setting or name the object itself")
	}

	var strat inspect.Stratigraphy
	if s.Config != nil {
		strat = s.Config.Stratigraphy
	}
	nameRes := inspect.DeriveNameStratigraphy(declared, strat)

	if provider.Class() == meta.ClassCPGridProperty && s.Parent == "" {
		return nil, meta.Validation(
			"grid properties need the parent setting naming the geometry grid")
	}

	format, err := s.FormatFor(provider.Class())
	if err != nil {
		return nil, err
	}
	ext, err := provider.ValidateExtension(format)
	if err != nil {
		return nil, err
	}
	times, err := parseTimedata(s.Timedata)
	if err != nil {
		return nil, err
	}
	loc, err := deriveFileLocation(s, rc, provider.Class(), nameRes.Name, ext, times)
	if err != nil {
		return nil, err
	}

	return &exportPlan{
		s:        s,
		rc:       rc,
		provider: provider,
		format:   format,
		ext:      ext,
		nameRes:  nameRes,
		times:    times,
		loc:      loc,
	}, nil
}

// assemble builds the complete object metadata document for the planned
// export. The returned document has passed schema validation. The file
// block's checksum and size are filled when computeChecksum is set, by
// streaming the object through its serializer once.
func (p *exportPlan) assemble(computeChecksum bool) (*meta.ObjectMetadata, error) {
	cfg := p.s.Config
	if cfg == nil {
		return nil, &meta.ConfigurationError{Message: "no global configuration provided"}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.WithSSDL(p.s.AccessSsdl)

	useContent, contentFields := p.s.UseContent()
	if useContent == content.Unset {
		logger.Warn("The content setting is not provided; this is deprecated and will be rejected in a later version")
	}

	fmu, err := buildFMU(p.s, p.rc)
	if err != nil {
		return nil, err
	}

	doc := &meta.ObjectMetadata{
		Class:      p.provider.Class(),
		Masterdata: cfg.Masterdata,
		Tracklog:   []meta.TracklogEvent{meta.NewTracklogEvent("created")},
		Source:     meta.Source,
		Version:    meta.SchemaVersion,
		FMU:        *fmu,
		Access:     buildAccess(cfg),
		Data:       p.buildData(useContent, contentFields),
		File: meta.File{
			AbsolutePath:        p.loc.absolutePath,
			RelativePath:        p.loc.relativePath,
			AbsolutePathSymlink: p.loc.absolutePathSymlink,
			RelativePathSymlink: p.loc.relativePathSymlink,
		},
		Display: p.buildDisplay(),
	}

	if p.rc.Context == settings.ContextPreprocessed {
		doc.Preprocessed = &meta.Preprocessed{
			Name:      p.s.Name,
			Tagname:   p.s.Tagname,
			Subfolder: p.s.Subfolder,
		}
	}

	if computeChecksum {
		sum, size, err := objectChecksum(p.provider, p.format)
		if err != nil {
			return nil, fmt.Errorf("computing checksum: %w", err)
		}
		doc.File.ChecksumMD5 = sum
		doc.File.SizeBytes = size
	}

	if err := meta.Validate(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// buildAccess merges the global access configuration into the document's
// access block. The deprecated "asset" classification maps to "internal".
func buildAccess(cfg *settings.GlobalConfig) meta.SsdlAccess {
	classification := cfg.Access.Classification
	if classification == "" {
		classification = cfg.Access.Ssdl.AccessLevel
	}
	if classification == meta.ClassificationAsset {
		logger.Warn("The access level 'asset' is deprecated; using 'internal'")
		classification = meta.ClassificationInternal
	}
	return meta.SsdlAccess{
		Access: meta.Access{
			Asset:          cfg.Access.Asset,
			Classification: classification,
		},
		Ssdl: cfg.Access.Ssdl,
	}
}

// buildData assembles the data block from the settings, the resolved name
// and the object's own physical description.
func (p *exportPlan) buildData(useContent string, contentFields map[string]any) meta.Data {
	s := p.s
	d := meta.Data{
		Name:               p.nameRes.Name,
		Stratigraphic:      p.nameRes.Stratigraphic,
		Alias:              p.nameRes.Alias,
		StratigraphicAlias: p.nameRes.StratigraphicAlias,
		Content:            useContent,
		Tagname:            s.Tagname,
		Format:             inspect.DataFormat(p.format),
		Layout:             p.provider.Layout(),
		Unit:               s.Unit,
		Spec:               p.provider.GetSpec(),
		Bbox:               p.provider.GetBbox(),
		TableIndex:         s.TableIndex,
		IsPrediction:       s.IsPrediction,
		IsObservation:      s.IsObservation,
		Description:        s.Description,
		UndefIsZero:        s.UndefIsZero,
	}

	for domain, reference := range s.VerticalDomain {
		d.VerticalDomain = domain
		d.DepthReference = reference
	}
	if s.DepthReference != "" && d.VerticalDomain == "depth" {
		d.DepthReference = s.DepthReference
	}

	if p.times != nil {
		d.Time = p.times.block
	}
	if s.Parent != "" && p.provider.Class() == meta.ClassCPGridProperty {
		d.GridModel = &meta.GridModel{Name: s.Parent}
	}

	switch useContent {
	case "seismic":
		d.Seismic = contentFields
	case "fluid_contact":
		d.FluidContact = contentFields
	case "field_outline":
		d.FieldOutline = contentFields
	case "field_region":
		d.FieldRegion = contentFields
	case "property":
		d.Property = contentFields
	}
	return d
}

// buildDisplay derives the display block: an explicit display name wins,
// otherwise the resolved data name is used.
func (p *exportPlan) buildDisplay() meta.Display {
	if p.s.DisplayName != "" {
		return meta.Display{Name: p.s.DisplayName}
	}
	return meta.Display{Name: p.nameRes.Name}
}

// objectChecksum serializes the object once through a hash to obtain the
// md5 and byte size the exported file will have.
func objectChecksum(provider inspect.Provider, format string) (string, int64, error) {
	h := md5.New()
	counter := &countingWriter{}
	if err := provider.Export(io.MultiWriter(h, counter), format); err != nil {
		return "", 0, err
	}
	return hex.EncodeToString(h.Sum(nil)), counter.n, nil
}

type countingWriter struct {
	n int64
}

func (w *countingWriter) Write(p []byte) (int, error) {
	w.n += int64(len(p))
	return len(p), nil
}
