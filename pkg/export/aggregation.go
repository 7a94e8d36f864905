package export

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/evenbre/fmio/pkg/inspect"
	"github.com/evenbre/fmio/pkg/meta"
)

// realizationPrefixPattern strips the realization segment off a source
// document's relative path, e.g. "realization-3/iter-0/share/..." .
var realizationPrefixPattern = regexp.MustCompile(`^realization-\d+/`)

// Aggregator builds metadata for an artifact computed over an ensemble,
// e.g. the mean of a surface across all realizations.
//
// The first source document acts as the template: the aggregated document
// inherits its data identity and placement, swaps the realization block
// for an aggregation block, and takes its physical description from the
// aggregated object itself.
type Aggregator struct {
	// Sources are the metadata documents of the aggregated realizations.
	// At least one is required; each must carry a realization block.
	Sources []*meta.ObjectMetadata

	// Operation names the aggregation, e.g. mean, std, p10. Required.
	Operation string

	// Name replaces the data name inherited from the template and with it
	// the file name stem. Empty keeps the template's name.
	Name string

	// Tagname is an extra discriminator appended to the file name after
	// the operation and recorded in the data block.
	Tagname string

	// AggregationID overrides the derived aggregation id. When empty the
	// id is a deterministic hash of the sorted source realization uuids,
	// so the same ensemble always aggregates to the same identity.
	AggregationID string

	// CasePath overrides the case root the aggregation is stored under.
	// When set, the directory must exist.
	CasePath string
}

// GenerateMetadata assembles the aggregation metadata document for the
// aggregated object without writing anything.
func (a *Aggregator) GenerateMetadata(obj any) (*meta.ObjectMetadata, error) {
	if err := a.check(); err != nil {
		return nil, err
	}
	provider, err := inspect.ProviderFor(obj)
	if err != nil {
		return nil, err
	}

	template, err := copyDocument(a.Sources[0])
	if err != nil {
		return nil, err
	}
	if provider.Class() != template.Class {
		return nil, meta.Validation(fmt.Sprintf(
			"aggregated object has class %q but the sources describe %q",
			provider.Class(), template.Class))
	}

	ids, uuids, err := a.sourceRealizations()
	if err != nil {
		return nil, err
	}

	template.FMU.Context = meta.Context{Stage: meta.StageIteration}
	template.FMU.Aggregation = &meta.Aggregation{
		ID:             a.aggregationID(uuids),
		Operation:      a.Operation,
		RealizationIDs: ids,
	}
	template.FMU.Realization = nil
	template.FMU.Iteration = a.iterationBlock(template)

	// Physical description comes from the aggregated object, not the
	// sources.
	template.Data.Spec = provider.GetSpec()
	template.Data.Bbox = provider.GetBbox()

	if a.Name != "" {
		template.Data.Name = a.Name
	}
	if a.Tagname != "" {
		template.Data.Tagname = a.Tagname
	}

	if err := a.relocate(template); err != nil {
		return nil, err
	}

	sum, size, err := objectChecksum(provider, template.Data.Format)
	if err != nil {
		return nil, fmt.Errorf("computing checksum: %w", err)
	}
	template.File.ChecksumMD5 = sum
	template.File.SizeBytes = size

	template.Tracklog = []meta.TracklogEvent{meta.NewTracklogEvent("created")}

	if err := meta.Validate(template); err != nil {
		return nil, err
	}
	return template, nil
}

// Export writes the aggregated object and its metadata sidecar under the
// case root.
func (a *Aggregator) Export(ctx context.Context, obj any) (*Result, error) {
	doc, err := a.GenerateMetadata(obj)
	if err != nil {
		return nil, err
	}
	provider, err := inspect.ProviderFor(obj)
	if err != nil {
		return nil, err
	}

	target := doc.File.AbsolutePath
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return nil, fmt.Errorf("creating export folder: %w", err)
	}

	f, err := os.Create(target)
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", target, err)
	}
	if err := provider.Export(f, doc.Data.Format); err != nil {
		f.Close()
		return nil, fmt.Errorf("writing %s: %w", target, err)
	}
	if err := f.Close(); err != nil {
		return nil, err
	}

	raw, err := meta.Marshal(doc, meta.FormatYAML)
	if err != nil {
		return nil, err
	}
	metaPath := SidecarPath(target, meta.FormatYAML)
	if err := os.WriteFile(metaPath, raw, 0o644); err != nil {
		return nil, fmt.Errorf("writing metadata %s: %w", metaPath, err)
	}

	return &Result{Path: target, MetadataPath: metaPath, Metadata: doc}, nil
}

func (a *Aggregator) check() error {
	if len(a.Sources) == 0 {
		return errors.New("at least one source metadata document is required")
	}
	if a.Operation == "" {
		return errors.New("the aggregation operation is required")
	}
	if a.CasePath != "" {
		info, err := os.Stat(a.CasePath)
		if err != nil || !info.IsDir() {
			return fmt.Errorf("casepath %s does not exist", a.CasePath)
		}
	}
	return nil
}

// sourceRealizations collects the realization ids and uuids of all
// sources, sorted by id.
func (a *Aggregator) sourceRealizations() ([]int, []string, error) {
	ids := make([]int, 0, len(a.Sources))
	uuids := make([]string, 0, len(a.Sources))
	for i, src := range a.Sources {
		if src.FMU.Realization == nil || src.FMU.Realization.UUID == "" {
			return nil, nil, meta.Validation(fmt.Sprintf(
				"source %d has no realization identity; only realization "+
					"exports can be aggregated", i))
		}
		ids = append(ids, src.FMU.Realization.ID)
		uuids = append(uuids, src.FMU.Realization.UUID)
	}
	sort.Ints(ids)
	return ids, uuids, nil
}

// aggregationID derives the aggregation identity from the set of source
// realization uuids. Sorting first makes the id independent of source
// order.
func (a *Aggregator) aggregationID(uuids []string) string {
	if a.AggregationID != "" {
		return a.AggregationID
	}
	sorted := make([]string, len(uuids))
	copy(sorted, uuids)
	sort.Strings(sorted)
	return meta.UUIDFromString(strings.Join(sorted, ""))
}

// iterationBlock recovers the iteration identity from the template's
// storage path; realization documents do not carry it directly.
func (a *Aggregator) iterationBlock(template *meta.ObjectMetadata) *meta.Iteration {
	name := "iter-0"
	parts := strings.Split(filepath.ToSlash(template.File.RelativePath), "/")
	if len(parts) > 1 && realizationPrefixPattern.MatchString(parts[0]+"/") {
		name = parts[1]
	}
	return &meta.Iteration{
		Name: name,
		UUID: IterationUUID(template.FMU.Case.UUID, name),
	}
}

// relocate rewrites the file block: the realization segment is dropped
// from the path, the operation is appended to the file name, then the
// tagname when one is set.
func (a *Aggregator) relocate(template *meta.ObjectMetadata) error {
	rel := filepath.ToSlash(template.File.RelativePath)
	stripped := realizationPrefixPattern.ReplaceAllString(rel, "")

	dir, base := filepath.Split(stripped)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	if a.Name != "" {
		stem = slugify(a.Name)
	}
	newRel := dir + stem + "--" + slugify(a.Operation)
	if a.Tagname != "" {
		newRel += "--" + slugify(a.Tagname)
	}
	newRel += ext

	rootpath := a.CasePath
	if rootpath == "" {
		// Recover the case root from the template's absolute path.
		abs := filepath.ToSlash(template.File.AbsolutePath)
		if abs != "" && strings.HasSuffix(abs, rel) {
			rootpath = filepath.FromSlash(strings.TrimSuffix(abs, rel))
		}
	}
	if rootpath == "" {
		return meta.Validation(
			"cannot locate the case root: set casepath or provide sources with absolute paths")
	}

	template.File = meta.File{
		RelativePath: newRel,
		AbsolutePath: filepath.Join(rootpath, filepath.FromSlash(newRel)),
	}
	return nil
}

// copyDocument deep-copies a metadata document so the template sources
// stay untouched.
func copyDocument(doc *meta.ObjectMetadata) (*meta.ObjectMetadata, error) {
	raw, err := yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("copying source metadata: %w", err)
	}
	var clone meta.ObjectMetadata
	if err := yaml.Unmarshal(raw, &clone); err != nil {
		return nil, fmt.Errorf("copying source metadata: %w", err)
	}
	return &clone, nil
}
