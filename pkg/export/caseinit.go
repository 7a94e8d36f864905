package export

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/evenbre/fmio/internal/logger"
	"github.com/evenbre/fmio/pkg/meta"
	"github.com/evenbre/fmio/pkg/settings"
)

// CaseInitializer registers a case: it writes the case metadata document
// at the case root, giving every later export in the case a shared
// identity to attach to.
type CaseInitializer struct {
	// Config is the global configuration; it must be valid, case
	// registration never degrades to data-only.
	Config *settings.GlobalConfig

	// CaseFolder overrides the metadata folder below the case root.
	// Empty means share/metadata.
	CaseFolder string
}

// InitializeCase creates the case metadata document for a case rooted at
// rootpath.
//
// Registration is idempotent: if the case is already registered nothing
// is written and the call returns an empty result with a warning. The
// existing registration is never overwritten; a re-run of the
// orchestrator must not give the case a new identity.
//
// Parameters:
//   - rootpath: Case root directory
//   - caseName: Name of the case (e.g. the scratch folder name)
//   - caseUser: User registering the case
//   - description: Optional free-text description
//
// Returns:
//   - *meta.CaseMetadata: The registered document; nil when the case was
//     already registered
//   - string: Absolute path of the case metadata file; empty when nothing
//     was written
//   - error: Invalid configuration, validation failure, or write error
func (c *CaseInitializer) InitializeCase(rootpath, caseName, caseUser string, description []string) (*meta.CaseMetadata, string, error) {
	if c.Config == nil {
		return nil, "", &meta.ConfigurationError{Message: "case registration requires a global configuration"}
	}
	if err := c.Config.Validate(); err != nil {
		return nil, "", err
	}

	path := CaseMetadataPath(rootpath, c.CaseFolder)
	if _, err := os.Stat(path); err == nil {
		logger.Warn("The case is already registered at %s; keeping the existing metadata", path)
		return nil, "", nil
	}

	doc := &meta.CaseMetadata{
		Class:      meta.ClassCase,
		Masterdata: c.Config.Masterdata,
		Tracklog:   []meta.TracklogEvent{meta.NewTracklogEvent("created")},
		Source:     meta.Source,
		Version:    meta.SchemaVersion,
		FMU: meta.FMUCase{
			Case: meta.Case{
				Name:        caseName,
				User:        meta.User{ID: caseUser},
				UUID:        meta.NewUUID(),
				Description: description,
			},
			Model: c.Config.Model,
		},
		Access: meta.Access{
			Asset:          c.Config.Access.Asset,
			Classification: c.Config.Access.Classification,
		},
		Description: description,
	}
	if err := meta.Validate(doc); err != nil {
		return nil, "", err
	}

	raw, err := meta.Marshal(doc, meta.FormatYAML)
	if err != nil {
		return nil, "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, "", fmt.Errorf("creating case metadata folder: %w", err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return nil, "", fmt.Errorf("writing case metadata %s: %w", path, err)
	}

	logger.Info("Case %s registered at %s", caseName, path)
	return doc, path, nil
}
