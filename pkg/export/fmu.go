package export

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/evenbre/fmio/internal/logger"
	"github.com/evenbre/fmio/internal/sysinfo"
	"github.com/evenbre/fmio/pkg/meta"
	"github.com/evenbre/fmio/pkg/settings"
)

// CaseMetadataFile is the name of the case metadata document below the
// case metadata folder.
const CaseMetadataFile = "fmu_case.yml"

// realizationDirPattern matches ensemble realization folders, e.g.
// realization-0, realization-13.
var realizationDirPattern = regexp.MustCompile(`^realization-(\d+)$`)

// CaseMetadataPath returns the location of the case metadata document for
// a case rooted at rootpath.
func CaseMetadataPath(rootpath, caseFolder string) string {
	if caseFolder == "" {
		caseFolder = settings.DefaultCaseFolder
	}
	return filepath.Join(rootpath, filepath.FromSlash(caseFolder), CaseMetadataFile)
}

// ReadCaseMetadata reads and validates the case metadata document at path.
func ReadCaseMetadata(path string) (*meta.CaseMetadata, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading case metadata %s: %w", path, err)
	}
	doc, err := meta.Decode(raw)
	if err != nil {
		return nil, err
	}
	caseMeta, ok := doc.(*meta.CaseMetadata)
	if !ok {
		return nil, meta.Validation(fmt.Sprintf(
			"%s does not hold case metadata", path))
	}
	return caseMeta, nil
}

// ensemblePosition is the realization and iteration a working directory
// sits in, relative to the case root.
type ensemblePosition struct {
	realizationID int
	iterationName string
	found         bool
}

// parseEnsemblePosition locates pwd inside the case directory layout
// <root>/realization-N/<iteration>/... . Outside that layout found is
// false and the export runs at case level.
func parseEnsemblePosition(rootpath, pwd string) ensemblePosition {
	rel, err := filepath.Rel(rootpath, pwd)
	if err != nil || strings.HasPrefix(rel, "..") {
		return ensemblePosition{}
	}

	parts := strings.Split(filepath.ToSlash(rel), "/")
	for i, part := range parts {
		m := realizationDirPattern.FindStringSubmatch(part)
		if m == nil {
			continue
		}
		id, _ := strconv.Atoi(m[1])
		pos := ensemblePosition{realizationID: id, found: true}
		if i+1 < len(parts) {
			pos.iterationName = parts[i+1]
		} else {
			pos.iterationName = "iter-0"
		}
		return pos
	}
	return ensemblePosition{}
}

// fallbackCase derives a case block when no case metadata document exists:
// the case directory name, a uuid derived from the root path, and the
// current user. Such exports cannot be indexed against a registered case.
func fallbackCase(rootpath string) meta.Case {
	logger.Warn("No case metadata found under %s; using derived case identity", rootpath)
	return meta.Case{
		Name: filepath.Base(rootpath),
		UUID: meta.UUIDFromString(rootpath),
		User: meta.User{ID: sysinfo.CurrentUser()},
	}
}

// buildFMU assembles the fmu block for one object export.
//
// For realization contexts the iteration and realization identities derive
// from the working directory's position below the case root, unless the
// realization setting pins the id explicitly. The realization uuid is a
// deterministic hash of case uuid, iteration uuid and realization id, so
// any producer derives the same identity for the same run.
func buildFMU(s *settings.Settings, rc settings.RunContext) (*meta.FMU, error) {
	caseMeta, err := ReadCaseMetadata(CaseMetadataPath(rc.Rootpath, s.CaseFolder))

	fmu := &meta.FMU{}
	if err == nil {
		fmu.Case = caseMeta.FMU.Case
	} else {
		fmu.Case = fallbackCase(rc.Rootpath)
	}

	if s.Config != nil {
		fmu.Model = s.Config.Model
	}
	if s.Workflow != "" {
		fmu.Workflow = &meta.Workflow{Reference: s.Workflow}
	}

	switch rc.Context {
	case settings.ContextCase, settings.ContextCaseSymlinkRealization, settings.ContextPreprocessed:
		// Case-level data still identifies the iteration it belongs to;
		// outside any ensemble layout the first iteration is assumed.
		fmu.Context = meta.Context{Stage: meta.StageCase}
		iterName := parseEnsemblePosition(rc.Rootpath, rc.Pwd).iterationName
		if iterName == "" {
			iterName = "iter-0"
		}
		fmu.Iteration = &meta.Iteration{
			Name: iterName,
			UUID: IterationUUID(fmu.Case.UUID, iterName),
		}
		return fmu, nil
	}

	fmu.Context = meta.Context{Stage: meta.StageRealization}

	pos := parseEnsemblePosition(rc.Rootpath, rc.Pwd)
	if s.Realization != settings.DefaultRealization {
		pos.realizationID = s.Realization
		pos.found = true
		if pos.iterationName == "" {
			pos.iterationName = "iter-0"
		}
	}
	if !pos.found {
		return nil, meta.Validation(fmt.Sprintf(
			"cannot determine realization and iteration from %s; "+
				"run from inside a realization folder, set the realization "+
				"setting, or use a case context", rc.Pwd))
	}

	iterUUID := IterationUUID(fmu.Case.UUID, pos.iterationName)
	fmu.Realization = &meta.Realization{
		ID:   pos.realizationID,
		Name: fmt.Sprintf("realization-%d", pos.realizationID),
		UUID: meta.UUIDFromString(fmu.Case.UUID + iterUUID + strconv.Itoa(pos.realizationID)),
	}
	return fmu, nil
}

// IterationUUID derives the deterministic identity of an iteration within
// a case.
func IterationUUID(caseUUID, iterationName string) string {
	return meta.UUIDFromString(caseUUID + iterationName)
}
