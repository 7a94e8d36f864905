package export

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/evenbre/fmio/internal/logger"
	"github.com/evenbre/fmio/pkg/meta"
	"github.com/evenbre/fmio/pkg/settings"
)

// classFolders maps each object class to its folder below share/results.
var classFolders = map[meta.Class]string{
	meta.ClassSurface:        "maps",
	meta.ClassPolygons:       "polygons",
	meta.ClassPoints:         "points",
	meta.ClassCube:           "cubes",
	meta.ClassCPGrid:         "grids",
	meta.ClassCPGridProperty: "grids",
	meta.ClassTable:          "tables",
	meta.ClassDictionary:     "dicts",
}

// timedataLayouts are the accepted date formats in the timedata setting.
var timedataLayouts = []string{"2006-01-02", "20060102", "2006-01-02T15:04:05"}

// fileSuffixLayout is the date format used inside file names.
const fileSuffixLayout = "20060102"

// fileLocation is the derived placement of one exported file.
type fileLocation struct {
	// relativePath is relative to the case root, slash-separated
	relativePath string
	absolutePath string

	// symlink placement, only set for case_symlink_realization exports
	relativePathSymlink string
	absolutePathSymlink string
}

// timeInfo is the parsed timedata: the metadata time block plus the raw
// instants for file name composition, sorted oldest first.
type timeInfo struct {
	block    *meta.Time
	instants []time.Time
}

// shareRoot returns the top-level share folder for the given context.
func shareRoot(ctx settings.Context, isObservation bool) string {
	switch {
	case ctx == settings.ContextPreprocessed:
		return "share/preprocessed"
	case isObservation:
		return "share/observations"
	default:
		return "share/results"
	}
}

// storageFolder resolves the folder below the share root: the class-derived
// folder, unless forcefolder overrides it.
//
// Absolute forcefolder paths escape the case layout and are rejected unless
// explicitly allowed; allowing them breaks indexability of the export.
func storageFolder(s *settings.Settings, class meta.Class) (string, bool, error) {
	if s.ForceFolder == "" {
		folder, ok := classFolders[class]
		if !ok {
			return "", false, meta.Validation(fmt.Sprintf(
				"no storage folder defined for class %q", class))
		}
		return folder, false, nil
	}

	if filepath.IsAbs(s.ForceFolder) {
		if !s.AllowForceFolderAbsolute {
			return "", false, meta.Validation(fmt.Sprintf(
				"forcefolder %q is an absolute path; this is discouraged and "+
					"must be enabled explicitly with allow_forcefolder_absolute",
				s.ForceFolder))
		}
		logger.Warn("Using absolute forcefolder %s; the export will not be indexable", s.ForceFolder)
		return filepath.ToSlash(s.ForceFolder), true, nil
	}

	folder := strings.Trim(filepath.ToSlash(s.ForceFolder), "/")
	logger.Info("The standard folder is replaced by forcefolder %s", folder)
	return folder, false, nil
}

// parseTimedata turns the timedata setting into the metadata time block.
// With two entries t0 is the oldest and t1 the newest, regardless of the
// order given.
func parseTimedata(timedata [][]any) (*timeInfo, error) {
	if len(timedata) == 0 {
		return nil, nil
	}

	type stamped struct {
		at    time.Time
		label string
	}
	entries := make([]stamped, 0, len(timedata))
	for _, raw := range timedata {
		value, ok := raw[0].(string)
		if !ok {
			value = fmt.Sprint(raw[0])
		}
		at, err := parseDate(value)
		if err != nil {
			return nil, err
		}
		entry := stamped{at: at}
		if len(raw) > 1 {
			entry.label = fmt.Sprint(raw[1])
		}
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].at.Before(entries[j].at) })

	info := &timeInfo{block: &meta.Time{}}
	info.block.T0 = &meta.TimePoint{
		Value: entries[0].at.Format("2006-01-02T15:04:05"),
		Label: entries[0].label,
	}
	info.instants = append(info.instants, entries[0].at)
	if len(entries) > 1 {
		info.block.T1 = &meta.TimePoint{
			Value: entries[1].at.Format("2006-01-02T15:04:05"),
			Label: entries[1].label,
		}
		info.instants = append(info.instants, entries[1].at)
	}
	return info, nil
}

func parseDate(value string) (time.Time, error) {
	for _, layout := range timedataLayouts {
		if at, err := time.Parse(layout, value); err == nil {
			return at, nil
		}
	}
	return time.Time{}, meta.Validation(fmt.Sprintf(
		"cannot parse timedata date %q", value))
}

// slugify normalizes a name for use in a file name.
func slugify(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = strings.ReplaceAll(slug, " ", "_")
	slug = strings.ReplaceAll(slug, "/", "_")
	return slug
}

// exportFileName composes the file name: slugified name, then an optional
// --tagname, then an optional date suffix, then the extension.
//
// With two dates the suffix is --<t1>_<t0>, newest first, which makes
// seismic difference data read naturally (monitor minus base). The
// filename_timedata_reverse setting restores oldest-first ordering.
func exportFileName(s *settings.Settings, name, ext string, times *timeInfo) (string, error) {
	stem := slugify(name)
	if stem == "" {
		return "", meta.Validation("cannot derive a file name without a name")
	}
	if s.Tagname != "" {
		stem += "--" + slugify(s.Tagname)
	}
	if times != nil && len(times.instants) > 0 {
		dates := make([]string, len(times.instants))
		for i, at := range times.instants {
			dates[i] = at.Format(fileSuffixLayout)
		}
		// instants are sorted oldest first
		if len(dates) == 1 {
			stem += "--" + dates[0]
		} else if s.FilenameTimedataReverse {
			stem += "--" + dates[0] + "_" + dates[1]
		} else {
			stem += "--" + dates[1] + "_" + dates[0]
		}
	}
	return stem + ext, nil
}

// deriveFileLocation computes where the exported file goes, relative to
// the case root.
//
// Realization exports land below realization-N/<iteration>; case-level
// exports land directly below the case root. The case_symlink_realization
// context stores at case level and plans a symlink below the realization.
func deriveFileLocation(
	s *settings.Settings,
	rc settings.RunContext,
	class meta.Class,
	name string,
	ext string,
	times *timeInfo,
) (fileLocation, error) {
	folder, absolute, err := storageFolder(s, class)
	if err != nil {
		return fileLocation{}, err
	}
	fileName, err := exportFileName(s, name, ext, times)
	if err != nil {
		return fileLocation{}, err
	}

	parts := []string{shareRoot(rc.Context, s.IsObservation), folder}
	if absolute {
		parts = []string{folder}
	}
	if s.Subfolder != "" {
		parts = append(parts, slugify(s.Subfolder))
	}
	parts = append(parts, fileName)
	inShare := strings.Join(parts, "/")

	if absolute {
		return fileLocation{
			relativePath: inShare,
			absolutePath: inShare,
		}, nil
	}

	loc := fileLocation{}
	pos := parseEnsemblePosition(rc.Rootpath, rc.Pwd)
	if s.Realization != settings.DefaultRealization {
		pos = ensemblePosition{
			realizationID: s.Realization,
			iterationName: pos.iterationName,
			found:         true,
		}
		if pos.iterationName == "" {
			pos.iterationName = "iter-0"
		}
	}

	switch rc.Context {
	case settings.ContextRealization:
		if !pos.found {
			return fileLocation{}, meta.Validation(fmt.Sprintf(
				"cannot place a realization export: %s is not below a "+
					"realization folder of %s", rc.Pwd, rc.Rootpath))
		}
		loc.relativePath = fmt.Sprintf("realization-%d/%s/%s",
			pos.realizationID, pos.iterationName, inShare)
	case settings.ContextCaseSymlinkRealization:
		loc.relativePath = inShare
		if pos.found {
			loc.relativePathSymlink = fmt.Sprintf("realization-%d/%s/%s",
				pos.realizationID, pos.iterationName, inShare)
			loc.absolutePathSymlink = filepath.Join(rc.Rootpath,
				filepath.FromSlash(loc.relativePathSymlink))
		}
	default:
		loc.relativePath = inShare
	}

	loc.absolutePath = filepath.Join(rc.Rootpath, filepath.FromSlash(loc.relativePath))
	return loc, nil
}
