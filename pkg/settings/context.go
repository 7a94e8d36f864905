package settings

import (
	"os"
	"path/filepath"
)

// Context describes where in an ensemble run an export happens. It decides
// both the storage location prefix and which fmu blocks the metadata gets.
type Context string

const (
	// ContextRealization stores under the realization's share/results
	ContextRealization Context = "realization"

	// ContextCase stores under the case root's share/results
	ContextCase Context = "case"

	// ContextCaseSymlinkRealization stores under the case root and
	// symlinks the file back into every realization
	ContextCaseSymlinkRealization Context = "case_symlink_realization"

	// ContextPreprocessed stores under share/preprocessed, outside any
	// case, for later re-export with full case context
	ContextPreprocessed Context = "preprocessed"
)

// validContexts is the closed set accepted for the fmu_context setting.
var validContexts = map[Context]bool{
	ContextRealization:            true,
	ContextCase:                   true,
	ContextCaseSymlinkRealization: true,
	ContextPreprocessed:           true,
}

func (c Context) String() string { return string(c) }

// RunContext is the resolved location of the running export: the current
// working directory, the case root everything is stored relative to, and
// the effective context stage.
type RunContext struct {
	// Pwd is the working directory at resolution time
	Pwd string

	// Rootpath is the case root; storage paths are relative to it
	Rootpath string

	// Context is the effective run context
	Context Context
}

// ResolveRunContext determines pwd and case root for the current export.
//
// Resolution order:
//  1. An explicit casepath setting is taken verbatim.
//  2. An interactive modelling session (detected via DetectInteractive,
//     by default a working directory ending in rms/model) puts the root
//     two levels up, at the project root.
//  3. Otherwise the working directory itself is the root.
//
// The result is computed fresh on every call; the working directory may
// change between exports of one exporter.
func ResolveRunContext(s *Settings) RunContext {
	pwd, err := os.Getwd()
	if err != nil {
		pwd = "."
	}
	pwd, _ = filepath.Abs(pwd)

	rc := RunContext{Pwd: pwd, Context: Context(s.FMUContext)}
	if rc.Context == "" {
		rc.Context = ContextRealization
	}

	switch {
	case s.Casepath != "":
		rc.Rootpath = filepath.Clean(s.Casepath)
	case s.detectInteractive()(pwd):
		rc.Rootpath = filepath.Dir(filepath.Dir(pwd))
	default:
		rc.Rootpath = pwd
	}
	return rc
}

// defaultDetectInteractive reports whether pwd looks like an interactive
// modelling session, i.e. ends in rms/model.
func defaultDetectInteractive(pwd string) bool {
	parent := filepath.Dir(pwd)
	return filepath.Base(pwd) == "model" && filepath.Base(parent) == "rms"
}

func (s *Settings) detectInteractive() func(string) bool {
	if s.DetectInteractive != nil {
		return s.DetectInteractive
	}
	return defaultDetectInteractive
}
