package settings

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/evenbre/fmio/internal/logger"
	"github.com/evenbre/fmio/pkg/meta"
)

func testGlobalConfig() *GlobalConfig {
	ref := meta.Reference{Identifier: "ST_WGS84_UTM37N_P32637", UUID: "ad214d85-8a1d-19da-e053-c918a4889309"}
	return &GlobalConfig{
		Masterdata: meta.Masterdata{
			Smda: meta.Smda{
				CoordinateSystem: ref,
				Country: []meta.Reference{
					{Identifier: "Norway", UUID: "ad214d85-8a1d-19da-e053-c918a4889309"},
				},
				Discovery: []meta.DiscoveryItem{
					{ShortIdentifier: "DROGON", UUID: "ad214d85-8a1d-19da-e053-c918a4889309"},
				},
				Field: []meta.Reference{
					{Identifier: "DROGON", UUID: "ad214d85-8a1d-19da-e053-c918a4889309"},
				},
				StratigraphicColumn: meta.Reference{Identifier: "DROGON_2020", UUID: "ad214d85-8a1d-19da-e053-c918a4889309"},
			},
		},
		Access: AccessConfig{
			Asset:          meta.Asset{Name: "Drogon"},
			Classification: meta.ClassificationInternal,
			Ssdl: meta.Ssdl{
				AccessLevel: meta.ClassificationInternal,
				RepInclude:  true,
			},
		},
		Model: meta.Model{Name: "ff", Revision: "21.0.0.dev"},
	}
}

func TestDefaults(t *testing.T) {
	s := Defaults()

	if s.DepthReference != "msl" {
		t.Errorf("Expected depth reference msl, got %s", s.DepthReference)
	}
	if s.Realization != -999 {
		t.Errorf("Expected realization -999, got %d", s.Realization)
	}
	if s.SurfaceFormat != "irap_binary" {
		t.Errorf("Expected surface format irap_binary, got %s", s.SurfaceFormat)
	}
	if s.CaseFolder != "share/metadata" {
		t.Errorf("Expected case folder share/metadata, got %s", s.CaseFolder)
	}
	if !s.CreateFolder || !s.VerifyFolder {
		t.Error("Expected folder creation and verification enabled by default")
	}
	if s.VerticalDomain["depth"] != "msl" {
		t.Errorf("Expected vertical domain depth->msl, got %v", s.VerticalDomain)
	}
}

func TestNewWithOverrides(t *testing.T) {
	s, err := New(testGlobalConfig(), map[string]any{
		"name":    "TopVolantis",
		"content": "depth",
		"tagname": "ds_extract",
		"unit":    "m",
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if s.Name != "TopVolantis" {
		t.Errorf("Expected name TopVolantis, got %s", s.Name)
	}
	if s.Tagname != "ds_extract" {
		t.Errorf("Expected tagname ds_extract, got %s", s.Tagname)
	}

	useContent, fields := s.UseContent()
	if useContent != "depth" {
		t.Errorf("Expected content depth, got %s", useContent)
	}
	if fields != nil {
		t.Errorf("Expected no content fields, got %v", fields)
	}

	// Defaults survive under overrides
	if s.TableFormat != "csv" {
		t.Errorf("Expected table format csv, got %s", s.TableFormat)
	}
}

func TestNewRejectsUnknownKey(t *testing.T) {
	_, err := New(testGlobalConfig(), map[string]any{
		"name":        "TopVolantis",
		"not_a_thing": true,
	})
	if err == nil {
		t.Fatal("Expected error for unknown settings key")
	}
	if !strings.Contains(err.Error(), "not_a_thing") {
		t.Errorf("Expected error to name the bad key, got: %v", err)
	}
}

func TestNewRejectsConfigKey(t *testing.T) {
	_, err := New(testGlobalConfig(), map[string]any{
		"config": map[string]any{},
	})
	if err == nil {
		t.Fatal("Expected error for config override")
	}
	if !strings.Contains(err.Error(), "fixed at construction") {
		t.Errorf("Unexpected error message: %v", err)
	}
}

func TestDescriptionAcceptsSingleString(t *testing.T) {
	s, err := New(testGlobalConfig(), map[string]any{
		"description": "Depth surface from seismic interpretation",
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(s.Description) != 1 || s.Description[0] != "Depth surface from seismic interpretation" {
		t.Errorf("Expected one description entry, got %v", s.Description)
	}
}

func TestDescriptionAcceptsList(t *testing.T) {
	s, err := New(testGlobalConfig(), map[string]any{
		"description": []string{"line one", "line two"},
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(s.Description) != 2 {
		t.Errorf("Expected two description entries, got %v", s.Description)
	}
}

func TestInvalidFMUContext(t *testing.T) {
	_, err := New(testGlobalConfig(), map[string]any{
		"fmu_context": "prediction",
	})
	if err == nil {
		t.Fatal("Expected error for invalid fmu_context")
	}
	if !strings.Contains(err.Error(), "prediction") {
		t.Errorf("Expected error to name the bad value, got: %v", err)
	}
}

func TestContentValidationFailure(t *testing.T) {
	_, err := New(testGlobalConfig(), map[string]any{
		"content": "fluid_contact",
	})
	if err == nil {
		t.Fatal("Expected error for content requiring extra input")
	}
}

func TestContentWithFields(t *testing.T) {
	s, err := New(testGlobalConfig(), map[string]any{
		"content": map[string]any{
			"fluid_contact": map[string]any{"contact": "owc"},
		},
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	useContent, fields := s.UseContent()
	if useContent != "fluid_contact" {
		t.Errorf("Expected fluid_contact, got %s", useContent)
	}
	if fields["contact"] != "owc" {
		t.Errorf("Expected contact owc, got %v", fields)
	}
}

func TestTimedataShape(t *testing.T) {
	_, err := New(testGlobalConfig(), map[string]any{
		"timedata": [][]any{
			{"2020-01-01", "monitor"},
			{"2019-01-01", "base"},
			{"2018-01-01"},
		},
	})
	if err == nil {
		t.Fatal("Expected error for three timedata entries")
	}
	if !strings.Contains(err.Error(), "at most two") {
		t.Errorf("Unexpected error message: %v", err)
	}
}

func TestUpdateMergesOverrides(t *testing.T) {
	s, err := New(testGlobalConfig(), map[string]any{
		"name":    "TopVolantis",
		"content": "depth",
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if err := s.Update(map[string]any{"tagname": "ds_extract"}); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if s.Name != "TopVolantis" {
		t.Errorf("Expected name preserved across update, got %s", s.Name)
	}
	if s.Tagname != "ds_extract" {
		t.Errorf("Expected tagname ds_extract, got %s", s.Tagname)
	}
}

func TestCloneIsolatesMapOverrides(t *testing.T) {
	s, err := New(testGlobalConfig(), map[string]any{"content": "depth"})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	clone := s.Clone()
	err = clone.Update(map[string]any{
		"vertical_domain": map[string]string{"time": "sb"},
		"access_ssdl":     map[string]any{"access_level": "restricted"},
		"timedata":        [][]any{{"2020-01-01"}},
		"table_index":     []string{"DATE"},
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if _, ok := s.VerticalDomain["time"]; ok {
		t.Error("Expected vertical_domain override confined to the clone")
	}
	if len(s.VerticalDomain) != 1 || s.VerticalDomain["depth"] != "msl" {
		t.Errorf("Expected original vertical_domain untouched, got %v", s.VerticalDomain)
	}
	if len(s.AccessSsdl) != 0 {
		t.Errorf("Expected original access_ssdl untouched, got %v", s.AccessSsdl)
	}
	if len(s.Timedata) != 0 {
		t.Errorf("Expected original timedata untouched, got %v", s.Timedata)
	}
	if len(s.TableIndex) != 0 {
		t.Errorf("Expected original table_index untouched, got %v", s.TableIndex)
	}
	if len(clone.VerticalDomain) != 1 || clone.VerticalDomain["time"] != "sb" {
		t.Errorf("Expected override to replace the clone's vertical_domain, got %v", clone.VerticalDomain)
	}
}

func TestUpdateRejectsUnknownKey(t *testing.T) {
	s, err := New(testGlobalConfig(), nil)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if err := s.Update(map[string]any{"casepth": "/tmp"}); err == nil {
		t.Fatal("Expected error for misspelled key")
	}
}

func TestDeprecatedKeysWarn(t *testing.T) {
	var buf bytes.Buffer
	logger.SetOutput(&buf)
	defer logger.SetOutput(os.Stderr)

	_, err := New(testGlobalConfig(), map[string]any{
		"grid_model":          "geogrid",
		"runpath":             "/scratch/case",
		"table_include_index": true,
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	out := buf.String()
	for _, key := range []string{"grid_model", "runpath", "table_include_index"} {
		if !strings.Contains(out, key) {
			t.Errorf("Expected a deprecation warning for %s, got: %s", key, out)
		}
	}
}

func TestFormatFor(t *testing.T) {
	s, err := New(testGlobalConfig(), nil)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	format, err := s.FormatFor(meta.ClassSurface)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if format != "irap_binary" {
		t.Errorf("Expected irap_binary, got %s", format)
	}

	if _, err := s.FormatFor(meta.ClassWell); err == nil {
		t.Error("Expected error for class without configured format")
	}
}

func TestSettingsFromEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "overrides.yml")
	content := "tagname: from_env\nunit: m\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv(SettingsFileEnv, path)

	s, err := New(testGlobalConfig(), map[string]any{"unit": "ms"})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if s.Tagname != "from_env" {
		t.Errorf("Expected tagname from env file, got %s", s.Tagname)
	}
	// Construction-time overrides win over the env file
	if s.Unit != "ms" {
		t.Errorf("Expected unit ms, got %s", s.Unit)
	}
}

func TestGlobalConfigValidate(t *testing.T) {
	cfg := testGlobalConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Expected valid config, got %v", err)
	}
	if !cfg.Valid() {
		t.Error("Expected Valid() true")
	}

	cfg.Access.Asset.Name = ""
	err := cfg.Validate()
	if err == nil {
		t.Fatal("Expected error for missing asset name")
	}
	if _, ok := err.(*meta.ConfigurationError); !ok {
		t.Errorf("Expected ConfigurationError, got %T", err)
	}
}

func TestGlobalConfigNilValidate(t *testing.T) {
	var cfg *GlobalConfig
	if cfg.Valid() {
		t.Error("Expected nil config to be invalid")
	}
}

func TestWithSSDL(t *testing.T) {
	cfg := testGlobalConfig()
	override := cfg.WithSSDL(map[string]any{
		"access_level": "restricted",
		"rep_include":  false,
	})

	if override.Access.Ssdl.AccessLevel != meta.ClassificationRestricted {
		t.Errorf("Expected restricted, got %s", override.Access.Ssdl.AccessLevel)
	}
	if override.Access.Ssdl.RepInclude {
		t.Error("Expected rep_include false")
	}
	// Receiver untouched
	if cfg.Access.Ssdl.AccessLevel != meta.ClassificationInternal {
		t.Error("Expected original config unchanged")
	}
}

func TestResolveRunContextCasepath(t *testing.T) {
	s, err := New(testGlobalConfig(), map[string]any{"casepath": "/scratch/fields/user/case"})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	rc := ResolveRunContext(s)
	if rc.Rootpath != "/scratch/fields/user/case" {
		t.Errorf("Expected explicit casepath as root, got %s", rc.Rootpath)
	}
	if rc.Context != ContextRealization {
		t.Errorf("Expected realization context, got %s", rc.Context)
	}
}

func TestResolveRunContextInteractive(t *testing.T) {
	project := t.TempDir()
	model := filepath.Join(project, "rms", "model")
	if err := os.MkdirAll(model, 0o755); err != nil {
		t.Fatal(err)
	}
	t.Chdir(model)

	s, err := New(testGlobalConfig(), nil)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	rc := ResolveRunContext(s)
	resolved, _ := filepath.EvalSymlinks(rc.Rootpath)
	expected, _ := filepath.EvalSymlinks(project)
	if resolved != expected {
		t.Errorf("Expected project root %s, got %s", expected, resolved)
	}
}

func TestResolveRunContextPlainDirectory(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	s, err := New(testGlobalConfig(), nil)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	rc := ResolveRunContext(s)
	resolved, _ := filepath.EvalSymlinks(rc.Rootpath)
	expected, _ := filepath.EvalSymlinks(dir)
	if resolved != expected {
		t.Errorf("Expected pwd as root, got %s", rc.Rootpath)
	}
}

func TestResolveRunContextCustomDetector(t *testing.T) {
	s, err := New(testGlobalConfig(), nil)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	s.DetectInteractive = func(string) bool { return true }

	rc := ResolveRunContext(s)
	if rc.Rootpath != filepath.Dir(filepath.Dir(rc.Pwd)) {
		t.Errorf("Expected root two levels above pwd, got %s", rc.Rootpath)
	}
}
