// Package settings resolves the layered export settings: documented
// defaults, construction-time settings, an optional environment-designated
// settings file, and per-call overrides, in that order of precedence
// (lowest to highest).
package settings

import (
	"fmt"
	"os"
	"reflect"
	"sort"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	"github.com/evenbre/fmio/internal/logger"
	"github.com/evenbre/fmio/pkg/content"
	"github.com/evenbre/fmio/pkg/meta"
)

// SettingsFileEnv names the environment variable pointing to a YAML file
// of settings overrides. When set, the file is layered between the
// construction-time settings and per-call overrides.
const SettingsFileEnv = "FMU_DATAIO_CONFIG"

// Settings is the complete, closed set of export settings.
//
// Settings are resolved at construction and may be partially updated per
// export call. Every settings key maps to exactly one field here; an
// override bag containing any other key is rejected as a whole.
type Settings struct {
	// AccessSsdl overrides the global config's access.ssdl block
	// Valid keys: access_level, rep_include
	AccessSsdl map[string]any `mapstructure:"access_ssdl"`

	// Casepath explicitly sets the case root, bypassing detection
	Casepath string `mapstructure:"casepath"`

	// Content declares what the data represents. Either a plain content
	// name, or a single-key mapping from name to extra fields for content
	// kinds that require them (e.g. fluid_contact, field_outline).
	Content any `mapstructure:"content"`

	// DepthReference is the vertical reference for depth domains
	// Valid values: msl, sb, rkb
	DepthReference string `mapstructure:"depth_reference"`

	// Description is free-text metadata; a single string is accepted and
	// normalized to a one-element list
	Description []string `mapstructure:"description"`

	// DisplayName overrides the name used by visualization clients
	DisplayName string `mapstructure:"display_name"`

	// FMUContext is the run context stage
	// Valid values: realization, case, case_symlink_realization, preprocessed
	FMUContext string `mapstructure:"fmu_context"`

	// ForceFolder replaces the class-derived storage folder
	ForceFolder string `mapstructure:"forcefolder"`

	// AllowForceFolderAbsolute opts in to absolute forcefolder paths
	AllowForceFolderAbsolute bool `mapstructure:"allow_forcefolder_absolute"`

	// GridModel is deprecated; use the geometry relation instead
	GridModel string `mapstructure:"grid_model"`

	// IsObservation marks the data as an observation; stored under
	// share/observations instead of share/results
	IsObservation bool `mapstructure:"is_observation"`

	// IsPrediction marks the data as a prediction
	IsPrediction bool `mapstructure:"is_prediction"`

	// Name is the name of the exported object; resolved against the
	// stratigraphy table. Empty means use the name on the object.
	Name string `mapstructure:"name"`

	// Parent names the parent grid for grid properties
	Parent string `mapstructure:"parent"`

	// Realization forces a realization id; the default -999 means detect
	// from the run context
	Realization int `mapstructure:"realization"`

	// ReuseMetadataRule is deprecated and ignored
	ReuseMetadataRule string `mapstructure:"reuse_metadata_rule"`

	// Runpath is deprecated; use casepath
	Runpath string `mapstructure:"runpath"`

	// Subfolder appends one folder level below the storage folder
	Subfolder string `mapstructure:"subfolder"`

	// Tagname is an extra discriminator appended to the file name
	Tagname string `mapstructure:"tagname"`

	// Timedata holds up to two [date, label] entries, date formatted
	// YYYY-MM-DD or YYYYMMDD
	Timedata [][]any `mapstructure:"timedata"`

	// Unit is the measurement unit of the values
	Unit string `mapstructure:"unit"`

	// VerticalDomain maps domain (depth or time) to its reference
	VerticalDomain map[string]string `mapstructure:"vertical_domain"`

	// Workflow names the producing workflow step
	Workflow string `mapstructure:"workflow"`

	// TableIndex names the index columns of a table export
	TableIndex []string `mapstructure:"table_index"`

	// TableIncludeIndex is deprecated and ignored; index columns are
	// always written
	TableIncludeIndex bool `mapstructure:"table_include_index"`

	// UndefIsZero marks that undefined values are represented as zero
	UndefIsZero bool `mapstructure:"undef_is_zero"`

	// Output formats per object kind
	SurfaceFormat  string `mapstructure:"surface_fformat"`
	TableFormat    string `mapstructure:"table_fformat"`
	PolygonsFormat string `mapstructure:"polygons_fformat"`
	PointsFormat   string `mapstructure:"points_fformat"`
	CubeFormat     string `mapstructure:"cube_fformat"`
	GridFormat     string `mapstructure:"grid_fformat"`
	DictFormat     string `mapstructure:"dict_fformat"`
	ArrowFormat    string `mapstructure:"arrow_fformat"`

	// MetaFormat is the sidecar serialization format
	// Valid values: yaml, json
	MetaFormat string `mapstructure:"meta_format"`

	// CaseFolder is where case metadata lives below the case root
	CaseFolder string `mapstructure:"case_folder"`

	// CreateFolder creates missing target folders on export
	CreateFolder bool `mapstructure:"createfolder"`

	// VerifyFolder requires the target folder to exist after creation
	VerifyFolder bool `mapstructure:"verifyfolder"`

	// FilenameTimedataReverse orders file name dates oldest first
	FilenameTimedataReverse bool `mapstructure:"filename_timedata_reverse"`

	// Config is the static global configuration. It is fixed at
	// construction and cannot appear in an override bag.
	Config *GlobalConfig `mapstructure:"-"`

	// DetectInteractive decides whether a working directory belongs to an
	// interactive modelling session. Nil means the built-in rms/model check.
	DetectInteractive func(pwd string) bool `mapstructure:"-"`

	// Resolved content, cached by revalidate
	useContent    string
	contentFields map[string]any
}

// New resolves settings from defaults, the given construction-time
// overrides, and the environment-designated settings file.
//
// The global configuration is taken from the FMU_GLOBAL_CONFIG environment
// variable when set, otherwise from the config argument. A nil or invalid
// config is not an error here; it downgrades later exports to data-only.
//
// Parameters:
//   - config: Static global configuration (may be nil)
//   - overrides: Construction-time settings by key (may be nil)
//
// Returns:
//   - *Settings: Resolved and validated settings
//   - error: Unknown key, malformed value, or failed validation
func New(config *GlobalConfig, overrides map[string]any) (*Settings, error) {
	s := Defaults()

	if envCfg := globalConfigFromEnv(); envCfg != nil {
		s.Config = envCfg
	} else {
		s.Config = config
	}

	envOverrides, err := settingsFromEnvFile()
	if err != nil {
		return nil, err
	}
	if err := s.applyOverrides(envOverrides); err != nil {
		return nil, err
	}
	if err := s.applyOverrides(overrides); err != nil {
		return nil, err
	}
	if err := s.revalidate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Update layers per-call overrides onto the settings and revalidates.
// Keys absent from the bag keep their current values.
//
// Parameters:
//   - overrides: Settings overrides by key (may be nil)
//
// Returns:
//   - error: Unknown key, malformed value, or failed validation
func (s *Settings) Update(overrides map[string]any) error {
	if err := s.applyOverrides(overrides); err != nil {
		return err
	}
	return s.revalidate()
}

// Clone returns an independent copy of the settings. Map and slice fields
// are copied so that overrides applied to the clone never reach the
// original; mapstructure merges map values in place, so sharing them would
// leak one call's overrides into the next. The global config pointer is
// shared; it is immutable after construction.
func (s *Settings) Clone() *Settings {
	clone := *s
	clone.AccessSsdl = copyAnyMap(s.AccessSsdl)
	clone.VerticalDomain = copyStringMap(s.VerticalDomain)
	clone.contentFields = copyAnyMap(s.contentFields)
	clone.Description = append([]string(nil), s.Description...)
	clone.TableIndex = append([]string(nil), s.TableIndex...)
	if s.Timedata != nil {
		clone.Timedata = make([][]any, len(s.Timedata))
		for i, entry := range s.Timedata {
			clone.Timedata[i] = append([]any(nil), entry...)
		}
	}
	return &clone
}

func copyAnyMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func copyStringMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// UseContent returns the resolved content name and its normalized extra
// fields, as established by the last successful validation.
func (s *Settings) UseContent() (string, map[string]any) {
	return s.useContent, s.contentFields
}

// FormatFor returns the configured output format for a metadata class.
// Whether the format is allowed for the class is checked by the object's
// inspection provider.
//
// Returns:
//   - string: Output format name (e.g. irap_binary)
//   - error: Class without a configured format
func (s *Settings) FormatFor(class meta.Class) (string, error) {
	var format string
	switch class {
	case meta.ClassSurface:
		format = s.SurfaceFormat
	case meta.ClassTable:
		format = s.TableFormat
	case meta.ClassPolygons:
		format = s.PolygonsFormat
	case meta.ClassPoints:
		format = s.PointsFormat
	case meta.ClassCube:
		format = s.CubeFormat
	case meta.ClassCPGrid, meta.ClassCPGridProperty:
		format = s.GridFormat
	case meta.ClassDictionary:
		format = s.DictFormat
	default:
		return "", &meta.ConfigurationError{Message: fmt.Sprintf(
			"no output format configured for class %q", class)}
	}
	return format, nil
}

// applyOverrides merges an override bag into the settings in place.
// The bag must contain known keys only; "config" cannot be overridden.
func (s *Settings) applyOverrides(overrides map[string]any) error {
	if len(overrides) == 0 {
		return nil
	}
	if _, ok := overrides["config"]; ok {
		return fmt.Errorf("the config setting is fixed at construction and cannot be overridden")
	}

	// An override replaces a map-typed setting; mapstructure would merge
	// key by key into the existing map instead.
	if _, ok := overrides["vertical_domain"]; ok {
		s.VerticalDomain = nil
	}
	if _, ok := overrides["access_ssdl"]; ok {
		s.AccessSsdl = nil
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      s,
		ErrorUnused: true,
		DecodeHook:  stringToSliceHook,
	})
	if err != nil {
		return fmt.Errorf("building settings decoder: %w", err)
	}
	if err := decoder.Decode(overrides); err != nil {
		keys := make([]string, 0, len(overrides))
		for k := range overrides {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return meta.Validation(fmt.Sprintf(
			"invalid settings among %v: %v", keys, err))
	}
	return nil
}

// stringToSliceHook lifts a single string into a []string target, so that
// description accepts both a string and a list of strings.
func stringToSliceHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if from.Kind() == reflect.String && to.Kind() == reflect.Slice && to.Elem().Kind() == reflect.String {
		return []string{data.(string)}, nil
	}
	return data, nil
}

// revalidate re-checks the cross-field settings rules after any change.
func (s *Settings) revalidate() error {
	if !validContexts[Context(s.FMUContext)] && s.FMUContext != "" {
		return meta.Validation(fmt.Sprintf(
			"invalid fmu_context %q, valid entries are realization, case, "+
				"case_symlink_realization, preprocessed", s.FMUContext))
	}

	name, fields, err := content.Validate(s.Content)
	if err != nil {
		return err
	}
	s.useContent = name
	s.contentFields = fields

	if err := validateTimedata(s.Timedata); err != nil {
		return err
	}

	s.warnDeprecated()
	return nil
}

// validateTimedata checks shape only; date parsing happens at assembly.
func validateTimedata(timedata [][]any) error {
	if len(timedata) > 2 {
		return meta.Validation(fmt.Sprintf(
			"timedata can hold at most two entries, got %d", len(timedata)))
	}
	for _, entry := range timedata {
		if len(entry) == 0 || len(entry) > 2 {
			return meta.Validation(
				"each timedata entry must be [date] or [date, label]")
		}
	}
	return nil
}

func (s *Settings) warnDeprecated() {
	if s.GridModel != "" {
		logger.Warn("The grid_model setting is deprecated and ignored; use the parent setting")
	}
	if s.Runpath != "" {
		logger.Warn("The runpath setting is deprecated; use casepath instead")
	}
	if s.ReuseMetadataRule != "" {
		logger.Warn("The reuse_metadata_rule setting is deprecated and ignored")
	}
	if s.TableIncludeIndex {
		logger.Warn("The table_include_index setting is deprecated and ignored; index columns are always written")
	}
}

// settingsFromEnvFile reads the env-designated settings override file,
// if any. The file holds a flat mapping of settings keys.
func settingsFromEnvFile() (map[string]any, error) {
	path := os.Getenv(SettingsFileEnv)
	if path == "" {
		return nil, nil
	}

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, &meta.ConfigurationError{Message: fmt.Sprintf(
			"cannot read settings file from %s=%s: %v", SettingsFileEnv, path, err)}
	}
	logger.Info("Settings overrides read from %s", path)
	return v.AllSettings(), nil
}
