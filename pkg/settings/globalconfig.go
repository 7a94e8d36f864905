package settings

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/evenbre/fmio/internal/logger"
	"github.com/evenbre/fmio/pkg/inspect"
	"github.com/evenbre/fmio/pkg/meta"
)

// GlobalConfigEnv names the environment variable pointing to the global
// static configuration file (YAML). When set it overrides the config given
// at construction.
const GlobalConfigEnv = "FMU_GLOBAL_CONFIG"

// AccessConfig is the access section of the global configuration.
type AccessConfig struct {
	Asset          meta.Asset          `yaml:"asset" json:"asset" validate:"required"`
	Classification meta.Classification `yaml:"classification,omitempty" json:"classification,omitempty" validate:"omitempty,oneof=asset internal restricted"`
	Ssdl           meta.Ssdl           `yaml:"ssdl" json:"ssdl" validate:"required"`
}

// GlobalConfig is the static configuration shared by all exports of a
// model run. In the standard setup it is read from the FMU global variables
// file. It must be valid for metadata to be produced; an invalid or missing
// global config downgrades exports to data-only (see Valid).
type GlobalConfig struct {
	Masterdata   meta.Masterdata      `yaml:"masterdata" json:"masterdata" validate:"required"`
	Access       AccessConfig         `yaml:"access" json:"access" validate:"required"`
	Model        meta.Model           `yaml:"model" json:"model" validate:"required"`
	Stratigraphy inspect.Stratigraphy `yaml:"stratigraphy,omitempty" json:"stratigraphy,omitempty"`
}

// validate is the singleton validator instance
var validate = validator.New()

// Validate checks the global configuration for the blocks metadata
// assembly depends on.
func (c *GlobalConfig) Validate() error {
	if c == nil {
		return &meta.ConfigurationError{Message: "no global configuration provided"}
	}
	if err := validate.Struct(c); err != nil {
		if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
			e := errs[0]
			return &meta.ConfigurationError{Message: fmt.Sprintf(
				"global configuration is invalid: %s failed on '%s' tag", e.Namespace(), e.Tag())}
		}
		return &meta.ConfigurationError{Message: err.Error()}
	}
	return nil
}

// Valid reports whether the configuration can back a metadata document.
func (c *GlobalConfig) Valid() bool {
	return c.Validate() == nil
}

// WithSSDL returns a copy of the configuration with the access.ssdl block
// overridden from a loose settings mapping. The receiver is not mutated.
func (c *GlobalConfig) WithSSDL(override map[string]any) *GlobalConfig {
	if c == nil || len(override) == 0 {
		return c
	}
	clone := *c
	if v, ok := override["access_level"].(string); ok {
		clone.Access.Ssdl.AccessLevel = meta.Classification(v)
	}
	if v, ok := override["rep_include"].(bool); ok {
		clone.Access.Ssdl.RepInclude = v
	}
	return &clone
}

// LoadGlobalConfig reads a global configuration YAML file.
func LoadGlobalConfig(path string) (*GlobalConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading global config %s: %w", path, err)
	}
	var cfg GlobalConfig
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, &meta.ConfigurationError{Message: fmt.Sprintf(
			"global config %s is not valid YAML: %v", path, err)}
	}
	return &cfg, nil
}

// globalConfigFromEnv loads the env-designated global config, if any.
// A broken file is a warning, not an error: the export can still proceed
// data-only.
func globalConfigFromEnv() *GlobalConfig {
	path := os.Getenv(GlobalConfigEnv)
	if path == "" {
		return nil
	}
	cfg, err := LoadGlobalConfig(path)
	if err != nil {
		logger.Warn("Cannot read global config from %s=%s: %v", GlobalConfigEnv, path, err)
		return nil
	}
	logger.Info("Global config read from %s", path)
	return cfg
}
