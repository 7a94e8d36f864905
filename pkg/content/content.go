// Package content validates the user's content declaration against the
// closed content taxonomy and the per-content extra-field schemas.
//
// Content is the single most load-bearing classification for downstream
// consumers, so silently-wrong shapes are rejected early, before any
// expensive object inspection takes place.
package content

import "sort"

// Unset is the sentinel content name used when the caller declared nothing.
// Callers are expected to warn the user separately; this package does not.
const Unset = "unset"

// definition describes one taxonomy entry.
type definition struct {
	// requiresExtra marks contents that cannot be given as a plain string
	// because they need an extra-fields payload to be meaningful.
	requiresExtra bool

	// newFields returns a pointer to the typed extra-fields struct for this
	// content, or nil when the content takes no extra fields.
	newFields func() any

	// requiredKeys must be present in the extra-fields payload. Presence is
	// what matters, not non-zeroness: field_region id 0 is a valid region.
	requiredKeys []string
}

// SeismicFields are the optional extra fields for "seismic" content.
type SeismicFields struct {
	Attribute      string  `mapstructure:"attribute" json:"attribute"`
	Calculation    string  `mapstructure:"calculation" json:"calculation"`
	FilterSize     float64 `mapstructure:"filter_size" json:"filter_size"`
	ScalingFactor  float64 `mapstructure:"scaling_factor" json:"scaling_factor"`
	StackingOffset string  `mapstructure:"stacking_offset" json:"stacking_offset"`
	ZRange         float64 `mapstructure:"zrange" json:"zrange"`
}

// FluidContactFields are the extra fields for "fluid_contact" content.
type FluidContactFields struct {
	Contact   string `mapstructure:"contact" json:"contact" validate:"required"`
	Truncated bool   `mapstructure:"truncated" json:"truncated"`
}

// FieldOutlineFields are the extra fields for "field_outline" content.
type FieldOutlineFields struct {
	Contact string `mapstructure:"contact" json:"contact" validate:"required"`
}

// FieldRegionFields are the extra fields for "field_region" content.
type FieldRegionFields struct {
	ID int `mapstructure:"id" json:"id"`
}

// PropertyFields are the optional extra fields for "property" content.
type PropertyFields struct {
	Attribute  string `mapstructure:"attribute" json:"attribute"`
	IsDiscrete bool   `mapstructure:"is_discrete" json:"is_discrete"`
}

// taxonomy is the closed set of valid content names.
var taxonomy = map[string]definition{
	"depth":     {},
	"time":      {},
	"thickness": {},
	"property": {
		newFields: func() any { return &PropertyFields{} },
	},
	"seismic": {
		newFields: func() any { return &SeismicFields{} },
	},
	"fluid_contact": {
		requiresExtra: true,
		newFields:     func() any { return &FluidContactFields{} },
		requiredKeys:  []string{"contact"},
	},
	"field_outline": {
		requiresExtra: true,
		newFields:     func() any { return &FieldOutlineFields{} },
		requiredKeys:  []string{"contact"},
	},
	"field_region": {
		requiresExtra: true,
		newFields:     func() any { return &FieldRegionFields{} },
		requiredKeys:  []string{"id"},
	},
	"fault_lines":        {},
	"velocity":           {},
	"volumes":            {},
	"khproduct":          {},
	"timeseries":         {},
	"wellpicks":          {},
	"parameters":         {},
	"rft":                {},
	"pvt":                {},
	"relperm":            {},
	"lift_curves":        {},
	"transmissibilities": {},
}

// Names returns all valid content names, sorted.
func Names() []string {
	names := make([]string, 0, len(taxonomy))
	for name := range taxonomy {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsValid reports whether name belongs to the taxonomy.
func IsValid(name string) bool {
	_, ok := taxonomy[name]
	return ok
}

// RequiresExtra reports whether the content cannot be declared as a plain
// string because it needs an extra-fields payload.
func RequiresExtra(name string) bool {
	return taxonomy[name].requiresExtra
}
