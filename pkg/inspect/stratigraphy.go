package inspect

// StratigraphyEntry maps a model name to the official stratigraphic
// nomenclature. The key under which the entry is stored is the name used
// inside the model; Name is the official name that replaces it on export.
type StratigraphyEntry struct {
	Name               string   `yaml:"name" json:"name"`
	Stratigraphic      bool     `yaml:"stratigraphic" json:"stratigraphic"`
	Alias              []string `yaml:"alias,omitempty" json:"alias,omitempty"`
	StratigraphicAlias []string `yaml:"stratigraphic_alias,omitempty" json:"stratigraphic_alias,omitempty"`
}

// Stratigraphy is the lookup table from model names to official names,
// normally carried in the global configuration.
type Stratigraphy map[string]StratigraphyEntry

// NameResult is the outcome of resolving an object name against the
// stratigraphy table.
type NameResult struct {
	// Name is the resolved name: the official stratigraphic name when the
	// declared name has an entry, otherwise the declared name unchanged.
	Name string

	// Stratigraphic is true when the name resolved via the table.
	Stratigraphic bool

	// Alias lists alternative names, including the original model name when
	// it was replaced.
	Alias []string

	// StratigraphicAlias lists alternative official stratigraphic names.
	StratigraphicAlias []string
}

// DeriveNameStratigraphy resolves a declared object name against the
// stratigraphy table. If a stratigraphic synonym exists it overrides the
// declared name and the object is marked stratigraphic; the model name is
// kept as an alias.
func DeriveNameStratigraphy(declared string, strat Stratigraphy) NameResult {
	entry, ok := strat[declared]
	if !ok {
		return NameResult{Name: declared}
	}

	result := NameResult{
		Name:               entry.Name,
		Stratigraphic:      entry.Stratigraphic,
		StratigraphicAlias: entry.StratigraphicAlias,
	}
	result.Alias = append(result.Alias, entry.Alias...)
	if declared != entry.Name {
		result.Alias = append(result.Alias, declared)
	}
	return result
}
