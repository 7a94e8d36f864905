// Package meta defines the versioned FMU metadata document model.
//
// The document is a discriminated union over the "class" field: class "case"
// is the case-level document (CaseMetadata), any object class (surface,
// table, ...) is the per-artifact document (ObjectMetadata). Cross-field
// rules that structural schemas cannot express (aggregation XOR realization,
// spec required for table/surface, ASCII-only paths) live in Validate.
package meta

// Asset identifies the owner asset of the data.
type Asset struct {
	Name string `yaml:"name" json:"name" validate:"required"`
}

// Ssdl carries the legacy SSDL sub-block of the access block.
type Ssdl struct {
	AccessLevel Classification `yaml:"access_level" json:"access_level" validate:"required,oneof=asset internal restricted"`
	RepInclude  bool           `yaml:"rep_include" json:"rep_include"`
}

// Access contains access control information for a document.
type Access struct {
	Asset          Asset          `yaml:"asset" json:"asset" validate:"required"`
	Classification Classification `yaml:"classification,omitempty" json:"classification,omitempty" validate:"omitempty,oneof=asset internal restricted"`
}

// SsdlAccess is the access block for object metadata, which additionally
// carries the legacy SSDL settings.
type SsdlAccess struct {
	Access `yaml:",inline"`
	Ssdl   Ssdl `yaml:"ssdl" json:"ssdl" validate:"required"`
}

// File references the data object as a file on disk.
//
// The relative_path is the stable identifier for file objects within a case,
// irrespective of the existence of an actual file system, and is always
// present. absolute_path, checksum and size are only set when a file is
// physically exported.
type File struct {
	AbsolutePath        string `yaml:"absolute_path,omitempty" json:"absolute_path,omitempty"`
	RelativePath        string `yaml:"relative_path" json:"relative_path" validate:"required"`
	ChecksumMD5         string `yaml:"checksum_md5,omitempty" json:"checksum_md5,omitempty"`
	SizeBytes           int64  `yaml:"size_bytes,omitempty" json:"size_bytes,omitempty"`
	RelativePathSymlink string `yaml:"relative_path_symlink,omitempty" json:"relative_path_symlink,omitempty"`
	AbsolutePathSymlink string `yaml:"absolute_path_symlink,omitempty" json:"absolute_path_symlink,omitempty"`
}

// Aggregation describes an aggregation performed over an ensemble.
type Aggregation struct {
	ID             string `yaml:"id" json:"id" validate:"required"`
	Operation      string `yaml:"operation" json:"operation" validate:"required"`
	RealizationIDs []int  `yaml:"realization_ids" json:"realization_ids" validate:"required"`
}

// Workflow refers to the sub-workflow that exported this data object.
type Workflow struct {
	Reference string `yaml:"reference" json:"reference" validate:"required"`
}

// User holds a user identity reference.
type User struct {
	ID string `yaml:"id" json:"id" validate:"required"`
}

// Case identifies the case this data object was exported from. A case is a
// set of iterations belonging together, rooted in one directory.
type Case struct {
	Name        string   `yaml:"name" json:"name" validate:"required"`
	User        User     `yaml:"user" json:"user" validate:"required"`
	UUID        string   `yaml:"uuid" json:"uuid" validate:"required,uuid"`
	Description []string `yaml:"description,omitempty" json:"description,omitempty"`
}

// Iteration identifies the iteration this data object belongs to.
type Iteration struct {
	ID          *int   `yaml:"id,omitempty" json:"id,omitempty"`
	Name        string `yaml:"name" json:"name" validate:"required"`
	UUID        string `yaml:"uuid" json:"uuid" validate:"required,uuid"`
	RestartFrom string `yaml:"restart_from,omitempty" json:"restart_from,omitempty" validate:"omitempty,uuid"`
}

// Model describes the model (setup, template) used.
type Model struct {
	Name        string   `yaml:"name" json:"name" validate:"required"`
	Revision    string   `yaml:"revision" json:"revision" validate:"required"`
	Description []string `yaml:"description,omitempty" json:"description,omitempty"`
}

// Realization identifies the single run this data object belongs to. The
// UUID is a deterministic hash of case uuid, iteration uuid and the id.
type Realization struct {
	ID         int            `yaml:"id" json:"id"`
	Name       string         `yaml:"name" json:"name" validate:"required"`
	UUID       string         `yaml:"uuid" json:"uuid" validate:"required,uuid"`
	Parameters map[string]any `yaml:"parameters,omitempty" json:"parameters,omitempty"`
}

// Reference couples an identifier with the uuid it is known under in the
// masterdata service.
type Reference struct {
	Identifier string `yaml:"identifier" json:"identifier" validate:"required"`
	UUID       string `yaml:"uuid" json:"uuid" validate:"required,uuid"`
}

// DiscoveryItem is a single discovery known to the masterdata service.
type DiscoveryItem struct {
	ShortIdentifier string `yaml:"short_identifier" json:"short_identifier" validate:"required"`
	UUID            string `yaml:"uuid" json:"uuid" validate:"required,uuid"`
}

// Smda groups the SMDA-related masterdata attributes. First item of each
// list is primary.
type Smda struct {
	CoordinateSystem    Reference       `yaml:"coordinate_system" json:"coordinate_system" validate:"required"`
	Country             []Reference     `yaml:"country" json:"country" validate:"required,min=1,dive"`
	Discovery           []DiscoveryItem `yaml:"discovery" json:"discovery" validate:"required,min=1,dive"`
	Field               []Reference     `yaml:"field" json:"field" validate:"required,min=1,dive"`
	StratigraphicColumn Reference       `yaml:"stratigraphic_column" json:"stratigraphic_column" validate:"required"`
}

// Masterdata holds references into the organisation's masterdata service.
type Masterdata struct {
	Smda Smda `yaml:"smda" json:"smda" validate:"required"`
}

// OperatingSystem describes the OS of the exporting host.
type OperatingSystem struct {
	Hostname        string `yaml:"hostname" json:"hostname"`
	OperatingSystem string `yaml:"operating_system" json:"operating_system"`
	Release         string `yaml:"release" json:"release"`
	System          string `yaml:"system" json:"system"`
	Version         string `yaml:"version" json:"version"`
}

// VersionInfo wraps a version string.
type VersionInfo struct {
	Version string `yaml:"version" json:"version"`
}

// SystemInformation snapshots the exporting system for a tracklog event.
type SystemInformation struct {
	Fmio            *VersionInfo     `yaml:"fmio,omitempty" json:"fmio,omitempty"`
	OperatingSystem *OperatingSystem `yaml:"operating_system,omitempty" json:"operating_system,omitempty"`
}

// TracklogEvent is one entry of the append-only audit list. Conventional
// event values are "created", "updated" and "merged".
type TracklogEvent struct {
	Datetime Datetime           `yaml:"datetime" json:"datetime" validate:"required"`
	Event    string             `yaml:"event" json:"event" validate:"required"`
	User     User               `yaml:"user" json:"user" validate:"required"`
	Sysinfo  *SystemInformation `yaml:"sysinfo,omitempty" json:"sysinfo,omitempty"`
}

// Display communicates display preferences from the data producer. No data
// filtering logic may be placed on this block.
type Display struct {
	Name string `yaml:"name,omitempty" json:"name,omitempty"`
}

// Context holds the FMU context in which the data object was produced.
type Context struct {
	Stage ContextStage `yaml:"stage" json:"stage" validate:"required,oneof=case iteration realization"`
}

// FMUCase is the fmu block of case metadata: case and model only.
type FMUCase struct {
	Case  Case  `yaml:"case" json:"case" validate:"required"`
	Model Model `yaml:"model" json:"model" validate:"required"`
}

// FMU is the fmu block of object metadata.
//
// Exactly one of Iteration and Realization is set, and Aggregation and
// Realization are mutually exclusive; see Validate.
type FMU struct {
	Case        Case         `yaml:"case" json:"case" validate:"required"`
	Model       Model        `yaml:"model" json:"model" validate:"required"`
	Context     Context      `yaml:"context" json:"context" validate:"required"`
	Iteration   *Iteration   `yaml:"iteration,omitempty" json:"iteration,omitempty"`
	Workflow    *Workflow    `yaml:"workflow,omitempty" json:"workflow,omitempty"`
	Aggregation *Aggregation `yaml:"aggregation,omitempty" json:"aggregation,omitempty"`
	Realization *Realization `yaml:"realization,omitempty" json:"realization,omitempty"`
}

// TimePoint is one ISO date-time plus a free-text label ("base", "monitor").
type TimePoint struct {
	Value string `yaml:"value" json:"value" validate:"required"`
	Label string `yaml:"label,omitempty" json:"label,omitempty"`
}

// Time declares the zero, one or two dates attached to the data. With two
// dates, t0 is the oldest and t1 the newest.
type Time struct {
	T0 *TimePoint `yaml:"t0,omitempty" json:"t0,omitempty"`
	T1 *TimePoint `yaml:"t1,omitempty" json:"t1,omitempty"`
}

// Bbox is the bounding geometry of the object. Zmin/Zmax are absent for
// 2D-only objects such as tables.
type Bbox struct {
	XMin float64  `yaml:"xmin" json:"xmin"`
	XMax float64  `yaml:"xmax" json:"xmax"`
	YMin float64  `yaml:"ymin" json:"ymin"`
	YMax float64  `yaml:"ymax" json:"ymax"`
	ZMin *float64 `yaml:"zmin,omitempty" json:"zmin,omitempty"`
	ZMax *float64 `yaml:"zmax,omitempty" json:"zmax,omitempty"`
}

// GridModel refers to the parent grid geometry of a grid property.
type GridModel struct {
	Name string `yaml:"name" json:"name" validate:"required"`
}

// Data is the content-specific block of object metadata.
type Data struct {
	Name               string   `yaml:"name" json:"name" validate:"required"`
	Stratigraphic      bool     `yaml:"stratigraphic" json:"stratigraphic"`
	Alias              []string `yaml:"alias,omitempty" json:"alias,omitempty"`
	StratigraphicAlias []string `yaml:"stratigraphic_alias,omitempty" json:"stratigraphic_alias,omitempty"`
	Offset             float64  `yaml:"offset,omitempty" json:"offset,omitempty"`

	Content string `yaml:"content" json:"content" validate:"required"`

	// Content-specific payloads, keyed under the content's own name.
	Seismic      map[string]any `yaml:"seismic,omitempty" json:"seismic,omitempty"`
	FluidContact map[string]any `yaml:"fluid_contact,omitempty" json:"fluid_contact,omitempty"`
	FieldOutline map[string]any `yaml:"field_outline,omitempty" json:"field_outline,omitempty"`
	FieldRegion  map[string]any `yaml:"field_region,omitempty" json:"field_region,omitempty"`
	Property     map[string]any `yaml:"property,omitempty" json:"property,omitempty"`

	Tagname        string         `yaml:"tagname,omitempty" json:"tagname,omitempty"`
	Format         string         `yaml:"format" json:"format" validate:"required"`
	Layout         string         `yaml:"layout,omitempty" json:"layout,omitempty"`
	Unit           string         `yaml:"unit,omitempty" json:"unit,omitempty"`
	VerticalDomain string         `yaml:"vertical_domain,omitempty" json:"vertical_domain,omitempty"`
	DepthReference string         `yaml:"depth_reference,omitempty" json:"depth_reference,omitempty"`
	Spec           map[string]any `yaml:"spec,omitempty" json:"spec,omitempty"`
	Bbox           *Bbox          `yaml:"bbox,omitempty" json:"bbox,omitempty"`
	Time           *Time          `yaml:"time,omitempty" json:"time,omitempty"`
	GridModel      *GridModel     `yaml:"grid_model,omitempty" json:"grid_model,omitempty"`
	TableIndex     []string       `yaml:"table_index,omitempty" json:"table_index,omitempty"`
	IsPrediction   bool           `yaml:"is_prediction" json:"is_prediction"`
	IsObservation  bool           `yaml:"is_observation" json:"is_observation"`
	Description    []string       `yaml:"description,omitempty" json:"description,omitempty"`
	UndefIsZero    bool           `yaml:"undef_is_zero,omitempty" json:"undef_is_zero,omitempty"`
}

// Preprocessed is the reuse marker written on preprocessed exports. A later
// export stage reads it back to recover identity fields without rederiving.
type Preprocessed struct {
	Name      string `yaml:"name,omitempty" json:"name,omitempty"`
	Tagname   string `yaml:"tagname,omitempty" json:"tagname,omitempty"`
	Subfolder string `yaml:"subfolder,omitempty" json:"subfolder,omitempty"`
}

// CaseMetadata is the document identifying a case.
type CaseMetadata struct {
	Class       Class           `yaml:"class" json:"class" validate:"required,eq=case"`
	Masterdata  Masterdata      `yaml:"masterdata" json:"masterdata" validate:"required"`
	Tracklog    []TracklogEvent `yaml:"tracklog" json:"tracklog" validate:"required,min=1,dive"`
	Source      string          `yaml:"source" json:"source" validate:"required,eq=fmu"`
	Version     string          `yaml:"version" json:"version" validate:"required"`
	FMU         FMUCase         `yaml:"fmu" json:"fmu" validate:"required"`
	Access      Access          `yaml:"access" json:"access" validate:"required"`
	Description []string        `yaml:"description,omitempty" json:"description,omitempty"`
}

// ObjectMetadata is the document identifying one exported data artifact.
type ObjectMetadata struct {
	Class        Class           `yaml:"class" json:"class" validate:"required"`
	Masterdata   Masterdata      `yaml:"masterdata" json:"masterdata" validate:"required"`
	Tracklog     []TracklogEvent `yaml:"tracklog" json:"tracklog" validate:"required,min=1,dive"`
	Source       string          `yaml:"source" json:"source" validate:"required,eq=fmu"`
	Version      string          `yaml:"version" json:"version" validate:"required"`
	FMU          FMU             `yaml:"fmu" json:"fmu" validate:"required"`
	Access       SsdlAccess      `yaml:"access" json:"access" validate:"required"`
	Data         Data            `yaml:"data" json:"data" validate:"required"`
	File         File            `yaml:"file" json:"file" validate:"required"`
	Display      Display         `yaml:"display" json:"display"`
	Preprocessed *Preprocessed   `yaml:"_preprocessed,omitempty" json:"_preprocessed,omitempty"`
}
