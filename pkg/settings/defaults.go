package settings

// Default values applied before construction-time settings and overrides.
const (
	// DefaultDepthReference is the vertical reference for depth domains
	DefaultDepthReference = "msl"

	// DefaultRealization means "detect from the run context"
	DefaultRealization = -999

	// DefaultCaseFolder is where case metadata lives below the case root
	DefaultCaseFolder = "share/metadata"

	// Default output formats per object kind
	DefaultSurfaceFormat  = "irap_binary"
	DefaultTableFormat    = "csv"
	DefaultPolygonsFormat = "csv"
	DefaultPointsFormat   = "csv"
	DefaultCubeFormat     = "segy"
	DefaultGridFormat     = "roff"
	DefaultDictFormat     = "json"
	DefaultArrowFormat    = "arrow"

	// DefaultMetaFormat is the sidecar metadata serialization format
	DefaultMetaFormat = "yaml"
)

// Defaults returns a Settings populated with the documented default values.
// Construction-time settings and per-call overrides are layered on top.
func Defaults() *Settings {
	return &Settings{
		Content:        nil,
		DepthReference: DefaultDepthReference,
		FMUContext:     ContextRealization.String(),
		Realization:    DefaultRealization,
		VerticalDomain: map[string]string{"depth": DefaultDepthReference},

		SurfaceFormat:  DefaultSurfaceFormat,
		TableFormat:    DefaultTableFormat,
		PolygonsFormat: DefaultPolygonsFormat,
		PointsFormat:   DefaultPointsFormat,
		CubeFormat:     DefaultCubeFormat,
		GridFormat:     DefaultGridFormat,
		DictFormat:     DefaultDictFormat,
		ArrowFormat:    DefaultArrowFormat,

		MetaFormat:   DefaultMetaFormat,
		CaseFolder:   DefaultCaseFolder,
		CreateFolder: true,
		VerifyFolder: true,
	}
}
