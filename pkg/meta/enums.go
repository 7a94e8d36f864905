package meta

// SchemaVersion is the version of the metadata schema emitted by this module.
const SchemaVersion = "0.8.0"

// Source marks the producing ecosystem in every document.
const Source = "fmu"

// Class is the discriminator for the metadata document union.
//
// "case" selects the CaseMetadata shape; every other value selects the
// ObjectMetadata shape and names the kind of exported data object.
type Class string

const (
	ClassCase           Class = "case"
	ClassSurface        Class = "surface"
	ClassTable          Class = "table"
	ClassCPGrid         Class = "cpgrid"
	ClassCPGridProperty Class = "cpgrid_property"
	ClassPolygons       Class = "polygons"
	ClassCube           Class = "cube"
	ClassWell           Class = "well"
	ClassPoints         Class = "points"
	ClassDictionary     Class = "dictionary"
)

// ObjectClasses lists every valid non-case class, in schema order.
var ObjectClasses = []Class{
	ClassSurface,
	ClassTable,
	ClassCPGrid,
	ClassCPGridProperty,
	ClassPolygons,
	ClassCube,
	ClassWell,
	ClassPoints,
	ClassDictionary,
}

// IsObjectClass reports whether c names an exportable data object kind.
func IsObjectClass(c Class) bool {
	for _, oc := range ObjectClasses {
		if c == oc {
			return true
		}
	}
	return false
}

// Classification is the access classification level.
type Classification string

const (
	ClassificationAsset      Classification = "asset"
	ClassificationInternal   Classification = "internal"
	ClassificationRestricted Classification = "restricted"
)

// ContextStage is the stage of an FMU experiment in which data was produced.
type ContextStage string

const (
	StageCase        ContextStage = "case"
	StageIteration   ContextStage = "iteration"
	StageRealization ContextStage = "realization"
)
