package inspect

import (
	"fmt"
	"io"

	"github.com/evenbre/fmio/pkg/meta"
)

// Provider exposes the inspection capabilities of one concrete data object.
//
// The metadata assembler consumes this interface only; it never looks at
// the object itself. That keeps object-kind specifics (spec fields,
// bounding geometry, serialization formats) out of the assembly algorithm.
type Provider interface {
	// Class is the metadata class of the object kind.
	Class() meta.Class

	// Subtype is the concrete type name, e.g. "Surface".
	Subtype() string

	// ObjectName is the name declared on the object, possibly empty.
	ObjectName() string

	// Layout describes the data layout for the data block.
	Layout() string

	// GetSpec returns the physical parameters of the object, or nil for
	// kinds without a spec.
	GetSpec() map[string]any

	// GetBbox returns the bounding geometry, or nil for kinds without one.
	GetBbox() *meta.Bbox

	// ValidateExtension resolves the file extension for a requested output
	// format, failing with a ConfigurationError for formats outside the
	// allowed set of this kind.
	ValidateExtension(format string) (string, error)

	// Export serializes the object in the requested format.
	Export(w io.Writer, format string) error
}

// ProviderFor returns the inspection provider for a supported object.
// Pointer and value forms are both accepted.
func ProviderFor(obj any) (Provider, error) {
	switch v := obj.(type) {
	case Surface:
		return surfaceProvider{v}, nil
	case *Surface:
		return surfaceProvider{*v}, nil
	case Table:
		return tableProvider{v}, nil
	case *Table:
		return tableProvider{*v}, nil
	case Polygons:
		return polygonsProvider{v}, nil
	case *Polygons:
		return polygonsProvider{*v}, nil
	case Points:
		return pointsProvider{v}, nil
	case *Points:
		return pointsProvider{*v}, nil
	case Cube:
		return cubeProvider{v}, nil
	case *Cube:
		return cubeProvider{*v}, nil
	case Grid:
		return gridProvider{v}, nil
	case *Grid:
		return gridProvider{*v}, nil
	case GridProperty:
		return gridPropertyProvider{v}, nil
	case *GridProperty:
		return gridPropertyProvider{*v}, nil
	case Dictionary:
		return dictionaryProvider{v}, nil
	case *Dictionary:
		return dictionaryProvider{*v}, nil
	default:
		return nil, meta.Validation(fmt.Sprintf(
			"object of type %T is not a supported export type", obj))
	}
}

// ============================================================================
// Surface
// ============================================================================

type surfaceProvider struct {
	obj Surface
}

func (p surfaceProvider) Class() meta.Class  { return meta.ClassSurface }
func (p surfaceProvider) Subtype() string    { return "Surface" }
func (p surfaceProvider) ObjectName() string { return p.obj.Name }
func (p surfaceProvider) Layout() string     { return "regular" }

func (p surfaceProvider) GetSpec() map[string]any {
	undef := 0
	for _, v := range p.obj.Values {
		if v != v { // NaN
			undef++
		}
	}
	return map[string]any{
		"ncol":     p.obj.Ncol,
		"nrow":     p.obj.Nrow,
		"xori":     p.obj.Xori,
		"yori":     p.obj.Yori,
		"xinc":     p.obj.Xinc,
		"yinc":     p.obj.Yinc,
		"rotation": p.obj.Rotation,
		"undef":    undef,
	}
}

func (p surfaceProvider) GetBbox() *meta.Bbox {
	zmin, zmax := p.obj.zRange()
	return &meta.Bbox{
		XMin: p.obj.Xori,
		XMax: p.obj.Xori + p.obj.Xinc*float64(p.obj.Ncol-1),
		YMin: p.obj.Yori,
		YMax: p.obj.Yori + p.obj.Yinc*float64(p.obj.Nrow-1),
		ZMin: &zmin,
		ZMax: &zmax,
	}
}

func (p surfaceProvider) ValidateExtension(format string) (string, error) {
	return ValidateExtension(p.Class(), p.Subtype(), format)
}

func (p surfaceProvider) Export(w io.Writer, format string) error {
	return exportSurface(w, p.obj, format)
}

// ============================================================================
// Table
// ============================================================================

type tableProvider struct {
	obj Table
}

func (p tableProvider) Class() meta.Class  { return meta.ClassTable }
func (p tableProvider) Subtype() string    { return "Table" }
func (p tableProvider) ObjectName() string { return p.obj.Name }
func (p tableProvider) Layout() string     { return "table" }

func (p tableProvider) GetSpec() map[string]any {
	return map[string]any{
		"columns": p.obj.Columns,
		"size":    len(p.obj.Rows) * len(p.obj.Columns),
	}
}

func (p tableProvider) GetBbox() *meta.Bbox { return nil }

func (p tableProvider) ValidateExtension(format string) (string, error) {
	return ValidateExtension(p.Class(), p.Subtype(), format)
}

func (p tableProvider) Export(w io.Writer, format string) error {
	return exportTable(w, p.obj, format)
}

// ============================================================================
// Polygons
// ============================================================================

type polygonsProvider struct {
	obj Polygons
}

func (p polygonsProvider) Class() meta.Class  { return meta.ClassPolygons }
func (p polygonsProvider) Subtype() string    { return "Polygons" }
func (p polygonsProvider) ObjectName() string { return p.obj.Name }
func (p polygonsProvider) Layout() string     { return "unset" }

func (p polygonsProvider) GetSpec() map[string]any {
	npolys := 0
	seen := make(map[int]bool)
	for _, id := range p.obj.PolyID {
		if !seen[id] {
			seen[id] = true
			npolys++
		}
	}
	return map[string]any{"npolys": npolys}
}

func (p polygonsProvider) GetBbox() *meta.Bbox {
	return xyzBbox(p.obj.X, p.obj.Y, p.obj.Z)
}

func (p polygonsProvider) ValidateExtension(format string) (string, error) {
	return ValidateExtension(p.Class(), p.Subtype(), format)
}

func (p polygonsProvider) Export(w io.Writer, format string) error {
	return exportXYZ(w, p.obj.X, p.obj.Y, p.obj.Z, p.obj.PolyID, format == "csv|xtgeo")
}

// ============================================================================
// Points
// ============================================================================

type pointsProvider struct {
	obj Points
}

func (p pointsProvider) Class() meta.Class  { return meta.ClassPoints }
func (p pointsProvider) Subtype() string    { return "Points" }
func (p pointsProvider) ObjectName() string { return p.obj.Name }
func (p pointsProvider) Layout() string     { return "unset" }

func (p pointsProvider) GetSpec() map[string]any {
	return map[string]any{"size": len(p.obj.X)}
}

func (p pointsProvider) GetBbox() *meta.Bbox {
	return xyzBbox(p.obj.X, p.obj.Y, p.obj.Z)
}

func (p pointsProvider) ValidateExtension(format string) (string, error) {
	return ValidateExtension(p.Class(), p.Subtype(), format)
}

func (p pointsProvider) Export(w io.Writer, format string) error {
	return exportXYZ(w, p.obj.X, p.obj.Y, p.obj.Z, nil, format == "csv|xtgeo")
}

// ============================================================================
// Cube
// ============================================================================

type cubeProvider struct {
	obj Cube
}

func (p cubeProvider) Class() meta.Class  { return meta.ClassCube }
func (p cubeProvider) Subtype() string    { return "Cube" }
func (p cubeProvider) ObjectName() string { return p.obj.Name }
func (p cubeProvider) Layout() string     { return "regular" }

func (p cubeProvider) GetSpec() map[string]any {
	return map[string]any{
		"ncol":     p.obj.Ncol,
		"nrow":     p.obj.Nrow,
		"nlay":     p.obj.Nlay,
		"xori":     p.obj.Xori,
		"yori":     p.obj.Yori,
		"zori":     p.obj.Zori,
		"xinc":     p.obj.Xinc,
		"yinc":     p.obj.Yinc,
		"zinc":     p.obj.Zinc,
		"rotation": p.obj.Rotation,
	}
}

func (p cubeProvider) GetBbox() *meta.Bbox {
	zmin := p.obj.Zori
	zmax := p.obj.Zori + p.obj.Zinc*float64(p.obj.Nlay-1)
	return &meta.Bbox{
		XMin: p.obj.Xori,
		XMax: p.obj.Xori + p.obj.Xinc*float64(p.obj.Ncol-1),
		YMin: p.obj.Yori,
		YMax: p.obj.Yori + p.obj.Yinc*float64(p.obj.Nrow-1),
		ZMin: &zmin,
		ZMax: &zmax,
	}
}

func (p cubeProvider) ValidateExtension(format string) (string, error) {
	return ValidateExtension(p.Class(), p.Subtype(), format)
}

func (p cubeProvider) Export(w io.Writer, format string) error {
	return exportCube(w, p.obj)
}

// ============================================================================
// Grid and GridProperty
// ============================================================================

type gridProvider struct {
	obj Grid
}

func (p gridProvider) Class() meta.Class  { return meta.ClassCPGrid }
func (p gridProvider) Subtype() string    { return "Grid" }
func (p gridProvider) ObjectName() string { return p.obj.Name }
func (p gridProvider) Layout() string     { return "cornerpoint" }

func (p gridProvider) GetSpec() map[string]any {
	return map[string]any{
		"ncol": p.obj.Ncol,
		"nrow": p.obj.Nrow,
		"nlay": p.obj.Nlay,
	}
}

func (p gridProvider) GetBbox() *meta.Bbox {
	zmin, zmax := p.obj.ZMin, p.obj.ZMax
	return &meta.Bbox{
		XMin: p.obj.XMin,
		XMax: p.obj.XMax,
		YMin: p.obj.YMin,
		YMax: p.obj.YMax,
		ZMin: &zmin,
		ZMax: &zmax,
	}
}

func (p gridProvider) ValidateExtension(format string) (string, error) {
	return ValidateExtension(p.Class(), p.Subtype(), format)
}

func (p gridProvider) Export(w io.Writer, format string) error {
	return exportGrid(w, p.obj.Ncol, p.obj.Nrow, p.obj.Nlay, nil)
}

type gridPropertyProvider struct {
	obj GridProperty
}

func (p gridPropertyProvider) Class() meta.Class  { return meta.ClassCPGridProperty }
func (p gridPropertyProvider) Subtype() string    { return "GridProperty" }
func (p gridPropertyProvider) ObjectName() string { return p.obj.Name }
func (p gridPropertyProvider) Layout() string     { return "cornerpoint" }

func (p gridPropertyProvider) GetSpec() map[string]any {
	return map[string]any{
		"ncol": p.obj.Ncol,
		"nrow": p.obj.Nrow,
		"nlay": p.obj.Nlay,
	}
}

func (p gridPropertyProvider) GetBbox() *meta.Bbox { return nil }

func (p gridPropertyProvider) ValidateExtension(format string) (string, error) {
	return ValidateExtension(p.Class(), p.Subtype(), format)
}

func (p gridPropertyProvider) Export(w io.Writer, format string) error {
	return exportGrid(w, p.obj.Ncol, p.obj.Nrow, p.obj.Nlay, p.obj.Values)
}

// ============================================================================
// Dictionary
// ============================================================================

type dictionaryProvider struct {
	obj Dictionary
}

func (p dictionaryProvider) Class() meta.Class  { return meta.ClassDictionary }
func (p dictionaryProvider) Subtype() string    { return "Dictionary" }
func (p dictionaryProvider) ObjectName() string { return p.obj.Name }
func (p dictionaryProvider) Layout() string     { return "dictionary" }

func (p dictionaryProvider) GetSpec() map[string]any { return nil }
func (p dictionaryProvider) GetBbox() *meta.Bbox     { return nil }

func (p dictionaryProvider) ValidateExtension(format string) (string, error) {
	return ValidateExtension(p.Class(), p.Subtype(), format)
}

func (p dictionaryProvider) Export(w io.Writer, format string) error {
	return exportDictionary(w, p.obj)
}

func xyzBbox(x, y, z []float64) *meta.Bbox {
	xmin, xmax := minMax(x)
	ymin, ymax := minMax(y)
	zmin, zmax := minMax(z)
	return &meta.Bbox{
		XMin: xmin, XMax: xmax,
		YMin: ymin, YMax: ymax,
		ZMin: &zmin, ZMax: &zmax,
	}
}
