// Package inspect provides the object-inspection capability consumed by the
// metadata assembler: given a concrete data object, derive its physical
// spec, bounding geometry, subtype name and preferred file extension, and
// serialize it for export.
package inspect

import "math"

// Surface is a regular 2D grid of depth/time/property values.
type Surface struct {
	Name     string
	Ncol     int
	Nrow     int
	Xori     float64
	Yori     float64
	Xinc     float64
	Yinc     float64
	Rotation float64

	// Values holds Ncol*Nrow samples in row-major order. NaN marks
	// undefined nodes.
	Values []float64
}

func (s Surface) zRange() (float64, float64) {
	zmin, zmax := math.Inf(1), math.Inf(-1)
	for _, v := range s.Values {
		if math.IsNaN(v) {
			continue
		}
		zmin = math.Min(zmin, v)
		zmax = math.Max(zmax, v)
	}
	if zmin > zmax {
		return 0, 0
	}
	return zmin, zmax
}

// Table is a column-oriented data table.
type Table struct {
	Name    string
	Columns []string
	Rows    [][]any
}

// Polygons is a set of closed polylines. PolyID assigns each vertex to a
// polygon; vertices of one polygon are contiguous.
type Polygons struct {
	Name   string
	X      []float64
	Y      []float64
	Z      []float64
	PolyID []int
}

// Points is a scattered point set.
type Points struct {
	Name string
	X    []float64
	Y    []float64
	Z    []float64
}

// Cube is a regular 3D volume, e.g. seismic amplitudes.
type Cube struct {
	Name     string
	Ncol     int
	Nrow     int
	Nlay     int
	Xori     float64
	Yori     float64
	Zori     float64
	Xinc     float64
	Yinc     float64
	Zinc     float64
	Rotation float64
	Values   []float32
}

// Grid is a corner-point 3D grid geometry.
type Grid struct {
	Name string
	Ncol int
	Nrow int
	Nlay int
	XMin float64
	XMax float64
	YMin float64
	YMax float64
	ZMin float64
	ZMax float64
}

// GridProperty is a per-cell property attached to a corner-point grid.
// The parent grid name is not carried on the object itself; the exporter
// supplies it via the "parent" setting.
type GridProperty struct {
	Name   string
	Ncol   int
	Nrow   int
	Nlay   int
	Values []float64

	// Discrete marks integer-coded properties (facies, regions).
	Discrete bool
}

// Dictionary is an arbitrary key-value object exported as JSON.
type Dictionary struct {
	Name string
	Data map[string]any
}

func minMax(values []float64) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if lo > hi {
		return 0, 0
	}
	return lo, hi
}
