package inspect

import (
	"bytes"
	"encoding/binary"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evenbre/fmio/pkg/meta"
)

func testSurface() Surface {
	return Surface{
		Name: "TopVolantis",
		Ncol: 3,
		Nrow: 2,
		Xori: 1000.0,
		Yori: 2000.0,
		Xinc: 50.0,
		Yinc: 50.0,
		Values: []float64{
			1700.0, 1705.0, math.NaN(),
			1710.0, 1715.0, 1720.0,
		},
	}
}

func TestProviderForSurface(t *testing.T) {
	provider, err := ProviderFor(testSurface())
	require.NoError(t, err)

	assert.Equal(t, meta.ClassSurface, provider.Class())
	assert.Equal(t, "Surface", provider.Subtype())
	assert.Equal(t, "TopVolantis", provider.ObjectName())
	assert.Equal(t, "regular", provider.Layout())

	spec := provider.GetSpec()
	assert.Equal(t, 3, spec["ncol"])
	assert.Equal(t, 2, spec["nrow"])
	assert.Equal(t, 1, spec["undef"])

	bbox := provider.GetBbox()
	require.NotNil(t, bbox)
	assert.Equal(t, 1000.0, bbox.XMin)
	assert.Equal(t, 1100.0, bbox.XMax)
	assert.Equal(t, 2000.0, bbox.YMin)
	assert.Equal(t, 2050.0, bbox.YMax)
	require.NotNil(t, bbox.ZMin)
	assert.Equal(t, 1700.0, *bbox.ZMin)
	assert.Equal(t, 1720.0, *bbox.ZMax)
}

func TestProviderForPointer(t *testing.T) {
	s := testSurface()
	provider, err := ProviderFor(&s)
	require.NoError(t, err)
	assert.Equal(t, "TopVolantis", provider.ObjectName())
}

func TestProviderForUnsupported(t *testing.T) {
	_, err := ProviderFor(42)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a supported export type")
}

func TestValidateExtensionSurface(t *testing.T) {
	provider, err := ProviderFor(testSurface())
	require.NoError(t, err)

	ext, err := provider.ValidateExtension("irap_binary")
	require.NoError(t, err)
	assert.Equal(t, ".gri", ext)
}

func TestValidateExtensionInvalidFormat(t *testing.T) {
	provider, err := ProviderFor(testSurface())
	require.NoError(t, err)

	_, err = provider.ValidateExtension("segy")
	require.Error(t, err)

	var cfgErr *meta.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, cfgErr.Message, "irap_binary")
}

func TestSurfaceExportIrapBinary(t *testing.T) {
	provider, err := ProviderFor(testSurface())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, provider.Export(&buf, "irap_binary"))

	data := buf.Bytes()
	// First record: 32 bytes of payload framed by length markers, magic
	// -996 and nrow first.
	require.Greater(t, len(data), 44)
	assert.Equal(t, uint32(32), binary.BigEndian.Uint32(data[0:4]))
	assert.Equal(t, int32(-996), int32(binary.BigEndian.Uint32(data[4:8])))
	assert.Equal(t, int32(2), int32(binary.BigEndian.Uint32(data[8:12])))
	assert.Equal(t, uint32(32), binary.BigEndian.Uint32(data[36:40]))
}

func TestSurfaceExportWrongFormat(t *testing.T) {
	provider, err := ProviderFor(testSurface())
	require.NoError(t, err)

	var buf bytes.Buffer
	err = provider.Export(&buf, "csv")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no surface serializer")
}

func TestTableExportCSV(t *testing.T) {
	table := Table{
		Name:    "summary",
		Columns: []string{"DATE", "FOPT"},
		Rows: [][]any{
			{"2020-01-01", 1000.5},
			{"2020-02-01", 2000.0},
		},
	}
	provider, err := ProviderFor(table)
	require.NoError(t, err)

	assert.Equal(t, meta.ClassTable, provider.Class())
	assert.Nil(t, provider.GetBbox())

	spec := provider.GetSpec()
	assert.Equal(t, []string{"DATE", "FOPT"}, spec["columns"])
	assert.Equal(t, 4, spec["size"])

	var buf bytes.Buffer
	require.NoError(t, provider.Export(&buf, "csv"))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "DATE,FOPT", lines[0])
	assert.Equal(t, "2020-01-01,1000.5", lines[1])
}

func TestPolygonsSpecCountsDistinctPolygons(t *testing.T) {
	poly := Polygons{
		Name:   "GoC",
		X:      []float64{0, 1, 2, 10, 11},
		Y:      []float64{0, 1, 2, 10, 11},
		Z:      []float64{5, 6, 7, 8, 9},
		PolyID: []int{0, 0, 0, 1, 1},
	}
	provider, err := ProviderFor(poly)
	require.NoError(t, err)

	spec := provider.GetSpec()
	assert.Equal(t, 2, spec["npolys"])

	bbox := provider.GetBbox()
	require.NotNil(t, bbox)
	assert.Equal(t, 0.0, bbox.XMin)
	assert.Equal(t, 11.0, bbox.XMax)
}

func TestPolygonsExportCSV(t *testing.T) {
	poly := Polygons{
		X:      []float64{0, 1},
		Y:      []float64{2, 3},
		Z:      []float64{4, 5},
		PolyID: []int{0, 0},
	}
	provider, err := ProviderFor(poly)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, provider.Export(&buf, "csv"))
	assert.True(t, strings.HasPrefix(buf.String(), "X,Y,Z,ID\n"))

	buf.Reset()
	require.NoError(t, provider.Export(&buf, "csv|xtgeo"))
	assert.True(t, strings.HasPrefix(buf.String(), "X_UTME,Y_UTMN,Z_TVDSS,POLY_ID\n"))
}

func TestPointsProvider(t *testing.T) {
	points := Points{
		Name: "wellpicks",
		X:    []float64{1, 2, 3},
		Y:    []float64{4, 5, 6},
		Z:    []float64{7, 8, 9},
	}
	provider, err := ProviderFor(points)
	require.NoError(t, err)

	assert.Equal(t, meta.ClassPoints, provider.Class())
	assert.Equal(t, 3, provider.GetSpec()["size"])

	var buf bytes.Buffer
	require.NoError(t, provider.Export(&buf, "csv"))
	assert.True(t, strings.HasPrefix(buf.String(), "X,Y,Z\n"))

	buf.Reset()
	require.NoError(t, provider.Export(&buf, "csv|xtgeo"))
	assert.True(t, strings.HasPrefix(buf.String(), "X_UTME,Y_UTMN,Z_TVDSS\n"))
}

func TestCubeProvider(t *testing.T) {
	cube := Cube{
		Name: "seismic_amplitude",
		Ncol: 2, Nrow: 2, Nlay: 3,
		Xori: 0, Yori: 0, Zori: 1500,
		Xinc: 25, Yinc: 25, Zinc: 4,
		Values: make([]float32, 12),
	}
	provider, err := ProviderFor(cube)
	require.NoError(t, err)

	assert.Equal(t, meta.ClassCube, provider.Class())

	bbox := provider.GetBbox()
	require.NotNil(t, bbox)
	assert.Equal(t, 1500.0, *bbox.ZMin)
	assert.Equal(t, 1508.0, *bbox.ZMax)

	var buf bytes.Buffer
	require.NoError(t, provider.Export(&buf, "segy"))
	// Textual plus binary header, then 4 traces of 240+12 bytes.
	assert.Equal(t, 3200+400+4*(240+12), buf.Len())
}

func TestGridProviders(t *testing.T) {
	grid := Grid{
		Name: "Geogrid", Ncol: 4, Nrow: 3, Nlay: 2,
		XMin: 0, XMax: 100, YMin: 0, YMax: 100, ZMin: 1500, ZMax: 1600,
	}
	provider, err := ProviderFor(grid)
	require.NoError(t, err)

	assert.Equal(t, meta.ClassCPGrid, provider.Class())
	assert.Equal(t, "cornerpoint", provider.Layout())
	assert.Equal(t, 4, provider.GetSpec()["ncol"])
	require.NotNil(t, provider.GetBbox())

	var buf bytes.Buffer
	require.NoError(t, provider.Export(&buf, "roff"))
	assert.True(t, strings.HasPrefix(buf.String(), "roff-asc\n"))
	assert.Contains(t, buf.String(), "int nX 4")

	prop := GridProperty{
		Name: "PHIT", Ncol: 2, Nrow: 1, Nlay: 1,
		Values: []float64{0.25, 0.3},
	}
	propProvider, err := ProviderFor(prop)
	require.NoError(t, err)
	assert.Equal(t, meta.ClassCPGridProperty, propProvider.Class())
	assert.Nil(t, propProvider.GetBbox())

	buf.Reset()
	require.NoError(t, propProvider.Export(&buf, "roff"))
	assert.Contains(t, buf.String(), "array float data 2")
}

func TestDictionaryProvider(t *testing.T) {
	dict := Dictionary{
		Name: "parameters",
		Data: map[string]any{"SENSNAME": "rms_seed", "KH": 1500},
	}
	provider, err := ProviderFor(dict)
	require.NoError(t, err)

	assert.Equal(t, meta.ClassDictionary, provider.Class())
	assert.Nil(t, provider.GetSpec())

	var buf bytes.Buffer
	require.NoError(t, provider.Export(&buf, "json"))
	assert.Contains(t, buf.String(), `"SENSNAME": "rms_seed"`)
}
