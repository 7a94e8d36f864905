package meta

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// Test Helper Functions
// ============================================================================

func validMasterdata() Masterdata {
	return Masterdata{
		Smda: Smda{
			CoordinateSystem: Reference{
				Identifier: "ST_WGS84_UTM37N_P32637",
				UUID:       NewUUID(),
			},
			Country: []Reference{
				{Identifier: "Norway", UUID: NewUUID()},
			},
			Discovery: []DiscoveryItem{
				{ShortIdentifier: "SomeDiscovery", UUID: NewUUID()},
			},
			Field: []Reference{
				{Identifier: "OseFax", UUID: NewUUID()},
			},
			StratigraphicColumn: Reference{
				Identifier: "DROGON_2020",
				UUID:       NewUUID(),
			},
		},
	}
}

func validFMU() FMU {
	caseUUID := NewUUID()
	iterUUID := UUIDFromString(caseUUID + "iter-0")
	return FMU{
		Case: Case{
			Name: "testcase",
			User: User{ID: "jriv"},
			UUID: caseUUID,
		},
		Model: Model{Name: "Drogon", Revision: "21.0.0"},
		Context: Context{
			Stage: StageRealization,
		},
		Realization: &Realization{
			ID:   3,
			Name: "realization-3",
			UUID: UUIDFromString(caseUUID + iterUUID + "3"),
		},
	}
}

func validObjectMetadata() *ObjectMetadata {
	return &ObjectMetadata{
		Class:      ClassSurface,
		Masterdata: validMasterdata(),
		Tracklog: []TracklogEvent{
			{
				Datetime: Datetime(time.Now()),
				Event:    "created",
				User:     User{ID: "jriv"},
			},
		},
		Source:  Source,
		Version: SchemaVersion,
		FMU:     validFMU(),
		Access: SsdlAccess{
			Access: Access{
				Asset:          Asset{Name: "Drogon"},
				Classification: ClassificationInternal,
			},
			Ssdl: Ssdl{AccessLevel: ClassificationInternal, RepInclude: true},
		},
		Data: Data{
			Name:         "VOLANTIS GP. Top",
			Content:      "depth",
			Format:       "irap_binary",
			IsPrediction: true,
			Spec:         map[string]any{"ncol": 10, "nrow": 12},
			Bbox:         &Bbox{XMin: 0, XMax: 100, YMin: 0, YMax: 50},
		},
		File: File{
			RelativePath: "realization-3/iter-0/share/results/maps/volantis_gp_top--depth.gri",
		},
		Display: Display{Name: "Volantis GP Top"},
	}
}

// ============================================================================
// Validation
// ============================================================================

func TestValidate_ValidObjectMetadata(t *testing.T) {
	doc := validObjectMetadata()
	require.NoError(t, Validate(doc))
}

func TestValidate_AggregationAndRealizationMutuallyExclusive(t *testing.T) {
	doc := validObjectMetadata()
	doc.FMU.Aggregation = &Aggregation{
		ID:             NewUUID(),
		Operation:      "mean",
		RealizationIDs: []int{0, 1, 2},
	}

	err := Validate(doc)
	require.Error(t, err)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Error(), "aggregation")
}

func TestValidate_ExactlyOneOfIterationRealization(t *testing.T) {
	doc := validObjectMetadata()
	doc.FMU.Iteration = &Iteration{
		Name: "iter-0",
		UUID: NewUUID(),
	}

	err := Validate(doc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exactly one")

	doc.FMU.Iteration = nil
	doc.FMU.Realization = nil
	err = Validate(doc)
	require.Error(t, err)
}

func TestValidate_SpecRequiredForSurfaceAndTable(t *testing.T) {
	for _, class := range []Class{ClassSurface, ClassTable} {
		doc := validObjectMetadata()
		doc.Class = class
		doc.Data.Spec = nil

		err := Validate(doc)
		require.Error(t, err, "class %s must require data.spec", class)
		assert.Contains(t, err.Error(), "spec")
	}

	// other classes do not require spec
	doc := validObjectMetadata()
	doc.Class = ClassPolygons
	doc.Data.Spec = nil
	assert.NoError(t, Validate(doc))
}

func TestValidate_NonASCIIPathRejected(t *testing.T) {
	doc := validObjectMetadata()
	doc.File.AbsolutePath = "/scratch/blåbær/case/file.gri"

	err := Validate(doc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "non-ascii")
}

func TestValidate_MissingTracklogRejected(t *testing.T) {
	doc := validObjectMetadata()
	doc.Tracklog = nil

	err := Validate(doc)
	require.Error(t, err)
}

func TestValidate_FutureTracklogRejected(t *testing.T) {
	doc := validObjectMetadata()
	ev := NewTracklogEvent("created")
	ev.Datetime = Datetime(time.Now().Add(48 * time.Hour))
	doc.Tracklog = []TracklogEvent{ev}

	err := Validate(doc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "future")
}

func TestValidate_InvalidClassRejected(t *testing.T) {
	doc := validObjectMetadata()
	doc.Class = "quilt"

	err := Validate(doc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "class")
}

func TestValidate_CaseMetadata(t *testing.T) {
	doc := &CaseMetadata{
		Class:      ClassCase,
		Masterdata: validMasterdata(),
		Tracklog:   []TracklogEvent{NewTracklogEvent("created")},
		Source:     Source,
		Version:    SchemaVersion,
		FMU: FMUCase{
			Case: Case{
				Name: "testcase",
				User: User{ID: "peesv"},
				UUID: NewUUID(),
			},
			Model: Model{Name: "Drogon", Revision: "21.0.0"},
		},
		Access: Access{Asset: Asset{Name: "Drogon"}},
	}
	require.NoError(t, Validate(doc))

	doc.FMU.Case.UUID = "not-a-uuid"
	err := Validate(doc)
	require.Error(t, err)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.NotEmpty(t, verr.Details)
}

// ============================================================================
// Round-trip
// ============================================================================

func TestRoundTrip_YAML(t *testing.T) {
	doc := validObjectMetadata()
	doc.Data.Time = &Time{
		T0: &TimePoint{Value: "2018-01-01T00:00:00", Label: "base"},
		T1: &TimePoint{Value: "2020-01-01T00:00:00", Label: "monitor"},
	}

	raw, err := Marshal(doc, FormatYAML)
	require.NoError(t, err)

	back, err := DecodeObject(raw)
	require.NoError(t, err)

	assert.Equal(t, doc.Class, back.Class)
	assert.Equal(t, doc.FMU.Realization.UUID, back.FMU.Realization.UUID)
	assert.Equal(t, doc.File.RelativePath, back.File.RelativePath)
	assert.Equal(t, doc.Data.Time.T1.Label, back.Data.Time.T1.Label)
	assert.Equal(t, doc.Data.Name, back.Data.Name)

	// decoded documents re-validate clean
	require.NoError(t, Validate(back))
}

func TestRoundTrip_JSON(t *testing.T) {
	doc := validObjectMetadata()

	raw, err := Marshal(doc, FormatJSON)
	require.NoError(t, err)

	// JSON is a YAML subset, the same decode path handles both
	back, err := DecodeObject(raw)
	require.NoError(t, err)
	assert.Equal(t, doc.Data.Content, back.Data.Content)
}

func TestDecode_UnknownClass(t *testing.T) {
	_, err := Decode([]byte("class: spreadsheet\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown metadata class")
}

func TestDecode_DispatchesOnClass(t *testing.T) {
	caseDoc := []byte(`class: case
masterdata: {}
`)
	// invalid case metadata still dispatches to the case variant
	_, err := Decode(caseDoc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "case metadata")
}
