package content

import (
	"errors"
	"strings"
	"testing"

	"github.com/evenbre/fmio/pkg/meta"
)

func TestValidate_AbsentContent(t *testing.T) {
	name, extra, err := Validate(nil)
	if err != nil {
		t.Fatalf("Expected no error for absent content, got: %v", err)
	}
	if name != Unset {
		t.Errorf("Expected sentinel %q, got %q", Unset, name)
	}
	if extra != nil {
		t.Errorf("Expected nil extra fields, got %v", extra)
	}
}

func TestValidate_AllPlainStringsInTaxonomy(t *testing.T) {
	for _, name := range Names() {
		if RequiresExtra(name) {
			continue
		}
		resolved, extra, err := Validate(name)
		if err != nil {
			t.Errorf("Expected %q to validate, got: %v", name, err)
		}
		if resolved != name || extra != nil {
			t.Errorf("Expected (%q, nil), got (%q, %v)", name, resolved, extra)
		}
	}
}

func TestValidate_UnknownString(t *testing.T) {
	_, _, err := Validate("bathymetry")
	if err == nil {
		t.Fatal("Expected error for unknown content")
	}
	var verr *meta.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Expected ValidationError, got %T", err)
	}
	if !strings.Contains(err.Error(), "bathymetry") {
		t.Errorf("Expected offending value in message, got: %v", err)
	}
	if !strings.Contains(err.Error(), "depth") {
		t.Errorf("Expected valid content list in message, got: %v", err)
	}
}

func TestValidate_StringRequiringExtraInput(t *testing.T) {
	for _, name := range []string{"fluid_contact", "field_outline", "field_region"} {
		_, _, err := Validate(name)
		if err == nil {
			t.Errorf("Expected error for %q without extra input", name)
		}
	}
}

func TestValidate_MappingWithValidFields(t *testing.T) {
	name, extra, err := Validate(map[string]any{
		"fluid_contact": map[string]any{"contact": "owc", "truncated": true},
	})
	if err != nil {
		t.Fatalf("Expected valid fluid_contact mapping, got: %v", err)
	}
	if name != "fluid_contact" {
		t.Errorf("Expected fluid_contact, got %q", name)
	}
	if extra["contact"] != "owc" {
		t.Errorf("Expected contact=owc, got %v", extra["contact"])
	}
	if extra["truncated"] != true {
		t.Errorf("Expected truncated=true, got %v", extra["truncated"])
	}
}

func TestValidate_MappingOmitsAbsentOptionalFields(t *testing.T) {
	_, extra, err := Validate(map[string]any{
		"seismic": map[string]any{"attribute": "amplitude"},
	})
	if err != nil {
		t.Fatalf("Expected valid seismic mapping, got: %v", err)
	}
	if len(extra) != 1 {
		t.Errorf("Expected only provided fields in output, got %v", extra)
	}
	if extra["attribute"] != "amplitude" {
		t.Errorf("Expected attribute=amplitude, got %v", extra["attribute"])
	}
}

func TestValidate_MappingUnknownContent(t *testing.T) {
	_, _, err := Validate(map[string]any{
		"weather": map[string]any{"wind": "strong"},
	})
	if err == nil {
		t.Fatal("Expected error for unknown content key")
	}
}

func TestValidate_MappingUnknownExtraField(t *testing.T) {
	_, _, err := Validate(map[string]any{
		"fluid_contact": map[string]any{"contact": "owc", "color": "blue"},
	})
	if err == nil {
		t.Fatal("Expected error for unknown extra field")
	}
	var verr *meta.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Expected ValidationError, got %T", err)
	}
	if len(verr.Details) == 0 {
		t.Error("Expected error details to be preserved")
	}
}

func TestValidate_MappingMissingRequiredField(t *testing.T) {
	_, _, err := Validate(map[string]any{
		"field_region": map[string]any{},
	})
	if err == nil {
		t.Fatal("Expected error for missing required field 'id'")
	}
}

func TestValidate_FieldRegionZeroIDAllowed(t *testing.T) {
	_, extra, err := Validate(map[string]any{
		"field_region": map[string]any{"id": 0},
	})
	if err != nil {
		t.Fatalf("Expected id=0 to be valid, got: %v", err)
	}
	if extra["id"] != float64(0) {
		t.Errorf("Expected id present in output, got %v", extra)
	}
}

func TestValidate_MappingTypeMismatch(t *testing.T) {
	_, _, err := Validate(map[string]any{
		"seismic": map[string]any{"filter_size": "big"},
	})
	if err == nil {
		t.Fatal("Expected error for type mismatch")
	}
}

func TestValidate_MappingPayloadNotAMapping(t *testing.T) {
	_, _, err := Validate(map[string]any{"seismic": "amplitude"})
	if err == nil {
		t.Fatal("Expected format error for non-mapping payload")
	}
	if !strings.Contains(err.Error(), "incorrectly formatted") {
		t.Errorf("Expected format description, got: %v", err)
	}
}

func TestValidate_RejectsOtherShapes(t *testing.T) {
	for _, bad := range []any{42, []string{"depth"}, 3.14} {
		_, _, err := Validate(bad)
		if err == nil {
			t.Errorf("Expected error for content of type %T", bad)
		}
	}
}
