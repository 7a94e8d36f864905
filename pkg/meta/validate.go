package meta

import (
	"fmt"
	"reflect"
	"time"

	"github.com/go-playground/validator/v10"
)

// validate is the singleton validator instance
var validate *validator.Validate

func init() {
	validate = validator.New()

	// Let the validator see Datetime as a plain time.Time so that
	// "required" means "not the zero time".
	validate.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if dt, ok := field.Interface().(Datetime); ok {
			return dt.Time()
		}
		return nil
	}, Datetime{})
}

// Validate checks a metadata document against the schema.
//
// Struct tags cover per-field rules; the cross-field invariants of the
// document model are explicit post-decode checks:
//   - fmu.aggregation and fmu.realization are mutually exclusive
//   - exactly one of fmu.iteration and fmu.realization is set
//   - class table/surface requires data.spec
//   - file paths must be ASCII only
//
// On failure the full underlying error list is preserved for diagnostics.
func Validate(doc any) error {
	switch d := doc.(type) {
	case *CaseMetadata:
		if err := validate.Struct(d); err != nil {
			return schemaError("case metadata fails schema validation", err)
		}
		return ValidateTracklogTimes(d.Tracklog)

	case *ObjectMetadata:
		if !IsObjectClass(d.Class) {
			return Validation(fmt.Sprintf("invalid object metadata class: %q", d.Class))
		}
		if err := validate.Struct(d); err != nil {
			return schemaError("object metadata fails schema validation", err)
		}
		if err := ValidateTracklogTimes(d.Tracklog); err != nil {
			return err
		}
		return validateObjectRules(d)

	default:
		return fmt.Errorf("unsupported metadata document type %T", doc)
	}
}

// validateObjectRules performs the cross-field checks that cannot be
// expressed in struct tags.
func validateObjectRules(d *ObjectMetadata) error {
	if d.FMU.Aggregation != nil && d.FMU.Realization != nil {
		return Validation(
			"both 'aggregation' and 'realization' cannot be set at the same time, set only one")
	}

	if (d.FMU.Iteration == nil) == (d.FMU.Realization == nil) {
		return Validation(
			"exactly one of 'fmu.iteration' and 'fmu.realization' must be set")
	}

	if (d.Class == ClassTable || d.Class == ClassSurface) && d.Data.Spec == nil {
		return Validation(fmt.Sprintf(
			"when 'class' is %q, 'data' must contain the 'spec' field", d.Class))
	}

	for _, p := range []string{
		d.File.AbsolutePath,
		d.File.RelativePath,
		d.File.AbsolutePathSymlink,
		d.File.RelativePathSymlink,
	} {
		if !isASCII(p) {
			return Validation(fmt.Sprintf(
				"path has non-ascii elements which is not supported: %s", p))
		}
	}

	return nil
}

func isASCII(s string) bool {
	for _, r := range s {
		if r > 127 {
			return false
		}
	}
	return true
}

// schemaError converts validator errors into a ValidationError that keeps
// the per-field error list. Schema validation failures are never swallowed.
func schemaError(message string, err error) error {
	ve := &ValidationError{Message: message}
	if errs, ok := err.(validator.ValidationErrors); ok {
		for _, e := range errs {
			ve.Details = append(ve.Details, fmt.Sprintf(
				"%s: failed on '%s' tag (value: %v)", e.Namespace(), e.Tag(), e.Value()))
		}
	} else {
		ve.Details = append(ve.Details, err.Error())
	}
	return ve
}

// ValidateTracklogTimes rejects tracklog events whose timestamp did not
// parse to a usable time. Decode already enforces parseability; this guards
// documents assembled in memory.
func ValidateTracklogTimes(events []TracklogEvent) error {
	for i, ev := range events {
		if ev.Datetime.IsZero() {
			return Validation(fmt.Sprintf("tracklog[%d]: missing or unparsable datetime", i))
		}
		if ev.Datetime.Time().After(time.Now().Add(24 * time.Hour)) {
			return Validation(fmt.Sprintf("tracklog[%d]: datetime is in the future", i))
		}
	}
	return nil
}
