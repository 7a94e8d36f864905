package content

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"

	"github.com/evenbre/fmio/pkg/meta"
)

// validate is the singleton validator instance
var validate = validator.New()

// Validate checks a content declaration and returns the resolved content
// name plus the normalized extra-fields payload, if any.
//
// The declaration is either absent (nil), a plain string, or a single-key
// mapping of content name to an extra-fields mapping:
//
//	"depth"
//	map[string]any{"fluid_contact": map[string]any{"contact": "owc"}}
//
// Absent content resolves to the "unset" sentinel with no extra fields;
// warning the user about unset content is the caller's responsibility.
func Validate(proposed any) (string, map[string]any, error) {
	switch decl := proposed.(type) {
	case nil:
		return Unset, nil, nil

	case string:
		if decl == "" {
			return Unset, nil, nil
		}
		if !IsValid(decl) {
			return "", nil, invalidName(decl)
		}
		if RequiresExtra(decl) {
			return "", nil, meta.Validation(fmt.Sprintf(
				"content %q requires additional input", decl))
		}
		return decl, nil, nil

	case map[string]any:
		return validateMapping(decl)

	default:
		return "", nil, meta.Validation(fmt.Sprintf(
			"the 'content' must be a string or a single-key mapping, got %T", proposed))
	}
}

func validateMapping(decl map[string]any) (string, map[string]any, error) {
	if len(decl) != 1 {
		return "", nil, meta.Validation(fmt.Sprintf(
			"a content mapping must have exactly one key, got %d", len(decl)))
	}

	var name string
	var payload any
	for key, value := range decl {
		name, payload = key, value
	}

	if !IsValid(name) {
		return "", nil, invalidName(name)
	}

	fields, ok := payload.(map[string]any)
	if !ok {
		return "", nil, meta.Validation(
			"content is incorrectly formatted: when giving content as a mapping it must " +
				"be {content_name: {extra_key: extra_value}} where content_name is in the " +
				"list of valid contents and the extra keys are valid for that content")
	}

	normalized, err := validateFields(name, fields)
	if err != nil {
		return "", nil, err
	}
	return name, normalized, nil
}

// validateFields decodes the extra-fields mapping into the typed schema for
// the content, rejecting unknown fields and type mismatches, and returns the
// normalized payload with absent optional fields omitted.
func validateFields(name string, fields map[string]any) (map[string]any, error) {
	def := taxonomy[name]
	if def.newFields == nil {
		return nil, meta.Validation(fmt.Sprintf(
			"content %q does not take extra fields", name))
	}

	target := def.newFields()
	var md mapstructure.Metadata
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      target,
		ErrorUnused: true,
		Metadata:    &md,
	})
	if err != nil {
		return nil, fmt.Errorf("building content decoder: %w", err)
	}

	if err := decoder.Decode(fields); err != nil {
		return nil, fieldError(name, []string{err.Error()})
	}

	present := make(map[string]bool, len(md.Keys))
	for _, key := range md.Keys {
		present[strings.ToLower(key)] = true
	}
	var missing []string
	for _, key := range def.requiredKeys {
		if !present[key] {
			missing = append(missing, fmt.Sprintf("%s: required field is missing", key))
		}
	}
	if len(missing) > 0 {
		return nil, fieldError(name, missing)
	}

	if err := validate.Struct(target); err != nil {
		var details []string
		if errs, ok := err.(validator.ValidationErrors); ok {
			for _, e := range errs {
				details = append(details, fmt.Sprintf(
					"%s: failed on '%s' tag", strings.ToLower(e.Field()), e.Tag()))
			}
		} else {
			details = append(details, err.Error())
		}
		return nil, fieldError(name, details)
	}

	return normalize(target, fields)
}

// normalize round-trips the typed struct through JSON so the payload comes
// back as a plain map with decoded (typed) values, then drops the declared
// fields the user never provided.
func normalize(target any, input map[string]any) (map[string]any, error) {
	raw, err := json.Marshal(target)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	for key := range out {
		if _, given := input[key]; !given {
			delete(out, key)
		}
	}
	return out, nil
}

func invalidName(name string) error {
	return meta.Validation(fmt.Sprintf(
		"invalid content: <%s>! Valid content: %s", name, strings.Join(Names(), ", ")))
}

func fieldError(name string, details []string) error {
	return &meta.ValidationError{
		Message: fmt.Sprintf(
			"the content %q has one or more errors that make it impossible to create "+
				"valid content; the data can still be exported but no metadata will be made",
			name),
		Details: details,
	}
}
