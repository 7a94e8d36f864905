package meta

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Format selects the on-disk serialization of metadata files.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// Extension returns the file suffix for the format, including the dot.
func (f Format) Extension() string {
	if f == FormatJSON {
		return ".json"
	}
	return ".yml"
}

// Marshal serializes a metadata document in the requested format.
func Marshal(doc any, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		return json.MarshalIndent(doc, "", "  ")
	case FormatYAML, "":
		return yaml.Marshal(doc)
	default:
		return nil, fmt.Errorf("unknown metadata format: %q", format)
	}
}

// classProbe peeks at the discriminator before the full decode.
type classProbe struct {
	Class Class `yaml:"class" json:"class"`
}

// Decode parses a serialized metadata document, dispatching on the "class"
// discriminator, and validates the result. YAML and JSON inputs are both
// accepted (JSON is a YAML subset).
//
// Returns either *CaseMetadata or *ObjectMetadata.
func Decode(data []byte) (any, error) {
	var probe classProbe
	if err := yaml.Unmarshal(data, &probe); err != nil {
		return nil, &ValidationError{
			Message: "metadata document is not valid YAML/JSON",
			Details: []string{err.Error()},
		}
	}

	switch {
	case probe.Class == ClassCase:
		var doc CaseMetadata
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, decodeError(probe.Class, err)
		}
		if err := Validate(&doc); err != nil {
			return nil, err
		}
		return &doc, nil

	case IsObjectClass(probe.Class):
		var doc ObjectMetadata
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, decodeError(probe.Class, err)
		}
		if err := Validate(&doc); err != nil {
			return nil, err
		}
		return &doc, nil

	default:
		return nil, Validation(fmt.Sprintf("unknown metadata class: %q", probe.Class))
	}
}

// DecodeObject is Decode restricted to object metadata.
func DecodeObject(data []byte) (*ObjectMetadata, error) {
	doc, err := Decode(data)
	if err != nil {
		return nil, err
	}
	obj, ok := doc.(*ObjectMetadata)
	if !ok {
		return nil, Validation("expected object metadata, got case metadata")
	}
	return obj, nil
}

func decodeError(class Class, err error) error {
	return &ValidationError{
		Message: fmt.Sprintf("cannot decode %s metadata", class),
		Details: []string{err.Error()},
	}
}
