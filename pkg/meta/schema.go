package meta

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
)

// ContractualPaths lists the metadata paths guaranteed stable across schema
// versions. Downstream consumers should depend only on these.
var ContractualPaths = []string{
	"access",
	"class",
	"data.alias",
	"data.bbox",
	"data.content",
	"data.format",
	"data.grid_model",
	"data.is_observation",
	"data.is_prediction",
	"data.name",
	"data.offset",
	"data.seismic.attribute",
	"data.spec.columns",
	"data.stratigraphic",
	"data.stratigraphic_alias",
	"data.tagname",
	"data.time",
	"data.vertical_domain",
	"file.checksum_md5",
	"file.relative_path",
	"file.size_bytes",
	"fmu.aggregation.operation",
	"fmu.aggregation.realization_ids",
	"fmu.case",
	"fmu.context.stage",
	"fmu.iteration.name",
	"fmu.iteration.uuid",
	"fmu.model",
	"fmu.realization.id",
	"fmu.realization.name",
	"fmu.realization.uuid",
	"fmu.workflow",
	"masterdata",
	"source",
	"tracklog.datetime",
	"tracklog.event",
	"tracklog.user.id",
	"version",
}

// JSONSchema renders Datetime as a date-time string in reflected schemas.
func (Datetime) JSONSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type:   "string",
		Format: "date-time",
	}
}

// DumpSchema produces the standalone JSON Schema artifact for the metadata
// document union.
//
// The document model is reflected per variant and combined into a oneOf
// discriminated on "class". The cross-field rules that Validate enforces in
// code are expressed as schema "dependencies" and "if/then" clauses so that
// external validators apply the same constraints.
func DumpSchema() (map[string]any, error) {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: true,
		DoNotReference:            true,
	}

	caseSchema, err := reflectToMap(&reflector, &CaseMetadata{})
	if err != nil {
		return nil, err
	}
	objectSchema, err := reflectToMap(&reflector, &ObjectMetadata{})
	if err != nil {
		return nil, err
	}

	objectClasses := make([]string, 0, len(ObjectClasses))
	for _, c := range ObjectClasses {
		objectClasses = append(objectClasses, string(c))
	}

	constrainClass(caseSchema, []string{string(ClassCase)})
	constrainClass(objectSchema, objectClasses)

	// aggregation XOR realization
	objectProps, _ := objectSchema["properties"].(map[string]any)
	if fmuSchema, ok := objectProps["fmu"].(map[string]any); ok {
		fmuSchema["dependencies"] = map[string]any{
			"aggregation": map[string]any{"not": map[string]any{"required": []string{"realization"}}},
			"realization": map[string]any{"not": map[string]any{"required": []string{"aggregation"}}},
		}
	}

	return map[string]any{
		"$schema":      "https://json-schema.org/draft/2020-12/schema",
		"$id":          "fmu_meta.json",
		"$contractual": ContractualPaths,
		"title":        "FMU metadata",
		"description":  "Schema for FMU case and data object metadata documents",
		"version":      SchemaVersion,
		"oneOf":        []any{caseSchema, objectSchema},
		// class table/surface requires data.spec
		"if": map[string]any{
			"properties": map[string]any{
				"class": map[string]any{"enum": []string{string(ClassTable), string(ClassSurface)}},
			},
		},
		"then": map[string]any{
			"properties": map[string]any{
				"data": map[string]any{"required": []string{"spec"}},
			},
		},
	}, nil
}

// DumpSchemaJSON renders the schema artifact as indented JSON.
func DumpSchemaJSON() ([]byte, error) {
	schema, err := DumpSchema()
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(schema, "", "  ")
}

func reflectToMap(reflector *jsonschema.Reflector, v any) (map[string]any, error) {
	schema := reflector.Reflect(v)
	raw, err := json.Marshal(schema)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	// top-level $schema ids belong on the union wrapper only
	delete(out, "$schema")
	delete(out, "$id")
	return out, nil
}

// constrainClass pins the "class" property of a variant schema to the given
// enum, making the oneOf discriminated.
func constrainClass(schema map[string]any, classes []string) {
	props, ok := schema["properties"].(map[string]any)
	if !ok {
		return
	}
	props["class"] = map[string]any{
		"type": "string",
		"enum": classes,
	}
}
