package inspect

import (
	"fmt"
	"sort"
	"strings"

	"github.com/evenbre/fmio/pkg/meta"
)

// validFormats maps, per object class, the requestable output format to the
// file extension. Formats with an "|xtgeo" suffix keep the base extension
// and select the xtgeo column naming; the suffix is stripped before the
// format reaches the metadata.
var validFormats = map[meta.Class]map[string]string{
	meta.ClassSurface: {
		"irap_binary": ".gri",
	},
	meta.ClassTable: {
		"csv": ".csv",
	},
	meta.ClassPolygons: {
		"csv":       ".csv",
		"csv|xtgeo": ".csv",
	},
	meta.ClassPoints: {
		"csv":       ".csv",
		"csv|xtgeo": ".csv",
	},
	meta.ClassCube: {
		"segy": ".segy",
	},
	meta.ClassCPGrid: {
		"roff": ".roff",
	},
	meta.ClassCPGridProperty: {
		"roff": ".roff",
	},
	meta.ClassDictionary: {
		"json": ".json",
	},
}

// ValidateExtension resolves the file extension for a requested output
// format. A format outside the allowed set for the class is a
// ConfigurationError, naming the allowed alternatives.
func ValidateExtension(class meta.Class, subtype, format string) (string, error) {
	allowed, ok := validFormats[class]
	if !ok {
		return "", &meta.ConfigurationError{Message: fmt.Sprintf(
			"no output formats registered for class %q", class)}
	}
	ext, ok := allowed[format]
	if !ok {
		names := make([]string, 0, len(allowed))
		for name := range allowed {
			names = append(names, name)
		}
		sort.Strings(names)
		return "", &meta.ConfigurationError{Message: fmt.Sprintf(
			"format %q is not valid for %s, valid formats: %v", format, subtype, names)}
	}
	return ext, nil
}

// DataFormat strips a flavor suffix off a requested format, yielding the
// format name as recorded in the metadata. "csv|xtgeo" becomes "csv".
func DataFormat(format string) string {
	if i := strings.IndexByte(format, '|'); i >= 0 {
		return format[:i]
	}
	return format
}
