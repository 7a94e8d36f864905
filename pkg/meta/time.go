package meta

import (
	"encoding/json"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// Datetime is a tracklog timestamp. It accepts both naive and
// timezone-aware date-times on decode; documents produced elsewhere in the
// ecosystem commonly carry naive timestamps, and an upload step may add the
// timezone later.
type Datetime time.Time

// datetimeLayouts are tried in order on decode.
var datetimeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

const datetimeOutLayout = "2006-01-02T15:04:05"

// Time converts back to the standard library representation.
func (d Datetime) Time() time.Time {
	return time.Time(d)
}

// IsZero reports whether the timestamp is unset.
func (d Datetime) IsZero() bool {
	return time.Time(d).IsZero()
}

func (d Datetime) String() string {
	return time.Time(d).Format(datetimeOutLayout)
}

func parseDatetime(s string) (Datetime, error) {
	for _, layout := range datetimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Datetime(t), nil
		}
	}
	return Datetime{}, fmt.Errorf("invalid datetime %q", s)
}

// MarshalYAML implements yaml.Marshaler.
func (d Datetime) MarshalYAML() (any, error) {
	return d.String(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Datetime) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := parseDatetime(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// MarshalJSON implements json.Marshaler.
func (d Datetime) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Datetime) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := parseDatetime(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
