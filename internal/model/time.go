package model

import (
	"bytes"
	"encoding/json"
	"time"
)

// timeLayouts are tried in order; all but the first are zone-less.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// Time is a backend timestamp. Zone-less values are read as UTC. A value
// that matches no layout leaves Time zero and is kept verbatim in Raw.
type Time struct {
	time.Time
	Raw string
}

// At wraps t.
func At(t time.Time) Time { return Time{Time: t} }

func (t *Time) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		*t = Time{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	*t = Time{Raw: s}
	for _, layout := range timeLayouts {
		if p, err := time.Parse(layout, s); err == nil {
			t.Time = p
			return nil
		}
	}
	return nil
}

func (t Time) MarshalJSON() ([]byte, error) {
	if t.Time.IsZero() && t.Raw != "" {
		return json.Marshal(t.Raw)
	}
	return t.Time.MarshalJSON()
}

// Valid reports whether the value parsed.
func (t Time) Valid() bool { return !t.Time.IsZero() }
