package incidents

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// NewIncidentRequest is the body of PUT /new-incident. Numeric fields take
// either JSON numbers or numeric strings.
type NewIncidentRequest struct {
	CaseNumber         FlexString `json:"case_number"`
	Date               string     `json:"date"`
	Time               string     `json:"time"`
	Code               FlexInt    `json:"code"`
	Incident           string     `json:"incident"`
	PoliceGrid         FlexInt    `json:"police_grid"`
	NeighborhoodNumber FlexInt    `json:"neighborhood_number"`
	Block              FlexString `json:"block"`
}

type RemoveIncidentRequest struct {
	CaseNumber FlexString `json:"case_number"`
}

type FlexString string

func (f *FlexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = FlexString(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("expected string or number")
	}
	*f = FlexString(n.String())
	return nil
}

type FlexInt struct {
	Value int64
	Set   bool
	raw   string
}

func (f *FlexInt) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	*f = FlexInt{}
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	var raw string
	if len(b) > 0 && b[0] == '"' {
		if err := json.Unmarshal(b, &raw); err != nil {
			return err
		}
		raw = strings.TrimSpace(raw)
		if raw == "" {
			return nil
		}
	} else {
		raw = string(b)
	}
	f.raw = raw
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil
	}
	f.Value = v
	f.Set = true
	return nil
}

// valid reports whether a supplied value parsed as an integer.
func (f FlexInt) valid() bool {
	return f.Set || f.raw == ""
}

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

const (
	dateLayout      = "2006-01-02"
	dateTimeLayout  = "2006-01-02T15:04:05"
	timeLayout      = "15:04:05"
	shortTimeLayout = "15:04"
)

// ParseDateBound validates a start_date/end_date filter value. Both a bare
// date and a full timestamp are accepted; the value is returned unchanged so
// it compares against stored text.
func ParseDateBound(field, raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}
	if _, err := time.Parse(dateLayout, raw); err == nil {
		return raw, nil
	}
	if _, err := time.Parse(dateTimeLayout, raw); err == nil {
		return raw, nil
	}
	return "", invalid(field, "expected YYYY-MM-DD or YYYY-MM-DDTHH:MM:SS, got %q", raw)
}

// NormalizeDateTime validates the date and time of a new incident. When tm is
// empty and date carries a "T" time part, the time is taken from date.
func NormalizeDateTime(date, tm string) (string, string, error) {
	date = strings.TrimSpace(date)
	tm = strings.TrimSpace(tm)
	if d, t, ok := strings.Cut(date, "T"); ok {
		if tm == "" {
			tm = t
		}
		date = d
	}
	if date == "" {
		return "", "", invalid("date", "is required")
	}
	if _, err := time.Parse(dateLayout, date); err != nil {
		return "", "", invalid("date", "expected YYYY-MM-DD, got %q", date)
	}
	if tm == "" {
		return "", "", invalid("time", "is required")
	}
	if parsed, err := time.Parse(timeLayout, tm); err == nil {
		return date, parsed.Format(timeLayout), nil
	}
	if parsed, err := time.Parse(shortTimeLayout, tm); err == nil {
		return date, parsed.Format(timeLayout), nil
	}
	return "", "", invalid("time", "expected HH:MM or HH:MM:SS, got %q", tm)
}
