package incidents

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestNewIncidentRequestAcceptsStringsAndNumbers(t *testing.T) {
	body := `{"case_number": 22222222, "date": "2023-11-01T04:52:00", "code": "1234", "incident": "Proactive Police Visit", "police_grid": 49, "neighborhood_number": "21", "block": 32}`
	var req NewIncidentRequest
	if err := json.Unmarshal([]byte(body), &req); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	inc, err := Validate(req)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if inc.CaseNumber != "22222222" || inc.Block != "32" {
		t.Fatalf("unexpected string fields %+v", inc)
	}
	if inc.Code != 1234 || inc.PoliceGrid != 49 || inc.NeighborhoodNumber != 21 {
		t.Fatalf("unexpected numeric fields %+v", inc)
	}
	if inc.Date != "2023-11-01" || inc.Time != "04:52:00" {
		t.Fatalf("expected time taken from date, got %q %q", inc.Date, inc.Time)
	}
}

func TestValidateRejectsBadFields(t *testing.T) {
	cases := map[string]struct {
		body  string
		field string
	}{
		"missing case":   {`{"date":"2023-01-01","time":"10:00","code":1,"police_grid":1,"neighborhood_number":1}`, "case_number"},
		"bad date":       {`{"case_number":"1","date":"01/02/2023","time":"10:00","code":1,"police_grid":1,"neighborhood_number":1}`, "date"},
		"missing time":   {`{"case_number":"1","date":"2023-01-01","code":1,"police_grid":1,"neighborhood_number":1}`, "time"},
		"bad time":       {`{"case_number":"1","date":"2023-01-01","time":"25:00","code":1,"police_grid":1,"neighborhood_number":1}`, "time"},
		"code not int":   {`{"case_number":"1","date":"2023-01-01","time":"10:00","code":"abc","police_grid":1,"neighborhood_number":1}`, "code"},
		"missing grid":   {`{"case_number":"1","date":"2023-01-01","time":"10:00","code":1,"neighborhood_number":1}`, "police_grid"},
		"null neighbor":  {`{"case_number":"1","date":"2023-01-01","time":"10:00","code":1,"police_grid":1,"neighborhood_number":null}`, "neighborhood_number"},
		"fractional int": {`{"case_number":"1","date":"2023-01-01","time":"10:00","code":1.5,"police_grid":1,"neighborhood_number":1}`, "code"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			var req NewIncidentRequest
			if err := json.Unmarshal([]byte(tc.body), &req); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			_, err := Validate(req)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if verr.Field != tc.field {
				t.Fatalf("expected field %s, got %s (%v)", tc.field, verr.Field, verr)
			}
		})
	}
}

func TestNormalizeDateTimePadsShortTime(t *testing.T) {
	d, tm, err := NormalizeDateTime("2023-11-01", "04:52")
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if d != "2023-11-01" || tm != "04:52:00" {
		t.Fatalf("unexpected %q %q", d, tm)
	}
}

func TestNormalizeDateTimeExplicitTimeWins(t *testing.T) {
	_, tm, err := NormalizeDateTime("2023-11-01T04:52:00", "05:00:00")
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if tm != "05:00:00" {
		t.Fatalf("expected explicit time, got %q", tm)
	}
}

func TestParseDateBound(t *testing.T) {
	for _, ok := range []string{"2022-05-01", "2022-05-01T10:00:00", ""} {
		if _, err := ParseDateBound("start_date", ok); err != nil {
			t.Fatalf("expected %q to be accepted: %v", ok, err)
		}
	}
	for _, bad := range []string{"2022-13-01", "yesterday", "2022-05-01 OR 1=1"} {
		if _, err := ParseDateBound("start_date", bad); err == nil {
			t.Fatalf("expected %q to be rejected", bad)
		}
	}
}

func TestFlexStringRejectsObjects(t *testing.T) {
	var req RemoveIncidentRequest
	if err := json.Unmarshal([]byte(`{"case_number": {"x": 1}}`), &req); err == nil {
		t.Fatalf("expected error for object case number")
	}
}
