package webhook

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestCoerce(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  string
	}{
		{"true", true, "true"},
		{"false", false, "false"},
		{"nil", nil, ""},
		{"string", "Jane", "Jane"},
		{"empty string", "", ""},
		{"json integer", json.Number("42"), "42"},
		{"json decimal", json.Number("4.50"), "4.5"},
		{"json exponent", json.Number("1e21"), "1000000000000000000000"},
		{"json negative exponent", json.Number("1.5e-7"), "0.00000015"},
		{"json beyond int64", json.Number("9223372036854775808"), "9223372036854775808"},
		{"float", float64(42), "42"},
		{"int", 7, "7"},
		{"object", map[string]any{"a": json.Number("1")}, `{"a":1}`},
		{"array", []any{"x", true}, `["x",true]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Coerce(tt.value); got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestBuildRow_AlignsToColumns(t *testing.T) {
	payload := Payload{"full_name": "Jane Doe", "tcpa_consent_given": true, "unknown": "ignored"}

	row := BuildRow(payload, Columns)

	want := []string{"Jane Doe", "", "", "", "", "", "", "", "", "", "", "", "", "true", "", ""}
	if !reflect.DeepEqual(row, want) {
		t.Fatalf("expected %q, got %q", want, row)
	}
}

func TestBuildRow_LengthAndDeterminism(t *testing.T) {
	payloads := []Payload{
		{},
		{"phone": json.Number("5551234"), "email": nil, "current_date": "2024-05-01"},
		{"xxTrustedFormCertUrl": "https://cert.example/1", "extra": false},
	}

	for _, payload := range payloads {
		first := BuildRow(payload, Columns)
		second := BuildRow(payload, Columns)
		if len(first) != len(Columns) {
			t.Fatalf("expected %d cells, got %d", len(Columns), len(first))
		}
		if !reflect.DeepEqual(first, second) {
			t.Fatalf("expected identical rows, got %q and %q", first, second)
		}
		for i, column := range Columns {
			if first[i] != Coerce(payload[column]) {
				t.Fatalf("column %s: expected %q, got %q", column, Coerce(payload[column]), first[i])
			}
		}
	}
}

func TestBuildLeadPayload_OmitsEmptyFields(t *testing.T) {
	payload := Payload{"first_name": "Jane", "email": "j@x.com", "last_name": "", "caller_id": nil}
	rc := RequestContext{ClientAddr: "203.0.113.9", Referer: "https://form.example/start"}

	lead := BuildLeadPayload(payload, LeadFields, "tok-1", rc)

	want := LeadPayload{
		"lead_token": "tok-1",
		"first_name": "Jane",
		"email":      "j@x.com",
		"ip_address": "203.0.113.9",
		"source_url": "https://form.example/start",
	}
	if !reflect.DeepEqual(lead, want) {
		t.Fatalf("expected %v, got %v", want, lead)
	}
}

func TestBuildLeadPayload_ConsentCertOverrides(t *testing.T) {
	payload := Payload{
		"trusted_form_cert_url": "https://cert.example/old",
		"xxTrustedFormCertUrl":  "https://cert.example/new",
	}

	lead := BuildLeadPayload(payload, LeadFields, "tok", RequestContext{})

	if lead["trusted_form_cert_url"] != "https://cert.example/new" {
		t.Fatalf("expected consent cert to override, got %q", lead["trusted_form_cert_url"])
	}
}

func TestBuildLeadPayload_PayloadOriginWins(t *testing.T) {
	payload := Payload{"ip_address": "198.51.100.1", "source_url": "https://landing.example"}
	rc := RequestContext{ClientAddr: "203.0.113.9", Referer: "https://other.example"}

	lead := BuildLeadPayload(payload, LeadFields, "tok", rc)

	if lead["ip_address"] != "198.51.100.1" || lead["source_url"] != "https://landing.example" {
		t.Fatalf("expected payload values to win, got %v", lead)
	}
}

func TestBuildLeadPayload_ForwardedForFallback(t *testing.T) {
	rc := RequestContext{ForwardedFor: "198.51.100.7, 10.0.0.1"}

	lead := BuildLeadPayload(Payload{}, LeadFields, "tok", rc)

	if lead["ip_address"] != "198.51.100.7" {
		t.Fatalf("expected first forwarded hop, got %q", lead["ip_address"])
	}
	if value, ok := lead["source_url"]; !ok || value != "" {
		t.Fatalf("expected empty source_url without referer, got %q (present %v)", value, ok)
	}
}

func TestBuildLeadPayload_RenamesFields(t *testing.T) {
	fields := map[string]string{"zip": "postal_code", "accident_date": "incident_date"}
	payload := Payload{"zip": json.Number("10001"), "accident_date": "2024-01-02", "first_name": "dropped"}

	lead := BuildLeadPayload(payload, fields, "tok", RequestContext{ClientAddr: "192.0.2.1"})

	if lead["postal_code"] != "10001" || lead["incident_date"] != "2024-01-02" {
		t.Fatalf("expected renamed fields, got %v", lead)
	}
	if _, ok := lead["first_name"]; ok {
		t.Fatalf("expected unmapped field to be dropped, got %v", lead)
	}
}
