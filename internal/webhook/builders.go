package webhook

import "strings"

// BuildRow projects payload onto columns. The row always has len(columns)
// cells; missing and null values become empty strings.
func BuildRow(payload Payload, columns []string) []string {
	row := make([]string, len(columns))
	for i, name := range columns {
		row[i] = Coerce(payload[name])
	}
	return row
}

// RequestContext is the request metadata the lead builder falls back on.
type RequestContext struct {
	ClientAddr   string
	ForwardedFor string
	Referer      string
}

// clientIP prefers the socket address over the first forwarded hop.
func (rc RequestContext) clientIP() string {
	if addr := strings.TrimSpace(rc.ClientAddr); addr != "" {
		return addr
	}
	first, _, _ := strings.Cut(rc.ForwardedFor, ",")
	return strings.TrimSpace(first)
}

// LeadPayload is the object posted to TrackDrive.
type LeadPayload map[string]string

// BuildLeadPayload renames and filters payload into a TrackDrive lead.
// Unlike BuildRow, absent, null and empty-string values are omitted rather
// than sent blank. The consent certificate overrides any mapped value, and
// ip_address/source_url fall back to the request when the payload lacks them.
func BuildLeadPayload(payload Payload, fields map[string]string, leadToken string, rc RequestContext) LeadPayload {
	lead := LeadPayload{LeadTokenField: leadToken}

	for inbound, outbound := range fields {
		if payload.hasValue(inbound) {
			lead[outbound] = Coerce(payload[inbound])
		}
	}

	if payload.hasValue(ConsentCertField) {
		lead[ConsentCertLeadField] = Coerce(payload[ConsentCertField])
	}

	if _, ok := lead[IPAddressField]; !ok {
		lead[IPAddressField] = rc.clientIP()
	}
	if _, ok := lead[SourceURLField]; !ok {
		lead[SourceURLField] = rc.Referer
	}

	return lead
}
