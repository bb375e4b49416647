package webhook

// Columns is the header row of the sheet. Order is contractual: every row is
// aligned to it and the sheet's first row is kept equal to it.
var Columns = []string{
	"full_name",
	"phone",
	"email",
	"gender",
	"date_of_birth",
	"address",
	"city",
	"state",
	"postal_code",
	"country",
	"diagnosis",
	"date_of_exposure",
	"brief_description_of_your_situation",
	"tcpa_consent_given",
	"xxTrustedFormCertUrl",
	"current_date",
}

// LeadFields maps inbound field names to TrackDrive field names. Only keys
// listed here are forwarded as lead fields.
var LeadFields = map[string]string{
	"first_name":            "first_name",
	"last_name":             "last_name",
	"caller_id":             "caller_id",
	"email":                 "email",
	"address":               "address",
	"city":                  "city",
	"state":                 "state",
	"zip":                   "zip",
	"accident_date":         "accident_date",
	"ip_address":            "ip_address",
	"source_url":            "source_url",
	"trusted_form_cert_url": "trusted_form_cert_url",
	"tcpa_opt_in":           "tcpa_opt_in",
}

const (
	// LeadTokenField carries the lead source token on every lead.
	LeadTokenField = "lead_token"
	// ConsentCertField is the inbound TrustedForm certificate field.
	ConsentCertField = "xxTrustedFormCertUrl"
	// ConsentCertLeadField is where the certificate goes on the lead.
	ConsentCertLeadField = "trusted_form_cert_url"
	// IPAddressField and SourceURLField are filled from the request when absent.
	IPAddressField = "ip_address"
	SourceURLField = "source_url"
)

// DefaultColumns returns a copy of Columns.
func DefaultColumns() []string {
	return append([]string(nil), Columns...)
}

// DefaultLeadFields returns a copy of LeadFields.
func DefaultLeadFields() map[string]string {
	fields := make(map[string]string, len(LeadFields))
	for k, v := range LeadFields {
		fields[k] = v
	}
	return fields
}
