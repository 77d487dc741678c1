package leads

import (
	"strings"
	"time"

	"github.com/onetriage/leadintake/internal/phone"
)

// isoMillis matches the browser's Date.toISOString output.
const isoMillis = "2006-01-02T15:04:05.000Z"

// FormatTimestamp renders t as UTC ISO-8601 with millisecond precision.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(isoMillis)
}

// LeadRecord is the normalized inquiry. It shapes both outbound payloads and the
// diagnostic log entry, and lives only for the duration of one dispatch.
type LeadRecord struct {
	ID         int64    `json:"id"`
	Timestamp  string   `json:"timestamp"`
	Source     string   `json:"website_source"`
	FormType   FormType `json:"form_type"`
	Name       string   `json:"name"`
	Email      string   `json:"email"`
	Phone      string   `json:"phone"`
	Company    *string  `json:"company"`
	Message    string   `json:"message"`
	Status     Status   `json:"status"`
	AssignedTo *string  `json:"assigned_to"`

	ServiceInterest string `json:"service_interest,omitempty"`

	OrganizationName       string `json:"organization_name,omitempty"`
	Title                  string `json:"title,omitempty"`
	OrganizationType       string `json:"organization_type,omitempty"`
	PotentialUsers         string `json:"potential_users,omitempty"`
	Website                string `json:"website,omitempty"`
	Region                 string `json:"region,omitempty"`
	PreferredContactMethod string `json:"preferred_contact_method,omitempty"`
	BestTimeToContact      string `json:"best_time_to_contact,omitempty"`

	CreatedAt time.Time `json:"-"`
}

// NewLeadRecord builds a record from already validated fields.
func NewLeadRecord(f Fields, source string, now time.Time) (*LeadRecord, error) {
	rec := &LeadRecord{
		ID:        now.UnixMilli(),
		Timestamp: FormatTimestamp(now),
		Source:    source,
		FormType:  f.FormType(),
		Status:    StatusNew,
		CreatedAt: now.UTC(),
	}

	var rawPhone string
	switch v := f.(type) {
	case *ContactFields:
		rawPhone = v.Phone
		rec.Name = v.FullName
		rec.Email = v.Email
		rec.Company = optional(v.Company)
		rec.Message = v.Message
		rec.ServiceInterest = v.ServiceInterest
	case *PartnerFields:
		rawPhone = v.Phone
		rec.Name = v.Name
		rec.Email = v.Email
		rec.Company = optional(v.Organization)
		rec.Message = v.Message
		rec.OrganizationName = v.Organization
		rec.Title = v.Title
		rec.OrganizationType = v.OrgType
		rec.PotentialUsers = v.PotentialUsers
		rec.Website = v.Website
		rec.Region = v.Region
		rec.PreferredContactMethod = v.PreferredContactMethod
		rec.BestTimeToContact = v.BestTimeToContact
	default:
		return nil, ErrUnknownFormType
	}

	if !phone.Valid(rawPhone) {
		return nil, ErrInvalidPhone
	}
	rec.Phone = phone.Format(rawPhone)
	return rec, nil
}

// CompanyOrEmpty dereferences Company.
func (r *LeadRecord) CompanyOrEmpty() string {
	if r.Company == nil {
		return ""
	}
	return *r.Company
}

// SplitName splits a full name on whitespace: the first token is the first name,
// the rest joined by single spaces is the last name.
func SplitName(full string) (first, last string) {
	parts := strings.Fields(full)
	if len(parts) == 0 {
		return "", ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
