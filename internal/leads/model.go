package leads

import (
	"fmt"
	"strings"
)

// FormType identifies which marketing form produced a lead.
type FormType string

const (
	FormContact FormType = "Contact"
	FormPartner FormType = "Partner"
)

// ParseFormType accepts the canonical names case-insensitively ("contact", "Partner").
func ParseFormType(raw string) (FormType, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "contact":
		return FormContact, nil
	case "partner":
		return FormPartner, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormType, raw)
}

// Status is the downstream lifecycle of a lead. The intake only ever writes StatusNew.
type Status string

const (
	StatusNew       Status = "New"
	StatusContacted Status = "Contacted"
	StatusConverted Status = "Converted"
	StatusClosed    Status = "Closed"
)

// Field names as the site posts them.
const (
	FieldFullName               = "fullName"
	FieldName                   = "name"
	FieldEmail                  = "email"
	FieldPhone                  = "phone"
	FieldCompany                = "company"
	FieldServiceInterest        = "serviceInterest"
	FieldMessage                = "message"
	FieldOrganization           = "organization"
	FieldTitle                  = "title"
	FieldOrgType                = "orgType"
	FieldPotentialUsers         = "potentialUsers"
	FieldWebsite                = "website"
	FieldRegion                 = "region"
	FieldPreferredContactMethod = "preferredContactMethod"
	FieldBestTimeToContact      = "bestTimeToContact"
)

// Select options offered by the partner form.
var (
	OrganizationTypes     = []string{"Healthcare Provider", "Insurance", "Corporate", "Technology Partner", "Other"}
	PotentialUserBrackets = []string{"1-50", "51-200", "201-500", "501-1000", "1000+"}
)

// Fields is the per-form set of raw values. Implemented by *ContactFields and
// *PartnerFields only.
type Fields interface {
	FormType() FormType
	// Names lists the fields in display order.
	Names() []string
	Get(name string) (string, bool)
	Set(name, value string) error
	Reset()
}

// NewFields returns an empty field set for the form type.
func NewFields(ft FormType) (Fields, error) {
	switch ft {
	case FormContact:
		return &ContactFields{}, nil
	case FormPartner:
		return &PartnerFields{}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormType, ft)
}

// ContactFields backs the "Contact Us" form.
type ContactFields struct {
	FullName        string `json:"fullName"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	Company         string `json:"company"`
	ServiceInterest string `json:"serviceInterest"`
	Message         string `json:"message"`
}

func (c *ContactFields) FormType() FormType { return FormContact }

func (c *ContactFields) Names() []string {
	return []string{FieldFullName, FieldEmail, FieldPhone, FieldCompany, FieldServiceInterest, FieldMessage}
}

func (c *ContactFields) field(name string) *string {
	switch name {
	case FieldFullName:
		return &c.FullName
	case FieldEmail:
		return &c.Email
	case FieldPhone:
		return &c.Phone
	case FieldCompany:
		return &c.Company
	case FieldServiceInterest:
		return &c.ServiceInterest
	case FieldMessage:
		return &c.Message
	}
	return nil
}

func (c *ContactFields) Get(name string) (string, bool) {
	p := c.field(name)
	if p == nil {
		return "", false
	}
	return *p, true
}

func (c *ContactFields) Set(name, value string) error {
	p := c.field(name)
	if p == nil {
		return fmt.Errorf("%w: %s has no field %q", ErrUnknownField, FormContact, name)
	}
	*p = value
	return nil
}

func (c *ContactFields) Reset() { *c = ContactFields{} }

// PartnerFields backs the partnership inquiry form. The last four fields are
// optional extensions some site variants collect.
type PartnerFields struct {
	Organization           string `json:"organization"`
	Name                   string `json:"name"`
	Title                  string `json:"title"`
	Email                  string `json:"email"`
	Phone                  string `json:"phone"`
	OrgType                string `json:"orgType"`
	PotentialUsers         string `json:"potentialUsers"`
	Message                string `json:"message"`
	Website                string `json:"website,omitempty"`
	Region                 string `json:"region,omitempty"`
	PreferredContactMethod string `json:"preferredContactMethod,omitempty"`
	BestTimeToContact      string `json:"bestTimeToContact,omitempty"`
}

func (p *PartnerFields) FormType() FormType { return FormPartner }

func (p *PartnerFields) Names() []string {
	return []string{
		FieldOrganization, FieldName, FieldTitle, FieldEmail, FieldPhone,
		FieldOrgType, FieldPotentialUsers, FieldMessage,
		FieldWebsite, FieldRegion, FieldPreferredContactMethod, FieldBestTimeToContact,
	}
}

func (p *PartnerFields) field(name string) *string {
	switch name {
	case FieldOrganization:
		return &p.Organization
	case FieldName:
		return &p.Name
	case FieldTitle:
		return &p.Title
	case FieldEmail:
		return &p.Email
	case FieldPhone:
		return &p.Phone
	case FieldOrgType:
		return &p.OrgType
	case FieldPotentialUsers:
		return &p.PotentialUsers
	case FieldMessage:
		return &p.Message
	case FieldWebsite:
		return &p.Website
	case FieldRegion:
		return &p.Region
	case FieldPreferredContactMethod:
		return &p.PreferredContactMethod
	case FieldBestTimeToContact:
		return &p.BestTimeToContact
	}
	return nil
}

func (p *PartnerFields) Get(name string) (string, bool) {
	f := p.field(name)
	if f == nil {
		return "", false
	}
	return *f, true
}

func (p *PartnerFields) Set(name, value string) error {
	f := p.field(name)
	if f == nil {
		return fmt.Errorf("%w: %s has no field %q", ErrUnknownField, FormPartner, name)
	}
	*f = value
	return nil
}

func (p *PartnerFields) Reset() { *p = PartnerFields{} }

// Values copies the current field values into a map keyed by field name.
func Values(f Fields) map[string]string {
	out := make(map[string]string, len(f.Names()))
	for _, name := range f.Names() {
		v, _ := f.Get(name)
		out[name] = v
	}
	return out
}
