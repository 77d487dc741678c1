package leads

// NotificationPayload is posted to the workflow-automation webhook.
type NotificationPayload struct {
	FormType  FormType `json:"formType"`
	Timestamp string   `json:"timestamp"`
	Source    string   `json:"source"`
	Data      any      `json:"data"`
}

// ContactNotification is the data block for a contact inquiry.
type ContactNotification struct {
	Name            string  `json:"name"`
	Email           string  `json:"email"`
	Phone           string  `json:"phone"`
	Company         *string `json:"company"`
	ServiceInterest string  `json:"serviceInterest"`
	Message         string  `json:"message"`
	Source          string  `json:"source"`
}

// PartnerNotification is the data block for a partnership inquiry.
type PartnerNotification struct {
	Organization           string `json:"organization"`
	Name                   string `json:"name"`
	Title                  string `json:"title"`
	Email                  string `json:"email"`
	Phone                  string `json:"phone"`
	OrganizationType       string `json:"organizationType"`
	PotentialUsers         string `json:"potentialUsers"`
	Message                string `json:"message"`
	Website                string `json:"website,omitempty"`
	Region                 string `json:"region,omitempty"`
	PreferredContactMethod string `json:"preferredContactMethod,omitempty"`
	BestTimeToContact      string `json:"bestTimeToContact,omitempty"`
	Source                 string `json:"source"`
}

// RecordPayload is posted to the system-of-record API.
type RecordPayload struct {
	Lead        RecordLead `json:"lead"`
	SubmittedAt string     `json:"submittedAt"`
	Source      string     `json:"source"`
}

// RecordLead carries the submitter. Partner extensions are omitted for contacts.
type RecordLead struct {
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	Company         string `json:"company"`
	ServiceInterest string `json:"serviceInterest,omitempty"`
	Message         string `json:"message"`

	Title                  string `json:"title,omitempty"`
	OrganizationType       string `json:"organizationType,omitempty"`
	PotentialUsers         string `json:"potentialUsers,omitempty"`
	Website                string `json:"website,omitempty"`
	Region                 string `json:"region,omitempty"`
	PreferredContactMethod string `json:"preferredContactMethod,omitempty"`
	BestTimeToContact      string `json:"bestTimeToContact,omitempty"`
}

// BuildNotification projects a record into the webhook shape. siteLabel is the
// human-readable origin carried inside data.
func BuildNotification(rec *LeadRecord, siteLabel string) NotificationPayload {
	payload := NotificationPayload{
		FormType:  rec.FormType,
		Timestamp: rec.Timestamp,
		Source:    rec.Source,
	}
	switch rec.FormType {
	case FormPartner:
		payload.Data = PartnerNotification{
			Organization:           rec.OrganizationName,
			Name:                   rec.Name,
			Title:                  rec.Title,
			Email:                  rec.Email,
			Phone:                  rec.Phone,
			OrganizationType:       rec.OrganizationType,
			PotentialUsers:         rec.PotentialUsers,
			Message:                rec.Message,
			Website:                rec.Website,
			Region:                 rec.Region,
			PreferredContactMethod: rec.PreferredContactMethod,
			BestTimeToContact:      rec.BestTimeToContact,
			Source:                 siteLabel,
		}
	default:
		payload.Data = ContactNotification{
			Name:            rec.Name,
			Email:           rec.Email,
			Phone:           rec.Phone,
			Company:         rec.Company,
			ServiceInterest: rec.ServiceInterest,
			Message:         rec.Message,
			Source:          siteLabel,
		}
	}
	return payload
}

// BuildRecordPayload projects a record into the system-of-record shape.
func BuildRecordPayload(rec *LeadRecord, siteLabel string) RecordPayload {
	first, last := SplitName(rec.Name)
	return RecordPayload{
		Lead: RecordLead{
			FirstName:              first,
			LastName:               last,
			Email:                  rec.Email,
			Phone:                  rec.Phone,
			Company:                rec.CompanyOrEmpty(),
			ServiceInterest:        rec.ServiceInterest,
			Message:                rec.Message,
			Title:                  rec.Title,
			OrganizationType:       rec.OrganizationType,
			PotentialUsers:         rec.PotentialUsers,
			Website:                rec.Website,
			Region:                 rec.Region,
			PreferredContactMethod: rec.PreferredContactMethod,
			BestTimeToContact:      rec.BestTimeToContact,
		},
		SubmittedAt: rec.Timestamp,
		Source:      siteLabel,
	}
}

// ReplyAddress returns the submitter's email so alert emails can be answered directly.
func (p NotificationPayload) ReplyAddress() string {
	switch d := p.Data.(type) {
	case ContactNotification:
		return d.Email
	case PartnerNotification:
		return d.Email
	}
	return ""
}
