package form

import "github.com/onetriage/leadintake/internal/leads"

// Default fallback inboxes used when configuration leaves them empty.
const (
	DefaultSupportEmail = "support@onetriage.com"
	DefaultSalesEmail   = "sales@onetriage.com"
)

// Messages is the per-form copy shown after a submission.
type Messages struct {
	Success string
	Failure string
}

// MessagesFor returns the copy for ft with fallbackEmail in the failure banner.
func MessagesFor(ft leads.FormType, fallbackEmail string) Messages {
	switch ft {
	case leads.FormPartner:
		if fallbackEmail == "" {
			fallbackEmail = DefaultSalesEmail
		}
		return Messages{
			Success: "Thank you for your interest! Our partnerships team will contact you within 24 hours.",
			Failure: "Please email us directly at " + fallbackEmail,
		}
	default:
		if fallbackEmail == "" {
			fallbackEmail = DefaultSupportEmail
		}
		return Messages{
			Success: "Thank you! Your message has been sent successfully. We'll respond within 24 hours.",
			Failure: "There was an error sending your message. Please try again, or email us directly at " + fallbackEmail,
		}
	}
}

// DefaultMessages is MessagesFor with the built-in inboxes.
func DefaultMessages(ft leads.FormType) Messages {
	return MessagesFor(ft, "")
}
