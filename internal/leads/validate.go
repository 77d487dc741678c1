package leads

import (
	"regexp"
	"slices"
	"strings"

	"github.com/onetriage/leadintake/internal/phone"
)

// Validation messages shown inline next to each field.
const (
	MsgEmailRequired   = "Email is required"
	MsgEmailInvalid    = "Invalid email address"
	MsgPhoneRequired   = "Phone number is required"
	MsgPhoneInvalid    = "Invalid phone number (must be 10 digits)"
	MsgMessageTooShort = "Message must be at least 10 characters"
)

// MinMessageLength is the trimmed length a message must reach.
const MinMessageLength = 10

// Loose on purpose: this is a typing guard, the receiving system owns deliverability.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidateEmail reports whether email has a local@domain.tld shape.
func ValidateEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// ValidatePhone reports whether phone carries exactly ten digits.
func ValidatePhone(p string) bool {
	return phone.Valid(p)
}

// FieldErrors maps a field name to its current error message.
type FieldErrors map[string]string

// Validate runs every rule for the form and collects all failures.
func Validate(f Fields) FieldErrors {
	errs := FieldErrors{}
	switch v := f.(type) {
	case *ContactFields:
		requireText(errs, FieldFullName, v.FullName, "Name is required")
		checkEmail(errs, v.Email)
		checkPhone(errs, v.Phone)
		requireText(errs, FieldServiceInterest, v.ServiceInterest, "Service interest is required")
		checkMessage(errs, v.Message, "Message is required")
	case *PartnerFields:
		requireText(errs, FieldOrganization, v.Organization, "Organization name is required")
		requireText(errs, FieldName, v.Name, "Your name is required")
		requireText(errs, FieldTitle, v.Title, "Title/Role is required")
		checkEmail(errs, v.Email)
		checkPhone(errs, v.Phone)
		requireOption(errs, FieldOrgType, v.OrgType, OrganizationTypes, "Organization type is required")
		requireOption(errs, FieldPotentialUsers, v.PotentialUsers, PotentialUserBrackets, "Please select potential users")
		checkMessage(errs, v.Message, "Partnership interest is required")
	}
	return errs
}

// RequiredFields lists the fields Validate can reject for the form type.
func RequiredFields(ft FormType) []string {
	switch ft {
	case FormContact:
		return []string{FieldFullName, FieldEmail, FieldPhone, FieldServiceInterest, FieldMessage}
	case FormPartner:
		return []string{FieldOrganization, FieldName, FieldTitle, FieldEmail, FieldPhone, FieldOrgType, FieldPotentialUsers, FieldMessage}
	}
	return nil
}

func requireText(errs FieldErrors, field, value, msg string) {
	if strings.TrimSpace(value) == "" {
		errs[field] = msg
	}
}

// Select values the UI cannot produce count as unset.
func requireOption(errs FieldErrors, field, value string, options []string, msg string) {
	if value == "" || !slices.Contains(options, value) {
		errs[field] = msg
	}
}

func checkEmail(errs FieldErrors, email string) {
	switch {
	case strings.TrimSpace(email) == "":
		errs[FieldEmail] = MsgEmailRequired
	case !ValidateEmail(email):
		errs[FieldEmail] = MsgEmailInvalid
	}
}

func checkPhone(errs FieldErrors, p string) {
	switch {
	case strings.TrimSpace(p) == "":
		errs[FieldPhone] = MsgPhoneRequired
	case !ValidatePhone(p):
		errs[FieldPhone] = MsgPhoneInvalid
	}
}

func checkMessage(errs FieldErrors, msg, requiredMsg string) {
	trimmed := strings.TrimSpace(msg)
	switch {
	case trimmed == "":
		errs[FieldMessage] = requiredMsg
	case len([]rune(trimmed)) < MinMessageLength:
		errs[FieldMessage] = MsgMessageTooShort
	}
}
