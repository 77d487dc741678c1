package leads

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateEmail(t *testing.T) {
	assert.True(t, ValidateEmail("john@example.com"))
	assert.True(t, ValidateEmail("a.b+c@mail.example.co"))
	assert.False(t, ValidateEmail("john@example"))
	assert.False(t, ValidateEmail("john example.com"))
	assert.False(t, ValidateEmail("john@@example.com"))
	assert.False(t, ValidateEmail(" john@example.com"))
	assert.False(t, ValidateEmail(""))
}

func TestValidatePhone(t *testing.T) {
	assert.True(t, ValidatePhone("(555) 123-4567"))
	assert.False(t, ValidatePhone("555-1234"))
}

func TestValidate_ContactAllEmpty(t *testing.T) {
	errs := Validate(&ContactFields{})

	assert.Equal(t, FieldErrors{
		FieldFullName:        "Name is required",
		FieldEmail:           MsgEmailRequired,
		FieldPhone:           MsgPhoneRequired,
		FieldServiceInterest: "Service interest is required",
		FieldMessage:         "Message is required",
	}, errs)
	for _, name := range RequiredFields(FormContact) {
		assert.NotEmpty(t, errs[name], "missing error for %s", name)
	}
}

func TestValidate_PartnerAllEmpty(t *testing.T) {
	errs := Validate(&PartnerFields{})

	require.Len(t, errs, len(RequiredFields(FormPartner)))
	assert.Equal(t, "Organization name is required", errs[FieldOrganization])
	assert.Equal(t, "Your name is required", errs[FieldName])
	assert.Equal(t, "Title/Role is required", errs[FieldTitle])
	assert.Equal(t, "Organization type is required", errs[FieldOrgType])
	assert.Equal(t, "Please select potential users", errs[FieldPotentialUsers])
	assert.Equal(t, "Partnership interest is required", errs[FieldMessage])
}

func TestValidate_ContactInvalidValues(t *testing.T) {
	errs := Validate(&ContactFields{
		FullName:        "   ",
		Email:           "john@example",
		Phone:           "555-1234",
		ServiceInterest: "Care coordination",
		Message:         "  too short ",
	})

	assert.Equal(t, "Name is required", errs[FieldFullName])
	assert.Equal(t, MsgEmailInvalid, errs[FieldEmail])
	assert.Equal(t, MsgPhoneInvalid, errs[FieldPhone])
	assert.Equal(t, MsgMessageTooShort, errs[FieldMessage])
	assert.NotContains(t, errs, FieldServiceInterest)
}

func TestValidate_MessageLengthIsTrimmed(t *testing.T) {
	f := validContact()
	f.Message = "   123456789   "
	assert.Equal(t, MsgMessageTooShort, Validate(f)[FieldMessage])

	f.Message = strings.Repeat("x", MinMessageLength)
	assert.Empty(t, Validate(f))
}

// Length is counted in characters, so multi-byte and astral input needs ten of them.
func TestValidate_MessageLengthCountsCharacters(t *testing.T) {
	f := validContact()
	f.Message = strings.Repeat("😀", 5)
	assert.Equal(t, MsgMessageTooShort, Validate(f)[FieldMessage])

	f.Message = strings.Repeat("é", MinMessageLength-1)
	assert.Equal(t, MsgMessageTooShort, Validate(f)[FieldMessage])

	f.Message = strings.Repeat("😀", MinMessageLength)
	assert.Empty(t, Validate(f))
}

func TestValidate_PartnerSelectOptions(t *testing.T) {
	f := validPartner()
	assert.Empty(t, Validate(f))

	f.OrgType = "Pharmacy"
	f.PotentialUsers = "5000+"
	errs := Validate(f)
	assert.Equal(t, "Organization type is required", errs[FieldOrgType])
	assert.Equal(t, "Please select potential users", errs[FieldPotentialUsers])
}

func TestValidate_ValidContact(t *testing.T) {
	assert.Empty(t, Validate(validContact()))
}

func validContact() *ContactFields {
	return &ContactFields{
		FullName:        "Jane Doe",
		Email:           "jane@x.com",
		Phone:           "(555) 123-4567",
		ServiceInterest: "Care coordination",
		Message:         "Need a demo of the platform",
	}
}

func validPartner() *PartnerFields {
	return &PartnerFields{
		Organization:   "Mercy Health",
		Name:           "Sam Lee",
		Title:          "VP Partnerships",
		Email:          "sam@mercy.org",
		Phone:          "(555) 987-6543",
		OrgType:        "Healthcare Provider",
		PotentialUsers: "201-500",
		Message:        "We would like to white-label the platform.",
		Region:         "Midwest",
	}
}
