package leads

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownFormType is returned when a form type outside the closed set is requested.
	ErrUnknownFormType = errors.New("leads: unknown form type")

	// ErrUnknownField is returned when a field name does not belong to the form.
	ErrUnknownField = errors.New("leads: unknown field")

	// ErrInvalidPhone is returned when a record is built from a phone that is not 10 digits.
	ErrInvalidPhone = errors.New("leads: phone must be exactly 10 digits")

	// ErrSubmissionInFlight is returned by a Guard when the key is already held.
	ErrSubmissionInFlight = errors.New("leads: submission already in progress")
)

// RecordError reports a failed system-of-record write. StatusCode is zero when
// the request never produced a response.
type RecordError struct {
	StatusCode int
	Err        error
}

func (e *RecordError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("API call failed with status %d", e.StatusCode)
	}
	if e.Err != nil {
		return "API call failed: " + e.Err.Error()
	}
	return "API call failed"
}

func (e *RecordError) Unwrap() error { return e.Err }
