// Package form holds the per-instance state machine behind a lead form:
// field edits, validation, single-flight submission and the post-success reset.
package form

import (
	"context"
	"errors"
	"maps"
	"sync"
	"time"

	"github.com/onetriage/leadintake/internal/leads"
	"github.com/onetriage/leadintake/internal/phone"
	"github.com/onetriage/leadintake/pkg/logging"
)

var (
	// ErrInvalid is returned by Submit when validation fails. Field errors are in State.
	ErrInvalid = errors.New("form: validation failed")

	// ErrSubmitInFlight is returned by Submit while a previous submission is running.
	ErrSubmitInFlight = errors.New("form: submission already in progress")
)

// SubmitErrorKey is the error-map key for the submit-level banner.
const SubmitErrorKey = "submit"

// DefaultResetDelay is how long the success banner stays before the form clears.
const DefaultResetDelay = 3 * time.Second

// Dispatcher sends validated fields out. *leads.Dispatcher satisfies it.
type Dispatcher interface {
	Dispatch(ctx context.Context, f leads.Fields) (*leads.LeadRecord, error)
}

// Phase is where the controller sits in Idle → Submitting → Success|Failed.
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseSubmitting Phase = "submitting"
	PhaseSuccess    Phase = "success"
	PhaseFailed     Phase = "failed"
)

// State is an immutable snapshot for the presentation layer.
type State struct {
	FormType       leads.FormType
	Phase          Phase
	Values         map[string]string
	Errors         map[string]string
	Submitting     bool
	ShowSuccess    bool
	SuccessMessage string
	// Lead is the record from the last successful submission, nil after reset.
	Lead           *leads.LeadRecord
}

// Controller owns one form instance. Safe for concurrent use.
type Controller struct {
	mu             sync.Mutex
	fields         leads.Fields
	errors         leads.FieldErrors
	phase          Phase
	submitting     bool
	showSuccess    bool
	successMessage string
	lead           *leads.LeadRecord
	resetTimer     Timer
	listeners      []func(State)

	dispatcher Dispatcher
	messages   Messages
	resetDelay time.Duration
	clock      Clock
	logger     *logging.Logger
}

// Option customizes a Controller.
type Option func(*Controller)

// WithResetDelay overrides the post-success reset delay. d <= 0 disables the reset.
func WithResetDelay(d time.Duration) Option {
	return func(c *Controller) { c.resetDelay = d }
}

// WithClock swaps the timer source.
func WithClock(clock Clock) Option {
	return func(c *Controller) { c.clock = clock }
}

// WithMessages overrides the success and failure copy.
func WithMessages(m Messages) Option {
	return func(c *Controller) { c.messages = m }
}

func WithLogger(logger *logging.Logger) Option {
	return func(c *Controller) { c.logger = logger }
}

// New creates a controller for an empty form of the given type.
func New(ft leads.FormType, dispatcher Dispatcher, opts ...Option) (*Controller, error) {
	fields, err := leads.NewFields(ft)
	if err != nil {
		return nil, err
	}
	if dispatcher == nil {
		return nil, errors.New("form: dispatcher required")
	}
	c := &Controller{
		fields:     fields,
		errors:     leads.FieldErrors{},
		phase:      PhaseIdle,
		dispatcher: dispatcher,
		messages:   DefaultMessages(ft),
		resetDelay: DefaultResetDelay,
		clock:      realClock{},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = logging.Default()
	}
	return c, nil
}

// OnChange registers fn to receive a snapshot after every state change.
func (c *Controller) OnChange(fn func(State)) {
	c.mu.Lock()
	c.listeners = append(c.listeners, fn)
	c.mu.Unlock()
}

// OnFieldChange stores a new raw value. Phone input is formatted as typed; an
// existing error on the edited field is cleared. Other fields are not revalidated.
func (c *Controller) OnFieldChange(name, raw string) error {
	if name == leads.FieldPhone {
		raw = phone.Format(raw)
	}
	c.mu.Lock()
	if err := c.fields.Set(name, raw); err != nil {
		c.mu.Unlock()
		return err
	}
	if c.errors[name] != "" {
		delete(c.errors, name)
	}
	c.mu.Unlock()
	c.emit()
	return nil
}

// Validate replaces the whole error map with a fresh run of every rule.
func (c *Controller) Validate() bool {
	c.mu.Lock()
	ok := c.validateLocked()
	c.mu.Unlock()
	c.emit()
	return ok
}

func (c *Controller) validateLocked() bool {
	c.errors = leads.Validate(c.fields)
	return len(c.errors) == 0
}

// Submit validates and, when valid, dispatches. On success the success banner is
// shown and the form clears after the reset delay; on failure the submit banner is
// set and values are kept.
func (c *Controller) Submit(ctx context.Context) error {
	c.mu.Lock()
	if c.submitting {
		c.mu.Unlock()
		return ErrSubmitInFlight
	}
	if !c.validateLocked() {
		c.mu.Unlock()
		c.emit()
		return ErrInvalid
	}
	c.stopResetLocked()
	c.submitting = true
	c.showSuccess = false
	c.lead = nil
	c.phase = PhaseSubmitting
	snapshot := cloneFields(c.fields)
	c.mu.Unlock()
	c.emit()

	rec, err := c.dispatcher.Dispatch(ctx, snapshot)

	c.mu.Lock()
	c.submitting = false
	if err != nil {
		c.phase = PhaseFailed
		c.errors[SubmitErrorKey] = c.messages.Failure
		c.logger.Error("form submission failed", "form_type", string(c.fields.FormType()), "error", err)
	} else {
		c.phase = PhaseSuccess
		c.showSuccess = true
		c.successMessage = c.messages.Success
		c.lead = rec
		c.scheduleResetLocked()
	}
	c.mu.Unlock()
	c.emit()
	return err
}

func (c *Controller) scheduleResetLocked() {
	if c.resetDelay <= 0 {
		return
	}
	var timer Timer
	timer = c.clock.AfterFunc(c.resetDelay, func() {
		c.mu.Lock()
		if c.resetTimer != timer {
			c.mu.Unlock()
			return
		}
		c.resetTimer = nil
		c.fields.Reset()
		c.showSuccess = false
		c.lead = nil
		c.phase = PhaseIdle
		c.mu.Unlock()
		c.emit()
	})
	c.resetTimer = timer
}

func (c *Controller) stopResetLocked() {
	if c.resetTimer != nil {
		c.resetTimer.Stop()
		c.resetTimer = nil
	}
}

// State returns a snapshot of the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateLocked()
}

func (c *Controller) stateLocked() State {
	return State{
		FormType:       c.fields.FormType(),
		Phase:          c.phase,
		Values:         leads.Values(c.fields),
		Errors:         maps.Clone(c.errors),
		Submitting:     c.submitting,
		ShowSuccess:    c.showSuccess,
		SuccessMessage: c.successMessage,
		Lead:           c.lead,
	}
}

func (c *Controller) emit() {
	c.mu.Lock()
	if len(c.listeners) == 0 {
		c.mu.Unlock()
		return
	}
	st := c.stateLocked()
	listeners := append([]func(State){}, c.listeners...)
	c.mu.Unlock()
	for _, fn := range listeners {
		fn(st)
	}
}

// cloneFields copies values so the dispatcher never sees later edits.
func cloneFields(f leads.Fields) leads.Fields {
	out, _ := leads.NewFields(f.FormType())
	for name, v := range leads.Values(f) {
		_ = out.Set(name, v)
	}
	return out
}
