package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/onetriage/leadintake/internal/form"
	"github.com/onetriage/leadintake/internal/leads"
	"github.com/onetriage/leadintake/internal/observability/metrics"
	"github.com/onetriage/leadintake/pkg/logging"
)

// SessionHeader lets the site pin the submission guard to one form instance.
const SessionHeader = "X-Form-Session"

const maxLeadBodyBytes = 64 << 10

// LeadsHandlerConfig wires the public lead endpoints.
type LeadsHandlerConfig struct {
	Dispatcher form.Dispatcher
	// Guard rejects a second submission for the same session while one is running.
	Guard leads.Guard
	// FallbackEmails maps each form to the inbox named in its failure banner.
	FallbackEmails map[leads.FormType]string
	Metrics        *metrics.LeadMetrics
	Logger         *logging.Logger
}

// LeadsHandler serves the contact and partner form endpoints.
type LeadsHandler struct {
	dispatcher form.Dispatcher
	guard      leads.Guard
	fallback   map[leads.FormType]string
	metrics    *metrics.LeadMetrics
	logger     *logging.Logger
}

func NewLeadsHandler(cfg LeadsHandlerConfig) *LeadsHandler {
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	if cfg.Guard == nil {
		cfg.Guard = leads.NewMemoryGuard()
	}
	return &LeadsHandler{
		dispatcher: cfg.Dispatcher,
		guard:      cfg.Guard,
		fallback:   cfg.FallbackEmails,
		metrics:    cfg.Metrics,
		logger:     cfg.Logger,
	}
}

// LeadReceipt is the part of the record echoed back on success.
type LeadReceipt struct {
	ID        int64          `json:"id"`
	Timestamp string         `json:"timestamp"`
	FormType  leads.FormType `json:"formType"`
}

// SubmitResponse is the 201 body.
type SubmitResponse struct {
	Message string      `json:"message"`
	Lead    LeadReceipt `json:"lead"`
}

// ErrorResponse carries field errors, or the "submit" banner.
type ErrorResponse struct {
	Errors map[string]string `json:"errors"`
}

// Submit handles POST /api/leads/{formType}. The body is a flat JSON object of raw
// field values; each is applied the way an edit in the browser would be.
func (h *LeadsHandler) Submit(w http.ResponseWriter, r *http.Request) {
	ft, err := leads.ParseFormType(chi.URLParam(r, "formType"))
	if err != nil {
		jsonError(w, http.StatusNotFound, "unknown form type")
		return
	}
	logger := h.logger.With("form_type", string(ft))

	var values map[string]string
	r.Body = http.MaxBytesReader(w, r.Body, maxLeadBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&values); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	ctrl, err := form.New(ft, h.dispatcher,
		form.WithMessages(form.MessagesFor(ft, h.fallback[ft])),
		form.WithResetDelay(0),
		form.WithLogger(logger),
	)
	if err != nil {
		logger.Error("failed to build form controller", "error", err)
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}

	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := ctrl.OnFieldChange(name, values[name]); err != nil {
			if errors.Is(err, leads.ErrUnknownField) {
				logger.Debug("ignoring unknown form field", "field", name)
				continue
			}
			jsonError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	if !ctrl.Validate() {
		h.metrics.ObserveSubmission(string(ft), metrics.OutcomeInvalid)
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{Errors: ctrl.State().Errors})
		return
	}

	release, err := h.guard.Acquire(r.Context(), guardKey(ft, r, values))
	switch {
	case errors.Is(err, leads.ErrSubmissionInFlight):
		h.metrics.ObserveSubmission(string(ft), metrics.OutcomeInFlight)
		writeJSON(w, http.StatusConflict, ErrorResponse{Errors: map[string]string{
			form.SubmitErrorKey: "submission already in progress",
		}})
		return
	case err != nil:
		// Guard storage outage: accept the lead unguarded rather than lose it.
		logger.Warn("submission guard unavailable", "error", err)
		release = func() {}
	}
	defer release()

	if err := ctrl.Submit(r.Context()); err != nil {
		st := ctrl.State()
		if errors.Is(err, form.ErrInvalid) {
			h.metrics.ObserveSubmission(string(ft), metrics.OutcomeInvalid)
			writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{Errors: st.Errors})
			return
		}
		h.metrics.ObserveSubmission(string(ft), metrics.OutcomeFailed)
		writeJSON(w, http.StatusBadGateway, ErrorResponse{Errors: map[string]string{
			form.SubmitErrorKey: st.Errors[form.SubmitErrorKey],
		}})
		return
	}

	st := ctrl.State()
	h.metrics.ObserveSubmission(string(ft), metrics.OutcomeSuccess)
	resp := SubmitResponse{Message: st.SuccessMessage}
	if st.Lead != nil {
		resp.Lead = LeadReceipt{ID: st.Lead.ID, Timestamp: st.Lead.Timestamp, FormType: st.Lead.FormType}
	}
	writeJSON(w, http.StatusCreated, resp)
}

// guardKey prefers the session header and falls back to the submitter's email.
func guardKey(ft leads.FormType, r *http.Request, values map[string]string) string {
	if session := strings.TrimSpace(r.Header.Get(SessionHeader)); session != "" {
		return string(ft) + ":" + session
	}
	return string(ft) + ":" + strings.ToLower(strings.TrimSpace(values[leads.FieldEmail]))
}

// FormSchema is the GET /api/leads/forms/{formType} body.
type FormSchema struct {
	FormType leads.FormType      `json:"formType"`
	Fields   []string            `json:"fields"`
	Required []string            `json:"required"`
	Options  map[string][]string `json:"options,omitempty"`
}

// Schema describes a form so the site renders the same option sets the validator enforces.
func (h *LeadsHandler) Schema(w http.ResponseWriter, r *http.Request) {
	ft, err := leads.ParseFormType(chi.URLParam(r, "formType"))
	if err != nil {
		jsonError(w, http.StatusNotFound, "unknown form type")
		return
	}
	fields, _ := leads.NewFields(ft)
	schema := FormSchema{
		FormType: ft,
		Fields:   fields.Names(),
		Required: leads.RequiredFields(ft),
	}
	if ft == leads.FormPartner {
		schema.Options = map[string][]string{
			leads.FieldOrgType:        leads.OrganizationTypes,
			leads.FieldPotentialUsers: leads.PotentialUserBrackets,
		}
	}
	writeJSON(w, http.StatusOK, schema)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func jsonError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
