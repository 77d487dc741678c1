package leads

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var recorderTracer = otel.Tracer("onetriage.internal.leads.recorder")

// Submission is what a Recorder writes: the normalized record and the API payload
// derived from it.
type Submission struct {
	Lead    *LeadRecord
	Payload RecordPayload
}

// Recorder writes a lead to the system of record. A nil error is the only signal
// that the submission succeeded.
type Recorder interface {
	Record(ctx context.Context, sub Submission) error
}

// APIRecorder posts submissions to the backend leads API, one endpoint per form.
type APIRecorder struct {
	endpoints map[FormType]string
	client    *http.Client
}

// NewAPIRecorder builds an APIRecorder. client may be nil.
func NewAPIRecorder(endpoints map[FormType]string, client *http.Client) *APIRecorder {
	clean := make(map[FormType]string, len(endpoints))
	for ft, u := range endpoints {
		if u = strings.TrimSpace(u); u != "" {
			clean[ft] = u
		}
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &APIRecorder{endpoints: clean, client: client}
}

// Record posts sub.Payload. Any non-2xx status is a *RecordError.
func (r *APIRecorder) Record(ctx context.Context, sub Submission) error {
	ft := sub.Lead.FormType
	endpoint, ok := r.endpoints[ft]
	if !ok {
		return &RecordError{Err: fmt.Errorf("no API endpoint configured for %s", ft)}
	}

	ctx, span := recorderTracer.Start(ctx, "leads.record.api")
	defer span.End()
	span.SetAttributes(attribute.String("onetriage.form_type", string(ft)))

	body, err := json.Marshal(sub.Payload)
	if err != nil {
		return fmt.Errorf("leads: marshal record payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return &RecordError{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "transport")
		return &RecordError{Err: err}
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 8192))

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		span.SetStatus(codes.Error, "status")
		return &RecordError{StatusCode: resp.StatusCode}
	}
	return nil
}

var _ Recorder = (*APIRecorder)(nil)
