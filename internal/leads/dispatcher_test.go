package leads

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/onetriage/leadintake/internal/notify"
	"github.com/onetriage/leadintake/internal/observability/metrics"
	"github.com/onetriage/leadintake/pkg/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// callLog records the order in which the two outbound calls happen.
type callLog struct {
	mu    sync.Mutex
	calls []string
}

func (c *callLog) add(name string) {
	c.mu.Lock()
	c.calls = append(c.calls, name)
	c.mu.Unlock()
}

type recordingNotifier struct {
	log     *callLog
	payload any
	result  notify.Result
}

func (n *recordingNotifier) Notify(_ context.Context, route string, payload any) notify.Result {
	n.log.add("notify:" + route)
	n.payload = payload
	return n.result
}

type recordingRecorder struct {
	log *callLog
	sub Submission
	err error
}

func (r *recordingRecorder) Record(_ context.Context, sub Submission) error {
	r.log.add("record")
	r.sub = sub
	return r.err
}

func newTestDispatcher(n notify.Notifier, r Recorder) *Dispatcher {
	return NewDispatcher(DispatcherConfig{
		Notifier: n,
		Recorder: r,
		Logger:   logging.Discard(),
		Metrics:  metrics.NewLeadMetrics(prometheus.NewRegistry()),
		Now:      func() time.Time { return fixedNow },
	})
}

func TestDispatch_NotifiesThenRecords(t *testing.T) {
	log := &callLog{}
	n := &recordingNotifier{log: log, result: notify.Result{Channel: "webhook", StatusCode: 200}}
	r := &recordingRecorder{log: log}

	rec, err := newTestDispatcher(n, r).Dispatch(context.Background(), validContact())

	require.NoError(t, err)
	assert.Equal(t, []string{"notify:Contact", "record"}, log.calls)
	assert.Equal(t, "Jane", r.sub.Payload.Lead.FirstName)
	assert.Equal(t, "Doe", r.sub.Payload.Lead.LastName)
	assert.Equal(t, DefaultSiteLabel, r.sub.Payload.Source)
	assert.Same(t, rec, r.sub.Lead)

	payload, ok := n.payload.(NotificationPayload)
	require.True(t, ok)
	assert.Equal(t, FormContact, payload.FormType)
	assert.Equal(t, DefaultSource, payload.Source)
}

func TestDispatch_NotificationFailureIsTolerated(t *testing.T) {
	log := &callLog{}
	n := &recordingNotifier{log: log, result: notify.Result{Channel: "webhook", Err: errors.New("connection refused")}}
	r := &recordingRecorder{log: log}

	rec, err := newTestDispatcher(n, r).Dispatch(context.Background(), validPartner())

	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, []string{"notify:Partner", "record"}, log.calls)
}

func TestDispatch_RecordFailureIsFatal(t *testing.T) {
	log := &callLog{}
	r := &recordingRecorder{log: log, err: &RecordError{StatusCode: http.StatusServiceUnavailable}}

	rec, err := newTestDispatcher(&recordingNotifier{log: log}, r).Dispatch(context.Background(), validContact())

	assert.Nil(t, rec)
	var recErr *RecordError
	require.ErrorAs(t, err, &recErr)
	assert.Equal(t, http.StatusServiceUnavailable, recErr.StatusCode)
	assert.Contains(t, err.Error(), "API call failed with status 503")
}

func TestDispatch_InvalidPhoneNeverLeaves(t *testing.T) {
	log := &callLog{}
	f := validContact()
	f.Phone = "12345"

	_, err := newTestDispatcher(&recordingNotifier{log: log}, &recordingRecorder{log: log}).Dispatch(context.Background(), f)

	assert.ErrorIs(t, err, ErrInvalidPhone)
	assert.Empty(t, log.calls)
}

func TestDispatch_EndToEndOverHTTP(t *testing.T) {
	log := &callLog{}
	var webhookBody, apiBody map[string]any

	webhook := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.add("webhook")
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &webhookBody)
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	defer webhook.Close()

	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.add("api")
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &apiBody)
		w.WriteHeader(http.StatusCreated)
	}))
	defer api.Close()

	d := newTestDispatcher(
		notify.NewWebhookNotifier(notify.WebhookConfig{URLs: map[string]string{"Contact": webhook.URL}}),
		NewAPIRecorder(map[FormType]string{FormContact: api.URL}, nil),
	)
	_, err := d.Dispatch(context.Background(), validContact())

	require.NoError(t, err)
	assert.Equal(t, []string{"webhook", "api"}, log.calls)
	assert.Equal(t, "Contact", webhookBody["formType"])
	lead, ok := apiBody["lead"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Jane", lead["firstName"])
	assert.Equal(t, "(555) 123-4567", lead["phone"])
}
