package main

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"github.com/onetriage/leadintake/cmd/mainconfig"
	"github.com/onetriage/leadintake/internal/api/router"
	"github.com/onetriage/leadintake/internal/app/bootstrap"
	"github.com/onetriage/leadintake/internal/http/handlers"
	"github.com/onetriage/leadintake/pkg/logging"
)

func main() {
	cfg, err := mainconfig.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger := logging.New(cfg.LogLevel)

	// Built once per execution environment and reused across invocations.
	pipeline, err := bootstrap.BuildPipeline(context.Background(), cfg, nil, logger)
	if err != nil {
		logger.Error("failed to build lead pipeline", "error", err)
		os.Exit(1)
	}

	h := router.New(&router.Config{
		Logger: logger,
		LeadsHandler: handlers.NewLeadsHandler(handlers.LeadsHandlerConfig{
			Dispatcher:     pipeline.Dispatcher,
			Guard:          pipeline.Guard,
			FallbackEmails: bootstrap.FallbackEmails(cfg),
			Logger:         logger,
		}),
		HealthHandler:      handlers.NewHealthHandler(pipeline.Health, logger),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	})

	lambda.Start(func(ctx context.Context, evt events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
		return handle(ctx, h, evt)
	})
}

// handle replays an API Gateway v2 event through the same router cmd/api serves.
func handle(ctx context.Context, h http.Handler, evt events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	req, err := toHTTPRequest(ctx, evt)
	if err != nil {
		return events.APIGatewayV2HTTPResponse{StatusCode: http.StatusBadRequest, Body: "invalid request"}, nil
	}
	w := newBufferedResponse()
	h.ServeHTTP(w, req)
	return w.toEvent(), nil
}

func toHTTPRequest(ctx context.Context, evt events.APIGatewayV2HTTPRequest) (*http.Request, error) {
	body, err := decodeBody(evt)
	if err != nil {
		return nil, err
	}
	method := strings.ToUpper(strings.TrimSpace(evt.RequestContext.HTTP.Method))
	if method == "" {
		method = http.MethodGet
	}
	// RawPath arrives percent-encoded. Routing works on the decoded path.
	u := &url.URL{Path: strings.TrimSpace(evt.RequestContext.HTTP.Path), RawQuery: evt.RawQueryString}
	if raw := strings.TrimSpace(evt.RawPath); raw != "" {
		decoded, err := url.PathUnescape(raw)
		if err != nil {
			return nil, fmt.Errorf("intake-lambda: bad path %q: %w", raw, err)
		}
		u.Path = decoded
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	for k, v := range evt.Headers {
		req.Header.Set(k, v)
	}
	if len(evt.Cookies) > 0 {
		req.Header.Set("Cookie", strings.Join(evt.Cookies, "; "))
	}
	if ip := evt.RequestContext.HTTP.SourceIP; ip != "" {
		req.RemoteAddr = ip
		if req.Header.Get("X-Real-Ip") == "" {
			req.Header.Set("X-Real-Ip", ip)
		}
	}
	if id := evt.RequestContext.RequestID; id != "" && req.Header.Get("X-Request-Id") == "" {
		req.Header.Set("X-Request-Id", id)
	}
	req.Host = evt.RequestContext.DomainName
	return req, nil
}

func decodeBody(evt events.APIGatewayV2HTTPRequest) ([]byte, error) {
	if !evt.IsBase64Encoded {
		return []byte(evt.Body), nil
	}
	return base64.StdEncoding.DecodeString(evt.Body)
}

// bufferedResponse collects a handler's output for the Lambda response.
type bufferedResponse struct {
	header http.Header
	status int
	body   bytes.Buffer
}

func newBufferedResponse() *bufferedResponse {
	return &bufferedResponse{header: http.Header{}}
}

func (b *bufferedResponse) Header() http.Header { return b.header }

func (b *bufferedResponse) WriteHeader(status int) {
	if b.status == 0 {
		b.status = status
	}
}

func (b *bufferedResponse) Write(p []byte) (int, error) {
	if b.status == 0 {
		b.status = http.StatusOK
	}
	return b.body.Write(p)
}

func (b *bufferedResponse) toEvent() events.APIGatewayV2HTTPResponse {
	status := b.status
	if status == 0 {
		status = http.StatusOK
	}
	out := events.APIGatewayV2HTTPResponse{
		StatusCode: status,
		Body:       b.body.String(),
		Headers:    make(map[string]string, len(b.header)),
	}
	for k, v := range b.header {
		if strings.EqualFold(k, "Set-Cookie") {
			out.Cookies = append(out.Cookies, v...)
			continue
		}
		out.Headers[strings.ToLower(k)] = strings.Join(v, ", ")
	}
	return out
}
