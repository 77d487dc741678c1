// Command leadctl drives the lead form pipeline from a terminal: submit a form the
// way the site would, inspect form schemas, and check phone formatting.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/onetriage/leadintake/cmd/mainconfig"
	"github.com/onetriage/leadintake/internal/app/bootstrap"
	"github.com/onetriage/leadintake/internal/form"
	"github.com/onetriage/leadintake/internal/leads"
	"github.com/onetriage/leadintake/pkg/logging"
)

func main() {
	root := newRootCmd(os.Stdout, buildDispatcher)
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// buildDispatcher wires the configured pipeline, or an in-memory recorder with no
// notifications when dryRun is set.
func buildDispatcher(ctx context.Context, opts submitOptions) (form.Dispatcher, map[leads.FormType]string, func(), error) {
	logger := logging.New(opts.logLevel)
	if opts.dryRun {
		d := leads.NewDispatcher(leads.DispatcherConfig{Recorder: leads.NewMemoryRecorder(), Logger: logger})
		return d, nil, func() {}, nil
	}
	cfg, err := mainconfig.Load()
	if err != nil {
		return nil, nil, nil, err
	}
	p, err := bootstrap.BuildPipeline(ctx, cfg, prometheus.NewRegistry(), logger)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("build pipeline: %w", err)
	}
	return p.Dispatcher, bootstrap.FallbackEmails(cfg), p.Close, nil
}
