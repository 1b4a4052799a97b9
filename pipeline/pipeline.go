package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/crossingstv/sales-report/config"
	"github.com/crossingstv/sales-report/mailer"
	"github.com/crossingstv/sales-report/report"
)

// Resolver loads and validates the run configuration.
type Resolver interface {
	Resolve() (*config.Config, error)
}

// Refresher exchanges the stored refresh token for a short-lived access
// token.
type Refresher interface {
	Refresh(ctx context.Context, cfg *config.Config) (string, error)
}

// Synchronizer retrieves the remote working files. It either retrieves the
// complete file set or fails the run.
type Synchronizer interface {
	Sync(ctx context.Context, cfg *config.Config, token string) error
}

// Generator produces the report artifacts from the synced data.
type Generator interface {
	Generate(ctx context.Context, cfg *config.Config) ([]report.Artifact, error)
}

// Dispatcher routes and sends the generated reports.
type Dispatcher interface {
	DispatchAll(ctx context.Context, cfg *config.Config, artifacts []report.Artifact) ([]mailer.DeliveryResult, error)
}

// Adapters for plain functions.

type ResolverFunc func() (*config.Config, error)

func (f ResolverFunc) Resolve() (*config.Config, error) { return f() }

type RefresherFunc func(ctx context.Context, cfg *config.Config) (string, error)

func (f RefresherFunc) Refresh(ctx context.Context, cfg *config.Config) (string, error) {
	return f(ctx, cfg)
}

type SynchronizerFunc func(ctx context.Context, cfg *config.Config, token string) error

func (f SynchronizerFunc) Sync(ctx context.Context, cfg *config.Config, token string) error {
	return f(ctx, cfg, token)
}

// Summary is the outcome of a run, for the console summary and the run log.
type Summary struct {
	Mode       config.Mode
	Started    time.Time
	Ended      time.Time
	Stage      Stage
	FailedAt   Stage
	Kind       string
	Deliveries []mailer.DeliveryResult
}

// Pipeline runs the weekly report end to end: resolve configuration,
// refresh the credential, sync the working files, generate the reports and
// dispatch them. The first stage that cannot be completed fails the run.
type Pipeline struct {
	Mode       config.Mode
	Logger     *slog.Logger
	Resolver   Resolver
	Refresher  Refresher
	Sync       Synchronizer
	Generator  Generator
	Dispatcher Dispatcher

	// Attach is invoked after configuration resolves, so the caller can
	// redirect run logging to the configured logs folder.
	Attach func(cfg *config.Config)
}

// Run executes the pipeline. The returned summary is always populated, even
// for failed runs.
func (p *Pipeline) Run(ctx context.Context) (*Summary, error) {
	summary := &Summary{
		Mode:    p.Mode,
		Started: time.Now(),
		Stage:   StageInit,
	}

	err := p.run(ctx, summary)

	summary.Ended = time.Now()
	if err != nil {
		summary.Kind = Kind(err)
		summary.FailedAt = summary.Stage
		summary.Stage = StageFailed
	}

	return summary, err
}

func (p *Pipeline) run(ctx context.Context, summary *Summary) error {
	// ... resolve configuration

	summary.Stage = StageConfigResolved

	cfg, err := p.Resolver.Resolve()
	if err != nil {
		return &Failure{Stage: summary.Stage, Err: err}
	}

	if p.Attach != nil {
		p.Attach(cfg)
	}

	p.Logger.Info("configuration resolved", "mode", cfg.Mode(), "aes", len(cfg.ActiveAEs()))

	// ... refresh credential

	summary.Stage = StageCredentialRefreshed

	token, err := p.Refresher.Refresh(ctx, cfg)
	if err != nil {
		return &Failure{Stage: summary.Stage, Err: err}
	}

	p.Logger.Info("credential refreshed")

	// ... sync working files

	summary.Stage = StageDataSynced

	if err := p.Sync.Sync(ctx, cfg, token); err != nil {
		return &Failure{Stage: summary.Stage, Err: err}
	}

	p.Logger.Info("working files synced")

	// ... generate reports

	summary.Stage = StageReportsGenerated

	artifacts, err := p.Generator.Generate(ctx, cfg)
	if err != nil {
		return &Failure{Stage: summary.Stage, Err: err}
	}

	p.Logger.Info("reports generated", "count", len(artifacts))

	// ... dispatch

	summary.Stage = StageDispatched

	deliveries, err := p.Dispatcher.DispatchAll(ctx, cfg, artifacts)
	summary.Deliveries = deliveries
	if err != nil {
		return &Failure{Stage: summary.Stage, Err: err}
	}

	summary.Stage = StageDone

	return nil
}
