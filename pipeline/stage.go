package pipeline

import (
	"errors"
	"fmt"

	"github.com/crossingstv/sales-report/config"
	"github.com/crossingstv/sales-report/dropbox"
	"github.com/crossingstv/sales-report/mailer"
	"github.com/crossingstv/sales-report/report"
)

// Stage identifies a checkpoint in the report run. A run advances through
// the stages strictly in order and stops at the first stage that cannot be
// completed.
type Stage int

const (
	StageInit Stage = iota
	StageConfigResolved
	StageCredentialRefreshed
	StageDataSynced
	StageReportsGenerated
	StageDispatched
	StageDone
	StageFailed
)

func (s Stage) String() string {
	switch s {
	case StageInit:
		return "Init"
	case StageConfigResolved:
		return "ConfigResolved"
	case StageCredentialRefreshed:
		return "CredentialRefreshed"
	case StageDataSynced:
		return "DataSynced"
	case StageReportsGenerated:
		return "ReportsGenerated"
	case StageDispatched:
		return "Dispatched"
	case StageDone:
		return "Done"
	case StageFailed:
		return "Failed"
	}

	return "?"
}

// Failure wraps a stage error with the stage the run was trying to reach
// when it failed.
type Failure struct {
	Stage Stage
	Err   error
}

func (f *Failure) Error() string {
	return fmt.Sprintf("failed at %v (%v)", f.Stage, f.Err)
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// Kind classifies a run error by the subsystem that produced it, for the run
// summary and error reporting.
func Kind(err error) string {
	var (
		configuration *config.Error
		auth          *dropbox.AuthError
		sync          *dropbox.SyncError
		generation    *report.GenerationError
		delivery      *mailer.DeliveryError
	)

	switch {
	case errors.As(err, &configuration):
		return "config"

	case errors.As(err, &auth):
		return "auth"

	case errors.As(err, &sync):
		return "sync"

	case errors.As(err, &generation):
		return "generation"

	case errors.As(err, &delivery):
		return "delivery"
	}

	return "unknown"
}
