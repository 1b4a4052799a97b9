package dropbox

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// File is a required entry in the remote file set: a logical name, the
// remote path it is retrieved from and the local destination it must end up
// at.
type File struct {
	Name   string
	Remote string
	Local  string
}

// FileSet is the set of data files expected in the remote folder for the
// current reporting period. Every entry is required - synchronization is
// all-or-nothing.
type FileSet []File

// SyncError is the kind returned when a required file cannot be retrieved.
// A report built from a partial data set is worse than no report, so a
// single SyncError fails the whole run.
type SyncError struct {
	File    string
	Missing bool
	err     error
}

func (e *SyncError) Error() string {
	if e.Missing {
		return fmt.Sprintf("required file '%s' not found in remote folder", e.File)
	}

	return fmt.Sprintf("transfer failed for required file '%s' (%v)", e.File, e.err)
}

func (e *SyncError) Unwrap() error {
	return e.err
}

// Sync retrieves every file in the set, attempting each entry exactly once.
// Retrievals are issued concurrently, bounded by the worker count. The first
// failure cancels the remaining retrievals - entries that have not started
// are never attempted and the results of in-flight transfers are discarded
// with the run. On success every destination file is present and readable.
func Sync(ctx context.Context, client *Client, set FileSet, workers int, logger *slog.Logger) error {
	if workers < 1 {
		workers = 1
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for _, file := range set {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			logger.Info("retrieving file", "name", file.Name, "remote", file.Remote)

			if err := client.Download(ctx, file.Remote, file.Local); err != nil {
				var apierr *APIError
				if errors.As(err, &apierr) && apierr.NotFound() {
					return &SyncError{File: file.Name, Missing: true, err: err}
				}

				return &SyncError{File: file.Name, err: err}
			}

			logger.Info("retrieved file", "name", file.Name, "local", file.Local)

			return nil
		})
	}

	return g.Wait()
}
