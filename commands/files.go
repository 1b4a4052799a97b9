package commands

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/crossingstv/sales-report/config"
	"github.com/crossingstv/sales-report/dropbox"
)

// requiredFiles builds the file set for a run: the most recent forecast
// workbook, the VBA project binary and the email templates. Every file in
// the set must be retrieved for the run to proceed.
func requiredFiles(ctx context.Context, client *dropbox.Client, cfg *config.Config) (dropbox.FileSet, error) {
	set := dropbox.FileSet{}

	// ... latest forecast workbook

	forecast, err := client.LatestForecast(ctx, cfg.ForecastFolder())
	if err != nil {
		return nil, fmt.Errorf("unable to identify the latest forecast workbook (%v)", err)
	}

	set = append(set, dropbox.File{
		Name:   forecast.Name,
		Remote: forecast.PathDisplay,
		Local:  filepath.Join(cfg.ForecastDir(), forecast.Name),
	})

	// ... VBA project binary

	set = append(set, dropbox.File{
		Name:   path.Base(cfg.RemoteVBAPath()),
		Remote: cfg.RemoteVBAPath(),
		Local:  cfg.VBAPath(),
	})

	// ... email templates and stylesheet

	templates, err := client.ListFolder(ctx, cfg.TemplatesFolder())
	if err != nil {
		return nil, fmt.Errorf("unable to list the email templates folder (%v)", err)
	}

	for _, entry := range templates {
		if entry.Tag != "file" || strings.HasPrefix(entry.Name, "~") {
			continue
		}

		set = append(set, dropbox.File{
			Name:   entry.Name,
			Remote: entry.PathDisplay,
			Local:  filepath.Join(cfg.TemplatesDir(), entry.Name),
		})
	}

	return set, nil
}
