package report

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/crossingstv/sales-report/config"
)

// Generator produces the weekly report artifacts from the synced forecast
// workbook: one per enabled account executive plus the management rollup.
type Generator struct {
	logger *slog.Logger
	clock  func() time.Time
}

func NewGenerator(logger *slog.Logger) *Generator {
	return &Generator{
		logger: logger,
		clock:  time.Now,
	}
}

// Generate reads the most recent forecast workbook, calculates the per-AE
// and management statistics and renders the report artifacts. Report
// workbooks are written to the configured reports folder.
func (g *Generator) Generate(ctx context.Context, cfg *config.Config) ([]Artifact, error) {
	now := g.clock()
	year := now.Year()

	forecast, err := LatestForecastFile(cfg.ForecastDir())
	if err != nil {
		return nil, err
	}

	g.logger.Info("generating reports", "forecast", filepath.Base(forecast))

	rows, err := ReadForecast(forecast, year)
	if err != nil {
		return nil, err
	}

	renderer, err := NewRenderer(cfg.TemplatesDir())
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(cfg.ReportsFolder(), 0770); err != nil {
		return nil, Errorf("unable to create reports folder (%v)", err)
	}

	artifacts := []Artifact{}
	for _, ae := range cfg.ActiveAEs() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		artifact, err := g.sales(cfg, renderer, rows, ae, now)
		if err != nil {
			return nil, err
		}

		artifacts = append(artifacts, artifact)
	}

	artifact, err := g.management(cfg, renderer, rows, now)
	if err != nil {
		return nil, err
	}

	return append(artifacts, artifact), nil
}

func (g *Generator) sales(cfg *config.Config, renderer *Renderer, rows []Row, ae string, now time.Time) (Artifact, error) {
	year := now.Year()
	stats := CalculateSalesStats(rows, ae, year)

	budgets := map[string]float64{}
	if budget, ok := cfg.Budgets(ae); ok {
		quarters := quarterColumns(year)
		budgets[quarters[0]] = budget.Q1
		budgets[quarters[1]] = budget.Q2
		budgets[quarters[2]] = budget.Q3
		budgets[quarters[3]] = budget.Q4
	}

	html, err := renderer.SalesReport(ae, stats, budgets, now)
	if err != nil {
		return Artifact{}, err
	}

	workbook := filepath.Join(cfg.ReportsFolder(), fmt.Sprintf("%s-%s.xlsx", ae, now.Format("2006-01-02")))
	if err := WriteAEReport(workbook, ae, rows, year); err != nil {
		return Artifact{}, err
	}

	g.logger.Info("generated sales report", "ae", ae, "customers", stats.TotalCustomers)

	return Artifact{
		Category: ae,
		Subject:  fmt.Sprintf("%s - Your %d Weekly Sales Report", ae, year),
		HTML:     html,
		Attachments: []Attachment{
			{
				Filename:    filepath.Base(workbook),
				ContentType: xlsxContentType,
				Path:        workbook,
			},
		},
	}, nil
}

func (g *Generator) management(cfg *config.Config, renderer *Renderer, rows []Row, now time.Time) (Artifact, error) {
	stats := CalculateManagementStats(rows, now.Year())

	html, err := renderer.ManagementReport(stats, now)
	if err != nil {
		return Artifact{}, err
	}

	g.logger.Info("generated management report", "aes", len(stats.AEs), "customers", stats.TotalCustomers)

	artifact := Artifact{
		Category: Management,
		Subject:  fmt.Sprintf("Weekly Sales Management Report - %s", now.Format("2006-01-02")),
		HTML:     html,
	}

	logo := filepath.Join(cfg.TemplatesDir(), "company_logo.png")
	if _, err := os.Stat(logo); err == nil {
		artifact.Attachments = append(artifact.Attachments, Attachment{
			Filename:    "company_logo.png",
			ContentType: "image/png",
			Path:        logo,
			Inline:      true,
			ContentID:   "company_logo",
		})
	}

	return artifact, nil
}
