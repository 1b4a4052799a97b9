package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/google/uuid"

	"github.com/crossingstv/sales-report/config"
	"github.com/crossingstv/sales-report/dropbox"
	"github.com/crossingstv/sales-report/mailer"
	"github.com/crossingstv/sales-report/pipeline"
	"github.com/crossingstv/sales-report/report"
)

var RunCmd = Run{
	workers: DEFAULT_WORKERS,
	test:    false,
}

// Run executes the weekly report pipeline end to end.
type Run struct {
	workers int
	test    bool
}

func (cmd *Run) Name() string {
	return "run"
}

func (cmd *Run) Description() string {
	return "Generates the weekly sales reports and emails them to the configured recipients"
}

func (cmd *Run) Usage() string {
	return "[--test] [--workers <N>]"
}

func (cmd *Run) Help() {
	fmt.Println()
	fmt.Printf("  Usage: %s [--debug] [--config <file>] run [options]\n", APP)
	fmt.Println()
	fmt.Println("  Retrieves the current forecast workbook and email templates, generates the")
	fmt.Println("  weekly sales reports and emails them to the configured recipients")
	fmt.Println()

	helpOptions(cmd.FlagSet())

	fmt.Println()
	fmt.Println("  Examples:")
	fmt.Printf("    %s run\n", APP)
	fmt.Printf("    %s --config ./config.json run --test\n", APP)
	fmt.Println()
}

func (cmd *Run) FlagSet() *flag.FlagSet {
	flagset := flag.NewFlagSet("run", flag.ExitOnError)

	flagset.BoolVar(&cmd.test, "test", cmd.test, "Routes all reports to the configured test address")
	flagset.IntVar(&cmd.workers, "workers", cmd.workers, "Number of concurrent file retrievals")

	return flagset
}

func (cmd *Run) Execute(args ...any) error {
	options := args[0].(*Options)

	// ... check parameters

	if strings.TrimSpace(options.Config) == "" {
		return fmt.Errorf("--config is a required option")
	}

	if cmd.workers < 1 {
		return fmt.Errorf("--workers must be at least 1")
	}

	mode := config.Production
	if cmd.test {
		mode = config.Test
	}

	// ... error reporting

	monitored := false
	if dsn := os.Getenv("SENTRY_DSN"); dsn != "" {
		if err := sentry.Init(sentry.ClientOptions{Dsn: dsn, Environment: mode.String()}); err != nil {
			return fmt.Errorf("unable to initialise error reporting (%v)", err)
		}

		monitored = true
	}

	// ... run

	tee := &logTee{}
	defer tee.Close()

	logger := newLogger(io.MultiWriter(os.Stdout, tee), options.Debug).With("run", uuid.NewString())

	p := pipeline.Pipeline{
		Mode:   mode,
		Logger: logger,

		Resolver: pipeline.ResolverFunc(func() (*config.Config, error) {
			return config.Resolve(options.Config, mode)
		}),

		Refresher: pipeline.RefresherFunc(func(ctx context.Context, cfg *config.Config) (string, error) {
			return dropbox.Refresh(ctx, cfg.AppKey(), cfg.AppSecret(), cfg.RefreshToken())
		}),

		Sync: pipeline.SynchronizerFunc(func(ctx context.Context, cfg *config.Config, token string) error {
			client := dropbox.NewClient(token, cfg.TeamMemberID())

			set, err := requiredFiles(ctx, client, cfg)
			if err != nil {
				return err
			}

			return dropbox.Sync(ctx, client, set, cmd.workers, logger)
		}),

		Generator: report.NewGenerator(logger),
	}

	// The dispatcher needs the resolved API key and sender, so it is built
	// once configuration resolves, alongside the run log.
	p.Attach = func(cfg *config.Config) {
		attach(tee, cfg, mode, logger)
		p.Dispatcher = mailer.NewDispatcher(cfg.SendGridAPIKey(), cfg.Sender(), logger)
	}

	summary, err := p.Run(context.Background())

	printSummary(summary)

	if err != nil && monitored {
		sentry.CaptureException(err)
		sentry.Flush(2 * time.Second)
	}

	return err
}

// attach redirects run logging to a timestamped file in the configured logs
// folder. Failure to create the run log is not fatal - the run proceeds with
// console logging only.
func attach(tee *logTee, cfg *config.Config, mode config.Mode, logger *slog.Logger) {
	if err := os.MkdirAll(cfg.LogsDir(), 0770); err != nil {
		logger.Warn("unable to create logs folder", "error", err)
		return
	}

	name := fmt.Sprintf("%s_%s_%s.log", APP, strings.ToUpper(mode.String()), time.Now().Format("20060102-150405"))
	if err := tee.Attach(filepath.Join(cfg.LogsDir(), name)); err != nil {
		logger.Warn("unable to create run log", "error", err)
	}
}

func printSummary(summary *pipeline.Summary) {
	fmt.Println()
	fmt.Printf("  %s run summary\n", APP)
	fmt.Println("  ----------------------------------------")
	fmt.Printf("  mode:     %v\n", summary.Mode)
	fmt.Printf("  started:  %v\n", summary.Started.Format("2006-01-02 15:04:05"))
	fmt.Printf("  ended:    %v\n", summary.Ended.Format("2006-01-02 15:04:05"))

	if summary.Stage == pipeline.StageFailed {
		fmt.Printf("  outcome:  failed at %v (%v)\n", summary.FailedAt, summary.Kind)
	} else {
		fmt.Printf("  outcome:  %v\n", summary.Stage)
	}

	for _, delivery := range summary.Deliveries {
		if delivery.OK() {
			fmt.Printf("  %-10v delivered to %v recipient(s)\n", delivery.Category, len(delivery.Delivered))
		} else {
			fmt.Printf("  %-10v FAILED (%v)\n", delivery.Category, delivery.Failed[0].Reason)
		}
	}

	fmt.Println()
}
