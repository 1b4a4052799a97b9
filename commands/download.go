package commands

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/crossingstv/sales-report/config"
	"github.com/crossingstv/sales-report/dropbox"
)

var DownloadCmd = Download{
	workers: DEFAULT_WORKERS,
	test:    false,
}

// Download retrieves the remote working files without generating or sending
// any reports.
type Download struct {
	workers int
	test    bool
}

func (cmd *Download) Name() string {
	return "download"
}

func (cmd *Download) Description() string {
	return "Retrieves the forecast workbook, VBA project and email templates from Dropbox"
}

func (cmd *Download) Usage() string {
	return "[--test] [--workers <N>]"
}

func (cmd *Download) Help() {
	fmt.Println()
	fmt.Printf("  Usage: %s [--debug] [--config <file>] download [options]\n", APP)
	fmt.Println()
	fmt.Println("  Retrieves the current forecast workbook, the VBA project binary and the")
	fmt.Println("  email templates to the configured local folders. Does not generate or")
	fmt.Println("  send any reports")
	fmt.Println()

	helpOptions(cmd.FlagSet())
	fmt.Println()
}

func (cmd *Download) FlagSet() *flag.FlagSet {
	flagset := flag.NewFlagSet("download", flag.ExitOnError)

	flagset.BoolVar(&cmd.test, "test", cmd.test, "Uses the test folder layout from the configuration")
	flagset.IntVar(&cmd.workers, "workers", cmd.workers, "Number of concurrent file retrievals")

	return flagset
}

func (cmd *Download) Execute(args ...any) error {
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

	logger := newLogger(os.Stdout, options.Debug)

	cfg, err := config.Resolve(options.Config, mode)
	if err != nil {
		return err
	}

	ctx := context.Background()

	token, err := dropbox.Refresh(ctx, cfg.AppKey(), cfg.AppSecret(), cfg.RefreshToken())
	if err != nil {
		return err
	}

	client := dropbox.NewClient(token, cfg.TeamMemberID())

	set, err := requiredFiles(ctx, client, cfg)
	if err != nil {
		return err
	}

	if err := dropbox.Sync(ctx, client, set, cmd.workers, logger); err != nil {
		return err
	}

	logger.Info("download complete", "files", len(set))

	return nil
}
