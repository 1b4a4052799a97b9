package commands

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/crossingstv/sales-report/config"
	"github.com/crossingstv/sales-report/dropbox"
)

var UploadCmd = Upload{
	test: false,
}

// Upload pushes the generated reports and run logs back to Dropbox for
// archival.
type Upload struct {
	test bool
}

func (cmd *Upload) Name() string {
	return "upload"
}

func (cmd *Upload) Description() string {
	return "Uploads the generated reports and run logs to Dropbox"
}

func (cmd *Upload) Usage() string {
	return "[--test]"
}

func (cmd *Upload) Help() {
	fmt.Println()
	fmt.Printf("  Usage: %s [--debug] [--config <file>] upload [options]\n", APP)
	fmt.Println()
	fmt.Println("  Uploads the workbooks in the reports folder and the run logs to the")
	fmt.Println("  archive folders on Dropbox")
	fmt.Println()

	helpOptions(cmd.FlagSet())
	fmt.Println()
}

func (cmd *Upload) FlagSet() *flag.FlagSet {
	flagset := flag.NewFlagSet("upload", flag.ExitOnError)

	flagset.BoolVar(&cmd.test, "test", cmd.test, "Uses the test folder layout from the configuration")

	return flagset
}

func (cmd *Upload) Execute(args ...any) error {
	options := args[0].(*Options)

	// ... check parameters

	if strings.TrimSpace(options.Config) == "" {
		return fmt.Errorf("--config is a required option")
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

	uploaded := 0
	folders := []struct {
		local  string
		remote string
		match  string
	}{
		{cfg.ReportsFolder(), cfg.RemoteReports(), "*.xlsx"},
		{cfg.LogsDir(), cfg.RemoteLogs(), "*.log"},
	}

	for _, folder := range folders {
		n, err := upload(ctx, client, folder.local, folder.remote, folder.match, logger)
		if err != nil {
			return err
		}

		uploaded += n
	}

	logger.Info("upload complete", "files", uploaded)

	return nil
}

func upload(ctx context.Context, client *dropbox.Client, local, remote, match string, logger *slog.Logger) (int, error) {
	matches, err := filepath.Glob(filepath.Join(local, match))
	if err != nil {
		return 0, err
	}

	if len(matches) == 0 {
		return 0, nil
	}

	if err := client.CreateFolder(ctx, remote); err != nil {
		return 0, fmt.Errorf("unable to create archive folder %s (%v)", remote, err)
	}

	uploaded := 0
	for _, file := range matches {
		info, err := os.Stat(file)
		if err != nil || info.IsDir() {
			continue
		}

		destination := path.Join(remote, filepath.Base(file))
		if err := client.Upload(ctx, file, destination); err != nil {
			return uploaded, fmt.Errorf("unable to upload %s (%v)", filepath.Base(file), err)
		}

		logger.Info("uploaded file", "file", filepath.Base(file), "to", remote)

		uploaded++
	}

	return uploaded, nil
}
