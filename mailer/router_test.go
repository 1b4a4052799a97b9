package mailer

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/crossingstv/sales-report/config"
	"github.com/crossingstv/sales-report/report"
)

const document = `{
  "root_path": "/prod",
  "reports_folder": "/prod/reports",
  "vba_path": "/prod/vbaProject.bin",
  "ci_root_path": "/ci",
  "ci_reports_folder": "/ci/reports",
  "ci_vba_path": "/ci/vbaProject.bin",
  "account_executives": {
    "house": { "enabled": true, "budgets": { "q1": 0, "q2": 0, "q3": 0, "q4": 0 } },
    "scranton": { "enabled": true, "budgets": { "q1": 0, "q2": 0, "q3": 0, "q4": 0 } }
  }
}`

func resolve(t *testing.T, mode config.Mode) *config.Config {
	t.Helper()

	t.Setenv("SENDGRID_API_KEY", "SG.qwerty")
	t.Setenv("TEST_EMAIL", "t@y.com")
	t.Setenv("MANAGEMENT_EMAILS", "boss@example.com, cfo@example.com, boss@example.com")
	t.Setenv("AE_EMAILS_HOUSE", "x@y.com,z@y.com")
	t.Setenv("AE_EMAILS_SCRANTON", "m@y.com")

	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(document), 0644); err != nil {
		t.Fatalf("Unexpected error creating config file (%v)", err)
	}

	cfg, err := config.Resolve(path, mode)
	if err != nil {
		t.Fatalf("Unexpected error resolving configuration (%v)", err)
	}

	return cfg
}

func TestRouteInProduction(t *testing.T) {
	cfg := resolve(t, config.Production)

	recipients, err := Route(cfg, "house")
	if err != nil {
		t.Fatalf("Unexpected error (%v)", err)
	}

	if expected := []string{"x@y.com", "z@y.com"}; !reflect.DeepEqual(recipients, expected) {
		t.Fatalf("Incorrect recipients - expected:%v, got:%v", expected, recipients)
	}
}

func TestRouteManagement(t *testing.T) {
	cfg := resolve(t, config.Production)

	recipients, err := Route(cfg, report.Management)
	if err != nil {
		t.Fatalf("Unexpected error (%v)", err)
	}

	if expected := []string{"boss@example.com", "cfo@example.com"}; !reflect.DeepEqual(recipients, expected) {
		t.Fatalf("Incorrect recipients - expected:%v, got:%v", expected, recipients)
	}
}

func TestRouteInTestModeCollapsesToTestAddress(t *testing.T) {
	cfg := resolve(t, config.Test)

	for _, category := range []string{"house", "scranton", report.Management} {
		recipients, err := Route(cfg, category)
		if err != nil {
			t.Fatalf("Unexpected error (%v)", err)
		}

		if expected := []string{"t@y.com"}; !reflect.DeepEqual(recipients, expected) {
			t.Fatalf("Incorrect recipients for '%s' - expected:%v, got:%v", category, expected, recipients)
		}
	}
}

func TestRouteWithUnknownCategory(t *testing.T) {
	cfg := resolve(t, config.Production)

	_, err := Route(cfg, "nobody")
	if err == nil {
		t.Fatalf("Expected error routing unknown category, got:%v", err)
	}

	if _, ok := err.(*config.Error); !ok {
		t.Fatalf("Expected configuration error, got %T", err)
	}
}
