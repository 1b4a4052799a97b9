package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

const base = `{
  "root_path": "/prod",
  "reports_folder": "/prod/reports",
  "vba_path": "/prod/vbaProject.bin",
  "ci_root_path": "/ci",
  "ci_reports_folder": "/ci/reports",
  "ci_vba_path": "/ci/vbaProject.bin",
  "account_executives": {
    "house": {
      "enabled": true,
      "budgets": { "q1": 100000, "q2": 110000, "q3": 120000, "q4": 130000 }
    },
    "retired": {
      "enabled": false,
      "budgets": { "q1": 0, "q2": 0, "q3": 0, "q4": 0 }
    }
  }
}`

func configFile(t *testing.T, document string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(document), 0644); err != nil {
		t.Fatalf("Unexpected error creating config file (%v)", err)
	}

	return path
}

func TestResolveProduction(t *testing.T) {
	t.Setenv("SENDGRID_API_KEY", "SG.qwerty")
	t.Setenv("SENDER_EMAIL", "portaladmin@example.com")
	t.Setenv("MANAGEMENT_EMAILS", "boss@example.com, cfo@example.com")
	t.Setenv("AE_EMAILS_HOUSE", "x@y.com,z@y.com")

	cfg, err := Resolve(configFile(t, base), Production)
	if err != nil {
		t.Fatalf("Unexpected error resolving configuration (%v)", err)
	}

	if cfg.RootPath() != "/prod" {
		t.Errorf("Incorrect root path - expected:%v, got:%v", "/prod", cfg.RootPath())
	}

	if cfg.ReportsFolder() != "/prod/reports" {
		t.Errorf("Incorrect reports folder - expected:%v, got:%v", "/prod/reports", cfg.ReportsFolder())
	}

	if cfg.Sender() != "portaladmin@example.com" {
		t.Errorf("Incorrect sender - expected:%v, got:%v", "portaladmin@example.com", cfg.Sender())
	}

	if expected := []string{"house"}; !reflect.DeepEqual(cfg.ActiveAEs(), expected) {
		t.Errorf("Incorrect active AE list - expected:%v, got:%v", expected, cfg.ActiveAEs())
	}

	if expected := []string{"x@y.com", "z@y.com"}; !reflect.DeepEqual(cfg.Recipients("house"), expected) {
		t.Errorf("Incorrect recipients - expected:%v, got:%v", expected, cfg.Recipients("house"))
	}

	if expected := []string{"boss@example.com", "cfo@example.com"}; !reflect.DeepEqual(cfg.ManagementRecipients(), expected) {
		t.Errorf("Incorrect management recipients - expected:%v, got:%v", expected, cfg.ManagementRecipients())
	}
}

func TestResolveTestModeSubstitutesOverrides(t *testing.T) {
	t.Setenv("TEST_EMAIL", "t@y.com")
	t.Setenv("AE_EMAILS_HOUSE", "x@y.com")

	cfg, err := Resolve(configFile(t, base), Test)
	if err != nil {
		t.Fatalf("Unexpected error resolving configuration (%v)", err)
	}

	if cfg.RootPath() != "/ci" {
		t.Errorf("Incorrect root path - expected:%v, got:%v", "/ci", cfg.RootPath())
	}

	if cfg.ReportsFolder() != "/ci/reports" {
		t.Errorf("Incorrect reports folder - expected:%v, got:%v", "/ci/reports", cfg.ReportsFolder())
	}

	if cfg.VBAPath() != "/ci/vbaProject.bin" {
		t.Errorf("Incorrect VBA path - expected:%v, got:%v", "/ci/vbaProject.bin", cfg.VBAPath())
	}

	if cfg.TestAddress() != "t@y.com" {
		t.Errorf("Incorrect test address - expected:%v, got:%v", "t@y.com", cfg.TestAddress())
	}
}

func TestResolveTestModeRequiresOverrideKeys(t *testing.T) {
	document := `{
  "root_path": "/prod",
  "reports_folder": "/prod/reports",
  "vba_path": "/prod/vbaProject.bin",
  "account_executives": { "house": { "enabled": true, "budgets": { "q1": 0, "q2": 0, "q3": 0, "q4": 0 } } }
}`

	if _, err := Resolve(configFile(t, document), Test); err == nil {
		t.Fatalf("Expected error resolving test mode configuration without 'ci_' keys, got %v", err)
	}
}

func TestResolveSecretsTakePrecedence(t *testing.T) {
	document := `{
  "root_path": "/prod",
  "reports_folder": "/prod/reports",
  "vba_path": "/prod/vbaProject.bin",
  "sender_email": "committed@example.com",
  "account_executives": { "house": { "enabled": true, "budgets": { "q1": 0, "q2": 0, "q3": 0, "q4": 0 } } }
}`

	t.Setenv("SENDGRID_API_KEY", "SG.qwerty")
	t.Setenv("SENDER_EMAIL", "secret@example.com")
	t.Setenv("MANAGEMENT_EMAILS", "boss@example.com")
	t.Setenv("AE_EMAILS_HOUSE", "x@y.com")

	cfg, err := Resolve(configFile(t, document), Production)
	if err != nil {
		t.Fatalf("Unexpected error resolving configuration (%v)", err)
	}

	if cfg.Sender() != "secret@example.com" {
		t.Errorf("Environment value did not take precedence - expected:%v, got:%v", "secret@example.com", cfg.Sender())
	}
}

func TestResolveWithMissingDocument(t *testing.T) {
	_, err := Resolve(filepath.Join(t.TempDir(), "missing.json"), Production)
	if err == nil {
		t.Fatalf("Expected error resolving missing configuration file, got %v", err)
	}

	if _, ok := err.(*Error); !ok {
		t.Errorf("Expected configuration error, got %T", err)
	}
}

func TestResolveWithMalformedDocument(t *testing.T) {
	if _, err := Resolve(configFile(t, `{"root_path": `), Production); err == nil {
		t.Fatalf("Expected error resolving malformed configuration file, got %v", err)
	}
}

func TestResolveWithMissingRequiredKey(t *testing.T) {
	document := `{
  "reports_folder": "/prod/reports",
  "vba_path": "/prod/vbaProject.bin",
  "account_executives": { "house": { "enabled": true, "budgets": { "q1": 0, "q2": 0, "q3": 0, "q4": 0 } } }
}`

	t.Setenv("SENDGRID_API_KEY", "SG.qwerty")
	t.Setenv("MANAGEMENT_EMAILS", "boss@example.com")
	t.Setenv("AE_EMAILS_HOUSE", "x@y.com")

	if _, err := Resolve(configFile(t, document), Production); err == nil {
		t.Fatalf("Expected error resolving configuration without 'root_path', got %v", err)
	}
}

func TestResolveProductionRequiresAPIKey(t *testing.T) {
	t.Setenv("SENDGRID_API_KEY", "")
	t.Setenv("MANAGEMENT_EMAILS", "boss@example.com")
	t.Setenv("AE_EMAILS_HOUSE", "x@y.com")

	if _, err := Resolve(configFile(t, base), Production); err == nil {
		t.Fatalf("Expected error resolving production configuration without SENDGRID_API_KEY, got %v", err)
	}
}

func TestRecipientsReturnsCopy(t *testing.T) {
	t.Setenv("SENDGRID_API_KEY", "SG.qwerty")
	t.Setenv("MANAGEMENT_EMAILS", "boss@example.com")
	t.Setenv("AE_EMAILS_HOUSE", "x@y.com,z@y.com")

	cfg, err := Resolve(configFile(t, base), Production)
	if err != nil {
		t.Fatalf("Unexpected error resolving configuration (%v)", err)
	}

	list := cfg.Recipients("house")
	list[0] = "mutated@y.com"

	if expected := []string{"x@y.com", "z@y.com"}; !reflect.DeepEqual(cfg.Recipients("house"), expected) {
		t.Errorf("Configuration was mutated through an accessor - expected:%v, got:%v", expected, cfg.Recipients("house"))
	}
}

func TestBudgets(t *testing.T) {
	t.Setenv("SENDGRID_API_KEY", "SG.qwerty")
	t.Setenv("MANAGEMENT_EMAILS", "boss@example.com")
	t.Setenv("AE_EMAILS_HOUSE", "x@y.com")

	cfg, err := Resolve(configFile(t, base), Production)
	if err != nil {
		t.Fatalf("Unexpected error resolving configuration (%v)", err)
	}

	budgets, ok := cfg.Budgets("house")
	if !ok {
		t.Fatalf("Expected budgets for 'house', got %v", ok)
	}

	if expected := (AEBudget{Q1: 100000, Q2: 110000, Q3: 120000, Q4: 130000}); budgets != expected {
		t.Errorf("Incorrect budgets - expected:%v, got:%v", expected, budgets)
	}
}
