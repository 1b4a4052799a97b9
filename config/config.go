package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Mode selects between a live run and a verification run. It is fixed at
// invocation and threaded by value through every component - nothing
// re-derives it mid-run.
type Mode int

const (
	Production Mode = iota
	Test
)

func (m Mode) String() string {
	if m == Test {
		return "test"
	}

	return "production"
}

// Error is the kind returned for a missing or malformed configuration
// document, a required key absent after the merge, or an unknown recipient
// category.
type Error struct {
	msg string
}

func (e *Error) Error() string {
	return e.msg
}

func Errorf(format string, args ...any) *Error {
	return &Error{msg: fmt.Sprintf(format, args...)}
}

// AEBudget holds the quarterly budget figures for an account executive.
type AEBudget struct {
	Q1 float64 `mapstructure:"q1"`
	Q2 float64 `mapstructure:"q2"`
	Q3 float64 `mapstructure:"q3"`
	Q4 float64 `mapstructure:"q4"`
}

// AccountExecutive is the per-AE configuration from the base document.
type AccountExecutive struct {
	Enabled bool     `mapstructure:"enabled"`
	Budgets AEBudget `mapstructure:"budgets"`
}

// keys substituted by their 'ci_' counterparts when resolving in test mode
var overrides = []string{"root_path", "reports_folder", "vba_path"}

// secret values sourced from the process environment - these always take
// precedence over the document because they carry credentials and addresses
// that must never live in a committed file
var secrets = map[string]string{
	"sendgrid_api_key":       "SENDGRID_API_KEY",
	"sender_email":           "SENDER_EMAIL",
	"test_email":             "TEST_EMAIL",
	"dropbox_app_key":        "DROPBOX_APP_KEY",
	"dropbox_app_secret":     "DROPBOX_APP_SECRET",
	"dropbox_refresh_token":  "DROPBOX_REFRESH_TOKEN",
	"dropbox_team_member_id": "DROPBOX_TEAM_MEMBER_ID",
}

// Config is the merged, immutable configuration for a single run. All
// accessors return copies - once resolved, nothing downstream can mutate it
// and re-resolution requires a new run.
type Config struct {
	mode Mode

	rootPath      string
	reportsFolder string
	vbaPath       string

	forecastFolder  string
	remoteVBAPath   string
	templatesFolder string
	reportsRemote   string
	logsRemote      string

	senderEmail    string
	testEmail      string
	sendgridAPIKey string

	appKey       string
	appSecret    string
	refreshToken string
	teamMemberID string

	executives map[string]AccountExecutive
	recipients map[string][]string
	management []string
}

// Resolve loads the base configuration document, substitutes the test
// environment key subset when mode is Test and then overlays the secret
// environment values. The resolver is the only component that reads ambient
// environment state.
func Resolve(path string, mode Mode) (*Config, error) {
	godotenv.Load()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")

	if err := v.ReadInConfig(); err != nil {
		return nil, Errorf("unable to read configuration from %s (%v)", path, err)
	}

	if mode == Test {
		for _, key := range overrides {
			ci := "ci_" + key
			if !v.IsSet(ci) {
				return nil, Errorf("missing '%s' key required for a test run", ci)
			}

			v.Set(key, v.GetString(ci))
		}
	}

	for key, envvar := range secrets {
		v.BindEnv(key, envvar)
	}

	v.SetDefault("sender_email", "portaladmin@crossingstv.com")
	v.SetDefault("test_email", "test@example.com")
	v.SetDefault("dropbox_forecast_path", "/Financial/Forecast")
	v.SetDefault("dropbox_vba_path", "/Financial/Sales/WeeklyReports/vbaProject.bin")
	v.SetDefault("dropbox_templates_path", "/Financial/Sales/WeeklySalesEmail/email_templates")
	v.SetDefault("dropbox_reports_folder", "/Financial/Sales/WeeklyReports/reports")
	v.SetDefault("dropbox_logs_folder", "/Financial/Sales/WeeklyReports/reports/logs")

	executives := map[string]AccountExecutive{}
	if v.IsSet("account_executives") {
		if err := v.UnmarshalKey("account_executives", &executives); err != nil {
			return nil, Errorf("invalid 'account_executives' section (%v)", err)
		}
	}

	cfg := Config{
		mode: mode,

		rootPath:      v.GetString("root_path"),
		reportsFolder: v.GetString("reports_folder"),
		vbaPath:       v.GetString("vba_path"),

		forecastFolder:  v.GetString("dropbox_forecast_path"),
		remoteVBAPath:   v.GetString("dropbox_vba_path"),
		templatesFolder: v.GetString("dropbox_templates_path"),
		reportsRemote:   v.GetString("dropbox_reports_folder"),
		logsRemote:      v.GetString("dropbox_logs_folder"),

		senderEmail:    v.GetString("sender_email"),
		testEmail:      v.GetString("test_email"),
		sendgridAPIKey: v.GetString("sendgrid_api_key"),

		appKey:       v.GetString("dropbox_app_key"),
		appSecret:    v.GetString("dropbox_app_secret"),
		refreshToken: v.GetString("dropbox_refresh_token"),
		teamMemberID: v.GetString("dropbox_team_member_id"),

		executives: executives,
		recipients: map[string][]string{},
		management: addresses(os.Getenv("MANAGEMENT_EMAILS")),
	}

	for _, name := range cfg.ActiveAEs() {
		cfg.recipients[name] = addresses(os.Getenv(envKey(name)))
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Mode() Mode             { return c.mode }
func (c *Config) RootPath() string       { return c.rootPath }
func (c *Config) ReportsFolder() string  { return c.reportsFolder }
func (c *Config) VBAPath() string        { return c.vbaPath }
func (c *Config) Sender() string         { return c.senderEmail }
func (c *Config) TestAddress() string    { return c.testEmail }
func (c *Config) SendGridAPIKey() string { return c.sendgridAPIKey }
func (c *Config) AppKey() string         { return c.appKey }
func (c *Config) AppSecret() string      { return c.appSecret }
func (c *Config) RefreshToken() string   { return c.refreshToken }
func (c *Config) TeamMemberID() string   { return c.teamMemberID }

func (c *Config) ForecastFolder() string  { return c.forecastFolder }
func (c *Config) RemoteVBAPath() string   { return c.remoteVBAPath }
func (c *Config) TemplatesFolder() string { return c.templatesFolder }
func (c *Config) RemoteReports() string   { return c.reportsRemote }
func (c *Config) RemoteLogs() string      { return c.logsRemote }

// TemplatesDir is the local destination for the synchronized email templates.
func (c *Config) TemplatesDir() string {
	return filepath.Join(c.rootPath, "email_templates")
}

// ForecastDir is the local destination for the synchronized forecast files.
func (c *Config) ForecastDir() string {
	return filepath.Join(c.rootPath, "forecast")
}

// LogsDir is the local folder for per-run log files.
func (c *Config) LogsDir() string {
	return filepath.Join(c.reportsFolder, "logs")
}

// ActiveAEs returns the names of the enabled account executives, sorted.
func (c *Config) ActiveAEs() []string {
	names := []string{}
	for name, ae := range c.executives {
		if ae.Enabled {
			names = append(names, name)
		}
	}

	sort.Strings(names)

	return names
}

// Budgets returns the quarterly budget for an account executive.
func (c *Config) Budgets(name string) (AEBudget, bool) {
	ae, ok := c.executives[name]

	return ae.Budgets, ok
}

// Recipients returns a copy of the production distribution list for an
// account executive category.
func (c *Config) Recipients(category string) []string {
	list, ok := c.recipients[category]
	if !ok {
		return nil
	}

	return append([]string{}, list...)
}

// ManagementRecipients returns a copy of the management rollup list.
func (c *Config) ManagementRecipients() []string {
	return append([]string{}, c.management...)
}

func (c *Config) validate() error {
	if strings.TrimSpace(c.rootPath) == "" {
		return Errorf("missing 'root_path' key")
	}

	if strings.TrimSpace(c.reportsFolder) == "" {
		return Errorf("missing 'reports_folder' key")
	}

	if strings.TrimSpace(c.vbaPath) == "" {
		return Errorf("missing 'vba_path' key")
	}

	if !strings.Contains(c.senderEmail, "@") {
		return Errorf("invalid sender address '%s'", c.senderEmail)
	}

	if len(c.executives) == 0 {
		return Errorf("no account executives configured")
	}

	if len(c.ActiveAEs()) == 0 {
		return Errorf("no enabled account executives")
	}

	if c.mode == Test {
		if !strings.Contains(c.testEmail, "@") {
			return Errorf("invalid test address '%s'", c.testEmail)
		}

		return nil
	}

	if c.sendgridAPIKey == "" {
		return Errorf("SENDGRID_API_KEY is not set")
	}

	if len(c.management) == 0 {
		return Errorf("no management recipients configured")
	}

	for _, address := range c.management {
		if !strings.Contains(address, "@") {
			return Errorf("invalid management address '%s'", address)
		}
	}

	for _, name := range c.ActiveAEs() {
		list := c.recipients[name]
		if len(list) == 0 {
			return Errorf("no recipients configured for '%s'", name)
		}

		for _, address := range list {
			if !strings.Contains(address, "@") {
				return Errorf("invalid address '%s' for '%s'", address, name)
			}
		}
	}

	return nil
}

// envKey maps an AE name to its recipient list environment variable
// e.g. 'Jane Doe' becomes AE_EMAILS_JANE_DOE.
func envKey(name string) string {
	return "AE_EMAILS_" + strings.ToUpper(strings.ReplaceAll(name, " ", "_"))
}

func addresses(list string) []string {
	split := []string{}
	for _, v := range strings.Split(list, ",") {
		if address := strings.TrimSpace(v); address != "" {
			split = append(split, address)
		}
	}

	return split
}
