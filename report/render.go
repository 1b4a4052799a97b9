package report

import (
	"html/template"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	salesTemplate      = "sales_report.html"
	managementTemplate = "management_report.html"
	stylesheet         = "styles.css"
)

var currency = message.NewPrinter(language.English)

// Renderer renders report bodies from the HTML templates retrieved during
// the data sync stage. The stylesheet is inlined into each body so that the
// reports render correctly in mail clients that strip external styles.
type Renderer struct {
	templates *template.Template
	styles    template.CSS
}

// NewRenderer loads the report templates and stylesheet from dir.
func NewRenderer(dir string) (*Renderer, error) {
	styles, err := os.ReadFile(filepath.Join(dir, stylesheet))
	if err != nil {
		return nil, Errorf("unable to read report stylesheet (%v)", err)
	}

	functions := template.FuncMap{
		"money": money,
	}

	templates, err := template.New("reports").Funcs(functions).ParseGlob(filepath.Join(dir, "*.html"))
	if err != nil {
		return nil, Errorf("unable to parse report templates (%v)", err)
	}

	for _, name := range []string{salesTemplate, managementTemplate} {
		if templates.Lookup(name) == nil {
			return nil, Errorf("missing report template '%s'", name)
		}
	}

	return &Renderer{
		templates: templates,
		styles:    template.CSS(styles),
	}, nil
}

// SalesReport renders the weekly sales report body for a single account
// executive.
func (r *Renderer) SalesReport(ae string, stats SalesStats, budgets map[string]float64, date time.Time) (string, error) {
	data := struct {
		AE      string
		Year    int
		Date    string
		Styles  template.CSS
		Stats   SalesStats
		Budgets map[string]float64
	}{
		AE:      ae,
		Year:    date.Year(),
		Date:    date.Format("2006-01-02"),
		Styles:  r.styles,
		Stats:   stats,
		Budgets: budgets,
	}

	var b strings.Builder
	if err := r.templates.ExecuteTemplate(&b, salesTemplate, data); err != nil {
		return "", Errorf("unable to render sales report for %s (%v)", ae, err)
	}

	return b.String(), nil
}

// ManagementReport renders the company-wide rollup body.
func (r *Renderer) ManagementReport(stats ManagementStats, date time.Time) (string, error) {
	data := struct {
		Date   string
		Year   int
		Styles template.CSS
		Stats  ManagementStats
	}{
		Date:   date.Format("2006-01-02"),
		Year:   date.Year(),
		Styles: r.styles,
		Stats:  stats,
	}

	var b strings.Builder
	if err := r.templates.ExecuteTemplate(&b, managementTemplate, data); err != nil {
		return "", Errorf("unable to render management report (%v)", err)
	}

	return b.String(), nil
}

func money(v float64) string {
	return currency.Sprintf("$%.2f", v)
}
