package views

import (
	"errors"
	"fmt"
	"html/template"
	"io"
	"io/fs"

	"github.com/AndreyATC/ph-monitor/internal/modules/ph/types"
)

var dashboardTmpl *template.Template

var funcs = template.FuncMap{
	"ph": func(v float64) string { return fmt.Sprintf("%.2f", v) },
}

// loadTemplatesFromFS parses the pages in dir and its partials/ directory.
func loadTemplatesFromFS(fsys fs.FS, dir string) error {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		return err
	}
	tmpl, err := template.New("views").Funcs(funcs).ParseFS(sub, "*.html", "partials/*.html")
	if err != nil {
		return err
	}
	dashboardTmpl = tmpl
	return nil
}

// LoadTemplates parses the embedded templates. Call it once during startup and
// refuse to serve if it fails.
func LoadTemplates() error {
	return loadTemplatesFromFS(viewsFS, "templates")
}

// DashboardData is the view model of the dashboard page.
type DashboardData struct {
	// Form values, echoed back into the inputs.
	StartDate string
	EndDate   string
	StartTime string
	EndTime   string
	Timezone  string

	Summary     types.Summary
	RawCount    int
	Downsampled bool
	BucketWidth string
	Thresholds  types.Thresholds

	// Query is the encoded range query shared by the chart, export and API links.
	Query template.URL
}

func (d *DashboardData) Empty() bool { return d.Summary.Count == 0 }

func RenderDashboard(w io.Writer, data *DashboardData) error {
	if dashboardTmpl == nil {
		return errors.New("dashboard template not loaded: call views.LoadTemplates during startup")
	}
	return dashboardTmpl.ExecuteTemplate(w, "dashboard.html", data)
}
