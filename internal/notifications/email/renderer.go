// Package email renders the engine's four outbound email kinds (urgent
// reminder, daily digest, weekly report, monthly report) from embedded Go
// templates. Rendering is client-side and pure: the channel clients receive
// finished HTML and subjects.
package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"math"
)

//go:embed templates/*.html
var templateFS embed.FS

// templateNames maps each email kind to its embedded template file.
var templateNames = map[string]string{
	"reminder": "templates/reminder.html",
	"daily":    "templates/daily_digest.html",
	"weekly":   "templates/weekly_report.html",
	"monthly":  "templates/monthly_report.html",
}

// templateFuncs are the helpers available inside the templates.
var templateFuncs = template.FuncMap{
	// percent renders a 0..1 rate as a whole percentage.
	"percent": func(rate float64) int {
		return int(math.Round(rate * 100))
	},
	// roundHours renders an optional fractional hour count as a whole number.
	"roundHours": func(hours *float64) int {
		if hours == nil {
			return 0
		}
		return int(math.Round(*hours))
	},
}

// Renderer renders email bodies from the embedded template set. It is
// immutable after construction and safe for concurrent use.
type Renderer struct {
	templates map[string]*template.Template
}

// NewRenderer parses the embedded templates and returns a Renderer.
// Returns an error if any template fails to parse.
func NewRenderer() (*Renderer, error) {
	r := &Renderer{templates: make(map[string]*template.Template, len(templateNames))}
	for kind, file := range templateNames {
		tmpl, err := template.New(kind).Funcs(templateFuncs).ParseFS(templateFS, file)
		if err != nil {
			return nil, fmt.Errorf("renderer: parsing %s: %w", file, err)
		}
		r.templates[kind] = tmpl
	}
	return r, nil
}

// Reminder renders an urgent due-soon reminder for one task.
func (r *Renderer) Reminder(data ReminderData) (RenderedEmail, error) {
	html, err := r.render("reminder", data)
	if err != nil {
		return RenderedEmail{}, err
	}
	return RenderedEmail{
		Subject:  fmt.Sprintf("Reminder: %q is due in %d hours", data.TaskTitle, data.ThresholdHours),
		BodyHTML: html,
	}, nil
}

// DailyDigest renders the daily pending-tasks digest.
func (r *Renderer) DailyDigest(data DailyDigestData) (RenderedEmail, error) {
	html, err := r.render("daily", data)
	if err != nil {
		return RenderedEmail{}, err
	}
	return RenderedEmail{
		Subject:  "Your daily pending tasks digest",
		BodyHTML: html,
	}, nil
}

// WeeklyReport renders the weekly activity report.
func (r *Renderer) WeeklyReport(data WeeklyReportData) (RenderedEmail, error) {
	html, err := r.render("weekly", data)
	if err != nil {
		return RenderedEmail{}, err
	}
	return RenderedEmail{
		Subject:  fmt.Sprintf("Your weekly report: %s", data.WeekRangeLabel),
		BodyHTML: html,
	}, nil
}

// MonthlyReport renders the monthly performance report.
func (r *Renderer) MonthlyReport(data MonthlyReportData) (RenderedEmail, error) {
	html, err := r.render("monthly", data)
	if err != nil {
		return RenderedEmail{}, err
	}
	return RenderedEmail{
		Subject:  fmt.Sprintf("Your month in TaskStudy: %s", data.MonthLabel),
		BodyHTML: html,
	}, nil
}

func (r *Renderer) render(kind string, data any) (string, error) {
	tmpl, ok := r.templates[kind]
	if !ok {
		return "", fmt.Errorf("renderer: unknown template kind %q", kind)
	}
	var buf bytes.Buffer
	name := templateNames[kind]
	// ParseFS registers the template under its base file name.
	if err := tmpl.ExecuteTemplate(&buf, name[len("templates/"):], data); err != nil {
		return "", fmt.Errorf("renderer: executing %s: %w", kind, err)
	}
	return buf.String(), nil
}
