// Package report renders a transcription result as a single
// self-contained HTML file that can be shared or archived.
package report

import (
	"encoding/json"
	"fmt"
	"html"
	"os"
	"strings"
	"time"

	"github.com/sergiecode/audio-to-sheet/internal/pipeline"
)

// Data holds everything the report template needs
type Data struct {
	SourceName string
	CreatedAt  time.Time
	Result     *pipeline.Result
}

// Generator creates HTML score reports
type Generator struct{}

// NewGenerator creates a new report generator
func NewGenerator() *Generator {
	return &Generator{}
}

// WriteFile renders the report and writes it to path.
func (g *Generator) WriteFile(path string, data *Data) error {
	htmlOut, err := g.Render(data)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(htmlOut), 0644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// Render builds the report HTML.
func (g *Generator) Render(data *Data) (string, error) {
	if data == nil || data.Result == nil {
		return "", fmt.Errorf("report: no result to render")
	}

	vexJSON, err := json.MarshalIndent(data.Result.VexNotes, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode note descriptors: %w", err)
	}

	s := data.Result.Summary
	var sb strings.Builder

	sb.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n")
	sb.WriteString("<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&sb, "<title>%s - transcription report</title>\n", html.EscapeString(s.Name))
	sb.WriteString(`<style>
body { font-family: -apple-system, sans-serif; max-width: 860px; margin: 2rem auto; padding: 0 1rem; color: #222; }
h1 { font-size: 1.4rem; }
table { border-collapse: collapse; margin: 1rem 0; }
td, th { border: 1px solid #ccc; padding: 0.4rem 0.8rem; text-align: left; }
pre { background: #f6f6f6; padding: 1rem; overflow-x: auto; border-radius: 4px; }
.meta { color: #777; font-size: 0.85rem; }
</style>
`)
	sb.WriteString("</head>\n<body>\n")

	fmt.Fprintf(&sb, "<h1>%s</h1>\n", html.EscapeString(s.Name))
	fmt.Fprintf(&sb, "<p class=\"meta\">Source: %s &middot; Generated: %s</p>\n",
		html.EscapeString(data.SourceName), data.CreatedAt.Format("2006-01-02 15:04"))

	sb.WriteString("<h2>Summary</h2>\n<table>\n")
	fmt.Fprintf(&sb, "<tr><th>Duration</th><td>%s</td></tr>\n", html.EscapeString(s.Duration))
	fmt.Fprintf(&sb, "<tr><th>Tracks</th><td>%d</td></tr>\n", s.TrackCount)
	fmt.Fprintf(&sb, "<tr><th>Notes</th><td>%d</td></tr>\n", s.TotalNotes)
	fmt.Fprintf(&sb, "<tr><th>Instruments</th><td>%s</td></tr>\n", html.EscapeString(s.Instruments))
	sb.WriteString("</table>\n")

	sb.WriteString("<h2>ABC notation</h2>\n")
	fmt.Fprintf(&sb, "<pre>%s</pre>\n", html.EscapeString(data.Result.ABC))

	sb.WriteString("<h2>VexFlow notes</h2>\n")
	fmt.Fprintf(&sb, "<script type=\"application/json\" id=\"vexflow-notes\">\n%s\n</script>\n", vexJSON)
	fmt.Fprintf(&sb, "<pre>%s</pre>\n", html.EscapeString(string(vexJSON)))

	sb.WriteString("</body>\n</html>\n")

	return sb.String(), nil
}
