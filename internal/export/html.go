package export

import (
	"bytes"
	"fmt"
	"html/template"

	"fintrack/internal/report"
)

// HTMLExporter emits a self-contained printable document with inline styles.
type HTMLExporter struct{}

func (HTMLExporter) Extension() string   { return ".html" }
func (HTMLExporter) ContentType() string { return "text/html; charset=utf-8" }

var htmlTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"formatValue": report.FormatValue,
	"formatDelta": report.FormatDelta,
	"formatCell":  report.FormatCell,
}).Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: -apple-system, "Segoe UI", Roboto, sans-serif; color: #212529; margin: 2rem auto; max-width: 52rem; }
h1 { background: #2c3e50; color: #fff; padding: .6rem 1rem; font-size: 1.4rem; }
h2 { border-bottom: 1px solid #c8c8c8; padding-bottom: .3rem; font-size: 1.1rem; margin-top: 2rem; }
p.subtitle { color: #555; margin-top: -.4rem; }
p.generated { color: #888; font-size: .85rem; }
table { border-collapse: collapse; width: 100%; margin: .5rem 0; }
th, td { border: 1px solid #ddd; padding: .35rem .6rem; text-align: left; }
th { background: #e6e6e6; }
td.num { text-align: right; }
tfoot td { font-weight: bold; }
dl.metrics div { display: flex; justify-content: space-between; border-bottom: 1px solid #eee; padding: .3rem 0; }
dl.metrics dd { margin: 0; }
span.delta { color: #888; font-size: .85rem; margin-left: .4rem; }
p.empty { color: #888; font-style: italic; }
@media print { body { margin: 0; max-width: none; } }
</style>
</head>
<body onload="window.print()">
<h1>{{.Title}}</h1>
{{if .Subtitle}}<p class="subtitle">{{.Subtitle}}</p>{{end}}
<p class="generated">Generated {{.GeneratedAt.Format "2006-01-02 15:04"}}</p>
{{range .Sections}}
<h2>{{.Title}}</h2>
{{if eq .Type "metrics"}}
<dl class="metrics">
{{range .Items}}
<div><dt>{{.Label}}</dt><dd>{{formatValue .Value .Format}}{{if .Delta}}<span class="delta">{{formatDelta .Delta}}</span>{{end}}</dd></div>
{{end}}
</dl>
{{else if eq .Type "table"}}
{{if .Rows}}
<table>
<thead><tr>{{range .Headers}}<th>{{.}}</th>{{end}}</tr></thead>
<tbody>
{{range .Rows}}<tr>{{range .Cells}}<td{{if eq .Kind "number"}} class="num"{{end}}>{{formatCell .}}</td>{{end}}</tr>
{{end}}</tbody>
{{with .Footer}}<tfoot><tr><td>{{.Label}}</td><td class="num">{{formatValue .Value .Format}}</td></tr></tfoot>{{end}}
</table>
{{else}}<p class="empty">{{.EmptyMessage}}</p>{{end}}
{{else}}
<p>{{.Body}}</p>
{{end}}
{{end}}
{{if .Notes}}
<h2>Notes</h2>
<p>{{.Notes}}</p>
{{end}}
</body>
</html>
`))

func (HTMLExporter) Render(p report.Payload) ([]byte, error) {
	var buf bytes.Buffer
	if err := htmlTemplate.Execute(&buf, p); err != nil {
		return nil, fmt.Errorf("render html: %w", err)
	}
	return buf.Bytes(), nil
}
