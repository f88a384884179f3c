package export

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"time"
)

//go:embed templates/*.html
var templateFS embed.FS

var historyTemplate *template.Template

func init() {
	funcMap := template.FuncMap{
		"formatDate": func(v any) string {
			switch t := v.(type) {
			case time.Time:
				return t.Format("Jan 2, 2006")
			case *time.Time:
				if t != nil {
					return t.Format("Jan 2, 2006")
				}
			}
			return ""
		},
		"formatRating": func(value float64) string {
			return fmt.Sprintf("%.1f", value)
		},
	}

	templateContent, err := templateFS.ReadFile("templates/history.html")
	if err != nil {
		// Fallback to the built-in template if the file is missing.
		historyTemplate = template.Must(template.New("history").Funcs(funcMap).Parse(fallbackTemplate))
		return
	}

	historyTemplate = template.Must(template.New("history").Funcs(funcMap).Parse(string(templateContent)))
}

// RenderHistoryHTML renders the watch-history template with provided data.
func RenderHistoryHTML(data Data) (string, error) {
	var buf bytes.Buffer
	if err := historyTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// fallbackTemplate is used if the embedded template fails to load
const fallbackTemplate = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <title>{{.ClubName}} — Watch History</title>
  <style>
    body { font-family: Arial, sans-serif; line-height: 1.6; max-width: 800px; margin: 2rem auto; }
    h1 { border-bottom: 2px solid #333; padding-bottom: 0.5rem; }
    .meta { color: #666; font-size: 0.9em; margin-bottom: 2rem; }
    .entry { padding: 0.5rem 0; border-bottom: 1px solid #ddd; }
  </style>
</head>
<body>
  <h1>{{.ClubName}} — Watch History</h1>
  <div class="meta">Generated {{formatDate .GeneratedAt}}</div>
  {{range .Entries}}
  <div class="entry">
    <strong>{{.Title}}</strong>{{if .ReleaseYear}} ({{.ReleaseYear}}){{end}}
    {{if .Watched}}— watched{{if .WatchedAt}} {{formatDate .WatchedAt}}{{end}}{{else}}— watch by {{formatDate .WatchBy}}{{end}}
    {{if .RatingCount}}— rated {{formatRating .AverageRating}}/5 ({{.RatingCount}}){{end}}
  </div>
  {{end}}
</body>
</html>`
