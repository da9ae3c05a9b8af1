package delivery

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"
	"time"

	"github.com/bilgisen/newsdigest/internal/models"
)

const htmlLayout = `<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>{{.Digest.Title}}</title></head>
<body style="font-family:-apple-system,Helvetica,Arial,sans-serif;max-width:680px;margin:0 auto;color:#1f2328">
<h1>{{.Digest.Title}}</h1>
<p style="color:#6e7781">{{.Digest.TotalItemCount}} stories</p>
{{range .Digest.Sections}}
<h2 style="border-bottom:3px solid {{.Category.Color | css}}">{{.Category.DisplayName}}</h2>
{{range .Items}}
<div style="margin:16px 0">
{{if and $.IncludeImages .ImageURL}}<img src="{{.ImageURL}}" alt="" style="max-width:100%;border-radius:4px">{{end}}
<h3 style="margin:4px 0"><a href="{{.URL}}">{{headline .}}</a></h3>
<p style="color:#6e7781;font-size:13px">{{.SourceName}} · {{stamp .PublishedAt}} · {{printf "%.0f" .ImportanceScore}}</p>
{{if and $.IncludeSummary .Summary}}<p>{{.Summary}}</p>{{end}}
</div>
{{end}}
{{end}}
</body>
</html>
`

const textLayout = `{{.Digest.Title}}
{{.Digest.TotalItemCount}} stories
{{range .Digest.Sections}}
== {{.Category.DisplayName}} ==
{{range .Items}}
* {{headline .}}
  {{.SourceName}} | {{stamp .PublishedAt}}
  {{.URL}}
{{- if and $.IncludeSummary .Summary}}
  {{.Summary}}
{{- end}}
{{end}}{{end}}`

// Renderer turns a digest into HTML and plain text bodies
type Renderer struct {
	html *htmltemplate.Template
	text *texttemplate.Template
}

func headline(item models.ProcessedItem) string {
	if strings.TrimSpace(item.TranslatedTitle) != "" {
		return item.TranslatedTitle
	}
	return item.OriginalTitle
}

func stamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format("Jan 2 15:04 MST")
}

func NewRenderer() *Renderer {
	return &Renderer{
		html: htmltemplate.Must(htmltemplate.New("digest.html").Funcs(htmltemplate.FuncMap{
			"headline": headline,
			"stamp":    stamp,
			"css":      func(s string) htmltemplate.CSS { return htmltemplate.CSS(cssColor(s)) },
		}).Parse(htmlLayout)),
		text: texttemplate.Must(texttemplate.New("digest.txt").Funcs(texttemplate.FuncMap{
			"headline": headline,
			"stamp":    stamp,
		}).Parse(textLayout)),
	}
}

// only #rgb/#rrggbb colors reach the stylesheet
func cssColor(s string) string {
	if len(s) != 4 && len(s) != 7 || s[0] != '#' {
		return "#6e7781"
	}
	for _, r := range s[1:] {
		if !strings.ContainsRune("0123456789abcdefABCDEF", r) {
			return "#6e7781"
		}
	}
	return s
}

// Render fills d.HTML, d.Text and a default subject
func (r *Renderer) Render(d *Delivery) error {
	var buf bytes.Buffer
	if err := r.html.Execute(&buf, d); err != nil {
		return fmt.Errorf("render html: %w", err)
	}
	d.HTML = buf.String()

	buf.Reset()
	if err := r.text.Execute(&buf, d); err != nil {
		return fmt.Errorf("render text: %w", err)
	}
	d.Text = buf.String()

	if d.Subject == "" {
		d.Subject = d.Digest.Title
	}
	return nil
}

// NewDelivery renders digest for cfg
func (r *Renderer) NewDelivery(digest models.Digest, cfg models.RunConfig) (Delivery, error) {
	d := Delivery{
		Digest:         digest,
		Recipient:      cfg.Recipient,
		IncludeSummary: cfg.IncludeSummary,
		IncludeImages:  cfg.IncludeImages,
	}
	if err := r.Render(&d); err != nil {
		return Delivery{}, err
	}
	return d, nil
}
