// Package templates holds the HTML components served by the web UI.
package templates

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"
)

// IndexPage is the data behind the upload form.
type IndexPage struct {
	Rules         []string
	DefaultRule   string
	MaxUploadSize int64
}

const pageHead = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>mobcsv</title>
<style>
body{font-family:system-ui,sans-serif;max-width:40rem;margin:3rem auto;padding:0 1rem;color:#1f2933}
label{display:block;margin:1rem 0 .25rem;font-weight:600}
button{margin-top:1.5rem;padding:.5rem 1.25rem}
.alert{border:1px solid #e12d39;background:#ffe3e3;padding:1rem;border-radius:4px}
.muted{color:#616e7c;font-size:.9rem}
</style>
</head>
<body>
`

const pageFoot = `</body>
</html>
`

// Index renders the upload form.
func Index(p IndexPage) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, pageHead); err != nil {
			return err
		}
		if _, err := io.WriteString(w, `<h1>mobcsv</h1>
<p>Upload a CSV with a <code>ph,name,count</code> header. Phone numbers are
normalized and validated; the cleaned file is returned as a download.</p>
<form method="post" action="/normalize" enctype="multipart/form-data">
<label for="file">CSV file</label>
<input id="file" name="file" type="file" accept=".csv,text/csv" required>
<label for="rule">Validation rule</label>
<select id="rule" name="rule">
`); err != nil {
			return err
		}

		for _, rule := range p.Rules {
			selected := ""
			if rule == p.DefaultRule {
				selected = " selected"
			}
			name := templ.EscapeString(rule)
			if _, err := fmt.Fprintf(w, "<option value=\"%s\"%s>%s</option>\n", name, selected, name); err != nil {
				return err
			}
		}

		if _, err := fmt.Fprintf(w, `</select>
<p class="muted">Maximum upload size: %s</p>
<button type="submit">Normalize</button>
</form>
`, templ.EscapeString(formatBytes(p.MaxUploadSize))); err != nil {
			return err
		}
		_, err := io.WriteString(w, pageFoot)
		return err
	})
}

// ErrorAlert renders a full error page with the user message, suggested
// action and support code.
func ErrorAlert(message, action, code string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, pageHead); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, `<div class="alert" role="alert">
<strong>%s</strong>
`, templ.EscapeString(message)); err != nil {
			return err
		}
		if action != "" {
			if _, err := fmt.Fprintf(w, "<p>%s</p>\n", templ.EscapeString(action)); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, `<p class="muted">Code: %s</p>
</div>
<p><a href="/">Back</a></p>
`, templ.EscapeString(code)); err != nil {
			return err
		}
		_, err := io.WriteString(w, pageFoot)
		return err
	})
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
