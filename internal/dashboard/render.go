package dashboard

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"strings"
)

//go:embed templates/*.html
var templatesFS embed.FS

var templates = template.Must(template.ParseFS(templatesFS, "templates/*.html"))

// Render writes the dashboard fragment for v.
func Render(w io.Writer, v View) error {
	if err := templates.ExecuteTemplate(w, "dashboard", v); err != nil {
		return fmt.Errorf("failed to render dashboard: %w", err)
	}
	return nil
}

// RenderText writes a plain text rendition of v for terminals.
func RenderText(w io.Writer, v View) error {
	var b strings.Builder

	fmt.Fprintf(&b, "%s\n\n", v.Title)
	writeSelector(&b, v.Category)
	writeSelector(&b, v.SubCategory)

	for _, p := range v.Panels {
		fmt.Fprintf(&b, "\n== %s ==\n", p.Heading())
		if p.Empty {
			fmt.Fprintf(&b, "  %s\n", p.EmptyMessage)
			continue
		}
		for _, img := range p.Images {
			state := "pending"
			switch {
			case img.Loaded:
				state = "loaded"
			case img.Failed:
				state = "failed"
			}
			fmt.Fprintf(&b, "  [%s] %s\n", state, img.Src)
		}
		if hidden := p.Count - len(p.Images); hidden > 0 {
			fmt.Fprintf(&b, "  ... %d more\n", hidden)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func writeSelector(b *strings.Builder, s Selector) {
	b.WriteString(s.Label)
	if len(s.Options) == 0 {
		b.WriteString("-\n")
		return
	}
	labels := make([]string, 0, len(s.Options))
	for _, o := range s.Options {
		if o.Value == s.Selected {
			labels = append(labels, "["+o.Label+"]")
			continue
		}
		labels = append(labels, o.Label)
	}
	b.WriteString(strings.Join(labels, " "))
	b.WriteString("\n")
}
