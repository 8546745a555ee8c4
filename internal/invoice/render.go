package invoice

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strconv"
	"strings"

	"github.com/miramuse/invoice-studio/internal/capture"
)

//go:embed templates/invoice.html.tmpl
var templateFS embed.FS

// RenderMode selects the presentation of the rendered document.
type RenderMode int

const (
	// ModePreview is the on-screen look: centering margin, drop shadow
	// and the responsive preview scale. Served to the editor UI.
	ModePreview RenderMode = iota

	// ModeExport is the isolated clone consumed by the capture pipeline:
	// same content at full fixed width, presentation artifacts stripped.
	ModeExport
)

// Renderer lays out an InvoiceData as a standalone HTML document at the
// fixed A4 portrait width. Rendering is a pure function of the data:
// the same record always produces the same bytes.
type Renderer struct {
	tmpl *template.Template
}

// NewRenderer parses the embedded invoice template.
func NewRenderer() (*Renderer, error) {
	tmpl, err := template.New("invoice.html.tmpl").Funcs(template.FuncMap{
		"money": func(currency string, v float64) string {
			return fmt.Sprintf("%s%.2f", currency, v)
		},
		"qty": func(v float64) string {
			return strconv.FormatFloat(v, 'f', -1, 64)
		},
		// The logo is stored as a data URI, which the template engine's
		// URL sanitizer would otherwise reject. Only image data URIs and
		// remote http(s) URLs pass through.
		"logoSrc": func(u string) template.URL {
			if strings.HasPrefix(u, "data:image/") ||
				strings.HasPrefix(u, "http://") ||
				strings.HasPrefix(u, "https://") {
				return template.URL(u)
			}
			return ""
		},
	}).ParseFS(templateFS, "templates/invoice.html.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parsing invoice template: %w", err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

// renderContext is the data handed to the template.
type renderContext struct {
	Data    InvoiceData
	Preview bool
	RootID  string
	WidthPx int
}

// Render produces the complete HTML document for data in the given mode.
func (r *Renderer) Render(data InvoiceData, mode RenderMode) (string, error) {
	data.Normalize()

	var buf bytes.Buffer
	err := r.tmpl.Execute(&buf, renderContext{
		Data:    data,
		Preview: mode == ModePreview,
		RootID:  capture.DocumentRootID,
		WidthPx: capture.PageWidthPx,
	})
	if err != nil {
		return "", fmt.Errorf("rendering invoice: %w", err)
	}
	return buf.String(), nil
}
