// Package view renders the HTML pages of the upload form.
package view

import (
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"io"

	"github.com/dustin/go-humanize"

	"ocrweb/internal/model"
)

//go:embed templates/*.html
var templateFS embed.FS

// PageData is the render context of the upload page.
//
// A page with Submitted unset is the form-display state. With Submitted set it
// is the result-display state and carries at most one of ResultText, Notice and Error.
type PageData struct {
	CSRFToken  string
	Message    string
	Submitted  bool
	Extraction *model.Extraction
	ResultText string
	Notice     string
	Error      string
	MaxUpload  string
	RequestID  string
}

// ErrorData is the render context of the error page.
type ErrorData struct {
	Status    int
	Title     string
	Detail    string
	RequestID string
}

// Renderer holds the parsed templates. It is safe for concurrent use.
type Renderer struct {
	upload  *template.Template
	errPage *template.Template
}

// NewRenderer parses the embedded templates.
func NewRenderer() (*Renderer, error) {
	upload, err := template.ParseFS(templateFS, "templates/layout.html", "templates/upload.html")
	if err != nil {
		return nil, fmt.Errorf("parse upload template: %w", err)
	}
	errPage, err := template.ParseFS(templateFS, "templates/layout.html", "templates/error.html")
	if err != nil {
		return nil, fmt.Errorf("parse error template: %w", err)
	}
	return &Renderer{upload: upload, errPage: errPage}, nil
}

// Page renders the upload page.
func (r *Renderer) Page(w io.Writer, data PageData) error {
	return r.upload.ExecuteTemplate(w, "upload.html", data)
}

// Error renders the error page.
func (r *Renderer) Error(w io.Writer, data ErrorData) error {
	return r.errPage.ExecuteTemplate(w, "error.html", data)
}

// FormatResult returns the OCR result as two-space indented JSON.
// Equal results always give equal text.
func FormatResult(res *model.OCRResult) (string, error) {
	b, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// HumanBytes formats an upload limit for display, e.g. "10 MiB".
func HumanBytes(n int) string {
	if n < 0 {
		n = 0
	}
	return humanize.IBytes(uint64(n))
}
