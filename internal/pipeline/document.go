package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime/debug"
	"strings"

	"github.com/tsawler/tabula"
	tabmodel "github.com/tsawler/tabula/model"
	"github.com/tsawler/tabula/tables"
	tabtext "github.com/tsawler/tabula/text"

	"ocrweb/internal/model"
)

const tabulaModule = "github.com/tsawler/tabula"

// Document reads the text layer and tables of PDF uploads. It does not
// rasterize pages, so scanned PDFs without a text layer yield empty text.
type Document struct {
	detector tables.Detector
	version  string
}

// NewDocument returns the PDF engine backed by the geometric table detector.
func NewDocument() (*Document, error) {
	detector := tables.GetDetector("geometric")
	if detector == nil {
		return nil, fmt.Errorf("%w: no table detector registered", ErrEngineUnavailable)
	}
	return &Document{detector: detector, version: moduleVersion(tabulaModule)}, nil
}

func (d *Document) Name() string    { return "tabula" }
func (d *Document) Version() string { return d.version }

// Recognize extracts the text of every page, then runs table detection page
// by page so tables carry their page number.
func (d *Document) Recognize(ctx context.Context, path string) (*model.OCRResult, error) {
	counter := tabula.Open(path)
	pages, err := counter.PageCount()
	_ = counter.Close()
	if err != nil {
		return nil, fmt.Errorf("read pdf: %w", err)
	}

	text, _, err := tabula.Open(path).Text()
	if err != nil {
		return nil, fmt.Errorf("extract text: %w", err)
	}

	res := &model.OCRResult{
		Engine:        d.Name(),
		EngineVersion: d.version,
		Source:        filepath.Base(path),
		Pages:         pages,
		Text:          strings.TrimSpace(text),
		Records:       []model.Record{},
	}

	for n := 1; n <= pages; n++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		frags, _, err := tabula.Open(path).Pages(n).Fragments()
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", n, err)
		}
		found, err := d.detector.Detect(pageFromFragments(n, frags))
		if err != nil {
			return nil, fmt.Errorf("detect tables on page %d: %w", n, err)
		}
		res.Tables = append(res.Tables, convertTables(n, found)...)
	}
	return res, nil
}

func pageFromFragments(number int, frags []tabtext.TextFragment) *tabmodel.Page {
	page := tabmodel.NewPage(0, 0)
	page.Number = number
	for _, f := range frags {
		if strings.TrimSpace(f.Text) == "" {
			continue
		}
		page.RawText = append(page.RawText, tabmodel.TextFragment{
			Text:     f.Text,
			BBox:     tabmodel.BBox{X: f.X, Y: f.Y, Width: f.Width, Height: f.Height},
			FontSize: f.FontSize,
			FontName: f.FontName,
		})
	}
	return page
}

func convertTables(page int, found []*tabmodel.Table) []model.Table {
	out := make([]model.Table, 0, len(found))
	for _, t := range found {
		if t == nil || len(t.Rows) == 0 {
			continue
		}
		tbl := model.Table{
			Page:       page,
			Confidence: t.Confidence,
			HasGrid:    t.HasGrid,
			Rows:       make([][]model.TableCell, len(t.Rows)),
		}
		for i, row := range t.Rows {
			cells := make([]model.TableCell, len(row))
			for j, c := range row {
				cells[j] = model.TableCell{Text: strings.TrimSpace(c.Text), Header: c.IsHeader}
				if c.RowSpan > 1 {
					cells[j].RowSpan = c.RowSpan
				}
				if c.ColSpan > 1 {
					cells[j].ColSpan = c.ColSpan
				}
			}
			tbl.Rows[i] = cells
		}
		out = append(out, tbl)
	}
	return out
}

// moduleVersion reports the version of a dependency linked into the binary.
func moduleVersion(path string) string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	for _, dep := range info.Deps {
		if dep.Path == path {
			return dep.Version
		}
	}
	return ""
}

// IsDocument reports whether the stored file goes to the PDF engine.
func IsDocument(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".pdf")
}
