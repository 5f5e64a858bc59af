package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tabmodel "github.com/tsawler/tabula/model"
	tabtext "github.com/tsawler/tabula/text"

	"ocrweb/internal/model"
)

func TestIsDocument(t *testing.T) {
	assert.True(t, IsDocument("/media/report.pdf"))
	assert.True(t, IsDocument("REPORT.PDF"))
	assert.False(t, IsDocument("scan.png"))
	assert.False(t, IsDocument("pdf"))
}

func TestNewDocument(t *testing.T) {
	d, err := NewDocument()
	require.NoError(t, err)
	assert.Equal(t, "tabula", d.Name())
}

func TestDocument_RejectsNonPDF(t *testing.T) {
	png := writePNG(t, 10, 10)
	path := filepath.Join(t.TempDir(), "fake.pdf")
	require.NoError(t, os.Rename(png, path))

	d, err := NewDocument()
	require.NoError(t, err)
	res, err := d.Recognize(context.Background(), path)
	assert.Nil(t, res)
	assert.Error(t, err)
}

func TestPageFromFragments(t *testing.T) {
	page := pageFromFragments(3, []tabtext.TextFragment{
		{Text: "Qty", X: 100, Y: 700, Width: 30, Height: 12, FontName: "Helvetica", FontSize: 12},
		{Text: "  ", X: 140, Y: 700, Width: 5, Height: 12},
		{Text: "Price", X: 200, Y: 700, Width: 40, Height: 12},
	})

	assert.Equal(t, 3, page.Number)
	require.Len(t, page.RawText, 2)
	assert.Equal(t, "Qty", page.RawText[0].Text)
	assert.Equal(t, tabmodel.BBox{X: 100, Y: 700, Width: 30, Height: 12}, page.RawText[0].BBox)
	assert.Equal(t, "Helvetica", page.RawText[0].FontName)
	assert.Equal(t, "Price", page.RawText[1].Text)
}

func TestConvertTables(t *testing.T) {
	src := tabmodel.NewTable(2, 2)
	src.Confidence = 0.8
	src.HasGrid = true
	src.Rows[0][0] = tabmodel.Cell{Text: " Item ", IsHeader: true, RowSpan: 1, ColSpan: 2}
	src.Rows[0][1] = tabmodel.Cell{RowSpan: 1, ColSpan: 1}
	src.Rows[1][0] = tabmodel.Cell{Text: "bolt", RowSpan: 1, ColSpan: 1}
	src.Rows[1][1] = tabmodel.Cell{Text: "12", RowSpan: 1, ColSpan: 1}

	got := convertTables(2, []*tabmodel.Table{src, nil, tabmodel.NewTable(0, 0)})

	require.Len(t, got, 1)
	assert.Equal(t, model.Table{
		Page:       2,
		Confidence: 0.8,
		HasGrid:    true,
		Rows: [][]model.TableCell{
			{{Text: "Item", ColSpan: 2, Header: true}, {}},
			{{Text: "bolt"}, {Text: "12"}},
		},
	}, got[0])
}
