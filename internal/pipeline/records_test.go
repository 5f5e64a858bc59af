package pipeline

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ocrweb/internal/model"
)

func TestGroupRecords(t *testing.T) {
	words := []wordBox{
		{Text: "Item", Rect: image.Rect(10, 10, 50, 20), Confidence: 90, Block: 1, Paragraph: 1, Line: 1},
		{Text: "Qty", Rect: image.Rect(60, 10, 80, 20), Confidence: 80, Block: 1, Paragraph: 1, Line: 1},
		{Text: "Bolt", Rect: image.Rect(10, 30, 45, 40), Confidence: 70, Block: 1, Paragraph: 1, Line: 2},
		{Text: " ", Rect: image.Rect(0, 0, 1, 1), Confidence: 0, Block: 1, Paragraph: 1, Line: 2},
		{Text: "Total", Rect: image.Rect(10, 100, 60, 110), Confidence: 100, Block: 2, Paragraph: 1, Line: 1},
	}

	records := groupRecords(words)
	require.Len(t, records, 2)

	first := records[0]
	assert.Equal(t, 1, first.Block)
	assert.Equal(t, "Item Qty\nBolt", first.Text)
	assert.Equal(t, model.Box{X: 10, Y: 10, Width: 70, Height: 30}, first.Box)
	assert.InDelta(t, 0.8, first.Confidence, 1e-9)
	require.Len(t, first.Lines, 2)
	assert.Equal(t, "Item Qty", first.Lines[0].Text)
	assert.Equal(t, model.Box{X: 10, Y: 10, Width: 70, Height: 10}, first.Lines[0].Box)
	assert.Len(t, first.Lines[0].Words, 2)
	assert.InDelta(t, 0.9, first.Lines[0].Words[0].Confidence, 1e-9)
	assert.Equal(t, "Bolt", first.Lines[1].Text)

	second := records[1]
	assert.Equal(t, 2, second.Block)
	assert.Equal(t, "Total", second.Text)
	assert.InDelta(t, 1.0, second.Confidence, 1e-9)
}

func TestGroupRecords_Empty(t *testing.T) {
	records := groupRecords(nil)
	assert.NotNil(t, records)
	assert.Empty(t, records)
}

func TestImageSize(t *testing.T) {
	w, h, ok := imageSize(writePNG(t, 12, 7))
	assert.True(t, ok)
	assert.Equal(t, 12, w)
	assert.Equal(t, 7, h)

	_, _, ok = imageSize("/no/such/file.png")
	assert.False(t, ok)
}
