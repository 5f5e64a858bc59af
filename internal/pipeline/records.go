package pipeline

import (
	"image"
	"strings"

	"ocrweb/internal/model"
)

// wordBox is an engine-neutral word with its layout position.
type wordBox struct {
	Text       string
	Rect       image.Rectangle
	Confidence float64 // 0-100 as reported by Tesseract
	Block      int
	Paragraph  int
	Line       int
}

type lineKey struct{ block, par, line int }

// groupRecords folds words into block records and text lines, keeping the
// order in which the engine reported them.
func groupRecords(words []wordBox) []model.Record {
	records := make([]model.Record, 0)
	blockIdx := map[int]int{}
	lineIdx := map[lineKey]int{}
	lineRects := map[[2]int]image.Rectangle{}
	blockRects := map[int]image.Rectangle{}
	confSum := map[int]float64{}

	for _, w := range words {
		if strings.TrimSpace(w.Text) == "" {
			continue
		}
		bi, ok := blockIdx[w.Block]
		if !ok {
			bi = len(records)
			blockIdx[w.Block] = bi
			records = append(records, model.Record{Block: w.Block})
		}
		k := lineKey{w.Block, w.Paragraph, w.Line}
		li, ok := lineIdx[k]
		if !ok {
			li = len(records[bi].Lines)
			lineIdx[k] = li
			records[bi].Lines = append(records[bi].Lines, model.Line{Paragraph: w.Paragraph})
		}

		line := &records[bi].Lines[li]
		line.Words = append(line.Words, model.Word{
			Text:       w.Text,
			Box:        toBox(w.Rect),
			Confidence: w.Confidence / 100,
		})
		lineRects[[2]int{bi, li}] = union(lineRects[[2]int{bi, li}], w.Rect)
		blockRects[bi] = union(blockRects[bi], w.Rect)
		confSum[bi] += w.Confidence / 100
	}

	for bi := range records {
		r := &records[bi]
		texts := make([]string, 0, len(r.Lines))
		n := 0
		for li := range r.Lines {
			l := &r.Lines[li]
			parts := make([]string, 0, len(l.Words))
			for _, w := range l.Words {
				parts = append(parts, w.Text)
			}
			l.Text = strings.Join(parts, " ")
			l.Box = toBox(lineRects[[2]int{bi, li}])
			texts = append(texts, l.Text)
			n += len(l.Words)
		}
		r.Text = strings.Join(texts, "\n")
		r.Box = toBox(blockRects[bi])
		if n > 0 {
			r.Confidence = confSum[bi] / float64(n)
		}
	}
	return records
}

func union(a, b image.Rectangle) image.Rectangle {
	if a.Empty() {
		return b
	}
	return a.Union(b)
}

func toBox(r image.Rectangle) model.Box {
	return model.Box{X: r.Min.X, Y: r.Min.Y, Width: r.Dx(), Height: r.Dy()}
}
