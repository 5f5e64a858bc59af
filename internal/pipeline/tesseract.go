//go:build tesseract

package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"ocrweb/internal/model"
)

// tesseractEngine runs Tesseract through gosseract. A fresh client is created
// per call because gosseract clients are not safe for concurrent use.
type tesseractEngine struct {
	opts          Options
	version       string
	clientFactory func() *gosseract.Client
}

// NewTesseract initializes the Tesseract engine and runs a probe recognition
// so missing language data is detected at startup rather than per request.
func NewTesseract(opts Options) (Engine, error) {
	if len(opts.Languages) == 0 {
		opts.Languages = []string{"eng"}
	}
	e := &tesseractEngine{opts: opts, clientFactory: gosseract.NewClient}
	if err := e.probe(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEngineUnavailable, err)
	}
	e.version = gosseract.Version()
	return e, nil
}

func (e *tesseractEngine) Name() string    { return "tesseract" }
func (e *tesseractEngine) Version() string { return e.version }

// Recognize performs OCR on the image at path.
func (e *tesseractEngine) Recognize(ctx context.Context, path string) (*model.OCRResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c := e.clientFactory()
	defer c.Close()

	if err := e.configure(c); err != nil {
		return nil, err
	}
	if err := c.SetImage(path); err != nil {
		return nil, fmt.Errorf("set image: %w", err)
	}
	text, err := c.Text()
	if err != nil {
		return nil, fmt.Errorf("recognize text: %w", err)
	}
	boxes, err := c.GetBoundingBoxesVerbose()
	if err != nil {
		return nil, fmt.Errorf("bounding boxes: %w", err)
	}

	words := make([]wordBox, 0, len(boxes))
	for _, b := range boxes {
		words = append(words, wordBox{
			Text:       b.Word,
			Rect:       b.Box,
			Confidence: b.Confidence,
			Block:      b.BlockNum,
			Paragraph:  b.ParNum,
			Line:       b.LineNum,
		})
	}

	return &model.OCRResult{
		Engine:        e.Name(),
		EngineVersion: e.version,
		Languages:     append([]string(nil), e.opts.Languages...),
		Text:          strings.TrimSpace(text),
		Records:       groupRecords(words),
	}, nil
}

func (e *tesseractEngine) configure(c *gosseract.Client) error {
	if e.opts.TessdataPrefix != "" {
		if err := c.SetTessdataPrefix(e.opts.TessdataPrefix); err != nil {
			return fmt.Errorf("set tessdata prefix: %w", err)
		}
	}
	if err := c.SetLanguage(e.opts.Languages...); err != nil {
		return fmt.Errorf("set languages: %w", err)
	}
	if e.opts.PageSegMode > 0 {
		if err := c.SetPageSegMode(gosseract.PageSegMode(e.opts.PageSegMode)); err != nil {
			return fmt.Errorf("set page segmentation mode: %w", err)
		}
	}
	return nil
}

// probe loads the configured models by recognizing a small blank image.
func (e *tesseractEngine) probe() error {
	img := image.NewGray(image.Rect(0, 0, 32, 32))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return err
	}

	c := e.clientFactory()
	defer c.Close()
	if err := e.configure(c); err != nil {
		return err
	}
	if err := c.SetImageFromBytes(buf.Bytes()); err != nil {
		return fmt.Errorf("set probe image: %w", err)
	}
	if _, err := c.Text(); err != nil {
		return fmt.Errorf("probe recognition: %w", err)
	}
	return nil
}
