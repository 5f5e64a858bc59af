package pipeline

import (
	"context"
	"errors"

	"ocrweb/internal/model"
)

var (
	// ErrEngineUnavailable means the engine is not compiled in or failed to initialize.
	ErrEngineUnavailable = errors.New("ocr engine not available")
	// ErrEnginePanic wraps a panic raised while the engine was running.
	ErrEnginePanic = errors.New("ocr engine panicked")
)

// Engine is the OCR provider contract: one stored file in, one result out.
type Engine interface {
	Name() string
	Version() string
	Recognize(ctx context.Context, path string) (*model.OCRResult, error)
}

// Options configures engine initialization.
type Options struct {
	// Languages are traineddata names such as "eng" or "deu".
	Languages []string
	// TessdataPrefix overrides the directory holding traineddata files.
	TessdataPrefix string
	// PageSegMode is the Tesseract page segmentation mode; 0 keeps the engine default.
	PageSegMode int
}

// Recognizer is what callers of the pipeline depend on. *Adapter implements it.
type Recognizer interface {
	Available() bool
	EngineName() string
	Recognize(ctx context.Context, path string) (*model.OCRResult, error)
}

var _ Recognizer = (*Adapter)(nil)
