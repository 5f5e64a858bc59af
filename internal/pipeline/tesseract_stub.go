//go:build !tesseract

package pipeline

import "fmt"

// NewTesseract always reports ErrEngineUnavailable in builds without the
// tesseract tag.
func NewTesseract(Options) (Engine, error) {
	return nil, fmt.Errorf("%w: built without the tesseract tag", ErrEngineUnavailable)
}
