//go:build tesseract

package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTesseract_BlankImage(t *testing.T) {
	engine, err := NewTesseract(Options{Languages: []string{"eng"}})
	require.NoError(t, err)
	assert.Equal(t, "tesseract", engine.Name())
	assert.NotEmpty(t, engine.Version())

	res, err := engine.Recognize(context.Background(), writePNG(t, 64, 64))
	require.NoError(t, err)
	assert.Equal(t, "tesseract", res.Engine)
	assert.Empty(t, res.Text)
	assert.Empty(t, res.Records)
}

func TestTesseract_MissingLanguage(t *testing.T) {
	_, err := NewTesseract(Options{Languages: []string{"zzz-not-installed"}})
	assert.ErrorIs(t, err, ErrEngineUnavailable)
}
