package pipeline

import (
	"context"
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ocrweb/internal/model"
)

type fakeEngine struct {
	name      string
	recognize func(ctx context.Context, path string) (*model.OCRResult, error)
}

func (f *fakeEngine) Name() string {
	if f.name != "" {
		return f.name
	}
	return "fake"
}
func (f *fakeEngine) Version() string { return "1.0" }
func (f *fakeEngine) Recognize(ctx context.Context, path string) (*model.OCRResult, error) {
	return f.recognize(ctx, path)
}

func writePNG(t *testing.T, w, h int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scan.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, image.NewGray(image.Rect(0, 0, w, h))))
	return path
}

func TestAdapter_Unavailable(t *testing.T) {
	ctx := context.Background()

	t.Run("constructor error", func(t *testing.T) {
		reg := prometheus.NewRegistry()
		initErr := errors.New("libtesseract missing")
		a, err := NewAdapter(nil, initErr, AdapterOptions{Registerer: reg})
		require.NoError(t, err)

		assert.False(t, a.Available())
		assert.Equal(t, "none", a.EngineName())

		res, err := a.Recognize(ctx, "/does/not/matter.png")
		assert.Nil(t, res)
		assert.ErrorIs(t, err, ErrEngineUnavailable)
		assert.Contains(t, err.Error(), "libtesseract missing")

		assert.Equal(t, float64(1), testutil.ToFloat64(a.metrics.recognitions.WithLabelValues("unavailable")))
		assert.Equal(t, float64(0), testutil.ToFloat64(a.metrics.available))
	})

	t.Run("stub constructor", func(t *testing.T) {
		engine, initErr := NewTesseract(Options{})
		a, err := NewAdapter(engine, initErr, AdapterOptions{})
		require.NoError(t, err)
		if a.Available() {
			t.Skip("built with the tesseract tag")
		}
		_, err = a.Recognize(ctx, "x.png")
		assert.ErrorIs(t, err, ErrEngineUnavailable)
	})

	t.Run("nil engine without error", func(t *testing.T) {
		a, err := NewAdapter(nil, nil, AdapterOptions{})
		require.NoError(t, err)
		_, err = a.Recognize(ctx, "x.png")
		assert.ErrorIs(t, err, ErrEngineUnavailable)
	})
}

func TestAdapter_Recognize(t *testing.T) {
	ctx := context.Background()
	path := writePNG(t, 40, 20)

	var gotPath string
	engine := &fakeEngine{recognize: func(_ context.Context, p string) (*model.OCRResult, error) {
		gotPath = p
		return &model.OCRResult{Engine: "fake", Text: "hello"}, nil
	}}
	reg := prometheus.NewRegistry()
	a, err := NewAdapter(engine, nil, AdapterOptions{Registerer: reg, MaxConcurrent: 2})
	require.NoError(t, err)
	require.True(t, a.Available())
	assert.Equal(t, "fake", a.EngineName())

	res, err := a.Recognize(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, path, gotPath)
	assert.Equal(t, "hello", res.Text)
	assert.Equal(t, "scan.png", res.Source)
	assert.Equal(t, 40, res.Width)
	assert.Equal(t, 20, res.Height)
	assert.NotNil(t, res.Records)

	assert.Equal(t, float64(1), testutil.ToFloat64(a.metrics.recognitions.WithLabelValues("success")))
	assert.Equal(t, 1, testutil.CollectAndCount(a.metrics.duration))
	assert.Equal(t, float64(1), testutil.ToFloat64(a.metrics.available))
}

func TestAdapter_DocumentRouting(t *testing.T) {
	ctx := context.Background()
	named := func(name string) *fakeEngine {
		return &fakeEngine{name: name, recognize: func(context.Context, string) (*model.OCRResult, error) {
			return &model.OCRResult{Engine: name}, nil
		}}
	}

	t.Run("pdf goes to the document engine", func(t *testing.T) {
		a, err := NewAdapter(named("ocr"), nil, AdapterOptions{Documents: named("pdf")})
		require.NoError(t, err)

		res, err := a.Recognize(ctx, "/media/report.PDF")
		require.NoError(t, err)
		assert.Equal(t, "pdf", res.Engine)
		assert.Equal(t, "report.PDF", res.Source)

		res, err = a.Recognize(ctx, "/media/scan.png")
		require.NoError(t, err)
		assert.Equal(t, "ocr", res.Engine)
	})

	t.Run("pdf works without the ocr engine", func(t *testing.T) {
		a, err := NewAdapter(nil, errors.New("libtesseract missing"), AdapterOptions{Documents: named("pdf")})
		require.NoError(t, err)
		assert.False(t, a.Available())

		res, err := a.Recognize(ctx, "report.pdf")
		require.NoError(t, err)
		assert.Equal(t, "pdf", res.Engine)

		_, err = a.Recognize(ctx, "scan.png")
		assert.ErrorIs(t, err, ErrEngineUnavailable)
	})

	t.Run("pdf falls back to the ocr engine", func(t *testing.T) {
		a, err := NewAdapter(named("ocr"), nil, AdapterOptions{})
		require.NoError(t, err)

		res, err := a.Recognize(ctx, "report.pdf")
		require.NoError(t, err)
		assert.Equal(t, "ocr", res.Engine)
	})
}

func TestAdapter_EngineError(t *testing.T) {
	engine := &fakeEngine{recognize: func(context.Context, string) (*model.OCRResult, error) {
		return nil, errors.New("bad image")
	}}
	a, err := NewAdapter(engine, nil, AdapterOptions{Registerer: prometheus.NewRegistry()})
	require.NoError(t, err)

	res, err := a.Recognize(context.Background(), "scan.png")
	assert.Nil(t, res)
	assert.EqualError(t, err, "bad image")
	assert.Equal(t, float64(1), testutil.ToFloat64(a.metrics.recognitions.WithLabelValues("error")))
}

func TestAdapter_NilResult(t *testing.T) {
	engine := &fakeEngine{recognize: func(context.Context, string) (*model.OCRResult, error) {
		return nil, nil
	}}
	a, err := NewAdapter(engine, nil, AdapterOptions{})
	require.NoError(t, err)

	_, err = a.Recognize(context.Background(), "scan.png")
	assert.Error(t, err)
}

func TestAdapter_PanicBecomesError(t *testing.T) {
	engine := &fakeEngine{recognize: func(context.Context, string) (*model.OCRResult, error) {
		panic("segfault in model")
	}}
	a, err := NewAdapter(engine, nil, AdapterOptions{Registerer: prometheus.NewRegistry()})
	require.NoError(t, err)

	var res *model.OCRResult
	assert.NotPanics(t, func() {
		res, err = a.Recognize(context.Background(), "scan.png")
	})
	assert.Nil(t, res)
	assert.ErrorIs(t, err, ErrEnginePanic)
	assert.Contains(t, err.Error(), "segfault in model")
	assert.Equal(t, float64(1), testutil.ToFloat64(a.metrics.recognitions.WithLabelValues("error")))

	// the slot was released
	engine.recognize = func(context.Context, string) (*model.OCRResult, error) {
		return &model.OCRResult{}, nil
	}
	_, err = a.Recognize(context.Background(), "scan.png")
	assert.NoError(t, err)
}

func TestAdapter_ConcurrencyLimit(t *testing.T) {
	release := make(chan struct{})
	var running, peak int32
	engine := &fakeEngine{recognize: func(context.Context, string) (*model.OCRResult, error) {
		n := atomic.AddInt32(&running, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		<-release
		atomic.AddInt32(&running, -1)
		return &model.OCRResult{}, nil
	}}
	a, err := NewAdapter(engine, nil, AdapterOptions{MaxConcurrent: 1})
	require.NoError(t, err)

	done := make(chan error, 2)
	for i := 0; i < 2; i++ {
		go func() {
			_, err := a.Recognize(context.Background(), "scan.png")
			done <- err
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	require.NoError(t, <-done)
	require.NoError(t, <-done)
	assert.Equal(t, int32(1), atomic.LoadInt32(&peak))
}

func TestAdapter_WaitHonoursContext(t *testing.T) {
	block := make(chan struct{})
	defer close(block)
	engine := &fakeEngine{recognize: func(context.Context, string) (*model.OCRResult, error) {
		<-block
		return &model.OCRResult{}, nil
	}}
	a, err := NewAdapter(engine, nil, AdapterOptions{MaxConcurrent: 1})
	require.NoError(t, err)

	go func() { _, _ = a.Recognize(context.Background(), "busy.png") }()
	time.Sleep(20 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = a.Recognize(ctx, "waiting.png")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestNewAdapter_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewAdapter(nil, nil, AdapterOptions{Registerer: reg})
	require.NoError(t, err)
	_, err = NewAdapter(nil, nil, AdapterOptions{Registerer: reg})
	assert.Error(t, err)
}
