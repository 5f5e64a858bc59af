package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/semaphore"

	"ocrweb/internal/model"
)

var tracer = otel.Tracer("ocrweb/internal/pipeline")

// AdapterOptions tune how the Adapter drives its engine.
type AdapterOptions struct {
	// MaxConcurrent caps simultaneous recognitions; values below 1 mean 1.
	MaxConcurrent int
	// Registerer receives the pipeline metrics. Nil disables metrics.
	Registerer prometheus.Registerer
	Logger     *slog.Logger
	// Documents handles PDF uploads. Nil leaves PDFs to the OCR engine.
	Documents Engine
}

// Adapter is the pipeline boundary used by the rest of the application.
// Whether an engine is present is decided once, when the Adapter is built.
type Adapter struct {
	engine    Engine
	documents Engine
	initErr   error
	sem     *semaphore.Weighted
	metrics *metrics
	logger  *slog.Logger
}

// NewAdapter wraps the outcome of an engine constructor such as NewTesseract.
// A nil engine or a non-nil initErr leaves the adapter unavailable.
func NewAdapter(engine Engine, initErr error, opts AdapterOptions) (*Adapter, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.MaxConcurrent < 1 {
		opts.MaxConcurrent = 1
	}
	a := &Adapter{
		engine:    engine,
		documents: opts.Documents,
		initErr:   initErr,
		sem:       semaphore.NewWeighted(int64(opts.MaxConcurrent)),
		logger:    opts.Logger.With("component", "pipeline"),
	}
	if engine == nil && initErr == nil {
		a.initErr = ErrEngineUnavailable
	}
	if a.initErr != nil {
		a.engine = nil
	}
	if opts.Registerer != nil {
		m, err := newMetrics(opts.Registerer)
		if err != nil {
			return nil, err
		}
		a.metrics = m
		m.available.Set(boolGauge(a.Available()))
	}

	if a.Available() {
		a.logger.Info("ocr engine ready", "engine", engine.Name(), "version", engine.Version(), "max_concurrent", opts.MaxConcurrent)
	} else {
		a.logger.Warn("ocr engine unavailable", "reason", a.initErr.Error())
	}
	if a.documents != nil {
		a.logger.Info("document engine ready", "engine", a.documents.Name(), "version", a.documents.Version())
	}
	return a, nil
}

// Available reports whether the OCR engine was initialized. PDF uploads may
// still be handled by the document engine when it is false.
func (a *Adapter) Available() bool { return a.engine != nil }

// EngineName returns the engine name, or "none" when unavailable.
func (a *Adapter) EngineName() string {
	if a.engine == nil {
		return "none"
	}
	return a.engine.Name()
}

// Recognize runs the engine on the stored file at path. PDF files go to the
// document engine when one is configured. It returns an error wrapping
// ErrEngineUnavailable when no engine is present and converts engine panics
// into errors wrapping ErrEnginePanic. It blocks while all engine slots are
// busy, until ctx is done.
func (a *Adapter) Recognize(ctx context.Context, path string) (res *model.OCRResult, err error) {
	engine := a.engine
	if a.documents != nil && IsDocument(path) {
		engine = a.documents
	}
	if engine == nil {
		a.observe("unavailable", 0)
		if errors.Is(a.initErr, ErrEngineUnavailable) {
			return nil, a.initErr
		}
		return nil, fmt.Errorf("%w: %v", ErrEngineUnavailable, a.initErr)
	}

	ctx, span := tracer.Start(ctx, "pipeline.Recognize")
	span.SetAttributes(attribute.String("ocr.engine", engine.Name()))
	defer span.End()

	if err := a.sem.Acquire(ctx, 1); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "waiting for engine slot")
		return nil, fmt.Errorf("wait for engine: %w", err)
	}
	defer a.sem.Release(1)

	start := time.Now()
	defer func() {
		outcome := "success"
		if r := recover(); r != nil {
			res = nil
			err = fmt.Errorf("%w: %v", ErrEnginePanic, r)
			a.logger.Error("ocr engine panic", "path", path, "panic", fmt.Sprint(r))
		}
		if err != nil {
			outcome = "error"
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		a.observe(outcome, time.Since(start))
	}()

	res, err = engine.Recognize(ctx, path)
	if err != nil {
		return nil, err
	}
	if res == nil {
		return nil, fmt.Errorf("engine %s returned no result", engine.Name())
	}
	if res.Source == "" {
		res.Source = filepath.Base(path)
	}
	if res.Width == 0 && res.Height == 0 {
		if w, h, ok := imageSize(path); ok {
			res.Width, res.Height = w, h
		}
	}
	if res.Records == nil {
		res.Records = []model.Record{}
	}
	return res, nil
}

func (a *Adapter) observe(outcome string, d time.Duration) {
	if a.metrics == nil {
		return
	}
	a.metrics.recognitions.WithLabelValues(outcome).Inc()
	if d > 0 {
		a.metrics.duration.Observe(d.Seconds())
	}
}
