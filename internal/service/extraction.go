package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"ocrweb/internal/logging"
	"ocrweb/internal/model"
	"ocrweb/internal/pipeline"
	"ocrweb/internal/repository"
	"ocrweb/internal/storage"
)

var (
	ErrReaderNil = errors.New("reader is nil")
	// ErrStore marks failures to persist the upload. No OCR was attempted.
	ErrStore = errors.New("store upload")
	// ErrRecognize marks engine failures, panics included. The upload is stored.
	ErrRecognize = errors.New("recognize upload")
)

const archivePrefix = "uploads"

// UploadInput is one submitted file. Size is -1 when unknown.
type UploadInput struct {
	Reader       io.Reader
	OriginalName string
	ContentType  string
	Size         int64
}

// ExtractionService defines the upload-and-recognize use case.
type ExtractionService interface {
	// Process stores the upload and then runs OCR on the stored copy.
	//
	// The returned Extraction is non-nil whenever the file was stored, even if
	// the error is not nil. Errors are classified as:
	//   - ErrReaderNil: nothing was attempted.
	//   - ErrStore: the file (or its ledger row) could not be saved.
	//   - pipeline.ErrEngineUnavailable: stored, OCR skipped.
	//   - ErrRecognize: stored, the engine failed.
	Process(ctx context.Context, in UploadInput) (*model.Extraction, error)
}

// ExtractionDeps are the collaborators of the extraction service.
// Ledger and Archive are optional.
type ExtractionDeps struct {
	Store      storage.Storage
	Ledger     repository.UploadRepository
	Archive    storage.Archive
	Recognizer pipeline.Recognizer
	Logger     *slog.Logger
}

type extractionService struct {
	store   storage.Storage
	ledger  repository.UploadRepository
	archive storage.Archive
	engine  pipeline.Recognizer
	logger  *slog.Logger
	now     func() time.Time
}

// NewExtractionService constructs a new ExtractionService.
func NewExtractionService(deps ExtractionDeps) ExtractionService {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &extractionService{
		store:   deps.Store,
		ledger:  deps.Ledger,
		archive: deps.Archive,
		engine:  deps.Recognizer,
		logger:  logger.With("component", "extraction"),
		now:     time.Now,
	}
}

var tracer = otel.Tracer("ocrweb/internal/service")

func (s *extractionService) Process(ctx context.Context, in UploadInput) (*model.Extraction, error) {
	if in.Reader == nil {
		return nil, ErrReaderNil
	}

	ctx, span := tracer.Start(ctx, "extraction.process",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attribute.String("upload.original_name", in.OriginalName)),
	)
	defer span.End()

	log := s.logger.With("request_id", logging.RequestID(ctx))

	stored, err := s.save(ctx, in)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "store failed")
		log.Error("upload_store_failed", "original_name", in.OriginalName, "error", err.Error())
		return nil, err
	}
	span.SetAttributes(
		attribute.String("upload.name", stored.Name),
		attribute.Int64("upload.size", stored.Size),
	)
	log.Info("upload_stored", "name", stored.Name, "size", stored.Size, "content_type", stored.ContentType)

	s.mirror(ctx, log, stored)

	ext := &model.Extraction{File: stored}
	start := s.now()
	res, err := s.engine.Recognize(ctx, stored.Path)
	ext.Duration = s.now().Sub(start)

	switch {
	case errors.Is(err, pipeline.ErrEngineUnavailable):
		log.Warn("ocr_skipped", "name", stored.Name, "reason", err.Error())
		return ext, err
	case err != nil:
		span.RecordError(err)
		span.SetStatus(codes.Error, "recognize failed")
		log.Error("ocr_failed", "name", stored.Name, "error", err.Error())
		return ext, fmt.Errorf("%w: %w", ErrRecognize, err)
	case res == nil:
		log.Error("ocr_failed", "name", stored.Name, "error", "empty result")
		return ext, fmt.Errorf("%w: engine returned no result", ErrRecognize)
	}

	ext.Result = res
	log.Info("ocr_completed",
		"name", stored.Name,
		"engine", res.Engine,
		"records", len(res.Records),
		"duration_ms", ext.Duration.Milliseconds(),
	)
	return ext, nil
}

// save writes the upload and records it in the ledger. When the ledger insert
// fails the file is removed again so both stay consistent.
func (s *extractionService) save(ctx context.Context, in UploadInput) (model.StoredFile, error) {
	ctx, span := tracer.Start(ctx, "extraction.store")
	defer span.End()

	stored, err := s.store.Save(ctx, in.OriginalName, in.Reader, in.ContentType)
	if err != nil {
		return model.StoredFile{}, fmt.Errorf("%w: %w", ErrStore, err)
	}
	if s.ledger == nil {
		return stored, nil
	}

	if err := s.ledger.Create(ctx, &stored); err != nil {
		// Rollback: delete the file from storage
		if delErr := s.store.Delete(ctx, stored.Name); delErr != nil {
			return model.StoredFile{}, fmt.Errorf("%w: ledger insert failed: %v; rollback delete failed: %v", ErrStore, err, delErr)
		}
		return model.StoredFile{}, fmt.Errorf("%w: ledger insert failed: %w", ErrStore, err)
	}
	return stored, nil
}

// mirror copies the stored file to the archive. Failures are only logged.
func (s *extractionService) mirror(ctx context.Context, log *slog.Logger, f model.StoredFile) {
	if s.archive == nil {
		return
	}
	src, err := os.Open(f.Path)
	if err != nil {
		log.Warn("archive_mirror_failed", "name", f.Name, "error", err.Error())
		return
	}
	defer src.Close()

	key := path.Join(archivePrefix, f.Name)
	_, err = s.archive.Put(ctx, key, src, storage.PutObjectOptions{
		Size:        f.Size,
		ContentType: f.ContentType,
		Metadata: map[string]string{
			"original-filename": f.OriginalName,
			"upload-id":         f.ID,
		},
	})
	if err != nil {
		log.Warn("archive_mirror_failed", "name", f.Name, "key", key, "error", err.Error())
		return
	}
	log.Info("archive_mirrored", "name", f.Name, "key", key)
}
