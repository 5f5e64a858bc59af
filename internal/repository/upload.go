package repository

import (
	"context"

	"ocrweb/internal/model"
)

// Package repository contains the upload ledger abstraction.
// The ledger records which files were stored and when; it never holds OCR results.

// UploadRepository defines data access for the upload ledger using SQL queries only.
// No business logic here, strictly persistence operations.
type UploadRepository interface {
	// Create inserts a record for a stored file.
	Create(ctx context.Context, f *model.StoredFile) error

	// DeleteByNames removes every record for the given stored names and returns how many were removed.
	DeleteByNames(ctx context.Context, names []string) (int64, error)

	// Ping checks connectivity for health reporting.
	Ping(ctx context.Context) error
}
