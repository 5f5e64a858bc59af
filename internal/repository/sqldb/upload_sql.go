package sqldb

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"ocrweb/internal/model"
	"ocrweb/internal/repository"
)

// UploadSQL implements repository.UploadRepository with database/sql.
// Queries use $N placeholders, which both pgx and modernc sqlite accept.
type UploadSQL struct {
	db *sql.DB
}

// NewUploadSQL creates a new UploadSQL repository.
func NewUploadSQL(db *sql.DB) *UploadSQL {
	return &UploadSQL{db: db}
}

var _ repository.UploadRepository = (*UploadSQL)(nil)

// Create inserts a ledger row for a stored file.
func (r *UploadSQL) Create(ctx context.Context, f *model.StoredFile) error {
	const q = `
		INSERT INTO uploads (id, name, original_name, path, size, content_type, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.ExecContext(ctx, q,
		f.ID,
		f.Name,
		f.OriginalName,
		f.Path,
		f.Size,
		f.ContentType,
		f.CreatedAt.UTC(),
	)
	return err
}

// deleteBatch keeps each statement under SQLite's bound-parameter limit.
const deleteBatch = 500

// DeleteByNames removes all rows for the given names, batching the IN list.
func (r *UploadSQL) DeleteByNames(ctx context.Context, names []string) (int64, error) {
	var total int64
	for start := 0; start < len(names); start += deleteBatch {
		batch := names[start:min(start+deleteBatch, len(names))]
		placeholders := make([]string, len(batch))
		args := make([]any, len(batch))
		for i, name := range batch {
			placeholders[i] = fmt.Sprintf("$%d", i+1)
			args[i] = name
		}
		q := `DELETE FROM uploads WHERE name IN (` + strings.Join(placeholders, ", ") + `)`
		res, err := r.db.ExecContext(ctx, q, args...)
		if err != nil {
			return total, err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

// Ping checks the connection.
func (r *UploadSQL) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
