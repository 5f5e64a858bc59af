package model

import "time"

// StoredFile references an uploaded blob persisted under the media root.
// It is a pure domain model with no storage-specific dependencies.
type StoredFile struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	OriginalName string    `json:"original_name"`
	Path         string    `json:"path"`
	URL          string    `json:"url"`
	Size         int64     `json:"size"`
	ContentType  string    `json:"content_type"`
	CreatedAt    time.Time `json:"created_at"`
}

// Extraction is what one processed submission produced.
// Result is nil when the engine was unavailable or failed.
type Extraction struct {
	File     StoredFile    `json:"file"`
	Result   *OCRResult    `json:"result,omitempty"`
	Duration time.Duration `json:"duration"`
}
