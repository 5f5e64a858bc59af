package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"ocrweb/internal/model"
)

// maxNameAttempts bounds the collision retries for a single upload.
const maxNameAttempts = 16

// Local stores uploads as flat files under a root directory.
// It is safe for concurrent use: names are claimed with O_EXCL.
type Local struct {
	root    string
	baseURL string
	now     func() time.Time
	suffix  func() string
}

var _ Storage = (*Local)(nil)

// NewLocal creates the root directory if needed and returns a store for it.
// baseURL is the public prefix stored files are served under (e.g. /media/).
func NewLocal(root, baseURL string) (*Local, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, fmt.Errorf("media root is required")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create media root: %w", err)
	}
	return &Local{
		root:    abs,
		baseURL: baseURL,
		now:     time.Now,
		suffix:  randomSuffix,
	}, nil
}

// Root returns the absolute media root.
func (l *Local) Root() string { return l.root }

// Save writes r to a fresh file. The first attempt uses the cleaned name as is;
// later attempts append _<7 hex chars> before the extension.
func (l *Local) Save(ctx context.Context, name string, r io.Reader, contentType string) (model.StoredFile, error) {
	var zero model.StoredFile
	if r == nil {
		return zero, fmt.Errorf("reader is required")
	}
	if err := ctx.Err(); err != nil {
		return zero, err
	}

	clean := CleanName(name)
	ext := filepath.Ext(clean)
	stem := strings.TrimSuffix(clean, ext)

	for attempt := 0; attempt < maxNameAttempts; attempt++ {
		candidate := clean
		if attempt > 0 {
			candidate = stem + "_" + l.suffix() + ext
		}
		dst := filepath.Join(l.root, candidate)

		f, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return zero, fmt.Errorf("create %s: %w", candidate, err)
		}

		n, err := io.Copy(f, r)
		if err != nil {
			_ = f.Close()
			_ = os.Remove(dst)
			return zero, fmt.Errorf("write %s: %w", candidate, err)
		}
		if err := f.Close(); err != nil {
			_ = os.Remove(dst)
			return zero, fmt.Errorf("close %s: %w", candidate, err)
		}

		return model.StoredFile{
			ID:           uuid.NewString(),
			Name:         candidate,
			OriginalName: name,
			Path:         dst,
			URL:          l.url(candidate),
			Size:         n,
			ContentType:  contentType,
			CreatedAt:    l.now().UTC(),
		}, nil
	}
	return zero, fmt.Errorf("%s: %w", clean, ErrNameExhausted)
}

// Delete removes a stored file. Missing files are ignored.
func (l *Local) Delete(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p, err := l.pathOf(name)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// Sweep removes files in the root whose modification time is before cutoff.
func (l *Local) Sweep(ctx context.Context, cutoff time.Time) ([]string, error) {
	entries, err := os.ReadDir(l.root)
	if err != nil {
		return nil, fmt.Errorf("read media root: %w", err)
	}
	var removed []string
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return removed, err
		}
		if !e.Type().IsRegular() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			// removed concurrently
			continue
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(l.root, e.Name())); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return removed, fmt.Errorf("remove %s: %w", e.Name(), err)
		}
		removed = append(removed, e.Name())
	}
	return removed, nil
}

func (l *Local) pathOf(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || name == "." || name == ".." {
		return "", fmt.Errorf("invalid stored name %q", name)
	}
	return filepath.Join(l.root, name), nil
}

func (l *Local) url(name string) string {
	return strings.TrimSuffix(l.baseURL, "/") + "/" + url.PathEscape(name)
}

func randomSuffix() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:7]
}
