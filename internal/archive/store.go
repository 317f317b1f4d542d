// Package archive writes submissions to the object-storage data lake and
// moves the local activity log to cold storage on a schedule.
package archive

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/zeebo/errs"
)

// Error is the error class for archive failures.
var Error = errs.Class("archive")

// ErrNotConfigured is returned when no object store backend is configured.
var ErrNotConfigured = errs.New("object store not configured")

// PutOptions describes an object being written.
type PutOptions struct {
	ContentType  string
	CacheControl string
	// Size is the exact length of the body, or -1 when unknown.
	Size int64
}

// ObjectStore is the minimal object storage surface the archive needs.
type ObjectStore interface {
	Put(ctx context.Context, key string, body io.Reader, opts PutOptions) error
	// Location renders key as a URL-like string for logs and responses.
	Location(key string) string
	Close() error
}

// Timestamp formats t as an ISO-8601 UTC instant with millisecond precision
// and ':' and '.' replaced by '-', which keeps object keys free of characters
// some tools treat specially.
func Timestamp(t time.Time) string {
	s := t.UTC().Format("2006-01-02T15:04:05.000Z07:00")
	return strings.NewReplacer(":", "-", ".", "-").Replace(s)
}
