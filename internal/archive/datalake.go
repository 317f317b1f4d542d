package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"metadata-repository/internal/metrics"
	"metadata-repository/internal/normalize"
	"metadata-repository/internal/record"
)

const (
	defaultDomain = "unknown_domain"
	defaultTitle  = "untitled"
)

// Datalake stores raw submissions as JSON objects.
type Datalake struct {
	store      ObjectStore
	normalizer *normalize.Normalizer
	log        *zap.Logger
	now        func() time.Time
}

// NewDatalake returns a Datalake. store may be nil, in which case Upload
// returns ErrNotConfigured.
func NewDatalake(store ObjectStore, n *normalize.Normalizer, log *zap.Logger) *Datalake {
	return &Datalake{store: store, normalizer: n, log: log, now: time.Now}
}

// Available reports whether an object store is configured.
func (d *Datalake) Available() bool {
	return d.store != nil
}

// Key returns raw/<domain>/<title>_<timestamp>.json for rec.
func (d *Datalake) Key(rec *record.Record, at time.Time) string {
	canonical := d.normalizer.Normalize(rec).Canonical
	domain := strings.TrimSpace(canonical.String("businessDomain"))
	if domain == "" {
		domain = defaultDomain
	}
	title := strings.TrimSpace(canonical.String("title"))
	if title == "" {
		title = defaultTitle
	}
	return fmt.Sprintf("raw/%s/%s_%s.json", domain, title, Timestamp(at))
}

// Upload writes rec as indented JSON and returns the object key.
func (d *Datalake) Upload(ctx context.Context, rec *record.Record) (string, error) {
	if d.store == nil {
		return "", ErrNotConfigured
	}
	body, err := encodeIndented(rec)
	if err != nil {
		return "", Error.Wrap(err)
	}

	key := d.Key(rec, d.now())
	err = d.store.Put(ctx, key, bytes.NewReader(body), PutOptions{
		ContentType:  "application/json",
		CacheControl: "no-cache",
		Size:         int64(len(body)),
	})
	if err != nil {
		metrics.Uploads.WithLabelValues("datalake", "error").Inc()
		d.log.Error("[DATALAKE] Upload error", zap.String("key", key), zap.Error(err))
		return "", err
	}

	metrics.Uploads.WithLabelValues("datalake", "ok").Inc()
	d.log.Info("[DATALAKE] Uploaded file",
		zap.String("location", d.store.Location(key)),
		zap.Int("size_bytes", len(body)),
		zap.String("action", orUnknown(rec.String("action"))),
	)
	return key, nil
}

// encodeIndented renders v with two-space indentation and without HTML escaping.
func encodeIndented(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}
