package archive

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"

	"metadata-repository/internal/metrics"
)

// LogPrefix is the key prefix for archived activity logs.
const LogPrefix = "operation_logs/"

// BackupResult describes one archival cycle.
type BackupResult struct {
	// Skipped is true when there was nothing to upload.
	Skipped bool
	Key     string
	Bytes   int64
}

// LogArchiver uploads the activity log to cold storage and truncates it.
//
// Failures are reported only on the out-of-band logger. The activity logger
// writes into the file being archived and must not receive them.
type LogArchiver struct {
	store ObjectStore
	path  string
	log   *zap.Logger
	oob   *zap.Logger
	now   func() time.Time

	mu sync.Mutex
}

// NewLogArchiver returns an archiver for the log file at path.
func NewLogArchiver(store ObjectStore, path string, log, oob *zap.Logger) *LogArchiver {
	return &LogArchiver{store: store, path: path, log: log, oob: oob, now: time.Now}
}

// Run performs one archival cycle. Cycles never overlap.
func (a *LogArchiver) Run(ctx context.Context) (BackupResult, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.store == nil {
		a.oob.Warn("[LOG_BACKUP] object store not configured, skipping log backup")
		return BackupResult{Skipped: true}, ErrNotConfigured
	}

	info, err := os.Stat(a.path)
	if errors.Is(err, fs.ErrNotExist) {
		return BackupResult{Skipped: true}, nil
	}
	if err != nil {
		return a.fail(err)
	}
	size := info.Size()
	if size == 0 {
		return BackupResult{Skipped: true}, nil
	}

	key := LogPrefix + Timestamp(a.now()) + "_app_activity.log"

	f, err := os.Open(a.path)
	if err != nil {
		return a.fail(err)
	}
	defer func() { _ = f.Close() }()

	// Only the bytes present at stat time are uploaded.
	err = a.store.Put(ctx, key, io.LimitReader(f, size), PutOptions{
		ContentType:  "text/plain",
		CacheControl: "no-cache",
		Size:         size,
	})
	if err != nil {
		metrics.Uploads.WithLabelValues("logs", "error").Inc()
		return a.fail(err)
	}
	metrics.Uploads.WithLabelValues("logs", "ok").Inc()
	metrics.ArchivedBytes.Add(float64(size))

	// Truncate in place; the logger keeps its append-mode handle.
	if err := os.Truncate(a.path, 0); err != nil {
		return a.fail(err)
	}

	a.log.Info("[LOG_BACKUP] Uploaded and cleared local log file",
		zap.String("location", a.store.Location(key)),
		zap.Int64("bytes", size),
	)
	return BackupResult{Key: key, Bytes: size}, nil
}

func (a *LogArchiver) fail(err error) (BackupResult, error) {
	a.oob.Error("[LOG_BACKUP_ERROR] Failed to backup logs", zap.String("path", a.path), zap.Error(err))
	return BackupResult{}, Error.Wrap(err)
}
