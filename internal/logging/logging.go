// Package logging builds the service loggers.
//
// The main logger writes to stderr and, as JSON lines, to the activity log
// file that the archival job uploads and truncates. The out-of-band logger
// only writes to stderr; archival failures go there so they never end up in
// the file being archived.
package logging

import (
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ActivityLogName is the file name of the local activity log.
const ActivityLogName = "app_activity.log"

// Config controls logger construction.
type Config struct {
	Dir   string
	Level string
}

// Loggers bundles the activity logger and the out-of-band logger.
type Loggers struct {
	Activity  *zap.Logger
	OutOfBand *zap.Logger
	// Path is the activity log file.
	Path string

	file *os.File
}

// New opens <Dir>/app_activity.log for appending and builds both loggers.
func New(cfg Config) (*Loggers, error) {
	level := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	if cfg.Level != "" {
		if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
			return nil, err
		}
	}

	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, err
	}
	path := filepath.Join(cfg.Dir, ActivityLogName)
	// O_APPEND keeps writes at the end of the file after it is truncated.
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}

	fileEnc := zap.NewProductionEncoderConfig()
	fileEnc.EncodeTime = zapcore.ISO8601TimeEncoder
	consoleEnc := zap.NewDevelopmentEncoderConfig()

	stderr := zapcore.Lock(os.Stderr)
	core := zapcore.NewTee(
		zapcore.NewCore(zapcore.NewConsoleEncoder(consoleEnc), stderr, level),
		zapcore.NewCore(zapcore.NewJSONEncoder(fileEnc), zapcore.AddSync(f), level),
	)

	return &Loggers{
		Activity:  zap.New(core, zap.AddCaller()),
		OutOfBand: zap.New(zapcore.NewCore(zapcore.NewConsoleEncoder(consoleEnc), stderr, zapcore.DebugLevel)).Named("oob"),
		Path:      path,
		file:      f,
	}, nil
}

// Nop returns loggers that discard everything. Path is empty.
func Nop() *Loggers {
	return &Loggers{Activity: zap.NewNop(), OutOfBand: zap.NewNop()}
}

// Close flushes the loggers and closes the activity log file.
func (l *Loggers) Close() error {
	_ = l.Activity.Sync()
	_ = l.OutOfBand.Sync()
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}

// ErrorCodeKey is the gin context key holding the application error code of
// a failed request.
const ErrorCodeKey = "error_code"

// GinLogger logs one line per request through log.
func GinLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		c.Next()

		fields := []zap.Field{
			zap.Int("status", c.Writer.Status()),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("client_ip", c.ClientIP()),
			zap.Duration("latency", time.Since(start)),
		}
		if code := c.GetString(ErrorCodeKey); code != "" {
			fields = append(fields, zap.String("error_code", code))
		}
		if len(c.Errors) > 0 {
			log.Error(c.Errors.String(), fields...)
			return
		}
		log.Info("request", fields...)
	}
}
