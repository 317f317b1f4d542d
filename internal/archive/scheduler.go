package archive

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Job is a unit of scheduled work.
type Job interface {
	Run(ctx context.Context) (BackupResult, error)
}

// Scheduler runs a Job at a fixed interval.
type Scheduler struct {
	cronRunner *cron.Cron
	job        Job
	interval   time.Duration
	log        *zap.Logger
}

// NewScheduler returns a scheduler for job. It does not start until Start is
// called. Skipped runs and recovered panics are reported to oob.
func NewScheduler(job Job, interval time.Duration, log, oob *zap.Logger) *Scheduler {
	cronLog := cronLogger{oob.Sugar()}
	return &Scheduler{
		job:      job,
		interval: interval,
		log:      log,
		cronRunner: cron.New(
			cron.WithSeconds(),
			cron.WithChain(
				cron.SkipIfStillRunning(cronLog),
				cron.Recover(cronLog),
			),
		),
	}
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct {
	log *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Infow(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Errorw(msg, append(keysAndValues, "error", err)...)
}

// Start registers the job and starts the cron runner. It does not block.
func (s *Scheduler) Start() error {
	if s.interval <= 0 {
		return Error.New("invalid log backup interval %s", s.interval)
	}
	spec := fmt.Sprintf("@every %s", s.interval)
	if _, err := s.cronRunner.AddFunc(spec, s.tick); err != nil {
		return Error.New("failed to schedule log backup with %q: %v", spec, err)
	}
	s.cronRunner.Start()
	s.log.Info("log backup scheduled", zap.Duration("interval", s.interval))
	return nil
}

// tick runs the job. Errors were already reported by the job.
func (s *Scheduler) tick() {
	_, _ = s.job.Run(context.Background())
}

// Stop shuts down the cron runner, waiting up to 15 seconds for a running job.
func (s *Scheduler) Stop() {
	ctx := s.cronRunner.Stop()
	select {
	case <-ctx.Done():
		s.log.Info("log backup scheduler stopped")
	case <-time.After(15 * time.Second):
		s.log.Warn("log backup scheduler shutdown timed out")
	}
}
