package jobs

import (
	"context"
	"fmt"
	"time"

	"remit-wallet-go/internal/models"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const reconcileTimeout = 5 * time.Minute

// Scheduler runs the background jobs on cron schedules.
type Scheduler struct {
	cron       *cron.Cron
	reconciler *Reconciler
	cfg        models.JobsConfig
}

func NewScheduler(reconciler *Reconciler, cfg models.JobsConfig) *Scheduler {
	logger := zapCronLogger{}
	c := cron.New(cron.WithLogger(logger), cron.WithChain(
		cron.Recover(logger),
		cron.SkipIfStillRunning(logger),
	))

	return &Scheduler{
		cron:       c,
		reconciler: reconciler,
		cfg:        cfg,
	}
}

// Start registers the jobs and starts the cron scheduler.
func (s *Scheduler) Start() error {
	if s.cfg.ReconcileSchedule == "" {
		zap.L().Info("Reconciliation job disabled")
	} else {
		if _, err := s.cron.AddFunc(s.cfg.ReconcileSchedule, s.runReconciliation); err != nil {
			return fmt.Errorf("failed to schedule reconciliation job: %w", err)
		}
		zap.L().Info("Scheduled reconciliation job", zap.String("schedule", s.cfg.ReconcileSchedule))
	}

	s.cron.Start()
	return nil
}

// Stop stops the scheduler; the returned context is done once running jobs finish.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

func (s *Scheduler) runReconciliation() {
	ctx, cancel := context.WithTimeout(context.Background(), reconcileTimeout)
	defer cancel()

	report, err := s.reconciler.ReconcileAll(ctx)
	if err != nil {
		zap.L().Error("Reconciliation run failed", zap.Error(err))
		return
	}

	fields := []zap.Field{
		zap.Int("checked", report.Checked),
		zap.Int("mismatched", len(report.Mismatched)),
		zap.Int("failed", len(report.Failed)),
		zap.Duration("duration", report.Duration),
	}
	if len(report.Mismatched) > 0 {
		zap.L().Error("Balance mismatches found", append(fields, zap.Strings("user_ids", report.Mismatched))...)
		return
	}
	zap.L().Info("Reconciliation run complete", fields...)
}

// zapCronLogger routes cron's own logging through zap.
type zapCronLogger struct{}

func (zapCronLogger) Info(msg string, keysAndValues ...interface{}) {
	zap.S().Debugw(msg, keysAndValues...)
}

func (zapCronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	zap.S().Errorw(msg, append(keysAndValues, "error", err)...)
}
