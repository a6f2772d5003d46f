package worker

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/deskforge/helpdesk/internal/config"
	"github.com/deskforge/helpdesk/internal/service"
)

// SweeperWorker runs the idle-resolution sweep on a cron schedule. It
// sweeps across all tenants; per-tenant sweeps stay available through the
// admin endpoint.
type SweeperWorker struct {
	cron    *cron.Cron
	sweeper *service.SweeperService
	logger  *zap.Logger
}

// NewSweeperWorker builds the worker without starting it.
func NewSweeperWorker(cfg config.SweeperConfig, sweeper *service.SweeperService, logger *zap.Logger) (*SweeperWorker, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	worker := &SweeperWorker{
		cron:    cron.New(cron.WithLocation(time.UTC)),
		sweeper: sweeper,
		logger:  logger,
	}
	if _, err := worker.cron.AddFunc(cfg.CronSpec, worker.run); err != nil {
		return nil, err
	}
	return worker, nil
}

// Start begins the schedule.
func (w *SweeperWorker) Start() {
	w.cron.Start()
	w.logger.Info("sweeper worker started")
}

// Stop halts the schedule and waits for a running sweep to finish.
func (w *SweeperWorker) Stop() {
	ctx := w.cron.Stop()
	<-ctx.Done()
	w.logger.Info("sweeper worker stopped")
}

func (w *SweeperWorker) run() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	if _, err := w.sweeper.SweepIdleResolved(ctx, nil); err != nil {
		w.logger.Error("sweep failed", zap.Error(err))
	}
}
