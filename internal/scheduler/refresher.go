// Package scheduler runs the price refresh on a cron schedule for the
// watch command.
package scheduler

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/volodymyr-data/investment-tracker/internal/usecase/ledger"
)

// Refresher triggers ledger refreshes on a fixed cron schedule.
type Refresher struct {
	cron   *cron.Cron
	ledger *ledger.Service
	log    logrus.FieldLogger
}

// NewRefresher creates a refresher for the given cron schedule
// (standard five-field cron syntax).
func NewRefresher(schedule string, svc *ledger.Service, log logrus.FieldLogger) (*Refresher, error) {
	r := &Refresher{
		cron:   cron.New(),
		ledger: svc,
		log:    log,
	}

	if _, err := r.cron.AddFunc(schedule, r.run); err != nil {
		return nil, fmt.Errorf("invalid refresh schedule %q: %w", schedule, err)
	}

	return r, nil
}

// Start begins firing scheduled refreshes. It returns immediately; the
// cron runner works on its own goroutine.
func (r *Refresher) Start() {
	r.log.Info("scheduled price refresh started")
	r.cron.Start()
}

// Stop halts the schedule. A refresh already in flight runs to completion.
func (r *Refresher) Stop() {
	ctx := r.cron.Stop()
	<-ctx.Done()
	r.log.Info("scheduled price refresh stopped")
}

func (r *Refresher) run() {
	if _, err := r.ledger.Refresh(context.Background()); err != nil {
		r.log.WithError(err).Error("scheduled refresh failed")
		return
	}
	r.log.Info("scheduled refresh completed")
}
