package utils

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Poller runs a job on a cron schedule until Stop is called.
// A tick is skipped while the previous run is still going.
type Poller struct {
	name   string
	log    *Logger
	cron   *cron.Cron
	ctx    context.Context
	cancel context.CancelFunc
	once   sync.Once
}

// EverySpec turns an interval into a cron "@every" spec
func EverySpec(interval time.Duration) string {
	return "@every " + interval.String()
}

// StartPoller schedules job and starts the scheduler. The job's context is
// cancelled when the poller stops. A nil log discards.
func StartPoller(name, spec string, log *Logger, job func(ctx context.Context)) (*Poller, error) {
	if log == nil {
		log = NewNopLogger()
	}
	ctx, cancel := context.WithCancel(context.Background())
	p := &Poller{
		name:   name,
		log:    log,
		ctx:    ctx,
		cancel: cancel,
		cron:   cron.New(cron.WithChain(cron.Recover(cron.DefaultLogger), cron.SkipIfStillRunning(cron.DiscardLogger))),
	}

	if _, err := p.cron.AddFunc(spec, func() {
		if p.ctx.Err() != nil {
			return
		}
		job(p.ctx)
	}); err != nil {
		cancel()
		return nil, fmt.Errorf("schedule %s: %w", name, err)
	}

	p.cron.Start()
	log.Info("poller started", "poller", name, "schedule", spec)
	return p, nil
}

// Stop cancels any running job and waits for it to return. Safe to call twice.
func (p *Poller) Stop() {
	p.once.Do(func() {
		p.cancel()
		<-p.cron.Stop().Done()
		p.log.Info("poller stopped", "poller", p.name)
	})
}
