package platform

import (
	"context"
	"log"
	"time"

	"todoshare/internal/repository"
)

const dispatchBatch = 100

// Dispatcher fires due alerts by appending them to their owner's
// notification log.
type Dispatcher struct {
	alerts   *repository.AlertRepository
	interval time.Duration
	now      func() time.Time
}

func NewDispatcher(alerts *repository.AlertRepository, interval time.Duration) *Dispatcher {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Dispatcher{alerts: alerts, interval: interval, now: time.Now}
}

// Run dispatches on every tick until ctx is canceled
func (d *Dispatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	log.Printf("⏰ Alert dispatcher running every %s\n", d.interval)
	for {
		select {
		case <-ctx.Done():
			log.Println("🛑 Alert dispatcher stopped")
			return
		case <-ticker.C:
			if _, err := d.DispatchDue(ctx); err != nil && ctx.Err() == nil {
				log.Printf("❌ Alert dispatch failed: %v\n", err)
			}
		}
	}
}

// DispatchDue delivers every alert whose fire time has passed and returns
// how many were delivered.
func (d *Dispatcher) DispatchDue(ctx context.Context) (int, error) {
	delivered := 0
	for {
		now := d.now()
		due, err := d.alerts.Due(ctx, now, dispatchBatch)
		if err != nil {
			return delivered, err
		}

		for i := range due {
			ok, err := d.alerts.Deliver(ctx, &due[i], now)
			if err != nil {
				return delivered, err
			}
			if ok {
				delivered++
			}
		}

		if len(due) < dispatchBatch {
			return delivered, nil
		}
	}
}
