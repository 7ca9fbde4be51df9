package poller

import (
	"context"
	"log"
	"time"

	"mediremind-backend/config"
	"mediremind-backend/internal/model"
	"mediremind-backend/internal/notification"
	"mediremind-backend/internal/store"
)

// Poller is the background task that detects due reminders. Each tick it
// claims PENDING reminders whose scheduled time has arrived and hands the
// winners to the delivery pool. Streams race on the same rows through the
// same atomic claim, so a reminder is only ever acted on once per step.
type Poller struct {
	cfg   *config.Config
	store store.Store
	pool  *notification.WorkerPool
	now   func() time.Time
}

// New creates a poller driving the given delivery pool.
func New(cfg *config.Config, s store.Store, pool *notification.WorkerPool) *Poller {
	return &Poller{
		cfg:   cfg,
		store: s,
		pool:  pool,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Run starts the polling loop and blocks until ctx is cancelled. The
// delivery pool is started here so poller and pool share a lifetime.
func (p *Poller) Run(ctx context.Context) {
	if !p.cfg.Poller.Enabled {
		log.Println("Reminder poller is disabled. Not starting.")
		return
	}
	log.Printf("Starting reminder poller (interval: %s)", p.cfg.Poller.Interval)

	p.pool.Start(ctx)

	p.PollOnce(ctx)

	timer := time.NewTimer(p.cfg.Poller.Interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Reminder poller shutting down.")
			return
		case <-timer.C:
			p.PollOnce(ctx)
			timer.Reset(p.cfg.Poller.Interval)
		}
	}
}

// PollOnce performs a single detection pass and returns the number of
// reminders this poller won the PENDING->DUE claim for. Failures are
// logged and abandoned; the next tick proceeds from current store state.
func (p *Poller) PollOnce(ctx context.Context) int {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Recovered from panic during reminder scan: %v", r)
		}
	}()

	now := p.now()
	due, err := p.store.QueryDue(ctx, model.ReminderPending, now)
	if err != nil {
		log.Printf("Error querying due reminders: %v", err)
		return 0
	}
	if len(due) == 0 {
		return 0
	}
	log.Printf("Found %d due reminder(s)", len(due))

	claimed := 0
	for _, reminder := range due {
		// Per-reminder claim, so one bad row never blocks the rest and a
		// crash mid-pass leaves earlier rows fully transitioned.
		won, err := p.store.ClaimTransition(ctx, reminder.ID, model.ReminderPending, model.ReminderDue)
		if err != nil {
			log.Printf("Error claiming reminder %d: %v", reminder.ID, err)
			continue
		}
		if !won {
			continue
		}
		claimed++

		if reminder.Medication.User == nil {
			log.Printf("No user associated with medication %d; reminder %d left DUE without delivery", reminder.MedicationID, reminder.ID)
			continue
		}

		p.pool.Dispatch(notification.Job{
			ReminderID: reminder.ID,
			Medication: reminder.Medication,
		})
	}
	return claimed
}
