package notification

import (
	"context"
	"errors"
	"log"

	"mediremind-backend/internal/model"
	"mediremind-backend/internal/store"
)

// Job is one claimed reminder handed to the delivery pool. The medication
// comes preloaded with its owner so workers do not re-query it.
type Job struct {
	ReminderID int64
	Medication model.Medication
}

// WorkerPool manages a pool of workers performing the delivery fan-out
// for claimed reminders. Channels are independent: an email failure never
// blocks push, and one dead subscription never aborts the rest.
type WorkerPool struct {
	size   int
	jobs   chan Job
	store  store.Store
	pusher *Pusher
	email  EmailSender
}

// NewWorkerPool creates a new delivery worker pool.
func NewWorkerPool(size int, s store.Store, pusher *Pusher, email EmailSender) *WorkerPool {
	return &WorkerPool{
		size:   size,
		jobs:   make(chan Job, size), // Buffered channel
		store:  s,
		pusher: pusher,
		email:  email,
	}
}

// Start launches the worker goroutines.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		go wp.worker(ctx, i)
	}
}

// worker is the actual worker goroutine.
func (wp *WorkerPool) worker(ctx context.Context, id int) {
	log.Printf("Delivery worker %d started", id)
	for {
		select {
		case job := <-wp.jobs:
			log.Printf("Delivery worker %d processing reminder %d", id, job.ReminderID)
			wp.deliver(ctx, job)
		case <-ctx.Done():
			log.Printf("Delivery worker %d shutting down", id)
			return
		}
	}
}

// Dispatch sends a job to the worker pool.
func (wp *WorkerPool) Dispatch(job Job) {
	wp.jobs <- job
}

// Jobs returns the jobs channel for testing.
func (wp *WorkerPool) Jobs() chan Job {
	return wp.jobs
}

// deliver performs the fan-out for one reminder: email if the owner opted
// in, then push to every registered subscription.
func (wp *WorkerPool) deliver(ctx context.Context, job Job) {
	med := job.Medication
	user := med.User
	if user == nil {
		log.Printf("No user associated with medication %d; skipping delivery for reminder %d", med.ID, job.ReminderID)
		return
	}

	if user.EmailNotifications && user.Email != "" {
		err := wp.email.Send(user.Email, ReminderEmailSubject(med), ReminderEmailBody(med))
		if err != nil {
			log.Printf("Failed to send reminder email to %s: %v", user.Email, err)
		} else {
			log.Printf("Email notification sent to %s for reminder %d", user.Email, job.ReminderID)
		}
	}

	wp.pushToUser(ctx, user.ID, med, job.ReminderID)
}

// pushToUser fans out one push notification to all of a user's registered
// subscriptions and prunes endpoints the push service reports as gone.
func (wp *WorkerPool) pushToUser(ctx context.Context, userID int64, med model.Medication, reminderID int64) {
	subs, err := wp.store.GetSubscriptions(ctx, userID)
	if err != nil {
		log.Printf("Error fetching subscriptions for user %d: %v", userID, err)
		return
	}
	if len(subs) == 0 {
		return
	}

	payload := ReminderPush(med)

	var gone []int64
	sent := 0
	for _, sub := range subs {
		err := wp.pusher.Deliver(sub, payload)
		switch {
		case errors.Is(err, ErrSubscriptionGone):
			log.Printf("Subscription %s is gone. Scheduling deletion.", sub.Endpoint)
			gone = append(gone, sub.ID)
		case err != nil:
			log.Printf("Error sending push notification to %s: %v", sub.Endpoint, err)
		default:
			sent++
		}
	}

	if sent > 0 {
		log.Printf("Sent %d push notification(s) for reminder %d", sent, reminderID)
	}
	// One batch delete per fan-out pass, not one per subscription.
	if len(gone) > 0 {
		if err := wp.store.DeleteSubscriptions(ctx, gone); err != nil {
			log.Printf("Failed to delete %d gone subscriptions: %v", len(gone), err)
		}
	}
}
