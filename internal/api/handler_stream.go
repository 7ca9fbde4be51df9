package api

import (
	"io"
	"log"
	"time"

	"github.com/gin-gonic/gin"

	"mediremind-backend/internal/model"
	"mediremind-backend/internal/notification"
)

// StreamEvent is one due-reminder event on the live notification feed.
type StreamEvent struct {
	ID             int64  `json:"id"`
	MedicationName string `json:"medicationName"`
	Dosage         string `json:"dosage"`
	Instructions   string `json:"instructions"`
	ScheduledTime  string `json:"scheduledTime"`
	Message        string `json:"message"`
	IsHighRisk     bool   `json:"isHighRisk"`
	Disclaimer     string `json:"disclaimer,omitempty"`
	ActionLabel    string `json:"actionLabel"`
}

func buildStreamEvent(r model.Reminder) StreamEvent {
	med := r.Medication
	return StreamEvent{
		ID:             r.ID,
		MedicationName: med.Name,
		Dosage:         med.Dosage,
		Instructions:   notification.InstructionsOrDefault(med),
		ScheduledTime:  r.ScheduledTime.UTC().Format(time.RFC3339),
		Message:        notification.FriendlyMessage(med),
		IsHighRisk:     med.HighRisk(),
		Disclaimer:     notification.Disclaimer(med),
		ActionLabel:    "Mark as Taken",
	}
}

// StreamNotifications serves the per-client SSE feed of due reminders.
// The token is checked once at connection open; an invalid token yields a
// single error event and closes the feed without touching reminder state.
// The loop then claims DUE reminders to SENT and emits each won claim as
// one event, until the client disconnects or the server shuts down.
func (h *Handler) StreamNotifications(c *gin.Context) {
	if _, err := h.tokens.Verify(c.Query("token")); err != nil {
		c.SSEvent("error", gin.H{"error": "Unauthorized"})
		return
	}

	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	ticker := time.NewTicker(h.streamInterval)
	defer ticker.Stop()

	first := true
	c.Stream(func(w io.Writer) bool {
		if !first {
			select {
			case <-c.Request.Context().Done():
				return false
			case <-h.rootCtx.Done():
				return false
			case <-ticker.C:
			}
		}
		first = false
		h.emitDueReminders(c)
		return true
	})
}

// emitDueReminders performs one feed pass: every DUE reminder this
// connection wins the DUE->SENT claim for becomes exactly one event.
// Claiming before emitting is what keeps N concurrent clients from each
// presenting the same reminder.
func (h *Handler) emitDueReminders(c *gin.Context) {
	ctx := c.Request.Context()
	due, err := h.store.QueryDue(ctx, model.ReminderDue, time.Now().UTC())
	if err != nil {
		log.Printf("Stream: error querying due reminders: %v", err)
		return
	}

	for _, reminder := range due {
		won, err := h.store.ClaimTransition(ctx, reminder.ID, model.ReminderDue, model.ReminderSent)
		if err != nil {
			log.Printf("Stream: error claiming reminder %d: %v", reminder.ID, err)
			continue
		}
		if !won {
			continue
		}
		c.SSEvent("message", buildStreamEvent(reminder))
	}
}
