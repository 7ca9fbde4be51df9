package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"mediremind-backend/internal/model"
)

const historyLimit = 50

type historyEntry struct {
	ID             int64  `json:"id"`
	MedicationName string `json:"medicationName"`
	Dosage         string `json:"dosage"`
	ScheduledTime  string `json:"scheduledTime"`
	Status         string `json:"status"`
}

// GetReminderHistory returns the authenticated user's taken/skipped
// reminders, newest first.
func (h *Handler) GetReminderHistory(c *gin.Context) {
	userID := currentUserID(c)
	reminders, err := h.store.ReminderHistory(c.Request.Context(), userID, historyLimit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	entries := make([]historyEntry, len(reminders))
	for i, r := range reminders {
		entries[i] = historyEntry{
			ID:             r.ID,
			MedicationName: r.Medication.Name,
			Dosage:         r.Medication.Dosage,
			ScheduledTime:  r.ScheduledTime.UTC().Format(time.RFC3339),
			Status:         string(r.Status),
		}
	}
	c.JSON(http.StatusOK, gin.H{"history": entries})
}

type ackRequest struct {
	Action string `json:"action" binding:"required,oneof=taken skipped"`
}

// AckReminder records the user's acknowledgment of a presented reminder.
// The SENT->TAKEN/SKIPPED step goes through the same atomic claim as the
// delivery transitions, so a double ack (or an ack racing a retry) resolves
// to exactly one winner.
func (h *Handler) AckReminder(c *gin.Context) {
	reminderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid reminder ID"})
		return
	}

	var req ackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	userID := currentUserID(c)
	var reminder model.Reminder
	err = h.store.DB().WithContext(c.Request.Context()).
		Joins("JOIN medications ON medications.id = reminders.medication_id").
		Where("reminders.id = ? AND medications.user_id = ?", reminderID, userID).
		First(&reminder).Error
	if err == gorm.ErrRecordNotFound {
		c.JSON(http.StatusNotFound, gin.H{"error": "reminder not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	next := model.ReminderTaken
	if req.Action == "skipped" {
		next = model.ReminderSkipped
	}

	won, err := h.store.ClaimTransition(c.Request.Context(), reminderID, model.ReminderSent, next)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if !won {
		c.JSON(http.StatusConflict, gin.H{"error": "reminder is not awaiting acknowledgment"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": string(next)})
}
