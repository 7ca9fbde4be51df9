package model

import "time"

// ReminderStatus is the lifecycle state of a scheduled dose occurrence.
// Transitions are monotonic: PENDING -> DUE -> SENT -> TAKEN | SKIPPED,
// and every transition goes through the store's atomic claim.
type ReminderStatus string

const (
	ReminderPending ReminderStatus = "PENDING"
	ReminderDue     ReminderStatus = "DUE"
	ReminderSent    ReminderStatus = "SENT"
	ReminderTaken   ReminderStatus = "TAKEN"
	ReminderSkipped ReminderStatus = "SKIPPED"
)

// Reminder represents one scheduled dose occurrence of a medication.
type Reminder struct {
	ID            int64          `gorm:"primaryKey"`
	MedicationID  int64          `gorm:"index;not null"`
	ScheduledTime time.Time      `gorm:"index;not null"`
	Status        ReminderStatus `gorm:"size:16;index;not null;default:PENDING"`

	// Associations
	Medication Medication `gorm:"constraint:OnDelete:CASCADE"`
}
