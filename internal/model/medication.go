package model

import "time"

// MedicationPriority classifies how strictly a medication schedule must
// be followed. HIGH gates a compliance disclaimer in delivered messages.
type MedicationPriority string

const (
	PriorityNormal MedicationPriority = "NORMAL"
	PriorityHigh   MedicationPriority = "HIGH"
)

// Medication represents a prescribed medication and its dosing details.
type Medication struct {
	ID           int64  `gorm:"primaryKey"`
	UserID       int64  `gorm:"index"`
	Name         string `gorm:"size:256;index;not null"`
	Dosage       string `gorm:"size:128"`
	Frequency    string `gorm:"size:128"`
	Instructions string `gorm:"size:512"`
	StartDate    time.Time
	EndDate      *time.Time
	Priority     MedicationPriority `gorm:"size:16;not null;default:NORMAL"`

	// Associations
	User      *User      `gorm:"constraint:OnDelete:SET NULL"`
	Reminders []Reminder `gorm:"foreignKey:MedicationID"`
}

// HighRisk reports whether delivered messages for this medication must
// carry the compliance disclaimer.
func (m Medication) HighRisk() bool {
	return m.Priority == PriorityHigh
}
