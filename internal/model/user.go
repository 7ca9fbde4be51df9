package model

// User represents an account that owns medications and push subscriptions.
type User struct {
	ID             int64  `gorm:"primaryKey"`
	Email          string `gorm:"uniqueIndex;size:256;not null"`
	HashedPassword string `gorm:"size:256"`
	FullName       string `gorm:"size:256"`
	PhoneNumber    string `gorm:"size:32"`
	// EmailNotifications is the opt-in flag for reminder emails.
	EmailNotifications bool `gorm:"not null;default:false"`
	IsActive           bool `gorm:"not null;default:true"`

	// Associations
	Medications       []Medication       `gorm:"foreignKey:UserID"`
	PushSubscriptions []PushSubscription `gorm:"foreignKey:UserID"`
}
