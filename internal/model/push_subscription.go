package model

import "time"

// PushSubscription holds the information for a browser push subscription.
// The endpoint is globally unique; re-registration updates keys and owner
// in place instead of duplicating the row.
type PushSubscription struct {
	ID        int64     `gorm:"primaryKey"`
	UserID    int64     `gorm:"index;not null"`
	Endpoint  string    `gorm:"uniqueIndex;size:1024;not null"`
	P256DH    string    `gorm:"column:p256dh;not null"`
	Auth      string    `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`

	// Associations
	User *User
}
