package store

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"mediremind-backend/internal/model"
)

// Store defines the interface for all database operations the reminder
// pipeline performs. The poller and every open stream share one Store, so
// every status change goes through ClaimTransition.
type Store interface {
	DB() *gorm.DB

	// QueryDue returns reminders in the given status whose scheduled time is
	// at or before asOf, oldest first, with medication and owner preloaded.
	QueryDue(ctx context.Context, status model.ReminderStatus, asOf time.Time) ([]model.Reminder, error)

	// ClaimTransition atomically moves a reminder from expected to next.
	// It reports false when another observer already won the transition.
	ClaimTransition(ctx context.Context, reminderID int64, expected, next model.ReminderStatus) (bool, error)

	GetSubscriptions(ctx context.Context, userID int64) ([]model.PushSubscription, error)
	DeleteSubscriptions(ctx context.Context, ids []int64) error
	UpsertSubscription(ctx context.Context, userID int64, endpoint, p256dh, auth string) error
	RemoveSubscription(ctx context.Context, userID int64, endpoint string) error

	CreateReminders(ctx context.Context, medicationID int64, times []time.Time) error
	ReminderHistory(ctx context.Context, userID int64, limit int) ([]model.Reminder, error)
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) DB() *gorm.DB {
	return s.db
}

func (s *gormStore) QueryDue(ctx context.Context, status model.ReminderStatus, asOf time.Time) ([]model.Reminder, error) {
	var reminders []model.Reminder
	err := s.db.WithContext(ctx).
		Preload("Medication").
		Preload("Medication.User").
		Where("status = ? AND scheduled_time <= ?", status, asOf).
		Order("scheduled_time ASC").
		Find(&reminders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query %s reminders: %w", status, err)
	}
	return reminders, nil
}

// ClaimTransition is a single conditional UPDATE, so concurrent observers
// racing on the same row serialize in the database: exactly one caller sees
// a row affected, everyone else sees zero.
func (s *gormStore) ClaimTransition(ctx context.Context, reminderID int64, expected, next model.ReminderStatus) (bool, error) {
	res := s.db.WithContext(ctx).
		Model(&model.Reminder{}).
		Where("id = ? AND status = ?", reminderID, expected).
		Update("status", next)
	if res.Error != nil {
		return false, fmt.Errorf("failed to transition reminder %d %s->%s: %w", reminderID, expected, next, res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (s *gormStore) GetSubscriptions(ctx context.Context, userID int64) ([]model.PushSubscription, error) {
	var subs []model.PushSubscription
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Find(&subs).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch subscriptions for user %d: %w", userID, err)
	}
	return subs, nil
}

// DeleteSubscriptions removes dead endpoints collected during a fan-out
// pass in one batch. Deleting an already-deleted row is a no-op.
func (s *gormStore) DeleteSubscriptions(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	if err := s.db.WithContext(ctx).Delete(&model.PushSubscription{}, ids).Error; err != nil {
		return fmt.Errorf("failed to delete %d subscriptions: %w", len(ids), err)
	}
	return nil
}

func (s *gormStore) UpsertSubscription(ctx context.Context, userID int64, endpoint, p256dh, auth string) error {
	sub := model.PushSubscription{
		UserID:   userID,
		Endpoint: endpoint,
		P256DH:   p256dh,
		Auth:     auth,
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "endpoint"}},
		DoUpdates: clause.AssignmentColumns([]string{"user_id", "p256dh", "auth"}),
	}).Create(&sub).Error
	if err != nil {
		return fmt.Errorf("failed to upsert subscription: %w", err)
	}
	return nil
}

func (s *gormStore) RemoveSubscription(ctx context.Context, userID int64, endpoint string) error {
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND endpoint = ?", userID, endpoint).
		Delete(&model.PushSubscription{}).Error
	if err != nil {
		return fmt.Errorf("failed to remove subscription: %w", err)
	}
	return nil
}

// CreateReminders inserts one PENDING reminder per scheduled time for a
// medication. Called when a medication's reminder times are registered.
func (s *gormStore) CreateReminders(ctx context.Context, medicationID int64, times []time.Time) error {
	if len(times) == 0 {
		return nil
	}
	reminders := make([]model.Reminder, len(times))
	for i, t := range times {
		reminders[i] = model.Reminder{
			MedicationID:  medicationID,
			ScheduledTime: t,
			Status:        model.ReminderPending,
		}
	}
	if err := s.db.WithContext(ctx).Create(&reminders).Error; err != nil {
		return fmt.Errorf("failed to create reminders for medication %d: %w", medicationID, err)
	}
	return nil
}

func (s *gormStore) ReminderHistory(ctx context.Context, userID int64, limit int) ([]model.Reminder, error) {
	var reminders []model.Reminder
	err := s.db.WithContext(ctx).
		Preload("Medication").
		Joins("JOIN medications ON medications.id = reminders.medication_id").
		Where("medications.user_id = ?", userID).
		Where("reminders.status IN ?", []model.ReminderStatus{model.ReminderTaken, model.ReminderSkipped}).
		Order("reminders.scheduled_time DESC").
		Limit(limit).
		Find(&reminders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch reminder history for user %d: %w", userID, err)
	}
	return reminders, nil
}
