// Package journal is the append-only observability store: dispatched rides
// and IO transitions as they happen, plus the push-subscription registry. It
// is never read back into controller state.
package journal

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/plundell/stabelo-elevator/internal/model"
)

// Store defines the interface for all database operations.
type Store interface {
	RecordRide(ctx context.Context, elevator string, pickup int, dropoff *int, at time.Time) error
	RecordTransition(ctx context.Context, t model.Transition) error

	UpsertSubscription(ctx context.Context, sub model.PushSubscription, floors []int) error
	GetSubscription(ctx context.Context, endpoint string) (model.PushSubscription, error)
	DeleteSubscription(ctx context.Context, endpoint string) error
	SubscriptionsForFloor(ctx context.Context, f int) ([]model.PushSubscription, error)

	DB() *gorm.DB
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

// RecordRide appends one dispatched ride.
func (s *gormStore) RecordRide(ctx context.Context, elevator string, pickup int, dropoff *int, at time.Time) error {
	ride := model.Ride{
		Elevator:    elevator,
		Pickup:      pickup,
		Dropoff:     dropoff,
		RequestedAt: at,
	}
	if err := s.db.WithContext(ctx).Create(&ride).Error; err != nil {
		return fmt.Errorf("failed to record ride on %s: %w", elevator, err)
	}
	return nil
}

// RecordTransition appends one observed IO transition.
func (s *gormStore) RecordTransition(ctx context.Context, t model.Transition) error {
	if err := s.db.WithContext(ctx).Create(&t).Error; err != nil {
		return fmt.Errorf("failed to record transition for %s: %w", t.Elevator, err)
	}
	return nil
}

// UpsertSubscription creates or refreshes a subscription and replaces its
// floor mappings in one transaction.
func (s *gormStore) UpsertSubscription(ctx context.Context, sub model.PushSubscription, floors []int) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "endpoint"}},
			DoUpdates: clause.AssignmentColumns([]string{"p256dh", "auth"}),
		}).Create(&sub).Error; err != nil {
			return err
		}

		if err := tx.Where("endpoint = ?", sub.Endpoint).Delete(&model.FloorSubscription{}).Error; err != nil {
			return err
		}
		for _, f := range floors {
			fs := model.FloorSubscription{Endpoint: sub.Endpoint, Floor: f}
			if err := tx.Create(&fs).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// GetSubscription fetches a subscription with its floor mappings.
func (s *gormStore) GetSubscription(ctx context.Context, endpoint string) (model.PushSubscription, error) {
	var sub model.PushSubscription
	err := s.db.WithContext(ctx).Preload("Floors").First(&sub, "endpoint = ?", endpoint).Error
	return sub, err
}

// DeleteSubscription removes a subscription and its floor mappings.
func (s *gormStore) DeleteSubscription(ctx context.Context, endpoint string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("endpoint = ?", endpoint).Delete(&model.FloorSubscription{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.PushSubscription{Endpoint: endpoint}).Error
	})
}

// SubscriptionsForFloor returns every subscription registered for f.
func (s *gormStore) SubscriptionsForFloor(ctx context.Context, f int) ([]model.PushSubscription, error) {
	var subs []model.PushSubscription
	err := s.db.WithContext(ctx).
		Joins("JOIN floor_subscriptions fs ON fs.endpoint = push_subscriptions.endpoint").
		Where("fs.floor = ?", f).
		Find(&subs).Error
	return subs, err
}
