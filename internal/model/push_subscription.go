package model

import "time"

// PushSubscription holds the information for a browser push subscription.
type PushSubscription struct {
	Endpoint  string    `gorm:"primaryKey"`
	P256DH    string    `gorm:"column:p256dh;not null"`
	Auth      string    `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`

	// Associations
	Floors []FloorSubscription `gorm:"foreignKey:Endpoint;references:Endpoint;constraint:OnDelete:CASCADE"`
}

// FloorSubscription maps a subscription to one floor of interest.
type FloorSubscription struct {
	ID       int64  `gorm:"primaryKey;autoIncrement"`
	Endpoint string `gorm:"index;not null"`
	Floor    int    `gorm:"index;not null"`
}
