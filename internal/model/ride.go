package model

import "time"

// Ride records one dispatched ride request.
type Ride struct {
	ID          int64  `gorm:"primaryKey;autoIncrement"`
	Elevator    string `gorm:"size:64;index;not null"`
	Pickup      int    `gorm:"not null"`
	Dropoff     *int
	RequestedAt time.Time `gorm:"not null;index"`
}
