package model

import "time"

// Transition records one IO state change as observed on the bank's
// aggregated stream.
type Transition struct {
	ID         int64     `gorm:"primaryKey;autoIncrement"`
	Elevator   string    `gorm:"size:64;index;not null"`
	FromState  string    `gorm:"size:16;not null"`
	ToState    string    `gorm:"size:16;not null"`
	FromFloor  int       `gorm:"not null"`
	ToFloor    int       `gorm:"not null"`
	ObservedAt time.Time `gorm:"not null;index"`
}
