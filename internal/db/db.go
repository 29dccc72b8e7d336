package db

import (
	"fmt"
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/plundell/stabelo-elevator/config"
	"github.com/plundell/stabelo-elevator/internal/model"
)

// Init opens the journal database and runs migrations. The sqlite driver is
// the default; postgres is selected by config.
func Init(cfg *config.JournalConfig) (*gorm.DB, error) {
	var dial gorm.Dialector
	switch cfg.Driver {
	case "sqlite":
		dial = sqlite.Open(cfg.DSN)
	case "postgres":
		dial = postgres.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported journal driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dial, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to journal database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetimeMinutes > 0 {
		sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetimeMinutes) * time.Minute)
	}

	log.Println("Running journal migrations...")
	if err := db.AutoMigrate(
		&model.Ride{},
		&model.Transition{},
		&model.PushSubscription{},
		&model.FloorSubscription{},
	); err != nil {
		return nil, fmt.Errorf("automigrate failed: %w", err)
	}

	return db, nil
}
