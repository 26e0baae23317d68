package database

import (
	"fmt"
	"log"

	"vidaview/config"
	"vidaview/models"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB is the global relational database handle, set when DB_DRIVER is postgres or sqlite.
var DB *gorm.DB

// OpenSQL opens a gorm connection for the given driver ("postgres" or "sqlite").
func OpenSQL(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "postgres":
		dialector = postgres.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported sql driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if driver == "sqlite" {
		// a single connection keeps in-memory databases shared and serialises writers
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}
	return db, nil
}

// InitSQL opens the relational database configured in AppConfig.
func InitSQL() {
	db, err := OpenSQL(config.AppConfig.DBDriver, config.AppConfig.SQLDSN)
	if err != nil {
		log.Fatalf("failed to connect to %s: %v", config.AppConfig.DBDriver, err)
	}
	DB = db
	log.Printf("Connected to %s successfully!", config.AppConfig.DBDriver)
}

// AutoMigrate creates or updates the relational schema.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Unit{},
		&models.Promotion{},
		&models.Booking{},
		&models.Payment{},
		&models.Notification{},
		&models.ActivityLog{},
	)
}
