package db

import (
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"library-reservation-backend/config"
	"library-reservation-backend/internal/auth"
	"library-reservation-backend/internal/model"
)

// Init initializes the database connection and runs migrations.
func Init(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetimeMinutes) * time.Minute)

	log.Println("Running database migrations...")
	if err := db.AutoMigrate(
		&model.Student{},
		&model.Book{},
		&model.ConferenceRoom{},
		&model.RoomReservation{},
	); err != nil {
		return nil, fmt.Errorf("automigrate failed: %w", err)
	}

	log.Println("Database initialization complete.")
	return db, nil
}

// SeedAdmin makes sure the configured admin account exists. Existing
// accounts are left untouched so a rotated config password never clobbers a
// manual change.
func SeedAdmin(db *gorm.DB, cfg *config.AuthConfig) error {
	if cfg.AdminID == "" || cfg.AdminPassword == "" {
		log.Println("No admin account configured, skipping seed")
		return nil
	}

	var existing model.Student
	err := db.First(&existing, "id_number = ?", cfg.AdminID).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to look up admin account: %w", err)
	}

	hash, err := auth.HashPassword(cfg.AdminPassword, cfg.BcryptCost)
	if err != nil {
		return err
	}

	admin := model.Student{IDNumber: cfg.AdminID, PasswordHash: hash, IsAdmin: true}
	if err := db.Create(&admin).Error; err != nil {
		return fmt.Errorf("failed to seed admin account: %w", err)
	}
	log.Printf("Seeded admin account %s", cfg.AdminID)
	return nil
}
