package database

import (
	"fmt"
	"log"

	"surveillance-center/backend/config"
	"surveillance-center/backend/models"
	"surveillance-center/backend/utils"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func Initialize(cfg config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		cfg.Host, cfg.User, cfg.Password, cfg.DBName, cfg.Port, cfg.SSLMode,
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Info),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Auto migrate
	if err := db.AutoMigrate(
		&models.User{},
		&models.Camera{},
		&models.Alert{},
		&models.Video{},
		&models.DetectionConfig{},
		&models.DetectionRule{},
	); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	// Partial unique indexes enforcing "at most one config per scope".
	// GORM's uniqueIndex tag cannot express the WHERE condition, so the
	// constraint is created directly; concurrent writers race against these
	// indexes, not application locks.
	if err := createConfigScopeIndexes(db); err != nil {
		return nil, fmt.Errorf("failed to create config scope indexes: %w", err)
	}

	// Create default admin user if not exists
	if err := createDefaultAdmin(db); err != nil {
		log.Printf("Warning: Failed to create default admin: %v", err)
	}

	log.Println("Database initialized successfully")
	return db, nil
}

func createConfigScopeIndexes(db *gorm.DB) error {
	statements := []string{
		`CREATE UNIQUE INDEX IF NOT EXISTS uniq_user_default_config
			ON detection_configs (user_id) WHERE camera_id IS NULL`,
		`CREATE UNIQUE INDEX IF NOT EXISTS uniq_camera_override_config
			ON detection_configs (camera_id) WHERE user_id IS NULL`,
	}
	for _, stmt := range statements {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}
	return nil
}

func createDefaultAdmin(db *gorm.DB) error {
	var count int64
	db.Model(&models.User{}).Count(&count)

	if count > 0 {
		return nil // Admin already exists
	}

	// Generate password hash for "demo123"
	hashedPassword, err := utils.HashPassword("demo123")
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	// Create default admin user
	admin := &models.User{
		Email:    "admin@surveillance.demo",
		Name:     "Admin User",
		Password: hashedPassword,
		Role:     "admin",
	}

	if err := db.Create(admin).Error; err != nil {
		return err
	}

	log.Println("Default admin user created: admin@surveillance.demo / demo123")
	return nil
}
