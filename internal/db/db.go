package db

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/BruksfildServices01/jacare-do-corte/internal/config"
	"github.com/BruksfildServices01/jacare-do-corte/internal/models"
)

func NewDB(cfg *config.Config, log *zap.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DBUrl), &gorm.Config{
		PrepareStmt: true,
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	if err := db.AutoMigrate(
		&models.User{},
		&models.UserAccess{},
		&models.UserPreference{},
		&models.Service{},
		&models.Barber{},
		&models.Appointment{},
		&models.Automation{},
		&models.AuditLog{},
	); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	if err := seedCatalog(db); err != nil {
		log.Warn("catalog seed failed", zap.Error(err))
	}

	return db, nil
}

// seedCatalog fills empty catalog tables with the shop's menu.
func seedCatalog(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Service{}).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		services := models.DefaultServices()
		if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&services).Error; err != nil {
			return err
		}
	}

	if err := db.Model(&models.Barber{}).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		barbers := models.DefaultBarbers()
		if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&barbers).Error; err != nil {
			return err
		}
	}

	// explicit ids leave the serial sequences behind
	db.Exec(`SELECT setval(pg_get_serial_sequence('services', 'id'), (SELECT MAX(id) FROM services))`)
	db.Exec(`SELECT setval(pg_get_serial_sequence('barbers', 'id'), (SELECT MAX(id) FROM barbers))`)
	return nil
}
