package db

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/lecture-feedback-backend/internal/domain"
	"github.com/yungbote/lecture-feedback-backend/internal/pkg/logger"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(domain.Models()...)
}

// Open connects to the configured driver ("postgres" or "sqlite").
func Open(logg *logger.Logger, driver, sqlitePath string) (*gorm.DB, error) {
	switch driver {
	case "", "postgres":
		svc, err := NewPostgresService(logg)
		if err != nil {
			return nil, err
		}
		return svc.DB(), nil
	case "sqlite":
		svc, err := NewSQLiteService(logg, sqlitePath)
		if err != nil {
			return nil, err
		}
		return svc.DB(), nil
	default:
		return nil, fmt.Errorf("unknown DB_DRIVER %q", driver)
	}
}
