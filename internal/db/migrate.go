package db

import (
	"fmt"
	"log"

	"gorm.io/gorm"

	"github.com/sirdesai22/crosswire-replica/internal/models"
)

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.FeedEvent{}); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	log.Println("✅ database migrated successfully")
	return nil
}
