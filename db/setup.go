package db

import (
	"fmt"
	"log"
	"time"

	"github.com/organivo/organivo/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

const connectAttempts = 5

// ConnectDatabase opens the connection, retrying with a growing delay when
// the database is not reachable yet (e.g. the container is still starting).
func ConnectDatabase(dsn string) error {
	var err error

	for attempt := 1; attempt <= connectAttempts; attempt++ {
		DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})

		if err == nil {
			return nil
		}

		log.Printf("Database connection failed (attempt %d/%d): %v", attempt, connectAttempts, err)

		if attempt < connectAttempts {
			time.Sleep(time.Duration(attempt) * 2 * time.Second)
		}
	}

	return fmt.Errorf("could not connect to database after %d attempts: %w", connectAttempts, err)
}

func MigrateDatabase() error {
	models := []interface{}{
		&models.User{},
		&models.TempEmail{},
		&models.Project{},
		&models.List{},
		&models.Task{},
	}

	migrator := DB.Migrator()

	for _, model := range models {
		if !migrator.HasTable(model) {
			if err := DB.AutoMigrate(model); err != nil {
				return err
			}
		}
	}

	return nil
}
