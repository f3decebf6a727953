package db

import (
	"github.com/taskhive-dev/taskhive/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func Connect(dsn string) (*gorm.DB, error) {
	conn, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
	})

	if err != nil {
		return nil, err
	}

	return conn, nil
}

func Migrate(conn *gorm.DB) error {
	tables := []interface{}{
		&models.User{},
		&models.Workspace{},
		&models.WorkspaceMember{},
		&models.Project{},
		&models.Task{},
		&models.Comment{},
		&models.EmailNotification{},
	}

	migrator := conn.Migrator()

	for _, table := range tables {
		if !migrator.HasTable(table) {
			if err := conn.AutoMigrate(table); err != nil {
				return err
			}
		}
	}

	return nil
}
