package database

import (
	"fmt"
	"time"

	"github.com/audiohub/audiohub/models"
	"gorm.io/gorm"
)

// Migration is a single versioned schema change. Steps run in order and
// each applied version is recorded in schema_migrations.
type Migration struct {
	Version int
	Name    string
	Run     func(tx *gorm.DB) error
}

type schemaMigration struct {
	Version   int `gorm:"primarykey"`
	Name      string
	AppliedAt time.Time
}

func (schemaMigration) TableName() string { return "schema_migrations" }

var migrations = []Migration{
	{
		Version: 1,
		Name:    "create user_profiles and audio_files",
		Run: func(tx *gorm.DB) error {
			return tx.Migrator().CreateTable(&models.UserProfile{}, &models.AudioFile{})
		},
	},
}

// Migrate applies all pending migrations. Each step runs inside a
// transaction together with its version bookkeeping, so a failed step
// leaves the schema at the previous version.
func Migrate(db *gorm.DB) error {
	if !db.Migrator().HasTable(&schemaMigration{}) {
		if err := db.Migrator().CreateTable(&schemaMigration{}); err != nil {
			return fmt.Errorf("failed to create schema_migrations table: %w", err)
		}
	}

	for _, m := range migrations {
		var applied int64
		if err := db.Model(&schemaMigration{}).Where("version = ?", m.Version).Count(&applied).Error; err != nil {
			return fmt.Errorf("failed to check migration %d: %w", m.Version, err)
		}
		if applied > 0 {
			continue
		}

		err := db.Transaction(func(tx *gorm.DB) error {
			if err := m.Run(tx); err != nil {
				return err
			}
			return tx.Create(&schemaMigration{
				Version:   m.Version,
				Name:      m.Name,
				AppliedAt: time.Now(),
			}).Error
		})
		if err != nil {
			return fmt.Errorf("migration %d (%s) failed: %w", m.Version, m.Name, err)
		}
	}

	return nil
}
