package database_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/audiohub/audiohub/internal/database"
	"github.com/audiohub/audiohub/models"
)

func openSQLite(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	return db
}

func TestMigrateCreatesSchema(t *testing.T) {
	db := openSQLite(t)
	require.NoError(t, database.Migrate(db))

	assert.True(t, db.Migrator().HasTable(&models.UserProfile{}))
	assert.True(t, db.Migrator().HasTable(&models.AudioFile{}))
	assert.True(t, db.Migrator().HasTable("schema_migrations"))

	var versions []int
	require.NoError(t, db.Table("schema_migrations").Order("version").Pluck("version", &versions).Error)
	assert.Equal(t, []int{1}, versions)
}

func TestMigrateIsIdempotent(t *testing.T) {
	db := openSQLite(t)
	require.NoError(t, database.Migrate(db))
	require.NoError(t, database.Migrate(db))

	var count int64
	require.NoError(t, db.Table("schema_migrations").Count(&count).Error)
	assert.EqualValues(t, 1, count)
}
