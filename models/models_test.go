package models_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/audiohub/audiohub/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.Migrator().CreateTable(&models.UserProfile{}, &models.AudioFile{}))
	return db
}

func TestValidateAudioExtension(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		wantErr bool
	}{
		{"mp3", "song.mp3", false},
		{"wav", "take1.wav", false},
		{"ogg", "clip.ogg", false},
		{"m4a", "voice.m4a", false},
		{"aac", "stream.aac", false},
		{"uppercase rejected", "song.MP3", true},
		{"text file", "notes.txt", true},
		{"no extension", "song", true},
		{"trailing dot", "song.", true},
		{"extension embedded in name", "song.mp3.txt", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := models.ValidateAudioExtension(tt.file)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestAudioFileCreateRejectsBadExtension(t *testing.T) {
	db := newTestDB(t)

	user := models.UserProfile{Name: "Ava", Email: "ava@x.com"}
	require.NoError(t, db.Create(&user).Error)

	audio := models.AudioFile{UserID: user.ID, FilePath: "audio_files/notes.txt"}
	err := db.Create(&audio).Error
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not allowed")

	var count int64
	require.NoError(t, db.Model(&models.AudioFile{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestAudioFileCreateDefaultsTitle(t *testing.T) {
	db := newTestDB(t)

	user := models.UserProfile{Name: "Ava", Email: "ava@x.com"}
	require.NoError(t, db.Create(&user).Error)

	audio := models.AudioFile{UserID: user.ID, FilePath: "audio_files/abc_song.mp3"}
	require.NoError(t, db.Create(&audio).Error)
	assert.Equal(t, "abc_song.mp3", audio.Title)
	assert.False(t, audio.UploadedAt.IsZero())

	titled := models.AudioFile{UserID: user.ID, FilePath: "audio_files/abc_song.mp3", Title: "Song"}
	require.NoError(t, db.Create(&titled).Error)
	assert.Equal(t, "Song", titled.Title)
}

func TestUserProfileEmailUnique(t *testing.T) {
	db := newTestDB(t)

	require.NoError(t, db.Create(&models.UserProfile{Name: "Ava", Email: "ava@x.com"}).Error)
	err := db.Create(&models.UserProfile{Name: "Eve", Email: "ava@x.com"}).Error
	require.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}
