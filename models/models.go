package models

import (
	"fmt"
	"path"
	"slices"
	"strings"
	"time"

	"gorm.io/gorm"
)

// AllowedAudioExtensions are the payload extensions accepted for upload.
// Matching is case-sensitive against the uploaded file name.
var AllowedAudioExtensions = []string{"mp3", "wav", "ogg", "m4a", "aac"}

type UserProfile struct {
	ID         uint   `gorm:"primarykey"`
	Name       string `gorm:"size:100;not null"`
	Email      string `gorm:"size:255;not null;unique"`
	Phone      string `gorm:"size:20"`
	Bio        string
	CreatedAt  time.Time
	UpdatedAt  time.Time
	AudioFiles []AudioFile
}

type AudioFile struct {
	ID         uint         `gorm:"primarykey"`
	UserID     uint         `gorm:"not null;index"`
	User       *UserProfile `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	FilePath   string       `gorm:"size:500;not null"`
	Title      string       `gorm:"size:200"`
	UploadedAt time.Time    `gorm:"autoCreateTime"`
}

// BeforeCreate enforces the extension whitelist and fills in the default
// title from the stored file name.
func (a *AudioFile) BeforeCreate(tx *gorm.DB) error {
	if err := ValidateAudioExtension(a.FilePath); err != nil {
		return err
	}
	if a.Title == "" {
		a.Title = path.Base(a.FilePath)
	}
	return nil
}

// ValidateAudioExtension checks a file name against AllowedAudioExtensions.
func ValidateAudioExtension(name string) error {
	ext := strings.TrimPrefix(path.Ext(name), ".")
	if !slices.Contains(AllowedAudioExtensions, ext) {
		return fmt.Errorf("file extension %q is not allowed, allowed extensions are: %s",
			ext, strings.Join(AllowedAudioExtensions, ", "))
	}
	return nil
}
