package dto

import (
	"errors"
	"net/http"
	"time"

	"github.com/audiohub/audiohub/internal/storage"
	"github.com/audiohub/audiohub/models"
)

// CreateUserRequest is the payload for creating a user, and for PUT-style
// full replacement. Timestamps are read-only and not accepted here.
type CreateUserRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
	Bio   string `json:"bio"`
}

func (r *CreateUserRequest) Validate() error {
	if r.Name == "" {
		return errors.New("name is required")
	}
	if r.Email == "" {
		return errors.New("email is required")
	}
	return nil
}

// UpdateUserRequest is the payload for PATCH-style partial updates. Only
// non-nil fields are applied.
type UpdateUserRequest struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
	Phone *string `json:"phone"`
	Bio   *string `json:"bio"`
}

// UserResponse is the full user representation, including the nested
// audio list and its count.
type UserResponse struct {
	ID              uint            `json:"id"`
	Name            string          `json:"name"`
	Email           string          `json:"email"`
	Phone           string          `json:"phone"`
	Bio             string          `json:"bio"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	AudioFiles      []AudioResponse `json:"audio_files"`
	AudioFilesCount int             `json:"audio_files_count"`
}

// UserListItem is the lightweight representation used for bulk listing.
// It deliberately omits the nested audio list, bio and timestamps.
type UserListItem struct {
	ID              uint   `json:"id"`
	Name            string `json:"name"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	AudioFilesCount int64  `json:"audio_files_count"`
}

func NewUserResponse(r *http.Request, store storage.Storage, u *models.UserProfile, audio []models.AudioFile) UserResponse {
	nested := NewAudioResponses(r, store, audio)
	return UserResponse{
		ID:              u.ID,
		Name:            u.Name,
		Email:           u.Email,
		Phone:           u.Phone,
		Bio:             u.Bio,
		CreatedAt:       u.CreatedAt,
		UpdatedAt:       u.UpdatedAt,
		AudioFiles:      nested,
		AudioFilesCount: len(nested),
	}
}

// ErrorResponse is the structured error body for 4xx responses.
type ErrorResponse struct {
	Error string `json:"error"`
}
