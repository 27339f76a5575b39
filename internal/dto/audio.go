package dto

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/audiohub/audiohub/internal/storage"
	"github.com/audiohub/audiohub/models"
)

// AudioResponse is the wire representation of an audio record.
type AudioResponse struct {
	ID         uint      `json:"id"`
	AudioFile  string    `json:"audio_file"`
	AudioURL   string    `json:"audio_url"`
	Title      string    `json:"title"`
	UploadedAt time.Time `json:"uploaded_at"`
	FileSize   *int64    `json:"file_size"`
}

// NewAudioResponse serializes one audio record. The URL is made absolute
// from the current request's host when one is available. The size lookup
// is best-effort: any failure yields a null file_size instead of an
// error.
func NewAudioResponse(r *http.Request, store storage.Storage, a *models.AudioFile) AudioResponse {
	resp := AudioResponse{
		ID:         a.ID,
		AudioFile:  a.FilePath,
		Title:      a.Title,
		UploadedAt: a.UploadedAt,
	}

	u := store.URL(a.FilePath)
	if r != nil && r.Host != "" && strings.HasPrefix(u, "/") {
		scheme := "http"
		if r.TLS != nil {
			scheme = "https"
		}
		if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
			scheme = proto
		}
		u = scheme + "://" + r.Host + u
	}
	resp.AudioURL = u

	ctx := context.Background()
	if r != nil {
		ctx = r.Context()
	}
	if size, err := store.Size(ctx, a.FilePath); err == nil {
		resp.FileSize = &size
	}

	return resp
}

// NewAudioResponses serializes a list of audio records, always returning
// a non-nil slice so empty lists encode as [].
func NewAudioResponses(r *http.Request, store storage.Storage, items []models.AudioFile) []AudioResponse {
	out := make([]AudioResponse, 0, len(items))
	for i := range items {
		out = append(out, NewAudioResponse(r, store, &items[i]))
	}
	return out
}

// UpdateAudioRequest is the JSON payload for partial audio updates.
// Timestamps are read-only and not accepted here.
type UpdateAudioRequest struct {
	Title  *string `json:"title"`
	UserID *uint   `json:"user_id"`
}
