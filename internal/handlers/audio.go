package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"

	"github.com/audiohub/audiohub/internal/dto"
	"github.com/audiohub/audiohub/internal/storage"
	"github.com/audiohub/audiohub/models"
)

// AudioHandler exposes CRUD over audio records. Listing supports an
// optional owner filter via ?user_id=.
type AudioHandler struct {
	db    *gorm.DB
	store storage.Storage
	log   *log.Logger
}

func NewAudioHandler(db *gorm.DB, store storage.Storage, logger *log.Logger) *AudioHandler {
	return &AudioHandler{db: db, store: store, log: logger}
}

func (h *AudioHandler) List(w http.ResponseWriter, r *http.Request) {
	q := h.db.Order("uploaded_at DESC, id DESC")
	if userID := r.URL.Query().Get("user_id"); userID != "" {
		q = q.Where("user_id = ?", userID)
	}

	var audio []models.AudioFile
	if err := q.Find(&audio).Error; err != nil {
		h.log.Error("listing audio files", "err", err)
		respondError(w, http.StatusInternalServerError, "could not list audio files")
		return
	}

	respondJSON(w, http.StatusOK, dto.NewAudioResponses(r, h.store, audio))
}

// Create accepts a multipart payload with audio_file, user_id and an
// optional title, mirroring the per-user upload action.
func (h *AudioHandler) Create(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("audio_file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "No audio file provided")
		return
	}
	defer file.Close()

	userID, err := strconv.ParseUint(r.FormValue("user_id"), 10, 32)
	if err != nil {
		respondError(w, http.StatusBadRequest, "user_id must be a valid identifier")
		return
	}

	var user models.UserProfile
	if err := h.db.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(w, http.StatusNotFound, "User not found")
		} else {
			h.log.Error("loading user", "id", userID, "err", err)
			respondError(w, http.StatusInternalServerError, "could not load user")
		}
		return
	}

	audio, err := createAudioFile(r, h.db, h.store, user.ID, file, header, r.FormValue("title"))
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	respondJSON(w, http.StatusCreated, dto.NewAudioResponse(r, h.store, audio))
}

func (h *AudioHandler) Retrieve(w http.ResponseWriter, r *http.Request) {
	audio, ok := h.getAudio(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, dto.NewAudioResponse(r, h.store, audio))
}

// Update changes the mutable fields of an audio record: title, and
// owner. The payload reference and timestamps stay fixed.
func (h *AudioHandler) Update(w http.ResponseWriter, r *http.Request) {
	audio, ok := h.getAudio(w, r)
	if !ok {
		return
	}

	var req dto.UpdateAudioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Title != nil {
		audio.Title = *req.Title
	}
	if req.UserID != nil {
		var user models.UserProfile
		if err := h.db.First(&user, "id = ?", *req.UserID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				respondError(w, http.StatusBadRequest, "user does not exist")
			} else {
				h.log.Error("loading user", "id", *req.UserID, "err", err)
				respondError(w, http.StatusInternalServerError, "could not load user")
			}
			return
		}
		audio.UserID = *req.UserID
	}

	if err := h.db.Save(audio).Error; err != nil {
		h.log.Error("saving audio file", "id", audio.ID, "err", err)
		respondError(w, http.StatusInternalServerError, "could not save audio file")
		return
	}

	respondJSON(w, http.StatusOK, dto.NewAudioResponse(r, h.store, audio))
}

func (h *AudioHandler) Delete(w http.ResponseWriter, r *http.Request) {
	audio, ok := h.getAudio(w, r)
	if !ok {
		return
	}

	if err := h.db.Delete(audio).Error; err != nil {
		h.log.Error("deleting audio file", "id", audio.ID, "err", err)
		respondError(w, http.StatusInternalServerError, "could not delete audio file")
		return
	}
	if err := h.store.Delete(r.Context(), audio.FilePath); err != nil {
		h.log.Warn("deleting stored payload", "key", audio.FilePath, "err", err)
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *AudioHandler) getAudio(w http.ResponseWriter, r *http.Request) (*models.AudioFile, bool) {
	// Malformed identifiers are the not-found case; see UserHandler.getUser.
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 32)
	if err != nil {
		respondError(w, http.StatusNotFound, "Audio file not found")
		return nil, false
	}
	var audio models.AudioFile
	if err := h.db.First(&audio, "id = ?", uint(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(w, http.StatusNotFound, "Audio file not found")
		} else {
			h.log.Error("loading audio file", "id", id, "err", err)
			respondError(w, http.StatusInternalServerError, "could not load audio file")
		}
		return nil, false
	}
	return &audio, true
}

// createAudioFile stores the payload and creates the owning record. The
// extension is checked up front so a rejected payload never reaches
// storage; a failed insert removes the stored payload again.
func createAudioFile(r *http.Request, db *gorm.DB, store storage.Storage, userID uint,
	file multipart.File, header *multipart.FileHeader, title string) (*models.AudioFile, error) {

	if err := models.ValidateAudioExtension(header.Filename); err != nil {
		return nil, err
	}

	key := storage.NewKey(header.Filename)
	if err := store.Save(r.Context(), key, file, header.Header.Get("Content-Type")); err != nil {
		return nil, fmt.Errorf("failed to store audio file: %w", err)
	}

	audio := &models.AudioFile{
		UserID:   userID,
		FilePath: key,
		Title:    title,
	}
	if err := db.Create(audio).Error; err != nil {
		_ = store.Delete(r.Context(), key)
		return nil, err
	}

	return audio, nil
}
