package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"

	"github.com/audiohub/audiohub/internal/dto"
	"github.com/audiohub/audiohub/internal/storage"
	"github.com/audiohub/audiohub/models"
)

// UserHandler exposes CRUD over user profiles plus the audio sub-actions
// (details, upload-audio, audio-files).
type UserHandler struct {
	db    *gorm.DB
	store storage.Storage
	log   *log.Logger
}

func NewUserHandler(db *gorm.DB, store storage.Storage, logger *log.Logger) *UserHandler {
	return &UserHandler{db: db, store: store, log: logger}
}

// List returns all users in the lightweight representation: no nested
// audio list, just a per-user count.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	var users []models.UserProfile
	if err := h.db.Order("id").Find(&users).Error; err != nil {
		h.log.Error("listing users", "err", err)
		respondError(w, http.StatusInternalServerError, "could not list users")
		return
	}

	counts, err := h.audioCounts()
	if err != nil {
		h.log.Error("counting audio files", "err", err)
		respondError(w, http.StatusInternalServerError, "could not list users")
		return
	}

	items := make([]dto.UserListItem, 0, len(users))
	for _, u := range users {
		items = append(items, dto.UserListItem{
			ID:              u.ID,
			Name:            u.Name,
			Email:           u.Email,
			Phone:           u.Phone,
			AudioFilesCount: counts[u.ID],
		})
	}
	respondJSON(w, http.StatusOK, items)
}

func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	user := models.UserProfile{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
		Bio:   req.Bio,
	}
	if err := h.db.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			respondError(w, http.StatusBadRequest, "user profile with this email already exists")
			return
		}
		h.log.Error("creating user", "err", err)
		respondError(w, http.StatusInternalServerError, "could not create user")
		return
	}

	h.respondUser(w, r, http.StatusCreated, &user)
}

func (h *UserHandler) Retrieve(w http.ResponseWriter, r *http.Request) {
	user, ok := h.getUser(w, r)
	if !ok {
		return
	}
	h.respondUser(w, r, http.StatusOK, user)
}

// Details returns the full representation of one user. Kept as a
// dedicated sub-path alongside plain retrieval.
func (h *UserHandler) Details(w http.ResponseWriter, r *http.Request) {
	h.Retrieve(w, r)
}

// Update replaces the profile fields (PUT semantics).
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, ok := h.getUser(w, r)
	if !ok {
		return
	}

	var req dto.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	user.Name = req.Name
	user.Email = req.Email
	user.Phone = req.Phone
	user.Bio = req.Bio
	h.saveUser(w, r, user)
}

// Patch applies a partial update: only fields present in the payload
// change.
func (h *UserHandler) Patch(w http.ResponseWriter, r *http.Request) {
	user, ok := h.getUser(w, r)
	if !ok {
		return
	}

	var req dto.UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Email != nil {
		user.Email = *req.Email
	}
	if req.Phone != nil {
		user.Phone = *req.Phone
	}
	if req.Bio != nil {
		user.Bio = *req.Bio
	}

	// A partial update must not blank out required fields.
	merged := dto.CreateUserRequest{Name: user.Name, Email: user.Email}
	if err := merged.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.saveUser(w, r, user)
}

// Delete removes the user and cascades to its audio records, then
// removes the stored payloads best-effort.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := h.getUser(w, r)
	if !ok {
		return
	}

	var audio []models.AudioFile
	if err := h.db.Where("user_id = ?", user.ID).Find(&audio).Error; err != nil {
		h.log.Error("loading audio files for delete", "err", err)
		respondError(w, http.StatusInternalServerError, "could not delete user")
		return
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", user.ID).Delete(&models.AudioFile{}).Error; err != nil {
			return err
		}
		return tx.Delete(user).Error
	})
	if err != nil {
		h.log.Error("deleting user", "err", err)
		respondError(w, http.StatusInternalServerError, "could not delete user")
		return
	}

	for _, a := range audio {
		if err := h.store.Delete(r.Context(), a.FilePath); err != nil {
			h.log.Warn("deleting stored payload", "key", a.FilePath, "err", err)
		}
	}

	w.WriteHeader(http.StatusNoContent)
}

// UploadAudio accepts a multipart payload for an existing user and
// creates the owned audio record.
func (h *UserHandler) UploadAudio(w http.ResponseWriter, r *http.Request) {
	user, ok := h.getUser(w, r)
	if !ok {
		return
	}

	file, header, err := r.FormFile("audio_file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "No audio file provided")
		return
	}
	defer file.Close()

	audio, err := createAudioFile(r, h.db, h.store, user.ID, file, header, r.FormValue("title"))
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	respondJSON(w, http.StatusCreated, dto.NewAudioResponse(r, h.store, audio))
}

// AudioFiles lists one user's audio records, newest first.
func (h *UserHandler) AudioFiles(w http.ResponseWriter, r *http.Request) {
	user, ok := h.getUser(w, r)
	if !ok {
		return
	}

	var audio []models.AudioFile
	if err := h.db.Where("user_id = ?", user.ID).
		Order("uploaded_at DESC, id DESC").Find(&audio).Error; err != nil {
		h.log.Error("listing audio files", "err", err)
		respondError(w, http.StatusInternalServerError, "could not list audio files")
		return
	}

	respondJSON(w, http.StatusOK, dto.NewAudioResponses(r, h.store, audio))
}

func (h *UserHandler) getUser(w http.ResponseWriter, r *http.Request) (*models.UserProfile, bool) {
	// A malformed identifier can never resolve to a record, so it is the
	// same not-found case; postgres would otherwise fail the bigint cast.
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 32)
	if err != nil {
		respondError(w, http.StatusNotFound, "User not found")
		return nil, false
	}
	var user models.UserProfile
	if err := h.db.First(&user, "id = ?", uint(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(w, http.StatusNotFound, "User not found")
		} else {
			h.log.Error("loading user", "id", id, "err", err)
			respondError(w, http.StatusInternalServerError, "could not load user")
		}
		return nil, false
	}
	return &user, true
}

func (h *UserHandler) saveUser(w http.ResponseWriter, r *http.Request, user *models.UserProfile) {
	if err := h.db.Save(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			respondError(w, http.StatusBadRequest, "user profile with this email already exists")
			return
		}
		h.log.Error("saving user", "id", user.ID, "err", err)
		respondError(w, http.StatusInternalServerError, "could not save user")
		return
	}
	h.respondUser(w, r, http.StatusOK, user)
}

func (h *UserHandler) userResponse(r *http.Request, user *models.UserProfile) (dto.UserResponse, error) {
	var audio []models.AudioFile
	if err := h.db.Where("user_id = ?", user.ID).
		Order("uploaded_at DESC, id DESC").Find(&audio).Error; err != nil {
		return dto.UserResponse{}, err
	}
	return dto.NewUserResponse(r, h.store, user, audio), nil
}

// respondUser writes the full representation, failing the request when
// the nested audio list cannot be loaded rather than reporting an
// empty list.
func (h *UserHandler) respondUser(w http.ResponseWriter, r *http.Request, status int, user *models.UserProfile) {
	resp, err := h.userResponse(r, user)
	if err != nil {
		h.log.Error("loading audio files", "user", user.ID, "err", err)
		respondError(w, http.StatusInternalServerError, "could not load audio files")
		return
	}
	respondJSON(w, status, resp)
}

func (h *UserHandler) audioCounts() (map[uint]int64, error) {
	type row struct {
		UserID uint
		N      int64
	}
	var rows []row
	err := h.db.Model(&models.AudioFile{}).
		Select("user_id, count(*) as n").Group("user_id").Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[uint]int64, len(rows))
	for _, r := range rows {
		counts[r.UserID] = r.N
	}
	return counts, nil
}
