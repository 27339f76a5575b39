package handlers

import (
	_ "embed"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/gorilla/sessions"
)

//go:embed templates/index.html
var indexHTML []byte

const (
	sessionName    = "audiohub_session"
	csrfCookieName = "csrftoken"
)

// IndexHandler renders the front-end shell page and issues a CSRF token
// as a cookie side effect. The token also lives in the signed session so
// later form posts can be checked against it.
type IndexHandler struct {
	sessions sessions.Store
	log      *log.Logger
}

func NewIndexHandler(store sessions.Store, logger *log.Logger) *IndexHandler {
	return &IndexHandler{sessions: store, log: logger}
}

func (h *IndexHandler) Index(w http.ResponseWriter, r *http.Request) {
	session, err := h.sessions.Get(r, sessionName)
	if err != nil {
		// A stale or tampered cookie just means a fresh session.
		session, _ = h.sessions.New(r, sessionName)
	}

	token, ok := session.Values["csrf_token"].(string)
	if !ok || token == "" {
		token = uuid.New().String()
		session.Values["csrf_token"] = token
		if err := session.Save(r, w); err != nil {
			h.log.Error("saving session", "err", err)
		}
	}

	// The token cookie must stay readable by the front-end so it can be
	// echoed back in a request header.
	http.SetCookie(w, &http.Cookie{
		Name:     csrfCookieName,
		Value:    token,
		Path:     "/",
		SameSite: http.SameSiteLaxMode,
	})

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(indexHTML)
}
