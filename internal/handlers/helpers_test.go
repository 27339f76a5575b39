package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/audiohub/audiohub/internal/config"
	"github.com/audiohub/audiohub/internal/database"
	"github.com/audiohub/audiohub/internal/dto"
	"github.com/audiohub/audiohub/internal/routes"
	"github.com/audiohub/audiohub/internal/storage"
)

type testApp struct {
	router *chi.Mux
	db     *gorm.DB
	store  *storage.Local
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	store, err := storage.NewLocal(t.TempDir())
	require.NoError(t, err)

	cfg := &config.Config{
		Env:       "development",
		RateLimit: config.RateLimitConfig{Requests: 1000, Window: time.Minute},
	}
	router := routes.New(routes.Deps{
		Config:   cfg,
		DB:       db,
		Store:    store,
		Sessions: sessions.NewCookieStore([]byte("test-session-key")),
		Log:      log.New(io.Discard),
	})

	return &testApp{router: router, db: db, store: store}
}

func (a *testApp) do(t *testing.T, method, path string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rr := httptest.NewRecorder()
	a.router.ServeHTTP(rr, req)
	return rr
}

func (a *testApp) doJSON(t *testing.T, method, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	b, err := json.Marshal(payload)
	require.NoError(t, err)
	return a.do(t, method, path, bytes.NewReader(b), "application/json")
}

func decodeJSON[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), "body: %s", rr.Body.String())
	return v
}

// multipartForm builds a multipart body with the given fields, plus an
// audio_file part when filename is non-empty.
func multipartForm(t *testing.T, fields map[string]string, filename string, content []byte) (io.Reader, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if filename != "" {
		fw, err := mw.CreateFormFile("audio_file", filename)
		require.NoError(t, err)
		_, err = fw.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return buf, mw.FormDataContentType()
}

func (a *testApp) createUser(t *testing.T, name, email string) dto.UserResponse {
	t.Helper()
	rr := a.doJSON(t, http.MethodPost, "/api/users/", map[string]string{"name": name, "email": email})
	require.Equal(t, http.StatusCreated, rr.Code, "body: %s", rr.Body.String())
	return decodeJSON[dto.UserResponse](t, rr)
}

func (a *testApp) uploadAudio(t *testing.T, userID uint, filename, title string, content []byte) *httptest.ResponseRecorder {
	t.Helper()
	fields := map[string]string{}
	if title != "" {
		fields["title"] = title
	}
	body, contentType := multipartForm(t, fields, filename, content)
	return a.do(t, http.MethodPost, fmt.Sprintf("/api/users/%d/upload-audio/", userID), body, contentType)
}
