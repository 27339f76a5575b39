package routes

import (
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/gorilla/sessions"
	"gorm.io/gorm"

	"github.com/audiohub/audiohub/internal/config"
	"github.com/audiohub/audiohub/internal/handlers"
	"github.com/audiohub/audiohub/internal/storage"
)

// Deps carries everything the route table needs.
type Deps struct {
	Config   *config.Config
	DB       *gorm.DB
	Store    storage.Storage
	Sessions sessions.Store
	Log      *log.Logger
}

// New builds the full router: the API under /api with collection, item
// and custom-action routes spelled out explicitly, the front-end shell
// at /, and media serving in development mode.
func New(d Deps) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	users := handlers.NewUserHandler(d.DB, d.Store, d.Log)
	audio := handlers.NewAudioHandler(d.DB, d.Store, d.Log)
	index := handlers.NewIndexHandler(d.Sessions, d.Log)

	r.Get("/", index.Index)

	r.Route("/api", func(api chi.Router) {
		api.Use(httprate.Limit(
			d.Config.RateLimit.Requests,
			d.Config.RateLimit.Window,
			httprate.WithKeyFuncs(httprate.KeyByIP, httprate.KeyByEndpoint),
		))

		api.Route("/users", func(rt chi.Router) {
			rt.Get("/", users.List)
			rt.Post("/", users.Create)
			rt.Get("/{id}/", users.Retrieve)
			rt.Put("/{id}/", users.Update)
			rt.Patch("/{id}/", users.Patch)
			rt.Delete("/{id}/", users.Delete)
			rt.Get("/{id}/details/", users.Details)
			rt.Post("/{id}/upload-audio/", users.UploadAudio)
			rt.Get("/{id}/audio-files/", users.AudioFiles)
		})

		api.Route("/audio", func(rt chi.Router) {
			rt.Get("/", audio.List)
			rt.Post("/", audio.Create)
			rt.Get("/{id}/", audio.Retrieve)
			rt.Put("/{id}/", audio.Update)
			rt.Patch("/{id}/", audio.Update)
			rt.Delete("/{id}/", audio.Delete)
		})
	})

	if d.Config.Development() {
		if local, ok := d.Store.(*storage.Local); ok {
			fileServer := http.StripPrefix("/media/", http.FileServer(http.Dir(local.Root())))
			r.Get("/media/*", fileServer.ServeHTTP)
		}
	}

	return r
}
