package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"wedding-app-go/internal/config"
	"wedding-app-go/internal/site"
	"wedding-app-go/internal/transport/httpserver/handler"
	"wedding-app-go/internal/transport/httpserver/middleware"
	"wedding-app-go/pkg/logger"
)

func NewRouter(cfg config.Config, handlers *handler.Handlers, admin *middleware.AdminAuth, page *site.Site, log logger.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(log))
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(requestTimeout(cfg)))
	r.Use(middleware.NewCORS(cfg.CORSAllowedOrigins))

	if page != nil {
		r.Get("/", page.Index)
		r.Handle("/static/*", page.Static())
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", handlers.Health)

		r.Post("/rsvp", handlers.SubmitRSVP)
		r.Patch("/rsvp/{id}", handlers.UpdateRSVP)

		r.Group(func(r chi.Router) {
			r.Use(admin.Middleware)

			r.Get("/rsvp", handlers.ListRSVPs)
			r.Get("/rsvp/stats", handlers.RSVPStats)
			r.Get("/rsvp/{id}", handlers.GetRSVP)
		})
	})

	return r
}
