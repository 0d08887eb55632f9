// Package httpapi serves the REST endpoints of the marketing site backend.
package httpapi

import (
	"context"
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/edumarques81/stellar-hero/internal/domain/carousel"
	"github.com/edumarques81/stellar-hero/internal/domain/contact"
)

// Pinger reports whether the media backend is reachable.
type Pinger interface {
	Ping() error
}

// ContactSubmitter stores contact form submissions.
type ContactSubmitter interface {
	Submit(ctx context.Context, form contact.Form) (contact.Record, error)
}

// Thumbnailer scales a slide to a requested width and returns the file path.
type Thumbnailer interface {
	Generate(slide carousel.Slide, width int) (string, error)
}

// Config wires the router to its collaborators. Nil collaborators disable
// their routes.
type Config struct {
	Pinger     Pinger
	Carousel   *carousel.Rotator
	Thumbnails Thumbnailer
	Contact    ContactSubmitter
	Directory  contact.Directory
	// TitleMap overrides breadcrumb labels by href.
	TitleMap map[string]string
	// Socket is mounted at /socket.io/.
	Socket http.Handler
	// WebFS serves the single page app for unmatched paths.
	WebFS fs.FS
	// ContactLimit throttles contact submissions per client when set.
	ContactLimit *RateLimiter
}

// Server is the HTTP router.
type Server struct {
	router chi.Router
	cfg    Config
}

// New creates the router with every route registered.
func New(cfg Config) *Server {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	s := &Server{router: r, cfg: cfg}
	s.routes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/version", s.handleVersion)
		r.Get("/breadcrumbs", s.handleBreadcrumbs)
		r.Get("/offices", s.handleOffices)

		if s.cfg.Carousel != nil {
			r.Get("/carousel", s.handleCarousel)
			r.Get("/carousel/{index}/image", s.handleSlideImage)
		}

		if s.cfg.Contact != nil {
			cr := r.With(middleware.AllowContentType("application/json"))
			if s.cfg.ContactLimit != nil {
				cr = cr.With(s.cfg.ContactLimit.Middleware)
			}
			cr.Post("/contact", s.handleContact)
		}
	})

	if s.cfg.Socket != nil {
		s.router.Handle("/socket.io/*", s.cfg.Socket)
	}

	if s.cfg.WebFS != nil {
		s.router.NotFound(newSPAFileServer(s.cfg.WebFS).ServeHTTP)
	}
}
