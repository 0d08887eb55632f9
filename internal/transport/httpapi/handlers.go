package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/edumarques81/stellar-hero/internal/domain/breadcrumb"
	"github.com/edumarques81/stellar-hero/internal/domain/carousel"
	"github.com/edumarques81/stellar-hero/internal/domain/contact"
	"github.com/edumarques81/stellar-hero/internal/version"
)

const maxContactBody = 16 << 10

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Debug().Err(err).Msg("Failed to write response")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorBody{Error: message})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.cfg.Pinger != nil {
		if err := s.cfg.Pinger.Ping(); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "error", "media": "disconnected"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, version.GetInfo())
}

type breadcrumbResponse struct {
	Home  breadcrumb.Crumb   `json:"home"`
	Items []breadcrumb.Crumb `json:"items"`
}

// handleBreadcrumbs resolves ?path=. A null items list means the bar is hidden.
func (s *Server) handleBreadcrumbs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	path := q.Get("path")
	if path == "" {
		path = "/"
	}

	showOnHome, _ := strconv.ParseBool(q.Get("showOnHome"))
	items := breadcrumb.Build(path, breadcrumb.Options{
		TitleMap:      s.cfg.TitleMap,
		LabelOverride: q.Get("label"),
		ShowOnHome:    showOnHome,
	})
	if upper, _ := strconv.ParseBool(q.Get("display")); upper && items != nil {
		items = breadcrumb.Display(items)
	}

	writeJSON(w, http.StatusOK, breadcrumbResponse{
		Home:  breadcrumb.Crumb{Href: "/", Label: breadcrumb.HomeLabel},
		Items: items,
	})
}

func (s *Server) handleOffices(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.cfg.Directory)
}

func (s *Server) handleCarousel(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.cfg.Carousel.State())
}

func (s *Server) handleSlideImage(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid slide index")
		return
	}
	slide, err := s.cfg.Carousel.Slide(index)
	if errors.Is(err, carousel.ErrSlideNotFound) || slide.Path == "" {
		writeError(w, http.StatusNotFound, "slide not found")
		return
	}

	path := slide.Path
	if width, err := strconv.Atoi(r.URL.Query().Get("w")); err == nil && s.cfg.Thumbnails != nil {
		thumb, err := s.cfg.Thumbnails.Generate(slide, width)
		if err != nil {
			log.Warn().Err(err).Str("slide", slide.Name).Msg("Thumbnail generation failed, serving original")
		} else {
			path = thumb
		}
	}

	w.Header().Set("Cache-Control", "public, max-age=86400")
	http.ServeFile(w, r, path)
}

type contactResponse struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	Remaining int    `json:"remaining"`
}

func (s *Server) handleContact(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxContactBody)

	var form contact.Form
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if _, err := s.cfg.Contact.Submit(r.Context(), form); err != nil {
		if errors.Is(err, contact.ErrInvalidForm) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		log.Error().Err(err).Msg("Contact submission failed")
		writeError(w, http.StatusInternalServerError, "Failed to send message.")
		return
	}

	writeJSON(w, http.StatusCreated, contactResponse{
		Status:    "success",
		Message:   "Message sent successfully.",
		Remaining: contact.MaxMessage,
	})
}
