// Package main is the entry point for the Stellar hero backend.
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/edumarques81/stellar-hero/internal/domain/carousel"
	"github.com/edumarques81/stellar-hero/internal/domain/contact"
	"github.com/edumarques81/stellar-hero/internal/domain/controls"
	"github.com/edumarques81/stellar-hero/internal/domain/hero"
	"github.com/edumarques81/stellar-hero/internal/domain/visibility"
	"github.com/edumarques81/stellar-hero/internal/infra/store"
	"github.com/edumarques81/stellar-hero/internal/transport/httpapi"
	"github.com/edumarques81/stellar-hero/internal/transport/socketio"
	"github.com/edumarques81/stellar-hero/internal/version"
)

func main() {
	port := flag.String("port", "3001", "HTTP server port")
	media := flag.String("media", "memory", "Media backend: memory or mpd")
	mediaURI := flag.String("media-uri", "profile.mp4", "Hero media source (MPD URI for the mpd backend)")
	mediaDuration := flag.Float64("media-duration", 125, "Source duration in seconds for the memory backend")
	mpdHost := flag.String("mpd-host", "localhost", "MPD host")
	mpdPort := flag.Int("mpd-port", 6600, "MPD port")
	mpdPassword := flag.String("mpd-password", "", "MPD password")
	overlayVideo := flag.String("overlay-video", "IXofkWzNXXo", "External video ID shown in the overlay")
	pauseOnOverlay := flag.Bool("pause-on-overlay", false, "Pause the hero media while the overlay is open")
	hideAfter := flag.Duration("hide-after", controls.DefaultHideAfter, "Control surface auto-hide delay")
	threshold := flag.Float64("visibility-threshold", visibility.DefaultThreshold, "Visible fraction counting as in view")
	maxSessions := flag.Int("max-sessions", 0, "Maximum concurrent hero sessions (0 = unlimited, forced to 1 for mpd)")
	dbPath := flag.String("db", store.DefaultDBPath, "SQLite database path")
	slidesDir := flag.String("slides", "", "Directory of carousel slides (optional)")
	cacheDir := flag.String("cache-dir", "data/cache", "Thumbnail cache directory")
	carouselInterval := flag.Duration("carousel-interval", carousel.DefaultInterval, "Carousel rotation interval")
	contactInterval := flag.Duration("contact-interval", 30*time.Second, "Token refill interval for contact submissions per client (0 disables limiting)")
	contactBurst := flag.Int("contact-burst", 3, "Contact submissions allowed in a burst per client")
	listContacts := flag.Int("list-contacts", 0, "Print the N newest contact submissions as JSON and exit")
	staticDir := flag.String("static", "", "Directory to serve static files from (optional)")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if *debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	versionInfo := version.GetInfo()
	log.Info().Msg("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	log.Info().Msgf("  %s", versionInfo.String())
	log.Info().Msg("  Viewport-Aware Hero Media Backend")
	log.Info().Msg("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	log.Info().
		Str("port", *port).
		Str("media", *media).
		Str("media_uri", *mediaURI).
		Dur("hide_after", *hideAfter).
		Float64("visibility_threshold", *threshold).
		Bool("pause_on_overlay", *pauseOnOverlay).
		Int("max_sessions", *maxSessions).
		Msg("Configuration")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db := store.NewDB(*dbPath)
	if err := db.Open(); err != nil {
		log.Fatal().Err(err).Msg("Failed to open site database")
	}
	defer db.Close()

	if *listContacts > 0 {
		if err := printContacts(ctx, db, *listContacts, os.Stdout); err != nil {
			log.Error().Err(err).Msg("Failed to list contacts")
		}
		return
	}
	if count, err := db.CountContacts(ctx); err == nil {
		log.Info().Str("path", db.Path()).Int("contacts", count).Msg("Site database ready")
	}

	backend, err := newMediaBackend(ctx, mediaConfig{
		Kind:        *media,
		URI:         *mediaURI,
		Duration:    *mediaDuration,
		MPDHost:     *mpdHost,
		MPDPort:     *mpdPort,
		MPDPassword: *mpdPassword,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to start media backend")
	}
	defer backend.Close()

	sessions := *maxSessions
	if backend.SingleOwner() {
		sessions = 1
	}

	var rotator *carousel.Rotator
	var thumbnails *carousel.ThumbnailGenerator
	if *slidesDir != "" {
		slides, err := carousel.LoadSlides(*slidesDir)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to load carousel slides")
		}
		rotator = carousel.NewRotator(slides, *carouselInterval, nil)
		thumbnails = carousel.NewThumbnailGenerator(*cacheDir)
		go rotator.Run(ctx)
	}

	socketServer, err := socketio.NewServer(backend.NewElement, rotator, socketio.Options{
		Hero: hero.Config{
			OverlayVideo:        *overlayVideo,
			HideAfter:           *hideAfter,
			VisibilityThreshold: *threshold,
			PauseOnOverlay:      *pauseOnOverlay,
		},
		MaxSessions: sessions,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Socket.io server")
	}
	defer socketServer.Close()

	cfg := httpapi.Config{
		Pinger:    backend,
		Contact:   contact.NewService(db),
		Directory: contact.DefaultDirectory(),
		Socket:    socketServer,
	}
	if *contactInterval > 0 {
		cfg.ContactLimit = httpapi.NewRateLimiter(*contactInterval, *contactBurst, nil)
	}
	if rotator != nil {
		cfg.Carousel = rotator
		cfg.Thumbnails = thumbnails
	}
	if *staticDir != "" {
		log.Info().Str("dir", *staticDir).Msg("Serving static files")
		cfg.WebFS = os.DirFS(*staticDir)
	}

	server := &http.Server{
		Addr:         ":" + *port,
		Handler:      corsMiddleware(httpapi.New(cfg)),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		log.Info().Msg("Shutting down...")
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Server shutdown error")
		}
	}()

	log.Info().Str("addr", ":"+*port).Msg("HTTP server listening")
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("HTTP server error")
	}

	log.Info().Msg("Server stopped")
}
