// Package router wires the middleware chain, services, and handlers into the
// HTTP surface.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/tunecircle/backend/internal/broker"
	"github.com/tunecircle/backend/internal/config"
	"github.com/tunecircle/backend/internal/handlers"
	"github.com/tunecircle/backend/internal/middleware"
	"github.com/tunecircle/backend/internal/services"
	"github.com/tunecircle/backend/internal/store"
)

// Deps carries the externally constructed pieces the router needs: the
// persistence layer, the live-feed broker, and the Spotify integrations
// (which are nil when OAuth credentials are not configured).
type Deps struct {
	Store      *store.Store
	Broker     *broker.Broker
	OAuth      handlers.SpotifyOAuth
	Refresher  services.TokenRefresher
	NewCatalog services.CatalogFactory
}

// New builds the full HTTP handler.
func New(cfg *config.Config, deps Deps) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	realIP := middleware.NewRealIPMiddleware(cfg.TrustedProxies)
	r.Use(realIP.Handler)
	r.Use(middleware.RequestContextMiddleware)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORSMiddleware(cfg.CORSAllowedOrigins))

	// Services
	authService := services.NewAuthService(deps.Store, cfg.JWTSecret, cfg.SessionDuration)
	reviewService := services.NewReviewService(deps.Store, deps.Broker)
	spotifyService := services.NewSpotifyService(deps.Store, deps.Refresher, deps.NewCatalog)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService, deps.OAuth, cfg)
	configHandler := handlers.NewConfigHandler(cfg)
	reviewHandler := handlers.NewReviewHandler(reviewService)
	spotifyHandler := handlers.NewSpotifyHandler(spotifyService)
	eventsHandler := handlers.NewEventsHandler(deps.Broker)

	// Rate limiter for catalog search
	searchRateLimiter := middleware.NewRateLimiter(cfg.RateLimitPerMinute)

	requireAuth := middleware.AuthMiddleware(authService)

	r.Route("/api", func(r chi.Router) {
		// Health check
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"status":"ok"}`))
		})

		// Public configuration
		r.Get("/config", configHandler.Get)

		// Authentication
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.Post("/logout", authHandler.Logout)
			r.Get("/spotify", authHandler.SpotifyBegin)
			r.Get("/spotify/callback", authHandler.SpotifyCallback)
		})

		// Reviews: the feed is public, everything else is owner-scoped
		r.Route("/reviews", func(r chi.Router) {
			r.Get("/", reviewHandler.Feed)

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Use(middleware.UpdateRequestContextMiddleware)

				r.Post("/", reviewHandler.Create)
				r.Get("/{id}", reviewHandler.Get)
				r.Put("/{id}", reviewHandler.Update)
				r.Delete("/{id}", reviewHandler.Delete)
			})
		})

		// Spotify listening data and catalog
		r.Route("/spotify", func(r chi.Router) {
			r.Use(requireAuth)
			r.Use(middleware.UpdateRequestContextMiddleware)

			r.With(searchRateLimiter.Middleware).Get("/search", spotifyHandler.Search)
			r.Get("/tracks/{id}", spotifyHandler.Track)
			r.Get("/top-tracks", spotifyHandler.TopTracks)
			r.Get("/top-artists", spotifyHandler.TopArtists)
			r.Get("/recently-played", spotifyHandler.RecentlyPlayed)
			r.Get("/profile", spotifyHandler.Profile)
		})

		// Live feed updates
		r.Get("/events/feed", eventsHandler.Feed)
	})

	return r
}
