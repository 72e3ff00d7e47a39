package routes

import (
	"net/http"

	"github.com/postpilot/postpilot/internal/app"
	"github.com/postpilot/postpilot/internal/handler"
	"github.com/postpilot/postpilot/internal/middleware"
)

func SetupRoutes(app *app.App) http.Handler {
	// Handlers
	auth := handler.NewAuthHandler(app.AuthService)
	gallery := handler.NewGalleryHandler(app.GalleryService, app.AssetService, app.Cfg.MaxUploadBytes)
	repost := handler.NewRepostHandler(app.RepostService)

	mux := http.NewServeMux()

	// Health
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	// Auth
	mux.HandleFunc("POST /auth/token", auth.Token)

	// Gallery (protected)
	requireAuth := middleware.RequireAuth(app.AuthService)
	mux.HandleFunc("GET /gallery", requireAuth(gallery.List))
	mux.HandleFunc("GET /gallery/stats", requireAuth(gallery.Stats))
	mux.HandleFunc("POST /gallery/upload", requireAuth(gallery.Upload))
	mux.HandleFunc("DELETE /gallery/{id}", requireAuth(gallery.Delete))

	// Reddit quick repost (protected, rate limited)
	rateLimiter := middleware.RateLimitRepost()
	mux.HandleFunc("POST /reddit/quick-repost", rateLimiter(requireAuth(repost.QuickRepost)))

	return middleware.Chain(mux,
		middleware.RequestLogging,
	)
}
