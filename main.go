package main

import (
	"log/slog"
	"net/http"
	"os"

	"Kinolog/config"
	"Kinolog/database"
	"Kinolog/handlers"
	"Kinolog/middleware"
	"Kinolog/services"

	"github.com/go-chi/chi/v5"
)

func main() {
	logLevel := slog.LevelInfo
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if cfg.Debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))

	db, err := database.Connect(cfg)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.RunMigrations(db); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	if err := database.SeedAdminUser(db, cfg); err != nil {
		slog.Error("Failed to seed admin user", "error", err)
		os.Exit(1)
	}

	sessions := services.NewSessions(cfg)
	auth := services.NewAuth(db)
	catalogue := services.NewCatalogue(db)
	ledger := services.NewLedger(db)
	approvals := services.NewApprovals(ledger)
	moderation := services.NewModeration(db, services.QuarantineCriteria{
		RequireGenres: cfg.QuarantineRequireGenres,
		RequirePoster: cfg.QuarantineRequirePoster,
		RequirePlot:   cfg.QuarantineRequirePlot,
	})
	classifier := services.NewClassifier(catalogue, services.NewTMDB(cfg.TMDBAPIKey), cfg.ClassifyBatchSize)

	h := &handlers.Handlers{
		Catalogue:  catalogue,
		Ledger:     ledger,
		Approvals:  approvals,
		Moderation: moderation,
		Classifier: classifier,
		Auth:       auth,
		Sessions:   sessions,
	}
	authMW := middleware.NewAuth(sessions, auth)

	r := chi.NewRouter()
	r.Use(requestLogger)
	r.Use(authMW.WithIdentity)

	r.Get("/healthz", h.Healthz)
	r.Post("/login", h.LoginHandler)
	r.Post("/logout", h.LogoutHandler)

	r.Route("/api", func(r chi.Router) {
		// Public browsing: quarantined items never surface here
		r.Get("/movies", h.MoviesHandler)
		r.Get("/movies/{id}", h.MovieDetailsHandler)
		r.Post("/movies/{id}/rate", h.RateMovieHandler)

		r.Group(func(r chi.Router) {
			r.Use(authMW.RequireContributor)
			r.Post("/changes", h.ProposeChangeHandler)
			r.Get("/changes", h.ListChangesHandler)
			r.Post("/guide/seen", h.GuideSeenHandler)
		})

		r.Group(func(r chi.Router) {
			r.Use(authMW.RequireAdmin)
			r.Post("/changes/{id}/approve", h.ApproveChangeHandler)
			r.Post("/changes/{id}/reject", h.RejectChangeHandler)
			r.Get("/quarantine", h.ListQuarantinedHandler)
			r.Post("/quarantine/{id}", h.QuarantineMovieHandler)
			r.Post("/quarantine/{id}/correct", h.CorrectMovieHandler)
			r.Post("/sweep/visibility", h.VisibilitySweepHandler)
			r.Post("/sweep/classify", h.ClassifySweepHandler)
			r.Post("/contributors", h.CreateContributorHandler)
			r.Post("/contributors/{id}/deactivate", h.DeactivateContributorHandler)
		})
	})

	addr := ":" + cfg.ServerPort
	slog.Info("Kinolog is starting", "addr", addr, "env", cfg.Environment, "debug", cfg.Debug)

	if err := http.ListenAndServe(addr, r); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		slog.Debug("Request", "method", r.Method, "path", r.URL.Path, "remote", r.RemoteAddr)
		next.ServeHTTP(w, r)
	})
}
