// Package server wires the dependency graph and the HTTP routes, and runs
// the listener with graceful shutdown.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/wisdom-share/internal/auth"
	"github.com/sakif/wisdom-share/internal/config"
	"github.com/sakif/wisdom-share/internal/handler"
	"github.com/sakif/wisdom-share/internal/metrics"
	"github.com/sakif/wisdom-share/internal/middleware"
	"github.com/sakif/wisdom-share/internal/model"
	sqliteRepo "github.com/sakif/wisdom-share/internal/repository/sqlite"
	"github.com/sakif/wisdom-share/internal/service"
	"github.com/sakif/wisdom-share/internal/storage"
)

type Server struct {
	router  *chi.Mux
	config  config.Config
	logger  *slog.Logger
	db      *sqliteRepo.DB
	metrics *metrics.Metrics
	limiter *middleware.RateLimiter
	stop    chan struct{}
}

// New opens the database and the upload store and builds the router.
func New(cfg config.Config, logger *slog.Logger) (*Server, error) {
	if dir := filepath.Dir(cfg.DBPath); cfg.DBPath != ":memory:" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router:  chi.NewRouter(),
		config:  cfg,
		logger:  logger,
		db:      db,
		metrics: metrics.New(),
		limiter: middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, logger),
		stop:    make(chan struct{}),
	}

	if err := s.setupRoutes(); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close releases the database. Start calls it on shutdown.
func (s *Server) Close() error {
	return s.db.Close()
}

func (s *Server) setupRoutes() error {
	tokens, err := auth.NewTokenService(s.config.JWTSecret, s.config.TokenTTL)
	if err != nil {
		return err
	}

	store, err := storage.NewLocalStore(s.config.UploadDir, strings.TrimSuffix(s.config.PublicBaseURL, "/")+"/files")
	if err != nil {
		return err
	}

	var github *auth.GitHubProvider
	if s.config.GitHubEnabled() {
		github = auth.NewGitHubProvider(s.config.GitHubClientID, s.config.GitHubClientSecret, s.config.GitHubCallbackURL)
	}

	authService := service.NewAuthService(s.db, tokens, auth.NewPasswordService(), s.config.AdminAccounts, s.logger)
	appService := service.NewAppService(s.db, s.db, s.db, s.metrics, s.logger)
	reactionService := service.NewReactionService(s.db, s.db, appService, s.metrics, s.logger)
	answerService := service.NewAnswerService(s.db, s.db, s.metrics, s.logger)
	statisticService := service.NewStatisticService(s.db)
	fileService := service.NewFileService(store, s.metrics, s.logger)

	appHandler := handler.NewAppHandler(appService, s.logger)
	reactionHandler := handler.NewReactionHandler(reactionService, s.logger)
	answerHandler := handler.NewAnswerHandler(answerService, s.logger)
	statisticHandler := handler.NewStatisticHandler(statisticService, s.logger)
	fileHandler := handler.NewFileHandler(fileService, s.logger)
	userHandler := handler.NewUserHandler(authService, github, tokens.TTL(), s.logger)

	requireAuth := auth.RequireAuth(tokens, authService)
	optionalAuth := auth.OptionalAuth(tokens, authService)

	// RequestID must run before Logger so the id is in the log line.
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(s.metrics.Middleware)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(chimiddleware.Recoverer)

	s.router.Get("/healthz", s.handleHealth)
	s.router.Handle("/metrics", s.metrics.Handler())

	s.router.Handle("/files/*", http.StripPrefix("/files/", uploadedFiles(store.Root())))

	if github != nil {
		s.router.Get("/auth/github/login", userHandler.HandleGitHubLogin)
		s.router.Get("/auth/github/callback", userHandler.HandleGitHubCallback)
	}

	s.router.Route("/api", func(r chi.Router) {
		r.Post("/user/register", userHandler.HandleRegister)
		r.Post("/user/login", userHandler.HandleLogin)
		r.Post("/user/logout", userHandler.HandleLogout)

		// Public reads; the caller is resolved when present.
		r.Group(func(r chi.Router) {
			r.Use(optionalAuth)

			r.Get("/app/get/vo", appHandler.HandleGetVO)
			r.With(s.limiter.Handler).Post("/app/list/page/vo", appHandler.HandleListVOPage)
			r.Get("/app/statistic/answer_count", statisticHandler.HandleAnswerCount)
			r.Get("/app/statistic/answer_result_count", statisticHandler.HandleAnswerResultCount)
		})

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)

			r.Get("/user/get/login", userHandler.HandleGetLoginUser)

			r.Post("/app/add", appHandler.HandleAdd)
			r.Post("/app/delete", appHandler.HandleDelete)
			r.Post("/app/edit", appHandler.HandleEdit)
			r.Post("/app/my/list/page/vo", appHandler.HandleListMyVOPage)

			r.Post("/app_thumb/", reactionHandler.HandleThumb)
			r.Post("/app_favour/", reactionHandler.HandleFavour)
			r.Post("/app_favour/my/list/page", reactionHandler.HandleMyFavourPage)

			r.Post("/user_answer/add", answerHandler.HandleAdd)
			r.Post("/file/upload", fileHandler.HandleUpload)

			r.Group(func(r chi.Router) {
				r.Use(auth.RequireRole(model.RoleAdmin))

				r.Post("/app/update", appHandler.HandleUpdate)
				r.Post("/app/list/page", appHandler.HandleListPage)
			})
		})
	})

	return nil
}

// uploadedFiles serves user uploads from root. They share the API origin,
// so nothing is allowed to run scripts, and SVG (which can carry script)
// is only ever offered as a download.
func uploadedFiles(root string) http.Handler {
	files := http.FileServer(http.Dir(root))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Content-Security-Policy", "sandbox")
		h.Set("X-Content-Type-Options", "nosniff")
		if strings.EqualFold(path.Ext(r.URL.Path), ".svg") {
			h.Set("Content-Disposition", "attachment")
		}
		files.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := s.db.Ping(); err != nil {
		s.logger.Error("health check failed", slog.String("error", err.Error()))
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"status":"unavailable"}`))
		return
	}
	w.Write([]byte(`{"status":"ok"}`))
}

// Start serves until SIGINT or SIGTERM, then drains in-flight requests
// for up to 30 seconds and closes the database.
func (s *Server) Start() error {
	defer s.Close()
	defer close(s.stop)

	s.limiter.StartCleanup(time.Minute, s.stop)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("database", s.config.DBPath),
			slog.Bool("githubLogin", s.config.GitHubEnabled()),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
