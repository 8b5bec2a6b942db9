package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"aitutor/internal/auth"
	"aitutor/internal/backend"
	"aitutor/internal/config"
	"aitutor/internal/database"
	"aitutor/internal/goalstore"
	"aitutor/internal/handlers"
	"aitutor/internal/logger"
	"aitutor/internal/repository"
	"aitutor/internal/security"
	"aitutor/internal/service"
	"aitutor/internal/structurer"
	"aitutor/internal/supabase"
	"aitutor/internal/validation"
)

const (
	stepBackend   = "Backend connection"
	stepGoalCache = "Goal cache"
	stepTemplates = "Loading templates"
	stepServices  = "Initializing services"

	shutdownTimeout = 15 * time.Second
	cleanupInterval = time.Hour
)

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("Server stopped with error", "error", err.Error())
		os.Exit(1)
	}
	log.Info("Server shut down")
}

// authBackend is the identity provider plus table stores of one adapter
type authBackend struct {
	provider auth.Provider
	stores   backend.Stores
	// cleanup removes expired sessions; nil when the adapter expires them itself
	cleanup func(ctx context.Context) (int64, error)
	close   func() error
}

func run(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
	startup := handlers.NewStartup(stepBackend, stepGoalCache, stepTemplates, stepServices)
	limiter := security.NewRateLimiter(10, time.Minute)

	addr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:         addr,
		Handler:      startup,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	// abort stops the listener and background loops after a failed
	// initialization step
	abort := func(err error) error {
		cancel()
		_ = g.Wait()
		return err
	}

	g.Go(func() error {
		log.Info("Server starting", "addr", addr, "backend", cfg.Backend)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("Server shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		limiter.Run(gctx)
		return nil
	})

	startup.SetCurrentStep("Connecting to backend")
	ab, err := openBackend(gctx, cfg, log)
	if err != nil {
		return abort(err)
	}
	defer ab.close()
	startup.CompleteStep(stepBackend)

	if ab.cleanup != nil {
		g.Go(func() error {
			cleanupExpiredSessions(gctx, log, ab.cleanup)
			return nil
		})
	}

	startup.SetCurrentStep("Connecting goal cache")
	temp, err := openGoalStore(gctx, cfg, log, g)
	if err != nil {
		return abort(err)
	}
	defer temp.Close()
	startup.CompleteStep(stepGoalCache)

	startup.SetCurrentStep("Loading templates")
	templates, err := handlers.LoadTemplates()
	if err != nil {
		return abort(err)
	}
	startup.CompleteStep(stepTemplates)

	startup.SetCurrentStep("Initializing services")
	emailService, err := service.NewEmailService(gctx, log, cfg.AWSRegion, cfg.SESFromEmail, cfg.SESFromName, cfg.AppBaseURL)
	if err != nil {
		log.Warn("Email service unavailable", "error", err.Error())
		emailService, _ = service.NewEmailService(gctx, log, "", "", "", "")
	}
	defer emailService.Wait()

	validator := validation.New()
	structurerClient := structurer.NewClient(log, cfg.AIServiceURL, cfg.AIServiceTimeout)
	authService := service.NewAuthService(log, validator)
	profileService := service.NewProfileService(log, ab.stores.Profiles, ab.stores.Children, validator)
	goalService := service.NewGoalService(log, ab.stores.Goals, temp, structurerClient, validator)
	dashboardService := service.NewDashboardService(log, profileService, goalService)

	var google *handlers.OAuthProvider
	if !cfg.UsesSupabase() {
		google = handlers.NewGoogleProvider(cfg.GoogleClientID, cfg.GoogleClientSecret)
	}

	middleware := handlers.NewMiddleware(log, ab.provider, security.NewCSRFGenerator(cfg.CSRFSecret), limiter, emailService.WelcomeListener())
	router := handlers.Routes(handlers.Handlers{
		Middleware: middleware,
		Auth:       handlers.NewAuthHandler(log, authService, middleware, templates, google, cfg.OAuthRedirectBaseURL),
		Profile:    handlers.NewProfileHandler(log, profileService, middleware, templates),
		Goals:      handlers.NewGoalHandler(log, goalService, middleware, templates),
		Dashboard:  handlers.NewDashboardHandler(log, dashboardService, middleware, templates),
	})
	startup.CompleteStep(stepServices)
	startup.MarkReady(router)
	log.Info("Server ready", "url", cfg.AppBaseURL)

	return g.Wait()
}

func openBackend(ctx context.Context, cfg *config.Config, log *logger.Logger) (*authBackend, error) {
	if cfg.UsesSupabase() {
		client, err := supabase.NewClient(log, cfg.SupabaseURL, cfg.SupabaseAnonKey, cfg.SupabaseServiceRoleKey, cfg.SupabaseTimeout)
		if err != nil {
			return nil, fmt.Errorf("failed to init supabase client: %w", err)
		}
		log.Info("Using hosted backend", "url", cfg.SupabaseURL)
		return &authBackend{
			provider: supabase.NewAuthProvider(client, cfg.SupabaseJWTSecret),
			stores:   supabase.NewTables(client).Stores(),
			close:    func() error { return nil },
		}, nil
	}

	db, err := database.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	log.Info("Database connection established", "type", cfg.DatabaseType)

	results, err := db.RunMigrations(ctx)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	for _, r := range results {
		log.Info("Migration applied", "file", r.Filename)
	}

	users := repository.NewUserRepository(db)
	provider := repository.NewAuthProvider(users, security.NewTokenSigner(cfg.JWTSecret, "aitutor"), cfg.SessionDuration)
	return &authBackend{
		provider: provider,
		stores:   repository.Stores(db),
		cleanup:  provider.CleanupExpiredSessions,
		close:    db.Close,
	}, nil
}

func openGoalStore(ctx context.Context, cfg *config.Config, log *logger.Logger, g *errgroup.Group) (goalstore.Store, error) {
	if cfg.RedisAddr != "" {
		store, err := goalstore.NewRedisStore(ctx, log, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.TempGoalsTTL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect goal cache: %w", err)
		}
		return store, nil
	}

	store := goalstore.NewMemoryStore(cfg.TempGoalsTTL)
	g.Go(func() error {
		ticker := time.NewTicker(cleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				if n := store.Sweep(); n > 0 {
					log.Debug("Expired temp goals swept", "visitors", n)
				}
			}
		}
	})
	return store, nil
}

// cleanupExpiredSessions periodically removes expired sessions
func cleanupExpiredSessions(ctx context.Context, log *logger.Logger, cleanup func(context.Context) (int64, error)) {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := cleanup(ctx)
			if err != nil {
				log.Warn("Error cleaning up expired sessions", "error", err.Error())
				continue
			}
			log.Info("Expired sessions cleaned up", "count", n)
		}
	}
}
