// Package entrypoint wires the application together and runs the HTTP
// server.
package entrypoint

import (
	"context"
	"encoding/hex"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yaneduardo117/Biblioteca-escolar/internal/auth"
	"github.com/yaneduardo117/Biblioteca-escolar/internal/catalog"
	"github.com/yaneduardo117/Biblioteca-escolar/internal/config"
	"github.com/yaneduardo117/Biblioteca-escolar/internal/database"
	"github.com/yaneduardo117/Biblioteca-escolar/internal/database/books"
	"github.com/yaneduardo117/Biblioteca-escolar/internal/database/users"
	http_controllers "github.com/yaneduardo117/Biblioteca-escolar/internal/http"
	"github.com/yaneduardo117/Biblioteca-escolar/internal/lending"
	"github.com/yaneduardo117/Biblioteca-escolar/internal/scheduler"
	"github.com/yaneduardo117/Biblioteca-escolar/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

// Serve runs the HTTP server until SIGINT/SIGTERM, then shuts down
// gracefully within the configured timeout.
func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		log.Printf("Starting server at %s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Stop background work before refusing connections
	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}

// Run wires every component and starts serving.
func Run(cfg *config.Config, version string) {
	log.Printf("Starting Biblioteca Escolar v%s", version)

	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	bookRepo := books.NewRepository(db.DB)
	userRepo := users.NewRepository(db.DB)
	catalogService := catalog.NewService(bookRepo)
	engine := lending.NewEngine(db.DB, lending.Config{
		LoanPeriodDays:  cfg.Lending.LoanPeriodDays,
		ReservationHold: cfg.Lending.ReservationHold,
	})

	// Task queue
	var taskClient *tasks.Client
	var taskCtxCancel context.CancelFunc
	if cfg.Tasks.Enabled {
		taskCfg := tasks.Config{
			Workers:         cfg.Tasks.Workers,
			ReleaseAfter:    cfg.Tasks.ReleaseAfter,
			CleanupInterval: cfg.Tasks.CleanupInterval,
		}

		taskClient, err = tasks.NewClient(cfg.Database.Path, taskCfg)
		if err != nil {
			log.Fatalf("Failed to initialize task queue: %v", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Printf("Error closing task client: %v", err)
			}
		}()

		taskClient.Register(
			tasks.NewSweepReservationsQueue(engine),
			tasks.NewCleanupOrphanAuthorsQueue(bookRepo),
		)

		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		go taskClient.Start(taskCtx)
	}

	// Periodic reservation sweep
	sweepScheduler := scheduler.NewSweepScheduler(engine, taskClient, cfg.Sweep)
	if err := sweepScheduler.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start reservation sweep scheduler: %v", err)
	}

	// Authentication
	authService := auth.NewService(userRepo, cfg.Auth)

	sqlDB, err := db.DB.DB()
	if err != nil {
		log.Fatalf("Failed to get SQL DB for sessions: %v", err)
	}

	sessionManager, err := auth.NewSessionManager(sqlDB, cfg.Auth)
	if err != nil {
		log.Fatalf("Failed to initialize session manager: %v", err)
	}

	authMiddleware := auth.NewMiddleware(authService, sessionManager)

	rateLimiter := auth.NewRateLimiter(auth.RateLimitConfig{
		MaxAttempts:     cfg.Auth.MaxLoginAttempts,
		WindowDuration:  cfg.Auth.RateLimitWindow,
		LockoutDuration: cfg.Auth.LockoutDuration,
	})

	var csrfSecret []byte
	if cfg.Auth.SessionSecret != "" {
		csrfSecret, err = hex.DecodeString(cfg.Auth.SessionSecret)
		if err != nil {
			// Not hex, use as raw bytes
			csrfSecret = []byte(cfg.Auth.SessionSecret)
		}
	} else {
		secret, err := auth.GenerateSessionSecret()
		if err != nil {
			log.Fatalf("Failed to generate CSRF secret: %v", err)
		}
		csrfSecret, _ = hex.DecodeString(secret)
		log.Printf("Generated session secret (set AUTH_SESSION_SECRET to persist)")
	}

	hasUsers, _ := authService.HasUsers()
	if !hasUsers {
		log.Printf("No users found. Run '%s createadmin' to create an administrator account.", os.Args[0])
	}

	routerCfg := http_controllers.RouterConfig{
		Database:       db,
		Books:          bookRepo,
		Users:          userRepo,
		Catalog:        catalogService,
		Lending:        engine,
		TaskClient:     taskClient,
		AuthService:    authService,
		SessionManager: sessionManager,
		AuthMiddleware: authMiddleware,
		RateLimiter:    rateLimiter,
		CSRFSecret:     csrfSecret,
		SecureCookies:  cfg.Auth.SecureCookies,
		TemplatesPath:  cfg.UI.TemplatesPath,
		StaticPath:     cfg.UI.StaticPath,
		Version:        version,
	}

	router := http_controllers.NewRouter(routerCfg)

	onShutdown := func(ctx context.Context) {
		sweepScheduler.Stop()
		rateLimiter.Stop()
		if taskClient != nil && taskCtxCancel != nil {
			taskClient.Stop(ctx)
			taskCtxCancel()
		}
	}

	Serve(router, cfg, onShutdown)
}
