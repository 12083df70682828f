package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"momentary/internal/bot"
	"momentary/internal/config"
	"momentary/internal/database"
	"momentary/internal/handlers"
	"momentary/internal/repository"
	"momentary/internal/scheduler"
	"momentary/internal/security"
	"momentary/internal/service"
	"momentary/internal/storage"
)

func main() {
	// Load .env if present
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: Failed to load .env: %v", err)
	}

	// Load configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Initialize database (supports sqlite, postgres, mysql)
	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	log.Printf("Database connection established (type: %s)", cfg.DatabaseType)

	// Run migrations
	if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Migrations completed successfully")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize object storage
	store, err := storage.New(ctx, storage.Config{
		Endpoint:  cfg.S3Endpoint,
		AccessKey: cfg.S3AccessKey,
		SecretKey: cfg.S3SecretKey,
		Bucket:    cfg.S3Bucket,
		Region:    cfg.S3Region,
		UseSSL:    cfg.S3UseSSL,
	})
	if err != nil {
		log.Fatalf("Failed to initialize object storage: %v", err)
	}

	// Initialize repositories
	participantRepo := repository.NewParticipantRepository(db)
	photoRepo := repository.NewPhotoRepository(db)
	promptRepo := repository.NewPromptRepository(db)
	banRepo := repository.NewBanRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)
	accountRepo := repository.NewAccountRepository(db)

	// Initialize services
	verifier := security.NewLoginVerifier(cfg.BotToken)
	signer := security.NewSessionSigner(cfg.SessionSecret, cfg.SessionTTL)
	authService := service.NewAuthService(participantRepo, banRepo, settingsRepo, verifier, signer)
	participantService := service.NewParticipantService(participantRepo, photoRepo, banRepo, settingsRepo, promptRepo)
	photoService := service.NewPhotoService(photoRepo, participantRepo, promptRepo, banRepo, store, cfg.CaptureWindow)
	accountService := service.NewAccountService(accountRepo)

	// Initialize Telegram bot
	tgBot, err := bot.New(cfg.BotToken, cfg.OwnerTelegramID, participantService, photoService)
	if err != nil {
		log.Fatalf("Failed to start Telegram bot: %v", err)
	}
	go tgBot.Run(ctx)

	// Start prompt scheduler
	sched := scheduler.New(promptRepo, participantRepo, banRepo, tgBot, cfg.HistoryLimit)
	go sched.Run(ctx)

	// Initialize handlers
	middleware := handlers.NewMiddleware(authService, cfg.CORSAllowOrigins, cfg.CookieSecure)
	authHandler := handlers.NewAuthHandler(authService, participantService, cfg.LoginRedirectURL, cfg.SessionTTL, cfg.CookieSecure)
	photoHandler := handlers.NewPhotoHandler(photoService, cfg.OwnerTelegramID)
	adminHandler := handlers.NewAdminHandler(accountService, cfg.OwnerTelegramID)

	// Setup routes
	mux := http.NewServeMux()

	mux.HandleFunc("GET /auth/telegram/callback", middleware.RateLimit(authHandler.TelegramCallback))
	mux.HandleFunc("POST /auth/logout", authHandler.Logout)
	mux.HandleFunc("GET /me", middleware.RequireSession(authHandler.Me))
	mux.HandleFunc("GET /users/{telegramID}/photos", middleware.RequireSession(photoHandler.ListPhotos))

	// Owner-only admin routes
	mux.HandleFunc("GET /admin/accounts", middleware.RequireSession(adminHandler.RequireOwner(adminHandler.ListAccounts)))
	mux.HandleFunc("POST /admin/accounts", middleware.RequireSession(adminHandler.RequireOwner(adminHandler.CreateAccount)))
	mux.HandleFunc("POST /admin/accounts/{id}/ban", middleware.RequireSession(adminHandler.RequireOwner(adminHandler.SetAccountBanned)))

	// Wrap with CORS and logging middleware
	handler := handlers.Logging(middleware.CORS(mux))

	// Start server
	addr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on http://localhost%s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	<-ctx.Done()

	log.Println("Server shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
}
