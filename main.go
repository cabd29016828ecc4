package main

import (
	"log"

	api "mailwiki-backend/cmd/api"
	authdomain "mailwiki-backend/internal/auth/domain"
	authRepo "mailwiki-backend/internal/auth/repository"
	authUsecase "mailwiki-backend/internal/auth/usecase"
	"mailwiki-backend/internal/notification"
	syncdomain "mailwiki-backend/internal/sync/domain"
	syncRepo "mailwiki-backend/internal/sync/repository"
	"mailwiki-backend/internal/sync/scheduler"
	syncUsecase "mailwiki-backend/internal/sync/usecase"
	"mailwiki-backend/pkg/config"
	"mailwiki-backend/pkg/cosense"
	"mailwiki-backend/pkg/database"
	"mailwiki-backend/pkg/gmail"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.NewPostgresConnection(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Auto-migrate database schemas
	if err := db.AutoMigrate(&authdomain.User{}, &authdomain.RefreshToken{}, &authdomain.UserConfig{}, &syncdomain.ImportRecord{}); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// Initialize repositories (dependency injection)
	userRepo := authRepo.NewUserRepository(db)
	userConfigRepo := authRepo.NewUserConfigRepository(db)
	importRecordRepo := syncRepo.NewImportRecordRepository(db)

	// Initialize external services
	gmailService := gmail.NewService()
	cosenseClient := cosense.NewClient()
	notifyService := notification.NewService()

	// Initialize use cases (dependency injection)
	authUsecaseInstance := authUsecase.NewAuthUsecase(userRepo, userConfigRepo, cfg)
	syncUsecaseInstance := syncUsecase.NewSyncUsecase(
		authUsecaseInstance,
		importRecordRepo,
		gmailService,
		cosenseClient,
		notifyService,
		cfg.SyncBatchLimit,
	)

	// Start the in-process scheduler when an interval is configured.
	// Deployments using an external cron hit /api/cron/sync instead.
	if cfg.SyncInterval > 0 {
		syncScheduler := scheduler.NewSyncScheduler(syncUsecaseInstance, cfg.SyncInterval)
		syncScheduler.Start()
		defer syncScheduler.Stop()
	}

	// Initialize HTTP handler
	handler := api.NewHandler(authUsecaseInstance, syncUsecaseInstance, cfg)

	log.Printf("Server starting on port %s", cfg.Port)
	if err := handler.Start(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
