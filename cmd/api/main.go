package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/chachabrian/tripguard-backend/internal/config"
	"github.com/chachabrian/tripguard-backend/internal/database"
	"github.com/chachabrian/tripguard-backend/internal/handlers"
	"github.com/chachabrian/tripguard-backend/internal/routes"
	"github.com/chachabrian/tripguard-backend/internal/services"
	"github.com/chachabrian/tripguard-backend/pkg/utils"
	"github.com/gin-gonic/gin"
)

// setupLogFile mirrors the standard logger and gin's request log into a
// dated file under dir.
func setupLogFile(dir string) (io.Closer, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	name := filepath.Join(dir, fmt.Sprintf("tripguard-%s.log", time.Now().Format("2006-01-02")))
	f, err := os.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}
	w := io.MultiWriter(os.Stdout, f)
	log.SetOutput(w)
	gin.DefaultWriter = w
	gin.DefaultErrorWriter = io.MultiWriter(os.Stderr, f)
	return f, nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if cfg.LogDir != "" {
		closer, err := setupLogFile(cfg.LogDir)
		if err != nil {
			log.Fatalf("Failed to open log file: %v", err)
		}
		defer closer.Close()
	}

	// Initialize database
	db, err := database.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	if err := database.RunMigrations(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	deps := &handlers.Deps{
		Store:      database.NewGormStore(db),
		JWTSecret:  cfg.JWT.Secret,
		TokenTTL:   cfg.JWT.TTL,
		BaseURL:    cfg.Server.BaseURL,
		GeofenceKm: cfg.Geofence.DistanceKm,
	}

	// Initialize Redis (optional)
	if cfg.Redis.URL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		cache, err := services.NewTripCache(ctx, cfg.Redis.URL)
		cancel()
		if err != nil {
			log.Printf("Redis initialization warning: %v. Live location cache disabled.", err)
		} else {
			defer cache.Close()
			deps.Locations = cache
		}
	} else {
		log.Println("Warning: REDIS_URL not set. Live location cache disabled.")
	}

	// Initialize Firebase (optional - will log warning if not configured)
	var push services.PushSender
	if cfg.Firebase.ServiceAccountPath != "" {
		pusher, err := services.NewPusher(context.Background(), cfg.Firebase.ServiceAccountPath)
		if err != nil {
			log.Printf("Firebase initialization warning: %v", err)
		} else {
			push = pusher
		}
	} else {
		log.Println("Warning: FIREBASE_SERVICE_ACCOUNT_PATH not set. Push notifications will be disabled.")
	}

	mailer := utils.NewMailer(utils.MailerConfig{
		Host:     cfg.Email.SMTPHost,
		Port:     cfg.Email.SMTPPort,
		From:     cfg.Email.From,
		Password: cfg.Email.Password,
		FromName: cfg.Email.FromName,
	})
	var messenger services.Messenger = services.DisabledMessenger{}
	if cfg.IsWhatsAppConfigured() {
		messenger = utils.NewWhatsAppSender(utils.WhatsAppConfig{
			AccountSID:  cfg.WhatsApp.AccountSID,
			AuthToken:   cfg.WhatsApp.AuthToken,
			From:        cfg.WhatsApp.From,
			CountryCode: cfg.WhatsApp.CountryCode,
		})
	}
	deps.Notifier = services.NewNotifier(mailer, messenger, push)

	// Initialize Storage (S3 or local fallback)
	if cfg.IsS3Configured() {
		deps.Reports, err = services.NewS3Storage(services.S3Config{
			Region:    cfg.Storage.AWSRegion,
			AccessKey: cfg.Storage.AWSAccessKey,
			SecretKey: cfg.Storage.AWSSecretKey,
			Bucket:    cfg.Storage.Bucket,
		})
	} else {
		deps.Reports, err = services.NewLocalStorage(cfg.Storage.LocalDir)
	}
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}

	// Initialize WebSocket hub
	hub := services.NewHub()
	go hub.Run()
	deps.Hub = hub

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      routes.SetupRouter(deps),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Printf("HTTP server listening on :%s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
	hub.Stop()

	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
	log.Println("Server stopped.")
}
