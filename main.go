package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mzhyrko/accounts-be/internal/api"
	"github.com/mzhyrko/accounts-be/internal/auth"
	"github.com/mzhyrko/accounts-be/internal/config"
	"github.com/mzhyrko/accounts-be/internal/database"
	"github.com/mzhyrko/accounts-be/internal/logger"
	"github.com/mzhyrko/accounts-be/internal/maintenance"
	"github.com/mzhyrko/accounts-be/internal/services"
)

func main() {
	logger.Init()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Set up database
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to apply database migrations: %v", err)
	}

	// The signing secret is loaded once; the codec owns it from here on.
	codec := auth.NewTokenCodec(cfg.JWTSecret)

	// Set up services
	userService := services.NewUserService(db, codec)
	avatarService, err := services.NewAvatarService(userService, cfg.AvatarsDir, cfg.UploadsDir)
	if err != nil {
		log.Fatalf("Failed to initialize avatar service: %v", err)
	}

	// Set up and run the background upload sweeper
	sweeper, err := maintenance.NewSweeper(cfg.UploadsDir, time.Hour, "@hourly")
	if err != nil {
		log.Fatalf("Failed to initialize upload sweeper: %v", err)
	}
	go sweeper.Run()

	// Set up router
	router := api.NewRouter(codec, userService, avatarService, cfg.AvatarsDir)

	// Set up server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.ServerPort),
		Handler: router,
	}

	// Graceful shutdown
	go func() {
		log.Printf("Server starting on port %d\n", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatalf("ListenAndServe(): %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	sweeper.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting")
}
