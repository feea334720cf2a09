package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/Tomlord1122/doit-backend/internal/auth"
	"github.com/Tomlord1122/doit-backend/internal/config"
	"github.com/Tomlord1122/doit-backend/internal/database"
	"github.com/Tomlord1122/doit-backend/internal/repository"
	"github.com/Tomlord1122/doit-backend/internal/server"
	"github.com/Tomlord1122/doit-backend/internal/service"
	"github.com/Tomlord1122/doit-backend/internal/session"
)

func gracefulShutdown(apiServer *http.Server, dbService database.Service, sessions *session.RedisStore, done chan bool) {
	// Create context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	log.Println("Shutting down gracefully, press Ctrl+C again to force")
	stop()

	// The server has 5 seconds to finish the requests it is handling.
	ctxTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := apiServer.Shutdown(ctxTimeout); err != nil {
		log.Printf("Server forced to shutdown with error: %v", err)
	}

	if sessions != nil {
		if err := sessions.Close(); err != nil {
			log.Printf("Error closing redis client: %v", err)
		}
	}

	if dbService != nil {
		log.Println("Closing database connection pool...")
		if err := dbService.Close(); err != nil {
			log.Printf("Error closing database connection pool: %v", err)
		} else {
			log.Println("Database connection pool closed.")
		}
	}

	log.Println("Server exiting")

	done <- true
}

func main() {
	cfg := config.Load()

	// 1. Database
	dbService, err := database.New(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}

	log.Println("Running database auto-migration...")
	if err := dbService.Migrate(); err != nil {
		log.Fatalf("Failed to auto-migrate database: %v", err)
	}
	log.Println("Database auto-migration complete.")

	// 2. Token revocation, only when redis is configured
	var (
		sessions *session.RedisStore
		revoked  auth.RevocationList
	)
	if cfg.RedisURL != "" {
		sessions, err = session.NewRedisStore(cfg.RedisURL)
		if err != nil {
			log.Fatalf("Failed to connect to redis: %v", err)
		}
		revoked = sessions
		log.Println("Token revocation enabled")
	} else {
		log.Println("REDIS_URL not set, logout will not revoke tokens server side")
	}

	// 3. Repositories
	gormDB := dbService.GetDB()
	userRepo := repository.NewGormUserRepository(gormDB)
	categoryRepo := repository.NewGormCategoryRepository(gormDB)
	todoRepo := repository.NewGormTodoRepository(gormDB)

	// 4. Services
	tokens := auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)
	services := server.Services{
		Auth:       service.NewAuthService(userRepo, tokens, revoked, cfg.SignupEnabled),
		Categories: service.NewCategoryService(categoryRepo),
		Todos:      service.NewTodoService(todoRepo, categoryRepo),
	}

	// 5. Server
	apiServer := server.NewServer(cfg, services, dbService, tokens, revoked)

	done := make(chan bool, 1)
	go gracefulShutdown(apiServer, dbService, sessions, done)

	log.Printf("Starting server on %s", apiServer.Addr)
	err = apiServer.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("HTTP server ListenAndServe error: %v", err)
	}

	<-done
	log.Println("Graceful shutdown complete.")
}
