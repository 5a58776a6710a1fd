package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "safewatch/docs" // swagger docs

	"github.com/labstack/echo/v4"

	"safewatch/internal/auth"
	"safewatch/internal/cache"
	"safewatch/internal/config"
	"safewatch/internal/db"
	"safewatch/internal/handler"
	"safewatch/internal/model"
	"safewatch/internal/repository"
	"safewatch/internal/router"
	"safewatch/internal/service"
)

// @title SafeWatch API
// @version 1.0
// @description Neighborhood safety incident tracker with incident lifecycle, CSV archive, and JWT authentication.
// @host localhost:8080
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg := config.Load()

	e := echo.New()

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("database init: %v", err)
	}

	// Drop tables if RESET_DB environment variable is set
	if os.Getenv("RESET_DB") == "true" {
		log.Println("RESET_DB=true detected, dropping all tables...")
		tables := []interface{}{
			&model.IncidentArchive{},
			&model.Incident{},
			&model.User{},
		}
		for _, table := range tables {
			if err := gormDB.Migrator().DropTable(table); err != nil {
				log.Printf("Warning: Failed to drop table (may not exist): %v", err)
			}
		}
		log.Println("Tables dropped")
	}

	// Run migrations for all models
	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.Incident{},
		&model.IncidentArchive{},
	); err != nil {
		log.Fatalf("auto-migrate: %v", err)
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)

	// Initialize repositories
	userRepo := repository.NewUserRepository(gormDB)
	incidentRepo := repository.NewIncidentRepository(gormDB)
	archiveRepo := repository.NewArchiveRepository(gormDB)

	// Initialize auth components
	jwtService := auth.NewJWTService(cfg.JWTSecret, cfg.TokenTTL)

	// Initialize services
	authService := service.NewAuthService(userRepo, jwtService)
	userService := service.NewUserService(userRepo, cacheClient)
	archiveService := service.NewArchiveService(archiveRepo, cacheClient)
	incidentService := service.NewIncidentService(incidentRepo, userRepo, archiveService, cacheClient)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	incidentHandler := handler.NewIncidentHandler(incidentService)
	archiveHandler := handler.NewArchiveHandler(archiveService)

	// Register routes
	router.Register(
		e,
		cfg,
		authHandler,
		userHandler,
		incidentHandler,
		archiveHandler,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sweeper := service.NewRetentionSweeper(incidentRepo, cacheClient, cfg.RetentionWindow, cfg.SweepInterval)
	sweeper.Start(ctx)
	log.Printf("retention sweeper started (window %s, interval %s)", cfg.RetentionWindow, cfg.SweepInterval)

	go func() {
		addr := ":" + cfg.ServerPort
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server start: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := sweeper.Stop(shutdownCtx); err != nil {
		log.Printf("sweeper stop: %v", err)
	}
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown: %v", err)
	}
}
