package main

import (
	"context"
	"flag"
	"log"

	"safewatch/internal/cache"
	"safewatch/internal/config"
	"safewatch/internal/db"
	"safewatch/internal/model"
	"safewatch/internal/repository"
	"safewatch/internal/service"
)

func main() {
	resolverName := flag.String("resolver", "Health_Department", "resolver account username")
	resolverPass := flag.String("resolver-password", "health123", "resolver account password")
	adminName := flag.String("admin", "", "admin account username (empty to skip)")
	adminPass := flag.String("admin-password", "", "admin account password")
	flag.Parse()

	log.Println("Starting seed script...")

	cfg := config.Load()

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("Connected to database")

	if err := gormDB.AutoMigrate(&model.User{}); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations completed")

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	users := service.NewUserService(repository.NewUserRepository(gormDB), cacheClient)
	ctx := context.Background()

	created, err := users.EnsureUser(ctx, *resolverName, *resolverPass, model.RoleResolver)
	if err != nil {
		log.Fatalf("Failed to seed resolver %q: %v", *resolverName, err)
	}
	if created {
		log.Printf("Resolver user %q created", *resolverName)
	} else {
		log.Printf("Resolver user %q already exists, skipping", *resolverName)
	}

	if *adminName != "" {
		if *adminPass == "" {
			log.Fatal("admin-password is required when admin is set")
		}
		created, err := users.EnsureUser(ctx, *adminName, *adminPass, model.RoleAdmin)
		if err != nil {
			log.Fatalf("Failed to seed admin %q: %v", *adminName, err)
		}
		if created {
			log.Printf("Admin user %q created", *adminName)
		} else {
			log.Printf("Admin user %q already exists, skipping", *adminName)
		}
	}

	log.Println("Seed completed successfully!")
}
