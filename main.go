package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/robertofernandezmartinez/ai-corporate-suite/internal/config"
	"github.com/robertofernandezmartinez/ai-corporate-suite/internal/container"
	"github.com/robertofernandezmartinez/ai-corporate-suite/internal/errors"
	"github.com/robertofernandezmartinez/ai-corporate-suite/internal/migration"
	"github.com/robertofernandezmartinez/ai-corporate-suite/ui"
)

// initDatabase initializes the PostgreSQL database connection
func initDatabase(appConfig *config.Config) (*sqlx.DB, error) {
	if appConfig.Database.URL == "" {
		return nil, errors.ConfigInvalid("DATABASE_URL is required")
	}

	db, err := sqlx.Connect("postgres", appConfig.Database.URL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to database")
	}

	if err := db.Ping(); err != nil {
		return nil, errors.Wrap(err, "failed to ping database")
	}

	migrator := migration.NewRunner()
	if err := migrator.Run(context.Background(), db); err != nil {
		return nil, errors.Wrap(err, "database migration failed")
	}

	return db, nil
}

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	gin.SetMode(appConfig.Server.GinMode)

	db, err := initDatabase(appConfig)
	if err != nil {
		log.Fatal("Failed to initialize database:", err)
	}
	defer db.Close()

	appContainer, err := container.New(appConfig)
	if err != nil {
		log.Fatalf("Failed to create application container: %v", err)
	}

	if err := appContainer.InitWithDatabase(db); err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}

	// Operations sidecar on its own port
	ops := ui.NewOpsApp(appContainer.Registry, appContainer.Store)
	go func() {
		if err := ops.Start(":" + appConfig.Server.OpsPort); err != nil {
			log.Printf("Ops endpoint stopped: %v", err)
		}
	}()

	server := ui.NewServer(appContainer.Pipeline, appContainer.Registry, appContainer.Store)
	log.Printf("Starting prediction server on port %s", appConfig.Server.Port)
	log.Fatal(server.Start(":" + appConfig.Server.Port))
}
