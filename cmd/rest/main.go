package main

import (
	"context"
	"log"

	"clinic-erp-be/internal/bootstrap"
	"clinic-erp-be/internal/config"
	"clinic-erp-be/internal/server"
	"clinic-erp-be/internal/tracer"
	"clinic-erp-be/pkg/database"
)

func main() {
	// 0. Initialize Tracer
	shutdownTracer := tracer.InitTracer()
	defer shutdownTracer(context.Background())

	// 1. Load Configuration
	cfg := config.Load()

	// 2. Initialize Database
	gormDB, err := database.NewGormDB(cfg.Database.Connection)
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}

	// 3. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(gormDB, cfg)
	defer container.Logger.Sync()

	// 4. Start Background Services
	go func() {
		log.Println("Background: Starting cache invalidation loop...")
		if err := container.InvalidationLoop.Run(context.Background()); err != nil {
			log.Printf("Background invalidation loop error: %v", err)
		}
	}()

	// 5. Initialize Server
	srv := server.New(cfg, container)

	// 6. Run Server
	log.Fatal(srv.Run())
}
