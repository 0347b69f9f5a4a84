package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"porosity-hmi/internal/config"
	"porosity-hmi/internal/repository/sqlite"
)

func main() {
	fixturePath := flag.String("fixture", "config/seed.example.json", "JSON fixture with cameras, parts, triggers, images, defects and regions")
	dbPath := flag.String("db", "", "Database path (defaults to database.path from config)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *dbPath == "" {
		*dbPath = cfg.Database.Path
	}

	fx, err := loadFixture(*fixturePath)
	if err != nil {
		log.Fatalf("Failed to read fixture: %v", err)
	}

	fmt.Printf("Seeding %s from %s\n", *dbPath, *fixturePath)

	db, err := sqlite.New(*dbPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	counts, err := seed(context.Background(), db, fx)
	if err != nil {
		log.Fatalf("Failed to seed database: %v", err)
	}

	fmt.Printf("✅ Seeded database\n")
	fmt.Printf("   Cameras:  %d\n", counts.Cameras)
	fmt.Printf("   Parts:    %d\n", counts.Parts)
	fmt.Printf("   Triggers: %d\n", counts.Triggers)
	fmt.Printf("   Images:   %d\n", counts.Images)
	fmt.Printf("   Defects:  %d\n", counts.Defects)
	fmt.Printf("   Regions:  %d\n", counts.Regions)
}
