package main

import (
	"context"
	"log"
	"os"
	"strconv"
	"time"

	"assignportal/internal/database"
	"assignportal/internal/repository"
	"assignportal/internal/storage"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}
	uploadRoot := os.Getenv("UPLOAD_ROOT")
	if uploadRoot == "" {
		uploadRoot = "./uploads"
	}
	minAge := time.Hour
	if v := os.Getenv("CLEANUP_MIN_AGE"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			log.Fatalf("invalid CLEANUP_MIN_AGE: %v", err)
		}
		minAge = d
	}
	dryRun, _ := strconv.ParseBool(os.Getenv("CLEANUP_DRY_RUN"))

	db, err := database.Connect(databaseURL)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}
	store, err := storage.NewLocal(uploadRoot)
	if err != nil {
		log.Fatalf("storage: %v", err)
	}

	known, err := repository.NewSubmissionRepository(db).AllFilePaths(context.Background())
	if err != nil {
		log.Fatalf("load file rows failed: %v", err)
	}

	rep, err := store.Sweep(known, time.Now().Add(-minAge), dryRun)
	if err != nil {
		log.Fatalf("sweep failed: %v", err)
	}
	for _, p := range rep.MissingObjects {
		log.Printf("storage_inconsistency path=%s reason=missing_object", p)
	}
	log.Printf("storage cleanup completed: scanned=%d orphans=%d removed=%d missing=%d dry_run=%t",
		rep.Scanned, len(rep.Orphans), rep.Removed, len(rep.MissingObjects), dryRun)
}
