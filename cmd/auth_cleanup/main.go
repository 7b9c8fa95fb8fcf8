package main

import (
	"context"
	"log"

	"reservehub/internal/config"
	"reservehub/internal/database"
	"reservehub/internal/repository"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}

	deleted, err := repository.NewUserTokenRepository(db).DeleteExpired(context.Background())
	if err != nil {
		log.Fatalf("cleanup user_tokens failed: %v", err)
	}

	log.Printf("auth cleanup completed: user_tokens=%d", deleted)
}
