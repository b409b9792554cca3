package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/makkenzo/feedbackhub-api/internal/config"
	"github.com/makkenzo/feedbackhub-api/internal/embedtoken"
	"github.com/makkenzo/feedbackhub-api/internal/storage/postgres"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "./configs/config.dev.yaml", "Path to configuration file")
	projectID := flag.Int64("project", 0, "Project ID to issue the embed token for")
	ttl := flag.Duration("ttl", 0, "Token lifetime (defaults to embed.ttl)")
	check := flag.Bool("check", true, "Verify the project exists and is active before issuing")
	flag.Parse()

	if *projectID <= 0 {
		log.Fatal("-project is required")
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	if *check {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		pool, err := postgres.NewPgxPool(ctx, &cfg.Database, logger)
		if err != nil {
			log.Fatalf("Unable to connect to database: %v\n", err)
		}
		defer pool.Close()

		p, err := postgres.NewProjectRepository(pool, logger).FindByID(ctx, *projectID)
		if err != nil {
			log.Fatalf("Failed to load project %d: %v", *projectID, err)
		}
		if !p.IsActive {
			log.Fatalf("Project %d is inactive", *projectID)
		}
	}

	key, err := embedtoken.DeriveKey(cfg.Embed.Secret)
	if err != nil {
		log.Fatalf("Failed to derive embed token key: %v", err)
	}

	lifetime := cfg.Embed.TTL
	if *ttl > 0 {
		lifetime = *ttl
	}

	tok, err := embedtoken.NewService(key, embedtoken.WithTTL(lifetime)).IssueToken(strconv.FormatInt(*projectID, 10))
	if err != nil {
		log.Fatalf("Failed to issue embed token: %v", err)
	}

	fmt.Printf("Embed token for project %d (expires %s):\n%s\n", *projectID, tok.ExpiresAt.UTC().Format(time.RFC3339), tok.String())
	if key == nil {
		fmt.Println("\nWARNING: embed.secret is empty, this token is unsigned.")
	}
}
