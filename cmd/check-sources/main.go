package main

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mentionwatch/dashboard/internal/config"
	"github.com/mentionwatch/dashboard/internal/monitoring"
	"github.com/mentionwatch/dashboard/internal/sources"
	"github.com/mentionwatch/dashboard/internal/storage"
)

func main() {
	fmt.Println("Mentions dashboard - source connectivity check")
	fmt.Println(strings.Repeat("=", 46))

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	store, err := storage.New(cfg)
	if err != nil {
		log.Printf("Storage unavailable, snapshot source disabled: %v", err)
		store = nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	fmt.Printf("\nKeywords: %s\n", strings.Join(cfg.Keywords, ", "))
	fmt.Println(strings.Repeat("-", 46))

	service := monitoring.NewService(cfg, store, nil)
	for _, source := range service.Sources() {
		checkSource(ctx, source, cfg.Keywords)
	}

	fmt.Println("\nSource check completed")
}

func checkSource(ctx context.Context, source sources.Source, keywords []string) {
	fmt.Printf("%-10s ", source.GetName())

	if !source.IsEnabled() {
		fmt.Println("DISABLED (not configured)")
		return
	}

	mentions, err := source.FetchMentions(ctx, keywords, 24*time.Hour)
	if err != nil {
		fmt.Printf("ERROR: %v\n", err)
		return
	}

	fmt.Printf("OK (%d mentions)\n", len(mentions))
	if len(mentions) > 0 {
		fmt.Printf("           sample: %s: %q\n", mentions[0].Author, mentions[0].Content)
	}
}
