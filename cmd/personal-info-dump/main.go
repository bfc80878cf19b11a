// Command personal-info-dump prints every stored personal-info entry.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/joho/godotenv"

	"github.com/personal-assistant/chatbot/internal/config"
	"github.com/personal-assistant/chatbot/internal/repository"
)

func main() {
	configFile := flag.String("config", os.Getenv("CONFIG_FILE"), "optional YAML config file")
	dbPath := flag.String("db", "", "SQLite database path (overrides configuration)")
	flag.Parse()

	_ = godotenv.Load()
	cfg, err := config.Load(*configFile)
	if err != nil {
		slog.Error("failed to load configuration", "err", err)
		os.Exit(1)
	}
	if *dbPath != "" {
		cfg.Store.Backend = config.BackendSQLite
		cfg.Store.DBPath = *dbPath
	}

	ctx := context.Background()
	store, closeStore, err := repository.Open(ctx, cfg.Store, func(ctx context.Context) (aws.Config, error) {
		return awsconfig.LoadDefaultConfig(ctx)
	})
	if err != nil {
		slog.Error("failed to open personal info store", "err", err)
		os.Exit(1)
	}
	defer func() { _ = closeStore() }()

	entries, err := store.GetAll(ctx)
	if err != nil {
		slog.Error("failed to read personal info", "err", err)
		os.Exit(1)
	}

	fmt.Println("Current values in the personal_info table:")
	for _, e := range entries {
		fmt.Printf("%s: %s\n", e.Key, e.Value)
	}
}
