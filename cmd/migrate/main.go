package main

import (
	"context"
	"fmt"

	"github.com/joho/godotenv"

	"github.com/nvoss/agent-chat/internal/config"
	"github.com/nvoss/agent-chat/internal/repository/mongo"
)

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	fmt.Printf("Connecting to MongoDB at %s...\n", cfg.Mongo.URI)

	db, err := mongo.NewDB(context.Background(), cfg.Mongo)
	if err != nil {
		panic(fmt.Sprintf("Failed to connect to MongoDB: %v", err))
	}
	defer db.Close(context.Background())

	fmt.Println("Ensuring indexes...")
	if err := mongo.EnsureIndexes(context.Background(), db.Database()); err != nil {
		panic(fmt.Sprintf("Failed to ensure indexes: %v", err))
	}

	fmt.Println("✅ indexes ensured")
}
