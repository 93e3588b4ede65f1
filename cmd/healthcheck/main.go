package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/crowdqueue/crowdqueue/internal/config"
	"github.com/crowdqueue/crowdqueue/internal/database"
	"github.com/crowdqueue/crowdqueue/internal/services"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Connect to database
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close(db)

	// Health check logging would pollute the JSON output; discard it.
	quiet := logrus.New()
	quiet.SetOutput(io.Discard)

	result := services.HealthCheck(cfg, db, quiet)

	// Output result as JSON
	output, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		log.Fatalf("Failed to marshal health check result: %v", err)
	}

	fmt.Println(string(output))

	// Exit with appropriate code
	if result.Status != "healthy" {
		os.Exit(1)
	}
	os.Exit(0)
}
