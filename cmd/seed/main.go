// Command seed bootstraps an NMS server from a local seed file: it waits for
// the server to come up, then creates a credential profile and a discovery
// profile for every entry of poll_input.json. Individual item failures are
// logged and skipped; only startup failures change the exit code.
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"

	"github.com/google/uuid"
	"github.com/nmslite/seeder/internal/client"
	"github.com/nmslite/seeder/internal/config"
	"github.com/nmslite/seeder/internal/seed"
	"github.com/nmslite/seeder/internal/seeder"
)

func main() {
	configPath := flag.String("config", "seeder.yaml", "path to seeder config file")
	serverURL := flag.String("server", "", "override NMS server base URL")
	inputFile := flag.String("input", "", "override seed input file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *serverURL != "" {
		cfg.Server.URL = *serverURL
	}
	if *inputFile != "" {
		cfg.Input.File = *inputFile
	}

	logger := config.NewLogger(cfg.Logging).With("run_id", uuid.New().String())

	ctx := context.Background()
	nms := client.New(cfg.Server.URL, logger)

	logger.Info("Waiting for server to start", "url", cfg.Server.URL)
	if err := nms.WaitReady(ctx, client.CredentialsPath, cfg.Readiness.Attempts, cfg.Readiness.GetInterval()); err != nil {
		logger.Error("Server failed to start", "error", err)
		os.Exit(1)
	}
	logger.Info("Server is up")

	items, err := seed.Load(cfg.Input.File)
	if err != nil {
		logger.Error("Failed to load seed file", "error", err)
		os.Exit(1)
	}

	runner := seeder.New(nms, logger, seeder.Options{
		DiscoveryPath:  client.DiscoveryPath,
		AcceptStatuses: []int{http.StatusCreated},
		InputFile:      cfg.Input.File,
	})

	summary, err := runner.Run(ctx, items)
	if err != nil {
		logger.Error("Seeding aborted", "error", err)
		os.Exit(1)
	}

	logger.Info("Done processing",
		"total", summary.Total,
		"created", summary.Created,
		"skipped", summary.Skipped,
	)
}
