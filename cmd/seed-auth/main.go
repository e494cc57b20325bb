// Command seed-auth is the authenticated seeding variant: it logs in with the
// configured admin credentials and attaches the bearer token to every create.
// It prefers the Windows-specific seed file when present and accepts 200 as
// well as 201 from the server. The discovery endpoint differs from the
// unauthenticated variant's; the difference is kept on purpose.
package main

import (
	"context"
	"errors"
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

	logger := config.NewLogger(cfg.Logging).With("run_id", uuid.New().String())

	ctx := context.Background()
	nms := client.New(cfg.Server.URL, logger)

	logger.Info("Waiting for server to start", "url", cfg.Server.URL)
	if err := nms.WaitReady(ctx, client.LoginPath, cfg.Readiness.Attempts, cfg.Readiness.GetInterval()); err != nil {
		logger.Error("Server failed to start", "error", err)
		os.Exit(1)
	}
	logger.Info("Server is up")

	if err := nms.Login(ctx, cfg.Auth.Username, cfg.Auth.Password); err != nil {
		var apiErr *client.APIError
		if errors.As(err, &apiErr) {
			logger.Error("Login failed", "status", apiErr.StatusCode, "body", apiErr.Body)
		} else {
			logger.Error("Login failed", "error", err)
		}
		os.Exit(1)
	}

	input := *inputFile
	if input == "" {
		input, err = seed.Resolve(cfg.Input.WindowsFile, cfg.Input.File)
		if err != nil {
			logger.Error("Failed to locate seed file", "error", err)
			os.Exit(1)
		}
	}

	items, err := seed.Load(input)
	if err != nil {
		logger.Error("Failed to load seed file", "error", err)
		os.Exit(1)
	}
	logger.Info("Seed file loaded", "file", input, "items", len(items))

	runner := seeder.New(nms, logger, seeder.Options{
		DiscoveryPath:  client.DiscoveryProfilesPath,
		AcceptStatuses: []int{http.StatusOK, http.StatusCreated},
		InputFile:      input,
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
