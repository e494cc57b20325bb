// Package seeder drives the per-item seeding loop: for each seed item it
// creates a credential profile, then a discovery profile referencing it.
package seeder

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"

	"github.com/nmslite/seeder/internal/client"
	"github.com/nmslite/seeder/internal/seed"
)

// Options selects the behavior that differs between the two seeder variants.
type Options struct {
	// DiscoveryPath is the discovery profile create endpoint.
	DiscoveryPath string
	// AcceptStatuses are the statuses treated as creation success.
	AcceptStatuses []int
	// InputFile is the seed file path, used only for the profile description.
	InputFile string
}

// Summary reports how a run went. Item failures never abort the run, so the
// caller exits 0 even when Skipped is non-zero.
type Summary struct {
	Total   int
	Created int
	Skipped int
}

// Runner processes seed items sequentially against one NMS server.
type Runner struct {
	client *client.Client
	logger *slog.Logger
	opts   Options
}

// New creates a runner.
func New(c *client.Client, logger *slog.Logger, opts Options) *Runner {
	return &Runner{
		client: c,
		logger: logger,
		opts:   opts,
	}
}

// Run processes items in file order. A non-success status on either create
// skips the remainder of that item and moves on; item i's failure never
// affects item i+1. Anything else (transport failure, success response
// missing its id) aborts the run. There is no rollback: a credential profile
// can be left behind when its discovery create fails.
func (r *Runner) Run(ctx context.Context, items []seed.Item) (Summary, error) {
	summary := Summary{Total: len(items)}
	description := "Imported from " + filepath.Base(r.opts.InputFile)

	for _, item := range items {
		prefix := item.NamePrefix()

		payload, err := item.CredentialPayload()
		if err != nil {
			return summary, err
		}

		r.logger.Info("Creating credential profile", "request_id", prefix, "name", item.CredentialName())
		credID, err := r.client.CreateCredentialProfile(ctx, client.CredentialProfileRequest{
			Name:        item.CredentialName(),
			Description: description,
			Protocol:    seed.ProtocolWinRM,
			Payload:     payload,
		}, r.opts.AcceptStatuses...)
		if err != nil {
			var apiErr *client.APIError
			if errors.As(err, &apiErr) {
				r.logger.Error("Failed to create credential profile",
					"request_id", prefix,
					"status", apiErr.StatusCode,
					"body", apiErr.Body,
				)
				summary.Skipped++
				continue
			}
			return summary, err
		}
		r.logger.Info("Credential profile created", "request_id", prefix, "id", credID)

		r.logger.Info("Creating discovery profile", "request_id", prefix, "name", item.DiscoveryName())
		discID, err := r.client.CreateDiscoveryProfile(ctx, r.opts.DiscoveryPath, client.DiscoveryProfileRequest{
			Name:                item.DiscoveryName(),
			Target:              item.Target,
			Port:                item.Port,
			CredentialProfileID: credID,
			AutoProvision:       true,
			AutoRun:             true,
		}, r.opts.AcceptStatuses...)
		if err != nil {
			var apiErr *client.APIError
			if errors.As(err, &apiErr) {
				r.logger.Error("Failed to create discovery profile",
					"request_id", prefix,
					"status", apiErr.StatusCode,
					"body", apiErr.Body,
				)
				summary.Skipped++
				continue
			}
			return summary, err
		}
		r.logger.Info("Discovery profile created", "request_id", prefix, "id", discID)

		summary.Created++
	}

	return summary, nil
}
