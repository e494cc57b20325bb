// Command mock-nms runs the in-memory NMS stand-in, for exercising the
// seeder binaries without a real server.
package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/nmslite/seeder/internal/nmsmock"
)

func main() {
	addr := flag.String("addr", ":8080", "listen address")
	requireAuth := flag.Bool("require-auth", false, "require bearer tokens on /api/v1 routes")
	username := flag.String("username", envOr("NMS_ADMIN_USER", "admin"), "admin username")
	password := flag.String("password", envOr("ADMIN_PASSWORD", "admin"), "admin password")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	srv, err := nmsmock.NewServer(nmsmock.Options{
		RequireAuth: *requireAuth,
		Username:    *username,
		Password:    *password,
	}, logger)
	if err != nil {
		log.Fatalf("Failed to initialize mock server: %v", err)
	}

	fmt.Println("Starting mock NMS server...")
	fmt.Println("  POST /login")
	fmt.Println("  GET  /api/v1/credentials")
	fmt.Println("  POST /api/v1/credentials")
	fmt.Println("  POST /api/v1/discovery")
	fmt.Println("  POST /api/v1/discovery_profiles")

	logger.Info("Mock NMS listening", "addr", *addr, "require_auth", *requireAuth)
	if err := srv.Start(*addr); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
