package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ramonehamilton/rugby-stats/internal/api"
	"github.com/ramonehamilton/rugby-stats/internal/config"
	"github.com/ramonehamilton/rugby-stats/internal/importer"
	"github.com/ramonehamilton/rugby-stats/internal/mcpserver"
	"github.com/ramonehamilton/rugby-stats/internal/version"
)

const shutdownTimeout = 10 * time.Second

func runServe(cfg *config.Config, logger *slog.Logger, args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	port := fs.Int("port", cfg.API.Port, "API server port")
	if err := fs.Parse(args); err != nil {
		os.Exit(2)
	}

	interval, err := cfg.GetRecalculateInterval()
	if err != nil {
		log.Fatalf("Invalid recalculate interval: %v", err)
	}

	svc := openService(cfg, logger)
	defer closeService(svc)

	server := api.NewServer(&api.Config{
		Port:                *port,
		AllowedOrigins:      cfg.API.AllowedOrigins,
		RecalculateInterval: interval,
		Logger:              logger,
	}, svc, importer.New(svc, logger))

	if err := server.Start(); err != nil {
		log.Fatalf("Failed to start API server: %v", err)
	}
	fmt.Printf("API server running at http://localhost:%d/api/v1\n", *port)
	fmt.Println("Press Ctrl+C to stop")

	waitForSignal()

	fmt.Println("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}
	fmt.Println("API server stopped.")
}

func runMCP(cfg *config.Config, logger *slog.Logger, args []string) {
	fs := flag.NewFlagSet("mcp", flag.ExitOnError)
	addr := fs.String("addr", ":8090", "Listen address")
	path := fs.String("path", mcpserver.DefaultPath, "MCP endpoint path")
	if err := fs.Parse(args); err != nil {
		os.Exit(2)
	}

	svc := openService(cfg, logger)
	defer closeService(svc)

	mcp := mcpserver.New(svc, version.GetVersion(), logger)
	httpServer := &http.Server{
		Addr:              *addr,
		Handler:           mcp.Handler(*path),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("MCP server listening", "addr", *addr, "path", *path, "tools", len(mcp.Tools()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("MCP server error: %v", err)
		}
	}()
	fmt.Printf("MCP server running at http://localhost%s%s\n", *addr, *path)
	fmt.Println("Press Ctrl+C to stop")

	waitForSignal()

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}
	fmt.Println("MCP server stopped.")
}

func waitForSignal() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan
	fmt.Println()
}
