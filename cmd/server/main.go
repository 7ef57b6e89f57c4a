// Package main - Entry point for the filmscope API server
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	flag "github.com/spf13/pflag"
	"go.uber.org/zap"

	"filmscope/api"
	"filmscope/internal/config"
	"filmscope/internal/logging"
)

const version = "0.1.0"

func main() {
	addr := flag.String("addr", "", "server address (default from config)")
	configPath := flag.String("config", "", "path to a JSON config file")
	envFile := flag.String("env-file", ".env", "dotenv file to load if present")
	flag.Parse()

	if err := run(*addr, *configPath, *envFile); err != nil {
		fmt.Fprintf(os.Stderr, "filmscope-server: %v\n", err)
		os.Exit(1)
	}
}

func run(addr, configPath, envFile string) error {
	if err := config.LoadDotEnv(envFile); err != nil {
		return err
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if addr != "" {
		cfg.Server.Address = addr
	}
	config.Set(cfg)

	if err := logging.Initialize(cfg.Logging); err != nil {
		return err
	}
	defer logging.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server, closeStore, err := api.NewFromConfig(ctx, version, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeStore(); err != nil {
			logging.Warn("failed to close datastore", zap.Error(err))
		}
	}()

	fmt.Printf("🎬 filmscope API v%s\n", version)
	fmt.Printf("   http://localhost%s\n\n", cfg.Server.Address)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logging.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
