package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"disasterhub/backend/internal/api"
	"disasterhub/backend/internal/catalog"
	"disasterhub/backend/internal/clock"
	"disasterhub/backend/internal/config"
	"disasterhub/backend/internal/engine"
	"disasterhub/backend/internal/gateway"
	"disasterhub/backend/internal/logging"
	"disasterhub/backend/internal/mcp"
	"disasterhub/backend/internal/registry"
	"disasterhub/backend/internal/status"
	"disasterhub/backend/internal/tls"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "disasterhub-server",
		Short: "Disaster operations hub backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(configPath)
		},
	}
	rootCmd.Flags().StringVar(&configPath, "config", "", "Path to config file")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return err
	}

	logging.Init(cfg.Log.Level, cfg.Log.Pretty)
	log.Info().Str("address", cfg.Server.Address).Msg("Starting disaster operations hub")

	// Core components
	reg := registry.NewWithDefaultFleet()
	cat := catalog.NewWithBuiltins()
	eng := engine.New(cat, clock.System(), cfg.Engine.StartDelay, cfg.Engine.StepDuration)
	defer eng.Stop()
	agg := status.New(reg, eng)
	chat := gateway.New(&http.Client{}, clock.System())

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	srv := api.NewServer(reg, cat, eng, agg, chat, api.ChatConfig{
		Endpoint: cfg.Chat.URL,
		Options: gateway.Options{
			Timeout:    cfg.Chat.Timeout,
			MaxRetries: cfg.Chat.MaxRetries,
			Backoff:    cfg.Chat.Backoff,
		},
	})
	srv.Register(e)
	log.Info().Msg("REST API handlers mounted")

	// Mount MCP protocol handlers
	mcpServer := mcp.NewServer(reg, cat, eng)
	mcpHandlers := http.NewServeMux()
	mcp.MountHTTPHandlers(mcpHandlers, mcpServer.GetMCPServer())
	e.Any("/mcp/*", echo.WrapHandler(mcpHandlers))
	log.Info().Msg("MCP protocol handlers mounted")

	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      e,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Info().Str("address", server.Addr).Bool("tls", cfg.TLS.Enable).Msg("Server starting")
		if cfg.TLS.Enable {
			if cfg.TLS.CertFile == "" || cfg.TLS.KeyFile == "" {
				log.Error().Msg("TLS enabled but cert/key file not provided")
				serverErrors <- server.ListenAndServe()
				return
			}
			// generate if missing and hostnames provided
			if _, err := os.Stat(cfg.TLS.CertFile); os.IsNotExist(err) {
				if len(cfg.TLS.Hostnames) > 0 {
					if err := tls.GenerateSelfSignedCert(cfg.TLS.CertFile, cfg.TLS.KeyFile, cfg.TLS.Hostnames); err != nil {
						log.Error().Err(err).Msg("Failed to generate self-signed cert")
					}
				}
			}
			serverErrors <- server.ListenAndServeTLS(cfg.TLS.CertFile, cfg.TLS.KeyFile)
		} else {
			serverErrors <- server.ListenAndServe()
		}
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return err
		}
	case sig := <-shutdown:
		log.Info().Str("signal", sig.String()).Msg("Shutdown signal received")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			log.Error().Err(err).Msg("Server shutdown error")
			if err := server.Close(); err != nil {
				log.Error().Err(err).Msg("Server close error")
			}
		}

		log.Info().Msg("Server stopped gracefully")
	}

	return nil
}
