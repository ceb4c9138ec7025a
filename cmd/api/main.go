package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"launch-tracker/internal/config"
	"launch-tracker/internal/database"
	"launch-tracker/internal/logger"
	"launch-tracker/internal/server"

	"github.com/rs/zerolog"
)

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		boot := logger.New("info", true)
		boot.Fatal().Err(err).Msg("Invalid configuration")
	}

	log := logger.New(cfg.LogLevel, cfg.IsDevelopment())

	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("Server stopped with error")
	}
}

func run(cfg config.Config, log zerolog.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout*2)
	db, err := database.Open(ctx, cfg, log)
	cancel()
	if err != nil {
		return err
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := db.Close(ctx); err != nil {
			log.Error().Err(err).Msg("Closing launch store failed")
		}
	}()

	// Create a new server instance
	srv := server.NewServer(cfg, db, log)

	listener, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return err
	}

	errChan := make(chan error, 1)

	go func() {
		log.Info().Str("addr", srv.Addr).Str("store", cfg.StoreDriver).Msg("Server started")
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	// Wait for an interrupt or server error
	select {
	case err := <-errChan:
		return err
	case sig := <-stop:
		log.Info().Str("signal", sig.String()).Msg("Initiating graceful shutdown")

		ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return err
		}

		log.Info().Msg("Server gracefully stopped")
	}
	return nil
}
