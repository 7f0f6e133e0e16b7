package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	chiTransport "github.com/kailas-cloud/circulars/internal/transport/chi"
	"github.com/kailas-cloud/circulars/internal/usecase/chat"
	healthuc "github.com/kailas-cloud/circulars/internal/usecase/health"
	"github.com/kailas-cloud/circulars/internal/version"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP question answering API",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "listen port (default http.port)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	a, err := bootstrap(ctx, true)
	if err != nil {
		return err
	}
	defer a.close()

	port := a.cfg.HTTP.Port
	if servePort > 0 {
		port = servePort
	}

	a.logger.Info("Starting circulars API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", a.env),
		zap.Int("http_port", port),
		zap.String("cache_driver", a.cfg.Cache.Driver),
	)

	p, err := a.pipeline()
	if err != nil {
		return err
	}

	chatSvc := chat.New(p.answers, a.sessions(), a.cfg.Chat.HistoryTurns)

	// Pass a nil interface, not a typed nil pointer, when no cache is configured.
	var cache healthuc.CachePinger
	if a.store != nil {
		cache = a.store
	}
	healthSvc := healthuc.New(p.corpus, p.embedder, p.generator, cache)

	server := chiTransport.NewServer(chatSvc, p.retrieval, healthSvc, a.logger)

	addr := fmt.Sprintf(":%d", port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      server.Router(),
		ReadTimeout:  time.Duration(a.cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(a.cfg.HTTP.WriteTimeoutSec) * time.Second,
		BaseContext:  func(_ net.Listener) context.Context { return a.context(context.Background()) },
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
		a.logger.Info("Received shutdown signal")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(a.cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("Error during shutdown", zap.Error(err))
		return fmt.Errorf("shutdown: %w", err)
	}

	a.logger.Info("Server stopped gracefully")
	return nil
}
