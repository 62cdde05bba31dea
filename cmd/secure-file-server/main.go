package main

import (
	"context"
	"crypto/tls"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/Jospin-M/secure-file-server/internal/access"
	"github.com/Jospin-M/secure-file-server/internal/config"
	"github.com/Jospin-M/secure-file-server/internal/fileserver"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"
)

func Run(ctx context.Context) error {

	configPath := flag.String("config", "config.yaml", "path to the configuration file")
	flag.Parse()

	handler := log.NewWithOptions(os.Stdout, log.Options{
		Level:           log.DebugLevel,
		TimeFormat:      time.RFC3339,
		ReportTimestamp: true,
		TimeFunction:    log.NowUTC,
	})

	slog.SetDefault(slog.New(handler))

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Ensure the upload root is absolute for easier debugging.
	uploadRoot, err := filepath.Abs(cfg.UploadRoot)
	if err != nil {
		return fmt.Errorf("failed to resolve upload root: %w", err)
	}

	if err := os.MkdirAll(uploadRoot, 0o755); err != nil {
		return fmt.Errorf("failed to create upload root: %w", err)
	}

	tokens, err := access.LoadTokenStore(cfg.TokenFile)
	if err != nil {
		return fmt.Errorf("failed to load tokens: %w", err)
	}

	owners, err := access.LoadOwnershipStore(cfg.OwnershipFile)
	if err != nil {
		return fmt.Errorf("failed to load ownership records: %w", err)
	}
	defer owners.Close()

	serverCfg := fileserver.Config{
		UploadRoot:      uploadRoot,
		MaxRequestBytes: cfg.MaxRequestBytes,
		MaxFileBytes:    cfg.MaxFileBytes,
	}

	if cfg.TransferLog != "" {
		transfers, err := fileserver.OpenTransferLog(ctx, cfg.TransferLog)
		if err != nil {
			return fmt.Errorf("failed to open transfer log: %w", err)
		}
		defer transfers.Close()
		serverCfg.Transfers = transfers
	}

	if cfg.Mirror.Enabled() {
		mirror, err := fileserver.NewMirror(cfg.Mirror)
		if err != nil {
			return fmt.Errorf("failed to create mirror: %w", err)
		}
		serverCfg.Mirror = mirror
		slog.Info("Mirroring uploads", "bucket", cfg.Mirror.Bucket)
	}

	server, err := fileserver.NewServer(serverCfg, tokens, owners)
	if err != nil {
		return fmt.Errorf("failed to create file server: %w", err)
	}

	router := server.Handler()

	httpServer := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           router,
		ReadHeaderTimeout: 20 * time.Second,
		ReadTimeout:       20 * time.Second,
		WriteTimeout:      20 * time.Second,
	}

	httpsServer := &http.Server{
		TLSConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
		},
		Addr:              cfg.TLSListenAddr,
		Handler:           router,
		ReadHeaderTimeout: 20 * time.Second,
		ReadTimeout:       20 * time.Second,
		WriteTimeout:      20 * time.Second,
	}

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		<-ctx.Done()
		return httpsServer.Shutdown(context.Background())
	})

	eg.Go(func() error {
		<-ctx.Done()
		return httpServer.Shutdown(context.Background())
	})

	eg.Go(func() error {
		if cfg.TLSCertFile == "" || cfg.TLSKeyFile == "" {
			slog.Debug("Skipping HTTPS service because no certificate was provided")
			return nil
		}

		slog.Info("Starting HTTPS server", "addr", cfg.TLSListenAddr)
		err := httpsServer.ListenAndServeTLS(cfg.TLSCertFile, cfg.TLSKeyFile)
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}

		return nil
	})

	eg.Go(func() error {
		slog.Info("Starting HTTP server", "addr", cfg.ListenAddr)
		err := httpServer.ListenAndServe()
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}

		return nil
	})

	slog.Info("Secure file server started", "upload_root", uploadRoot)
	return eg.Wait()
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := Run(ctx); err != nil {
		slog.Error("Server exited with error", "error", err)
		os.Exit(1)
	}
}
