package main

import (
	"log/slog"
	"path/filepath"

	"github.com/Veraticus/spendscore/internal/api"
	"github.com/Veraticus/spendscore/internal/certs"
	"github.com/Veraticus/spendscore/internal/importer"
	"github.com/Veraticus/spendscore/internal/reporting"
	"github.com/spf13/cobra"
)

func serveCmd() *cobra.Command {
	var (
		addr     string
		mode     string
		useTLS   bool
		certDir  string
		tlsHosts []string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Serve the SpendScore HTTP API. Endpoints live under /api: health, spend-score,
upload and reports. With --tls a self-signed certificate is generated
and reused. The server shuts down gracefully on interrupt.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			settings, err := loadSettings()
			if err != nil {
				return err
			}
			if addr == "" {
				addr = settings.ServerAddr
			}
			if mode == "" {
				mode = settings.ServerMode
			}

			return withService(ctx, func(svc *reporting.Service) error {
				loader := importer.NewLoader(
					importer.WithMaxBytes(settings.MaxUploadBytes),
					importer.WithWorkers(settings.ImportWorkers),
				)
				cfg := api.Config{
					Mode:           mode,
					MaxUploadBytes: settings.MaxUploadBytes,
				}
				if useTLS {
					dir := certDir
					if dir == "" {
						dir = filepath.Join(filepath.Dir(settings.DatabasePath), "certs")
					}
					cfg.Certificates = certs.NewFileManager(dir, tlsHosts...)
				}
				server := api.NewServer(svc, loader, cfg, slog.Default().With("component", "api"))

				slog.Info("Starting API server", "addr", addr, "mode", mode, "database", settings.DatabasePath)
				return server.Run(ctx, addr)
			})
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default: server.addr, :8000)")
	cmd.Flags().StringVar(&mode, "mode", "", "gin mode: debug, release or test")
	cmd.Flags().BoolVar(&useTLS, "tls", false, "serve HTTPS with a self-signed certificate")
	cmd.Flags().StringVar(&certDir, "cert-dir", "", "certificate directory (default: certs/ next to the database)")
	cmd.Flags().StringSliceVar(&tlsHosts, "tls-host", nil, "extra host names or IPs for the certificate")

	return cmd
}
