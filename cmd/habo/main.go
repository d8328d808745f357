package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/dropDatabas3/habo/internal/app"
	"github.com/dropDatabas3/habo/internal/config"
	"github.com/dropDatabas3/habo/internal/observability/logger"
	tokens "github.com/dropDatabas3/habo/internal/security/token"
)

// version se setea con -ldflags "-X main.version=..."
var version = "dev"

func main() {
	// .env es opcional (dev local)
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("warning: loading .env: %v", err)
	}

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		cfgPath string
		addr    string
	)

	serve := func(cmd *cobra.Command, _ []string) error {
		return runServe(cmd.Context(), cfgPath, addr)
	}

	root := &cobra.Command{
		Use:          "habo",
		Short:        "Gateway OIDC + API de Habo Banking",
		SilenceUsage: true,
		RunE:         serve,
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", os.Getenv("CONFIG_PATH"), "YAML de configuración (opcional, env CONFIG_PATH)")
	root.PersistentFlags().StringVar(&addr, "addr", "", "Dirección de escucha (override de PORT/server.addr)")

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Levanta el servidor HTTP (default)",
		RunE:  serve,
	})

	var nBytes int
	genSecret := &cobra.Command{
		Use:   "gen-secret",
		Short: "Genera un secreto aleatorio para SESSION_SECRET",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := tokens.GenerateOpaqueToken(nBytes)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), s)
			return nil
		},
	}
	genSecret.Flags().IntVar(&nBytes, "bytes", tokens.DefaultBytes, "Bytes de entropía")
	root.AddCommand(genSecret)

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Imprime la versión",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	})
	return root
}

func runServe(parent context.Context, cfgPath, addr string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	cfg.App.Version = version
	if addr != "" {
		cfg.Server.Addr = addr
	}

	logger.Init(logger.Config{
		Env:         cfg.App.Env,
		Level:       cfg.Log.Level,
		ServiceName: "habo",
		Version:     version,
	})
	defer func() { _ = logger.Sync() }()
	lg := logger.L()

	if err := cfg.Validate(); err != nil {
		lg.Error("invalid configuration", logger.Err(err))
		return err
	}

	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logger.ToContext(ctx, lg)

	built, cleanup, err := app.Build(ctx, cfg)
	if err != nil {
		lg.Error("wiring failed", logger.Err(err))
		return err
	}
	defer func() {
		if err := cleanup(); err != nil {
			lg.Warn("cleanup error", logger.Err(err))
		}
	}()

	lg.Info("habo gateway starting",
		logger.String("addr", cfg.Server.Addr),
		logger.String("env", cfg.App.Env),
		logger.String("redirect_uri", cfg.RedirectURI()),
		logger.String("frontend", cfg.FrontendURL()),
	)
	return built.ListenAndServe(ctx, cfg.Server.Addr)
}
