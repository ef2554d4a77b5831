// Command svcd hosts one in-memory repository over HTTP.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"svc/internal/api"
	"svc/internal/config"
	"svc/internal/content"
	"svc/internal/fsys"
	"svc/internal/journal"
	"svc/internal/logging"
	"svc/internal/middleware"
	"svc/internal/service"
	"svc/internal/storage"
	"svc/internal/watch"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

var configPath string

var rootCmd = &cobra.Command{
	Use:   "svcd",
	Short: "svcd serves a single in-memory repository",
	Long: `svcd keeps one commit graph in memory and exposes it over a JSON API.
Tracked file names are relative to the configured workdir. The graph is lost
when the daemon exits; the commit journal is an audit log only.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		return run(cmd.Context(), cfg)
	},
}

func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "", "config file (default ./svc.{json,yaml,toml})")
}

func run(ctx context.Context, cfg *config.Config) error {
	logger, err := logging.NewLogger(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer logger.Sync()

	db, err := storage.Open(cfg.Journal.Path)
	if err != nil {
		return err
	}
	defer db.Close()

	j, err := journal.New(db, cfg.Journal.CacheSize)
	if err != nil {
		return fmt.Errorf("opening journal: %w", err)
	}

	opts := content.DefaultOptions()
	opts.MinSize = cfg.Content.MinSize
	opts.Level = cfg.Content.Level
	codec, err := content.NewCodec(opts)
	if err != nil {
		return fmt.Errorf("initializing codec: %w", err)
	}
	defer codec.Close()

	svcOpts := service.Options{
		Logger:  logger.Logger,
		Codec:   codec,
		Journal: j,
	}
	if cfg.Watch {
		w, err := watch.New(cfg.Workdir, logger.Named("watch"))
		if err != nil {
			return fmt.Errorf("starting watcher: %w", err)
		}
		defer w.Close()
		svcOpts.Watcher = w
	}
	svc := service.New(fsys.NewOS(cfg.Workdir), svcOpts)

	mux := http.NewServeMux()
	api.NewHandler(svc, logger).Register(mux)
	handler := middleware.Chain(
		mux,
		middleware.LimitBody(maxBodyBytes),
		middleware.Recover(logger),
		middleware.Logger(logger),
		middleware.RequestID,
	)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() {
		logger.Info("starting server",
			zap.String("address", srv.Addr),
			zap.String("workdir", cfg.Workdir),
			zap.Bool("watch", cfg.Watch),
			zap.String("environment", cfg.Environment),
		)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		log.Println(err)
		os.Exit(1)
	}
}
