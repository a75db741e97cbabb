package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logger"
	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/common/webapi"
	"go.uber.org/zap"

	"github.com/xxxsen/notetool/internal/config"
	"github.com/xxxsen/notetool/internal/db"
	"github.com/xxxsen/notetool/internal/filestore"
	"github.com/xxxsen/notetool/internal/handler"
	"github.com/xxxsen/notetool/internal/job"
	"github.com/xxxsen/notetool/internal/middleware"
	"github.com/xxxsen/notetool/internal/remotestore"
	"github.com/xxxsen/notetool/internal/repo"
	"github.com/xxxsen/notetool/internal/schedule"
	"github.com/xxxsen/notetool/internal/service"
)

func newServeCmd() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "run the note store server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if configPath == "" {
				return fmt.Errorf("--config is required")
			}
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			logger.Init(
				cfg.LogConfig.File,
				cfg.LogConfig.Level,
				int(cfg.LogConfig.FileCount),
				int(cfg.LogConfig.FileSize),
				int(cfg.LogConfig.KeepDays),
				cfg.LogConfig.Console,
			)
			logutil.GetLogger(context.Background()).Info("config loaded", zap.String("config", configPath))

			backend, closeBackend, err := openBackend(cfg.Store)
			if err != nil {
				return err
			}
			defer closeBackend()
			return runServer(cfg, backend)
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "path to config.json")
	return cmd
}

func openBackend(cfg config.StoreConfig) (remotestore.Backend, func(), error) {
	if cfg.Type == "memory" {
		return remotestore.NewMemoryBackend(), func() {}, nil
	}
	sqlDB, err := db.Open(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("open db: %w", err)
	}
	if err := db.ApplyMigrations(sqlDB); err != nil {
		_ = sqlDB.Close()
		return nil, nil, fmt.Errorf("migrations: %w", err)
	}
	nodes := repo.NewNodeRepo(sqlDB, cfg.Driver)
	ttl := time.Duration(cfg.CacheTTLSeconds) * time.Second
	return remotestore.NewSQLBackend(nodes, cfg.CacheSize, ttl), func() { _ = sqlDB.Close() }, nil
}

func runServer(cfg *config.Config, backend remotestore.Backend) error {
	logutil.GetLogger(context.Background()).Info(
		"starting server",
		zap.Int("port", cfg.Port),
		zap.String("store", cfg.Store.Type),
		zap.String("driver", cfg.Store.Driver),
		zap.Bool("backup", cfg.Backup.Enabled),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	local := remotestore.NewLocal(backend)
	store := service.NewStoreService(local)
	deps := handler.RouterDeps{
		Entries:    handler.NewEntryHandler(store),
		Scalars:    handler.NewScalarHandler(store),
		Watch:      handler.NewWatchHandler(store, cfg.CORSAllowlist),
		WriteLimit: time.Duration(cfg.WriteLimitMs) * time.Millisecond,
	}

	if cfg.Backup.Enabled {
		files, err := filestore.New(cfg.Backup.FileStore)
		if err != nil {
			return fmt.Errorf("init backup file store: %w", err)
		}
		scheduler := schedule.NewCronScheduler()
		if err := scheduler.AddJob(job.NewBackupJob(backend, files), cfg.Backup.Spec); err != nil {
			return err
		}
		scheduler.Start(ctx)
		defer scheduler.Stop()
	}

	addr := fmt.Sprintf("0.0.0.0:%d", cfg.Port)
	engine, err := webapi.NewEngine(
		"/api/v1",
		addr,
		webapi.WithRegister(func(group *gin.RouterGroup) {
			handler.RegisterRoutes(group, deps)
		}),
		webapi.WithExtraMiddlewares(
			middleware.CORS(cfg.CORSAllowlist),
			gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPathsRegexs([]string{`/watch/`})),
		),
	)
	if err != nil {
		return fmt.Errorf("init web engine: %w", err)
	}
	logutil.GetLogger(context.Background()).Info("http server listening", zap.String("addr", addr))

	go func() {
		if err := engine.Run(); err != nil && err != http.ErrServerClosed {
			logutil.GetLogger(context.Background()).Error("server error", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logutil.GetLogger(context.Background()).Info("server stopping...")
	return nil
}
