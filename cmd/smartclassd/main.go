package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/smartclass/smartclassd/internal/observability"
	"github.com/smartclass/smartclassd/internal/profile"
	"github.com/smartclass/smartclassd/plugin/ai"
	"github.com/smartclass/smartclassd/plugin/rag"
	"github.com/smartclass/smartclassd/server"
	"github.com/smartclass/smartclassd/server/service/content"
	"github.com/smartclass/smartclassd/store/cache"
	"github.com/smartclass/smartclassd/store/db/sqlite"
)

const version = "0.4.1"

var rootCmd = &cobra.Command{
	Use:     "smartclassd",
	Short:   "Content delivery service for AI-generated lessons",
	Version: version,
	RunE: func(_ *cobra.Command, _ []string) error {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		prof := &profile.Profile{
			Mode:    viper.GetString("mode"),
			Addr:    viper.GetString("addr"),
			Port:    viper.GetInt("port"),
			Data:    viper.GetString("data"),
			Debug:   viper.GetBool("debug"),
			Version: version,
		}
		prof.FromEnv()
		if err := prof.Validate(); err != nil {
			return err
		}

		logger := observability.NewLogger(prof.Debug)
		slog.SetDefault(logger)
		logger.Info("starting smartclassd",
			slog.String("version", version),
			slog.String("mode", prof.Mode))

		var mirror cache.Mirror
		var sqliteMirror *sqlite.Mirror
		if prof.DSN != "" {
			m, err := sqlite.NewMirror(prof.DSN)
			if err != nil {
				// The in-memory cache is the source of truth; run without
				// durability rather than refusing to start.
				logger.Warn("cache mirror unavailable, running in-memory only",
					slog.String("dsn", prof.DSN),
					slog.String("error", err.Error()))
			} else {
				mirror = m
				sqliteMirror = m
				defer m.Close()
			}
		}

		store := cache.New(cache.Config{
			Capacity:      prof.CacheMaxEntries,
			DefaultTTL:    prof.CacheDefaultTTL,
			SweepInterval: prof.SweepInterval,
			Mirror:        mirror,
			Logger:        logger,
		})
		defer store.Close()

		if sqliteMirror != nil {
			if events, err := sqliteMirror.Load(ctx); err != nil {
				logger.Warn("failed to load mirrored cache entries", slog.String("error", err.Error()))
			} else if n := store.Warm(ctx, events); n > 0 {
				logger.Info("cache warmed from mirror", slog.Int("entries", n))
			}
		}

		generator := ai.NewClient(ai.Config{
			BaseURL: prof.AIBaseURL,
			APIKey:  prof.AIAPIKey,
			Model:   prof.AIModel,
			Timeout: prof.AITimeout,
		})
		retriever := rag.NewClient(rag.Config{
			BaseURL:        prof.RetrievalBaseURL,
			CollectionName: prof.CollectionName,
			Timeout:        prof.RetrievalTimeout,
		})

		contentService := content.NewService(store, generator, retriever, logger, content.Config{
			DefaultTTL: prof.CacheDefaultTTL,
			ShortTTL:   prof.CacheShortTTL,
			HealthTTL:  prof.HealthTTL,
		})

		// Warm configured subject/grade pairs in the background. Best
		// effort: preload failures are logged inside and never block
		// startup or requests.
		if targets := content.ParsePreloadTargets(prof.PreloadTargets); len(targets) > 0 {
			go contentService.Preload(ctx, targets)
		}

		srv := server.NewServer(prof, contentService, logger)

		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		go func() {
			<-sig
			logger.Info("shutting down")
			srv.Shutdown(context.Background())
			cancel()
		}()

		return srv.Start(ctx)
	},
}

func init() {
	rootCmd.PersistentFlags().String("mode", "dev", `mode of the server, can be "prod" or "dev"`)
	rootCmd.PersistentFlags().String("addr", "", "binding address for the server")
	rootCmd.PersistentFlags().Int("port", 8080, "binding port for the server")
	rootCmd.PersistentFlags().String("data", "", "data directory for the durable cache mirror")
	rootCmd.PersistentFlags().Bool("debug", false, "enable verbose logging")

	for _, flag := range []string{"mode", "addr", "port", "data", "debug"} {
		if err := viper.BindPFlag(flag, rootCmd.PersistentFlags().Lookup(flag)); err != nil {
			panic(err)
		}
	}
	viper.SetEnvPrefix("smartclass")
	viper.AutomaticEnv()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
