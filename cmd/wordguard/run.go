package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"quillpress/wordguard/pkg/audit"
	"quillpress/wordguard/pkg/audit/retention"
	"quillpress/wordguard/pkg/cli"
	"quillpress/wordguard/pkg/comments"
	"quillpress/wordguard/pkg/config"
	"quillpress/wordguard/pkg/moderation"
	"quillpress/wordguard/pkg/moderation/termstore"
	"quillpress/wordguard/pkg/server"
	"quillpress/wordguard/pkg/telemetry/health"
	"quillpress/wordguard/pkg/telemetry/logging"
	"quillpress/wordguard/pkg/telemetry/metrics"
	"quillpress/wordguard/pkg/telemetry/tracing"
)

var runFlags struct {
	listenAddress string
	logLevel      string
	dryRun        bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the wordguard HTTP API",
	Long: `Start the wordguard HTTP API.

The server moderates comments and arbitrary text, serves the term
administration API and records rejected submissions. It shuts down
gracefully on SIGINT or SIGTERM.

Examples:
  # Start with defaults
  wordguard run

  # Start with a config file
  wordguard run --config /etc/wordguard/config.yaml

  # Override the listen address
  wordguard run --listen 0.0.0.0:8080

  # Validate the configuration without starting
  wordguard run --dry-run`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override listen address")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting the server")
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if runFlags.listenAddress != "" {
		cfg.Server.ListenAddress = runFlags.listenAddress
	}
	if runFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = runFlags.logLevel
	}
	if err := config.Validate(cfg); err != nil {
		return cli.NewConfigError("config", err.Error())
	}

	logger, err := logging.Setup(logging.Config{
		Level:     cfg.Telemetry.Logging.Level,
		Format:    cfg.Telemetry.Logging.Format,
		AddSource: cfg.Telemetry.Logging.AddSource,
		Redact:    cfg.Telemetry.Logging.Redact,
	})
	if err != nil {
		return cli.NewConfigError("telemetry.logging", err.Error())
	}

	if runFlags.dryRun {
		fmt.Fprintln(cmd.OutOrStdout(), "configuration valid")
		return nil
	}

	ctx, stop := cli.SetupSignalHandler()
	defer stop()

	logger.Info("starting wordguard", "version", Version, "commit", GitCommit)

	tracer, err := tracing.New(ctx, &cfg.Telemetry.Tracing, Version)
	if err != nil {
		return cli.NewCommandError("run", fmt.Errorf("failed to initialise tracing: %w", err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("tracer shutdown failed", "error", err)
		}
	}()

	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
	checker := health.New(cfg.Telemetry.Health.CheckTimeout)

	termStore, err := openTermStore(&cfg.Terms)
	if err != nil {
		return cli.NewCommandError("run", err)
	}
	defer termStore.Close()
	registerPing(checker, "term_store", termStore)

	filter := moderation.New(termStore, moderationConfig(&cfg.Moderation),
		moderation.WithObserver(collector),
		moderation.WithTracer(tracer.Tracer()),
		moderation.WithLogger(logger.With("component", "moderation")),
	)
	checker.Register("moderation", filter.Ready)
	manager := termstore.NewManager(termStore, filter)

	if cfg.Terms.SeedFile != "" {
		if err := syncSeedFile(ctx, manager, cfg.Terms.SeedFile); err != nil {
			return cli.NewCommandError("run", err)
		}
		if cfg.Terms.Watch {
			watcher, err := termstore.NewWatcher(cfg.Terms.SeedFile, cfg.Terms.WatchDebounce)
			if err != nil {
				return cli.NewCommandError("run", err)
			}
			defer watcher.Stop()
			go func() {
				err := watcher.Watch(ctx, func(ctx context.Context) error {
					return syncSeedFile(ctx, manager, cfg.Terms.SeedFile)
				})
				if err != nil {
					logger.Error("seed file watcher stopped", "error", err)
				}
			}()
		}
	}

	terms := filter.Refresh(ctx)
	logger.Info("term list loaded", "terms", len(terms))

	commentStore, err := openCommentStore(&cfg.Comments)
	if err != nil {
		return cli.NewCommandError("run", err)
	}
	defer commentStore.Close()
	registerPing(checker, "comment_store", commentStore)

	deps := server.Dependencies{
		Moderator: filter,
		Terms:     manager,
		Health:    checker,
		Metrics:   collector,
		Tracer:    tracer.Tracer(),
		Version:   health.NewVersionInfo(Version, GitCommit, BuildDate),
		Logger:    logger,
	}
	commentOpts := []comments.Option{
		comments.WithObserver(collector),
		comments.WithLogger(logger.With("component", "comments")),
	}

	if cfg.Audit.Enabled {
		storage, err := openAuditStorage(&cfg.Audit)
		if err != nil {
			return cli.NewCommandError("run", err)
		}
		defer storage.Close()
		registerPing(checker, "audit_store", storage)

		recorder := audit.NewRecorder(storage, &audit.RecorderConfig{
			Enabled:      true,
			AsyncBuffer:  cfg.Audit.AsyncBuffer,
			WriteTimeout: cfg.Audit.WriteTimeout,
		})
		defer recorder.Close()
		if err := collector.RegisterAuditStats(recorder.Stats); err != nil {
			logger.Warn("failed to register audit metrics", "error", err)
		}

		scheduler := retention.NewScheduler(retention.NewPruner(storage, &retention.Config{
			RetentionDays: cfg.Audit.RetentionDays,
			PruneSchedule: cfg.Audit.PruneSchedule,
		}))
		if err := scheduler.Start(ctx); err != nil {
			return cli.NewCommandError("run", err)
		}
		defer scheduler.Stop()

		deps.Violations = storage
		deps.Recorder = recorder
		commentOpts = append(commentOpts, comments.WithRecorder(recorder))
	}

	deps.Comments = comments.NewService(commentStore, filter,
		comments.Config{MaxLength: cfg.Comments.MaxLength}, commentOpts...)

	srv := server.NewServer(&cfg.Server, &cfg.Telemetry, deps)
	if err := srv.Start(ctx); err != nil {
		return cli.NewCommandError("run", err)
	}
	logger.Info("wordguard stopped")
	return nil
}

func syncSeedFile(ctx context.Context, manager *termstore.Manager, path string) error {
	words, err := termstore.LoadSeedFile(path)
	if err != nil {
		return err
	}
	added, err := manager.Sync(ctx, words)
	if err != nil {
		return err
	}
	slog.Default().Info("seed file synced", "path", path, "added", added)
	return nil
}

func registerPing(checker *health.Checker, name string, backend any) {
	if p, ok := backend.(pinger); ok {
		checker.Register(name, p.Ping)
	}
}
