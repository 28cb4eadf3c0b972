// Command server runs the rewards engine HTTP service.
package main

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	_ "github.com/lib/pq"

	"github.com/sqboom/rewards-engine/internal/account"
	"github.com/sqboom/rewards-engine/internal/autopilot"
	"github.com/sqboom/rewards-engine/internal/broadcast"
	"github.com/sqboom/rewards-engine/internal/cooldown"
	"github.com/sqboom/rewards-engine/internal/health"
	"github.com/sqboom/rewards-engine/internal/httpapi"
	"github.com/sqboom/rewards-engine/internal/jobs"
	"github.com/sqboom/rewards-engine/internal/jobs/handlers"
	"github.com/sqboom/rewards-engine/internal/ledger"
	"github.com/sqboom/rewards-engine/internal/progression"
	"github.com/sqboom/rewards-engine/internal/ratelimit"
	"github.com/sqboom/rewards-engine/internal/rewards"
	"github.com/sqboom/rewards-engine/internal/stats"
	"github.com/sqboom/rewards-engine/internal/store"
	"github.com/sqboom/rewards-engine/pkg/config"
	"github.com/sqboom/rewards-engine/pkg/graceful"
	"github.com/sqboom/rewards-engine/pkg/logger"
	"github.com/sqboom/rewards-engine/pkg/metrics"
	redisclient "github.com/sqboom/rewards-engine/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", slog.Any("error", err))
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, v, err := config.Load()
	if err != nil {
		return err
	}

	log, flushLogs, err := logger.New(logger.Options{
		Level:      cfg.LogLevel,
		Env:        cfg.AppEnv,
		FilePath:   cfg.Log.FilePath,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
		SentryDSN:  cfg.SentryDSN,
	})
	if err != nil {
		return err
	}
	defer flushLogs()
	slog.SetDefault(log)

	log.Info("starting rewards engine",
		slog.String("env", cfg.AppEnv),
		slog.String("http_port", cfg.HTTPPort),
		slog.String("storage", cfg.Storage),
	)

	config.Watch(v, log, func(updated *config.Config) {
		log.Info("runtime config updated", slog.String("log_level", updated.LogLevel))
	})

	checker := health.NewChecker(log)

	var storage store.Storage
	var redisCli *redisclient.Client
	switch cfg.Storage {
	case "redis":
		redisCli, err = redisclient.New(ctx, redisclient.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return err
		}
		defer redisCli.Close()

		storage = store.NewRedisStorage(redisCli.Client, log)
		checker.AddCheck("redis", health.NewRedisChecker(redisCli.Client))
	case "postgres":
		db, err := sql.Open("postgres", cfg.Postgres.DSN())
		if err != nil {
			return err
		}
		defer db.Close()

		if err := db.PingContext(ctx); err != nil {
			return err
		}

		pg := store.NewPostgresStorage(db, log)
		if err := pg.EnsureSchema(ctx); err != nil {
			return err
		}
		storage = pg
		checker.AddCheck("postgres", health.NewDBChecker(db))
	default:
		storage = store.NewMemoryStorage()
	}

	arena, err := store.NewArena(ctx, storage, log)
	if err != nil {
		return err
	}
	checker.AddCheck("arena", arena)

	autopilot.RegisterTransitionRecorder(metrics.RecordBotTransition)

	progressionEngine := progression.NewEngine(arena, log)
	ledgerService := ledger.NewService(arena, log)
	cooldownScheduler := cooldown.NewScheduler(arena)
	rewardsService := rewards.NewService(arena, progressionEngine, log)
	autopilotService := autopilot.NewService(arena, progressionEngine, log)
	broadcastService := broadcast.NewService(arena, progressionEngine, log)

	limiter := ratelimit.NewMemoryLimiter()
	accountService := account.NewService(arena, progressionEngine, limiter, log)

	sampler := stats.NewSampler(arena, log)

	ticker := jobs.NewTicker(autopilotService, sampler, time.Duration(cfg.Jobs.RecomputeInterval)*time.Second, log)
	go ticker.Run(ctx)

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-time.After(10 * time.Minute):
				limiter.Cleanup(time.Hour)
			}
		}
	}()

	if cfg.Storage == "redis" {
		redisOpt := asynq.RedisClientOpt{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}

		scheduler := jobs.NewScheduler(redisOpt, jobs.CronSpec{
			TapsReset:       cfg.Jobs.TapsResetCron,
			SnapshotPersist: cfg.Jobs.SnapshotCron,
		}, log)
		if err := scheduler.RegisterTasks(); err != nil {
			return err
		}
		scheduler.Run()
		defer scheduler.Shutdown()

		worker := jobs.NewWorker(redisOpt, cfg.Jobs.WorkerConcurrency, log)
		worker.RegisterHandler(jobs.TaskTypeTapsReset, handlers.NewTapsResetHandler(arena, log))
		worker.RegisterHandler(jobs.TaskTypeSnapshotPersist, handlers.NewSnapshotPersistHandler(arena, log))
		go func() {
			if err := worker.Run(); err != nil {
				log.Error("jobs worker stopped", slog.Any("error", err))
			}
		}()
		defer worker.Shutdown()

		manager := jobs.NewManager(redisOpt, log)
		defer manager.Close()

		// Write a snapshot right away so a crash before the first cron
		// tick cannot lose the seeded state.
		if task, err := jobs.NewSnapshotPersistTask(time.Now().UnixMilli()); err == nil {
			if _, err := manager.Enqueue(ctx, task); err != nil {
				log.Error("enqueue initial snapshot failed", slog.Any("error", err))
			}
		}
	} else {
		// Without Redis there is no queue; fall back to an in-process
		// midnight reset so daily tap limits still roll over.
		go runLocalTapsReset(ctx, arena, log)
	}

	api := httpapi.NewServer(httpapi.Deps{
		Ledger:      ledgerService,
		Progression: progressionEngine,
		Cooldowns:   cooldownScheduler,
		Rewards:     rewardsService,
		Autopilot:   autopilotService,
		Broadcast:   broadcastService,
		Accounts:    accountService,
		Sampler:     sampler,
		Checker:     checker,
		Log:         log,
	})

	httpServer := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      api.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	server := graceful.NewServer(log, httpServer, shutdownTimeout)
	serveErr := server.ListenAndServe(ctx)

	persistCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := arena.Persist(persistCtx); err != nil {
		log.Error("final snapshot persist failed", slog.Any("error", err))
	}

	log.Info("rewards engine stopped")
	return serveErr
}

// runLocalTapsReset zeroes player tap counters at each local midnight.
func runLocalTapsReset(ctx context.Context, arena *store.Arena, log *slog.Logger) {
	handler := handlers.NewTapsResetHandler(arena, log)

	for {
		now := time.Now()
		next := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).Add(24 * time.Hour)

		select {
		case <-ctx.Done():
			return
		case <-time.After(next.Sub(now)):
			task, err := jobs.NewTapsResetTask(time.Now().UnixMilli())
			if err != nil {
				log.Error("build taps reset task failed", slog.Any("error", err))
				continue
			}
			if err := handler.ProcessTask(ctx, task); err != nil {
				log.Error("local taps reset failed", slog.Any("error", err))
			}
		}
	}
}
