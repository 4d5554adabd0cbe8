package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	claimshandler "nomadpool/internal/claims/handler"
	claimsmetrics "nomadpool/internal/claims/metrics"
	claimsservice "nomadpool/internal/claims/service"
	claimsstore "nomadpool/internal/claims/store"
	"nomadpool/internal/custody"
	"nomadpool/internal/events"
	"nomadpool/internal/ledger"
	lochandler "nomadpool/internal/location/handler"
	locservice "nomadpool/internal/location/service"
	locstore "nomadpool/internal/location/store"
	"nomadpool/internal/platform/config"
	"nomadpool/internal/platform/httpserver"
	"nomadpool/internal/platform/logger"
	"nomadpool/internal/platform/postgres"
	platformredis "nomadpool/internal/platform/redis"
	polhandler "nomadpool/internal/policy/handler"
	polmetrics "nomadpool/internal/policy/metrics"
	polservice "nomadpool/internal/policy/service"
	polstore "nomadpool/internal/policy/store"
	poolhandler "nomadpool/internal/pool/handler"
	poolmetrics "nomadpool/internal/pool/metrics"
	poolservice "nomadpool/internal/pool/service"
	"nomadpool/internal/premium"
	repservice "nomadpool/internal/reputation/service"
	repstore "nomadpool/internal/reputation/store"
	httptransport "nomadpool/internal/transport/http"
	"nomadpool/pkg/platform/middleware/principal"
)

// main wires dependencies and owns the process lifecycle. Business
// logic lives in the internal service packages.
func main() {
	log := logger.New()

	cfg, err := config.Load()
	if err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tx := ledger.New()
	eventsPub := events.NewPublisher(events.NewInMemoryStore(), log)

	// Location profiles: postgres when configured, memory otherwise.
	var profiles locservice.ProfileStore
	var healthChecks []httptransport.HealthChecker
	if cfg.PostgresURL != "" {
		db, err := postgres.Open(cfg.PostgresURL)
		if err != nil {
			log.Error("postgres unavailable", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		pgStore := locstore.NewPostgres(db)
		if err := pgStore.EnsureSchema(ctx); err != nil {
			log.Error("schema migration failed", "error", err)
			os.Exit(1)
		}
		profiles = pgStore
		healthChecks = append(healthChecks, func() error { return db.Ping() })
	} else {
		profiles = locstore.NewInMemory()
	}
	if cfg.SeedLocations {
		if err := locstore.Seed(ctx, profiles); err != nil {
			log.Error("location seeding failed", "error", err)
			os.Exit(1)
		}
	}

	// Reputation scores: redis when configured, memory otherwise.
	var scores repservice.Store = repstore.NewInMemory()
	redisClient, err := platformredis.New(cfg.RedisURL)
	if err != nil {
		log.Error("redis unavailable", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
		scores = repstore.NewRedis(redisClient.Client)
		healthChecks = append(healthChecks, func() error {
			return redisClient.Health(context.Background())
		})
	}

	registry := locservice.NewRegistry(profiles, log)
	calc := premium.NewCalculator(registry, cfg.BaseRateAmount())
	custodian := custody.NewLogCustodian(log)
	reputation := repservice.New(scores, log)

	pool := poolservice.New(cfg.ReserveRatio, log,
		poolservice.WithEvents(eventsPub),
		poolservice.WithMetrics(poolmetrics.New()),
	)
	policies := polservice.New(polstore.NewInMemory(), registry, calc, pool, custodian, tx, log,
		polservice.WithEvents(eventsPub),
		polservice.WithMetrics(polmetrics.New()),
	)
	claims := claimsservice.New(claimsstore.NewInMemory(), policies, pool, reputation, custodian, tx,
		cfg.AutoApproveScore, cfg.SmallClaimAmount(), log,
		claimsservice.WithEvents(eventsPub),
		claimsservice.WithMetrics(claimsmetrics.New()),
	)

	validator := principal.NewValidator(cfg.JWTSigningKey)
	router := httptransport.NewRouter(
		func() error {
			for _, check := range healthChecks {
				if err := check(); err != nil {
					return err
				}
			}
			return nil
		},
		lochandler.New(registry, cfg.AdminToken, log),
		polhandler.New(policies, validator, cfg.AdminToken, log),
		claimshandler.New(claims, validator, cfg.AdminToken, log),
		poolhandler.New(pool, validator, cfg.AdminToken, log),
		events.NewHandler(eventsPub, cfg.AdminToken, log),
	)

	srv := httpserver.New(cfg.Addr, router)

	g, gctx := errgroup.WithContext(ctx)

	if len(cfg.KafkaBrokers) > 0 {
		sink, err := events.NewKafkaSink(ctx, cfg.KafkaBrokers, cfg.EventTopic)
		if err != nil {
			log.Error("kafka unavailable", "error", err)
			os.Exit(1)
		}
		defer sink.Close()

		worker := events.NewWorker(sink, eventsPub.Inbox(), log)
		g.Go(func() error {
			if err := worker.Run(gctx); !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}

	g.Go(func() error {
		log.Info("starting nomadpool", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
	log.Info("shutdown complete")
}
