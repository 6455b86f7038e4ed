package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/iliyamo/election-tally/internal/cache"
	"github.com/iliyamo/election-tally/internal/config"
	"github.com/iliyamo/election-tally/internal/database"
	"github.com/iliyamo/election-tally/internal/election"
	"github.com/iliyamo/election-tally/internal/handler"
	"github.com/iliyamo/election-tally/internal/metrics"
	"github.com/iliyamo/election-tally/internal/middleware"
	"github.com/iliyamo/election-tally/internal/repository"
	"github.com/iliyamo/election-tally/internal/router"
	"github.com/iliyamo/election-tally/internal/service"
)

func newServeCmd(log zerolog.Logger) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}
			if addr == "" {
				addr = ":" + cfg.Port
			}
			return serve(cmd.Context(), cfg, addr, log)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default :$APP_PORT)")
	return cmd
}

func serve(ctx context.Context, cfg config.Config, addr string, log zerolog.Logger) error {
	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewCollector(reg)

	store := repository.NewStore(db)
	partylist := config.LoadPartylistConfig()
	deps := election.Deps{
		Store:   store,
		Metrics: collector,
		Logger:  log,
		Partylist: election.PartylistOptions{
			Seats:         partylist.Seats,
			ClampNegative: partylist.ClampNegative,
		},
	}

	// Redis is optional; without it results are recomputed and the vote
	// route is not rate limited.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Warn().Msg("redis unavailable, running without result cache and rate limiting")
	} else {
		defer rdb.Close()
		if rc := cache.NewResultCache(rdb, config.LoadCacheConfig()); rc != nil {
			deps.Cache = rc
		}
	}

	if cfg.AMQPURL != "" {
		pub := service.NewVotePublisher(cfg.AMQPURL, log)
		defer pub.Close()
		deps.Events = pub
	} else {
		log.Info().Msg("no AMQP url configured, ledger events disabled")
	}

	svc := election.NewService(deps)

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.RequestLogger(log, collector))

	router.RegisterRoutes(e, reg, map[string]handler.Pinger{"mysql": db})
	auth := handler.NewAuthHandler(cfg, repository.NewUserRepo(db), repository.NewTokenRepo(db), store, log)
	router.RegisterAuth(e, auth, cfg.JWTSecret)
	h := handler.NewElectionHandler(svc, log)
	router.RegisterPublic(e, h, cfg.JWTSecret)
	router.RegisterVoter(e, h, cfg.JWTSecret, middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb, log))
	router.RegisterStaff(e, h, cfg.JWTSecret)

	errc := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Str("env", cfg.Env).Msg("listening")
		errc <- e.Start(addr)
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
