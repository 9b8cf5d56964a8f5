package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	httpadp "collateral-lending/internal/adapter/http"
	mw "collateral-lending/internal/adapter/middleware"
	"collateral-lending/internal/adapter/repository/mysql"
	"collateral-lending/internal/config"
	"collateral-lending/internal/infrastructure/cache"
	"collateral-lending/internal/infrastructure/db"
	"collateral-lending/internal/usecase/asset"
	"collateral-lending/internal/usecase/gate"
	"collateral-lending/internal/usecase/loan"
	"collateral-lending/internal/worker"
)

func setupLogger(cfg *config.Config) {
	if !cfg.IsProduction() {
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
			With().Timestamp().Logger()
	}
	lvl, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
}

func main() {
	cfg := config.Load()
	setupLogger(cfg)
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}

	gdb, err := db.Open(cfg.DBDriver, cfg.DSN())
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.DBDriver).Msg("open database")
	}
	if err := db.Migrate(gdb); err != nil {
		log.Fatal().Err(err).Msg("migrate")
	}
	rdb, err := cache.OpenRedis(cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		log.Fatal().Err(err).Str("addr", cfg.RedisAddr).Msg("open redis")
	}
	defer rdb.Close()

	loanRepo := mysql.NewLoanRepository(gdb)
	tx := mysql.NewGormUoW(gdb)

	loanUC := loan.NewUsecase(loanRepo, mysql.NewEventRepository(gdb), tx)
	assetUC := asset.NewUsecase(mysql.NewAssetRepository(gdb), loanRepo, tx, cfg.AdminAccount)
	gateUC := gate.NewUsecase(mysql.NewKVRepository(gdb), cfg.AdminAccount)

	e := echo.New()
	e.HideBanner = true
	e.Validator = httpadp.NewValidator()
	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil || v.Status >= http.StatusInternalServerError {
				ev = log.Error().Err(v.Error)
			}
			ev.Str("method", v.Method).Str("uri", v.URI).Int("status", v.Status).
				Dur("latency", v.Latency).Msg("request")
			return nil
		},
	}))

	sqlDB, err := gdb.DB()
	if err != nil {
		log.Fatal().Err(err).Msg("database handle")
	}
	health := httpadp.NewHandler(
		httpadp.Check{Name: "db", Ping: sqlDB.PingContext},
		httpadp.Check{Name: "redis", Ping: func(ctx context.Context) error { return rdb.Ping(ctx).Err() }},
	)

	limiter := mw.NewRateLimiter(cfg.RateLimitPerMinute, cfg.RateLimitBurst)
	httpadp.Register(e, httpadp.Routes{
		Health: health,
		Loans:  httpadp.NewLoanHandler(loanUC),
		Assets: httpadp.NewAssetHandler(assetUC),
		Admin:  httpadp.NewAdminHandler(gateUC),
	},
		mw.JWTAuth([]byte(cfg.JWTSecret)),
		limiter.Middleware(),
		mw.IdempotencyMiddleware(rdb, time.Duration(cfg.IdempTTLSecs)*time.Second),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.LiquidatorAccount != "" {
		sweeper := worker.NewSweeper(loanUC, cfg.LiquidatorAccount,
			time.Duration(cfg.SweepIntervalSecs)*time.Second, cfg.SweepBatch)
		go sweeper.Start(ctx)
	}
	go func() {
		t := time.NewTicker(time.Minute)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-t.C:
				if n := limiter.Sweep(now); n > 0 {
					log.Debug().Int("dropped", n).Msg("rate limiter: idle buckets swept")
				}
			}
		}
	}()

	addr := ":" + cfg.AppPort
	go func() {
		log.Info().Str("addr", addr).Str("driver", cfg.DBDriver).Msg("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("listen")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}
}
