package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	redisv9 "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"index_backend/internal/app/di"
	"index_backend/internal/app/router"
	indexlisthandler "index_backend/internal/feature/indexlist/transport/handler"
	indexlistusecase "index_backend/internal/feature/indexlist/usecase"
	indicatorshandler "index_backend/internal/feature/indicators/transport/handler"
	indicatorsusecase "index_backend/internal/feature/indicators/usecase"
	"index_backend/internal/platform/config"
	infradb "index_backend/internal/platform/db"
	platformhandler "index_backend/internal/platform/http/handler"
	"index_backend/internal/platform/logger"
	"index_backend/internal/platform/metrics"
	infraredis "index_backend/internal/platform/redis"
	"index_backend/internal/platform/scheduler"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load("")
	if err != nil {
		log.Fatal("failed to load config: ", err)
	}
	logger.Init("index_backend", cfg.Log.Level, cfg.Log.Format)
	gin.SetMode(cfg.Server.Mode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// db
	var db *gorm.DB
	var pinger platformhandler.Pinger
	if cfg.Persistent() {
		db, err = infradb.Open(infradb.FromConfig(cfg))
		if err != nil {
			log.Fatal(err)
		}
		if sqlDB, err := db.DB(); err == nil {
			pinger = sqlDB
			defer func() { _ = sqlDB.Close() }()
		}
	}

	// Redis
	var rdb *redisv9.Client
	if cfg.Redis.Enabled && cfg.Persistent() {
		if tmp, err := infraredis.NewRedisClient(ctx, cfg.Redis); err != nil {
			log.Println("[WARN] Redis unavailable. Running without cache.")
		} else {
			rdb = tmp
			defer func() {
				if err := rdb.Close(); err != nil {
					log.Println("[ERROR] Failed to close Redis client:", err)
				}
			}()
		}
	}

	m := metrics.New()

	// Repository
	stores, err := di.NewStores(cfg, db, rdb, m)
	if err != nil {
		log.Fatal(err)
	}

	// Usecase
	indicatorsUC := indicatorsusecase.NewIndicatorsUsecase(stores.Reader)
	indexUC := indexlistusecase.NewIndexUsecase(stores.Reader)

	// Handler
	h := router.Handlers{
		Health:     platformhandler.NewHealthHandler(pinger),
		Index:      indexlisthandler.NewIndexHandler(indexUC),
		Indicators: indicatorshandler.NewIndicatorsHandler(indicatorsUC),
	}

	// 定期取り込み
	if cfg.Ingest.Schedule != "" && stores.Writer != nil {
		ingestUC := di.NewIngestUsecase(cfg.TwelveData, stores.Writer)
		sched := scheduler.NewScheduler(ctx, ingestUC, di.IngestTargets(cfg.Ingest.Symbols))
		if err := sched.Register(cfg.Ingest.Schedule); err != nil {
			log.Fatal(err)
		}
		sched.Start()
		defer sched.Stop()
	}

	if cfg.Auth.JWTSecret == "" {
		log.Println("[WARN] JWT_SECRET is not set. The API is served without authentication.")
	}

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router.NewRouter(h, m, cfg.Auth.JWTSecret),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Println("[ERROR] shutdown:", err)
		}
	}()

	log.Println("[INFO] listening on", cfg.Server.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
}
