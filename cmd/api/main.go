package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	redisv9 "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	mongodrv "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/magicstays/villa-api/internal/api"
	"github.com/magicstays/villa-api/internal/core/domain"
	"github.com/magicstays/villa-api/internal/core/ports"
	"github.com/magicstays/villa-api/internal/core/service"
	"github.com/magicstays/villa-api/internal/infrastructure/cache"
	"github.com/magicstays/villa-api/internal/infrastructure/config"
	"github.com/magicstays/villa-api/internal/infrastructure/db/mongo"
	"github.com/magicstays/villa-api/internal/infrastructure/db/redis"
	"github.com/magicstays/villa-api/pkg/logger"
)

const (
	villasCollection       = "villas"
	villaNumbersCollection = "villa_numbers"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	if cfg.JWTSecret == "" {
		log.Fatal().Msg("JWT_SECRET must be set")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, db, err := mongo.Connect(ctx, mongo.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongodb connection failed")
	}
	defer func() {
		_ = client.Disconnect(context.Background())
	}()

	villas := mongo.NewStore(db, villasCollection, func(v *domain.Villa) ports.Filter {
		return ports.ByID("id", v.ID)
	})
	villaNumbers := mongo.NewStore(db, villaNumbersCollection, func(n *domain.VillaNumber) ports.Filter {
		return ports.ByID("number", n.Number)
	})
	users := mongo.NewUserRepository(db)

	if err := users.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("user index creation failed")
	}
	if err := villaNumbers.EnsureIndexes(ctx, mongodrv.IndexModel{
		Keys:    bson.D{{Key: "number", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		log.Fatal().Err(err).Msg("villa number index creation failed")
	}

	store, rdb := buildCache(ctx, cfg, log)
	if rdb != nil {
		defer func() { _ = rdb.Close() }()
	}

	authService := service.NewAuthService(users, cfg.JWTSecret, cfg.TokenTTL, log)

	e := api.NewRouter(api.RouterConfig{
		Villas:       villas,
		VillaSeq:     villas,
		VillaNumbers: villaNumbers,
		AuthService:  authService,
		Cache:        store,
		JWTSecret:    cfg.JWTSecret,
		Versions:     api.DefaultVersions(),
		Mongo:        db,
		Redis:        rdb,
		Logger:       log,
	})

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server start failed")
		}
	}()
	log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("villa api listening")

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}
}

// buildCache wires the response-cache backend selected by configuration. The
// Redis client is also handed to the readiness probe when present.
func buildCache(ctx context.Context, cfg *config.Config, log zerolog.Logger) (cache.Store, *redisv9.Client) {
	if cfg.Cache.Driver == "redis" {
		rdb, err := redis.Connect(ctx, redis.Config{
			Addr: cfg.Redis.Addr,
			DB:   cfg.Redis.DB,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("redis connection failed")
		}
		return cache.NewRedis(rdb, cfg.Cache.Prefix), rdb
	}
	return cache.NewMemory(time.Minute), nil
}
