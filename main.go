package main

import (
	"context"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"socialnet/auth"
	"socialnet/cache"
	"socialnet/config"
	"socialnet/monitoring"
	"socialnet/server"
	"socialnet/storage"
)

func main() {
	cfg := config.FromEnv()

	logLevel, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		logLevel = log.WarnLevel
	}
	log.SetLevel(logLevel)

	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET must be set")
	}

	ctx := context.Background()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURL))
	if err != nil {
		log.Fatalf("Error connecting to mongo: %v", err)
	}
	defer client.Disconnect(ctx)

	storageManager := storage.NewManager(client.Database(cfg.MongoDatabase))
	if err := storageManager.EnsureIndexes(ctx); err != nil {
		log.Fatalf("Error creating indexes: %v", err)
	}

	redisConnection := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: "", // no password set
		DB:       0,  // use default DB
	})
	limiter := cache.NewRateLimiter(redisConnection, cfg.RateLimit)

	monitoring.Register()

	authService := auth.NewService(cfg.JWTSecret, cfg.TokenTTL)
	s := server.NewServer(storageManager, authService, limiter)

	log.Fatal(s.Run(cfg.Port))
}
