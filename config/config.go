package config

import (
	"fmt"
	"os"
	"time"

	"socialnet/utils"
)

// Config carries everything main needs to wire the process together.
// All values come from the environment; missing ones fall back to
// development defaults.
type Config struct {
	Port          int
	MongoURL      string
	MongoDatabase string
	RedisAddr     string
	JWTSecret     string
	TokenTTL      time.Duration
	RateLimit     int // requests per client per minute, 0 disables
	LogLevel      string
}

func FromEnv() Config {
	redisHost := utils.StringOrDefault(os.Getenv("REDIS_HOST"), "localhost")
	redisPort := utils.StringOrDefault(os.Getenv("REDIS_PORT"), "6379")

	tokenTTLMinutes := utils.IntFromString(os.Getenv("TOKEN_TTL_MINUTES"), 60)

	return Config{
		Port:          utils.IntFromString(os.Getenv("PORT"), 5000),
		MongoURL:      utils.StringOrDefault(os.Getenv("MONGO_URL"), "mongodb://localhost:27017"),
		MongoDatabase: utils.StringOrDefault(os.Getenv("MONGO_DATABASE"), "socialnet"),
		RedisAddr:     fmt.Sprintf("%s:%s", redisHost, redisPort),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		TokenTTL:      time.Duration(tokenTTLMinutes) * time.Minute,
		RateLimit:     utils.IntFromString(os.Getenv("RATE_LIMIT_PER_MINUTE"), 300),
		LogLevel:      utils.StringOrDefault(os.Getenv("LOG_LEVEL"), "warning"),
	}
}
