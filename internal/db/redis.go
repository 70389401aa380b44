package db

import (
	"os"

	"github.com/go-redis/redis/v8"
)

var RedisClient *redis.Client

// InitRedis prepares the snapshot-cache client. Connection problems surface
// lazily on first use and are tolerated by the callers.
func InitRedis() {
	redisURI := os.Getenv("REDIS_URI")
	if redisURI == "" {
		redisURI = "localhost:6379"
	}

	RedisClient = redis.NewClient(&redis.Options{
		Addr: redisURI,
	})
}
