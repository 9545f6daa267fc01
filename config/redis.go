package config

import "github.com/redis/go-redis/v9"

// RedisClient is a global Redis client instance. Nil when REDIS_ADDR is unset
// or the server did not answer a ping.
var RedisClient *redis.Client

func InitRedis() {
	addr := v.GetString("REDIS_ADDR")
	if addr == "" {
		RedisClient = nil
		return
	}
	RedisClient = redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: v.GetString("REDIS_PASS"),
		DB:       v.GetInt("REDIS_DB"),
	})
}
