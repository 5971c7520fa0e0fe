package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisDialTimeout = 3 * time.Second

var errEmptyRedisURL = errors.New("redis url must not be empty")

// ConnectRedis returns a client for the caches and the notification channel,
// once the server has answered a ping.
func ConnectRedis(url string) (*redis.Client, error) {
	options, err := redisOptions(url)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(options)
	if err := pingRedis(client); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

func redisOptions(url string) (*redis.Options, error) {
	if url == "" {
		return nil, errEmptyRedisURL
	}
	options, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	if options.DialTimeout == 0 {
		options.DialTimeout = redisDialTimeout
	}
	return options, nil
}

func pingRedis(client *redis.Client) error {
	ctx, cancel := context.WithTimeout(context.Background(), redisDialTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	return nil
}
