package pubsub

import (
	"context"
	"fmt"
	"time"

	"dia-relay/backend/app/ingest"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
)

type Config struct {
	Addr     string
	Password string
	DB       int
	Channel  string
	Enabled  bool
}

// Publisher fans accepted reports out on a redis channel for live consumers.
// A nil *Publisher is valid and publishes nothing.
type Publisher struct {
	rdb     *redis.Client
	channel string
}

// NewPublisher connects to redis. It returns nil, nil when disabled.
func NewPublisher(ctx context.Context, cfg Config) (*Publisher, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: 2 * time.Second,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Addr, err)
	}
	return &Publisher{rdb: rdb, channel: cfg.Channel}, nil
}

func (p *Publisher) Publish(ctx context.Context, r ingest.Record) error {
	if p == nil {
		return nil
	}
	data, err := json.Marshal(r)
	if err != nil {
		return err
	}
	return p.rdb.Publish(ctx, p.channel, data).Err()
}

func (p *Publisher) Close() error {
	if p == nil {
		return nil
	}
	return p.rdb.Close()
}
