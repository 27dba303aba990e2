package data

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/shopscout/shopscout-backend/internal/conf"
	"github.com/shopscout/shopscout-backend/internal/pkg/logger"
)

// Data holds shared infrastructure clients. Redis is only dialed when
// something in the config actually needs it.
type Data struct {
	Redis  *redis.Client
	logger *logger.Logger
}

func NewData(cfg *conf.Config, log *logger.Logger) (*Data, func(), error) {
	d := &Data{logger: log}

	if cfg.Feedback.Store == "redis" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		d.Redis = client
		log.Info("redis connected", zap.String("addr", cfg.Redis.Addr()))
	}

	cleanup := func() {
		if d.Redis != nil {
			if err := d.Redis.Close(); err != nil {
				log.Error("failed to close redis", zap.Error(err))
			}
		}
	}
	return d, cleanup, nil
}
