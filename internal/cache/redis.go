package cache

import (
    "context"
    "encoding/json"
    "errors"

    "github.com/redis/go-redis/v9"

    "tourplan/internal/model"
)

// Redis stores the snapshot as a single JSON value per session key.
type Redis struct {
    rdb    *redis.Client
    prefix string
}

func NewRedis(url string) (*Redis, error) {
    opt, err := redis.ParseURL(url)
    if err != nil {
        return nil, err
    }
    return &Redis{rdb: redis.NewClient(opt), prefix: "tourplan:stops:"}, nil
}

func (r *Redis) Load(ctx context.Context, key string) ([]model.Stop, error) {
    raw, err := r.rdb.Get(ctx, r.prefix+key).Bytes()
    if errors.Is(err, redis.Nil) {
        return nil, nil
    }
    if err != nil {
        return nil, err
    }
    var stops []model.Stop
    if err := json.Unmarshal(raw, &stops); err != nil {
        return nil, err
    }
    return stops, nil
}

func (r *Redis) Save(ctx context.Context, key string, stops []model.Stop) error {
    raw, err := json.Marshal(stops)
    if err != nil {
        return err
    }
    return r.rdb.Set(ctx, r.prefix+key, raw, 0).Err()
}

func (r *Redis) Close() error { return r.rdb.Close() }
