package redis

import (
	"context"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// The cache is an optimisation, so a slow redis must never hold a request
// up for long; these bounds keep a degraded node cheaper than a miss.
const (
	dialTimeout = 1 * time.Second
	ioTimeout   = 300 * time.Millisecond
	pingTimeout = 2 * time.Second
)

// Client owns the connection pool shared by the cache decorators.
type Client struct {
	rdb *goredis.Client
}

func New(addr, password string, db int) *Client {
	return &Client{
		rdb: goredis.NewClient(&goredis.Options{
			Addr:         addr,
			Password:     password,
			DB:           db,
			DialTimeout:  dialTimeout,
			ReadTimeout:  ioTimeout,
			WriteTimeout: ioTimeout,
			MaxRetries:   1,
		}),
	}
}

// Ping doubles as the readiness check.
func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return c.rdb.Ping(ctx).Err()
}

func (c *Client) Close() error {
	return c.rdb.Close()
}
