// Package mongodb holds the process-wide MongoDB client.
//
// The client is created lazily on first use and guarded by a mutex so that
// concurrent requests never open duplicate connection pools.
package mongodb

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// ErrNotConnected is returned when a connection could not be established.
var ErrNotConnected = errors.New("mongodb: client not connected")

type Config struct {
	URI            string        `envconfig:"MONGO_URI" default:"mongodb://localhost:27017"`
	Database       string        `envconfig:"MONGO_DATABASE" default:"tryLuxor"`
	ConnectTimeout time.Duration `envconfig:"MONGO_CONNECT_TIMEOUT" default:"10s"`
}

// ConnectFunc opens and verifies a client. Replaced in tests.
type ConnectFunc func(ctx context.Context, cfg Config) (*mongo.Client, error)

// Client is a lazily connected MongoDB handle safe for concurrent use.
type Client struct {
	cfg     Config
	connect ConnectFunc

	mu     sync.Mutex
	client *mongo.Client
	db     *mongo.Database
}

// New returns an unconnected Client. Nothing is dialled until Connect or Database is called.
func New(cfg Config) *Client {
	return &Client{cfg: cfg, connect: dial}
}

// NewWithConnect is New with a custom connect function.
func NewWithConnect(cfg Config, fn ConnectFunc) *Client {
	return &Client{cfg: cfg, connect: fn}
}

func dial(ctx context.Context, cfg Config) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return client, nil
}

// Connect establishes the connection. Safe to call multiple times; the
// connection is created only once.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connectLocked(ctx)
}

func (c *Client) connectLocked(ctx context.Context) error {
	if c.client != nil {
		return nil
	}

	client, err := c.connect(ctx, c.cfg)
	if err != nil {
		c.client, c.db = nil, nil
		return fmt.Errorf("%w: %v", ErrNotConnected, err)
	}

	c.client = client
	c.db = client.Database(c.cfg.Database)
	return nil
}

// Database returns the configured database, connecting if needed.
func (c *Client) Database(ctx context.Context) (*mongo.Database, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.connectLocked(ctx); err != nil {
		return nil, err
	}
	return c.db, nil
}

// Collection returns a collection of the configured database, connecting if needed.
func (c *Client) Collection(ctx context.Context, name string) (*mongo.Collection, error) {
	db, err := c.Database(ctx)
	if err != nil {
		return nil, err
	}
	return db.Collection(name), nil
}

// Disconnect closes the connection and resets the handle.
func (c *Client) Disconnect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.client == nil {
		return nil
	}
	err := c.client.Disconnect(ctx)
	c.client, c.db = nil, nil
	return err
}
