package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/saviobatista/ballometer-tracker/internal/types"
)

// ChannelRender is the pub/sub channel render states are announced on
const ChannelRender = "ballometer.render"

// renderTTL bounds how long a render state outlives its session
const renderTTL = time.Hour

// RedisClientInterface defines the Redis operations used by our client
type RedisClientInterface interface {
	Ping(ctx context.Context) *redis.StatusCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
	Close() error
}

// Client fans render states out to the view layer
type Client struct {
	client RedisClientInterface
}

// New creates a new Redis client
func New(addr string) (*Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Client{client: client}, nil
}

// NewWithClient creates a new Redis client with a custom RedisClientInterface (useful for testing)
func NewWithClient(client RedisClientInterface) *Client {
	return &Client{client: client}
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.client.Close()
}

func renderKey(sessionID string) string {
	return fmt.Sprintf("render:%s", sessionID)
}

// PublishRenderState stores the latest render state and announces it
func (c *Client) PublishRenderState(ctx context.Context, state *types.RenderState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal render state: %w", err)
	}

	if err := c.client.Set(ctx, renderKey(state.SessionID), data, renderTTL).Err(); err != nil {
		return fmt.Errorf("failed to store render state: %w", err)
	}
	if err := c.client.Publish(ctx, ChannelRender, data).Err(); err != nil {
		return fmt.Errorf("failed to publish render state: %w", err)
	}
	return nil
}

// GetRenderState retrieves the latest render state of a session. It returns
// nil without error when none is stored.
func (c *Client) GetRenderState(ctx context.Context, sessionID string) (*types.RenderState, error) {
	data, err := c.client.Get(ctx, renderKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get render state: %w", err)
	}

	var state types.RenderState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal render state: %w", err)
	}
	return &state, nil
}

// DeleteRenderState removes a session's render state
func (c *Client) DeleteRenderState(ctx context.Context, sessionID string) error {
	return c.client.Del(ctx, renderKey(sessionID)).Err()
}
