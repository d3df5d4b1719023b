package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/chachabrian/tripguard-backend/internal/models"
	"github.com/redis/go-redis/v9"
)

// TripUpdatesChannel carries every trip event published by the API.
const TripUpdatesChannel = "trip:updates"

const tripLocationTTL = 6 * time.Hour

// ErrCacheMiss is returned when no live location is cached for a trip.
var ErrCacheMiss = errors.New("cache miss")

// TripCache keeps the latest position of each trip in Redis and publishes
// trip events on TripUpdatesChannel.
type TripCache struct {
	client *redis.Client
}

// NewTripCache connects to redisURL and pings the server.
func NewTripCache(ctx context.Context, redisURL string) (*TripCache, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opt)

	// Test the connection
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &TripCache{client: client}, nil
}

// NewTripCacheFromClient wraps an existing client.
func NewTripCacheFromClient(client *redis.Client) *TripCache {
	return &TripCache{client: client}
}

func (c *TripCache) Close() error {
	return c.client.Close()
}

type cachedLocation struct {
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
	Updated int64   `json:"updated"`
}

func tripLocationKey(tripID uint) string {
	return fmt.Sprintf("trip:location:%d", tripID)
}

// SetTripLocation stores the trip's current position.
func (c *TripCache) SetTripLocation(ctx context.Context, tripID uint, loc models.Coordinates) error {
	data, err := json.Marshal(cachedLocation{
		Lat:     loc.Latitude,
		Lng:     loc.Longitude,
		Updated: time.Now().Unix(),
	})
	if err != nil {
		return err
	}
	return c.client.Set(ctx, tripLocationKey(tripID), data, tripLocationTTL).Err()
}

// GetTripLocation returns the cached position or ErrCacheMiss.
func (c *TripCache) GetTripLocation(ctx context.Context, tripID uint) (models.Coordinates, error) {
	data, err := c.client.Get(ctx, tripLocationKey(tripID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.Coordinates{}, ErrCacheMiss
	}
	if err != nil {
		return models.Coordinates{}, err
	}

	var loc cachedLocation
	if err := json.Unmarshal(data, &loc); err != nil {
		return models.Coordinates{}, err
	}
	return models.Coordinates{Latitude: loc.Lat, Longitude: loc.Lng}, nil
}

// ClearTripLocation drops the cached position of a finished trip.
func (c *TripCache) ClearTripLocation(ctx context.Context, tripID uint) error {
	return c.client.Del(ctx, tripLocationKey(tripID)).Err()
}

// PublishTripUpdate publishes a trip event to Redis pub/sub.
func (c *TripCache) PublishTripUpdate(ctx context.Context, event TripEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return c.client.Publish(ctx, TripUpdatesChannel, data).Err()
}
