package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"

	"github.com/redis/go-redis/v9"
)

const locationKeyPrefix = "courier:location:"

type locationRecord struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// RedisLocationStore keeps each courier's last reported position in Redis.
// Positions are overwritten on every report, so the store never grows beyond
// one key per courier.
type RedisLocationStore struct {
	client *redis.Client
}

// NewRedisLocationStore creates a location store backed by the Redis instance
// at redisURL. The URL format is redis://[:password@]host[:port][/database].
func NewRedisLocationStore(redisURL string) (*RedisLocationStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	return &RedisLocationStore{client: redis.NewClient(opts)}, nil
}

// Set records the courier's current position, replacing any previous one.
func (s *RedisLocationStore) Set(
	ctx context.Context,
	courierID kernel.UUID,
	location kernel.Location,
) error {
	payload, err := json.Marshal(locationRecord{
		Latitude:  location.Latitude(),
		Longitude: location.Longitude(),
	})
	if err != nil {
		return fmt.Errorf("failed to encode location: %w", err)
	}

	if err := s.client.Set(ctx, locationKey(courierID), payload, 0).Err(); err != nil {
		return fmt.Errorf("failed to store location for courier %s: %w", courierID, err)
	}
	return nil
}

// Get returns the courier's last reported position.
// Returns an ObjectNotFoundError when the courier never reported one.
func (s *RedisLocationStore) Get(
	ctx context.Context,
	courierID kernel.UUID,
) (kernel.Location, error) {
	payload, err := s.client.Get(ctx, locationKey(courierID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return kernel.Location{}, errs.NewObjectNotFoundError("courier location", courierID.String())
	}
	if err != nil {
		return kernel.Location{}, fmt.Errorf("failed to load location for courier %s: %w", courierID, err)
	}

	return decodeLocation(payload)
}

// GetAll returns the last reported position of every courier that has one.
func (s *RedisLocationStore) GetAll(ctx context.Context) (map[kernel.UUID]kernel.Location, error) {
	locations := make(map[kernel.UUID]kernel.Location)

	iter := s.client.Scan(ctx, 0, locationKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()

		courierID, err := kernel.UUIDFromString(key[len(locationKeyPrefix):])
		if err != nil {
			continue
		}

		payload, err := s.client.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load location for key %s: %w", key, err)
		}

		location, err := decodeLocation(payload)
		if err != nil {
			return nil, err
		}
		locations[courierID] = location
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan courier locations: %w", err)
	}

	return locations, nil
}

// Ping checks if Redis is reachable.
func (s *RedisLocationStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

// Close closes the Redis connection.
func (s *RedisLocationStore) Close() error {
	return s.client.Close()
}

func locationKey(courierID kernel.UUID) string {
	return locationKeyPrefix + courierID.String()
}

func decodeLocation(payload []byte) (kernel.Location, error) {
	var record locationRecord
	if err := json.Unmarshal(payload, &record); err != nil {
		return kernel.Location{}, fmt.Errorf("failed to decode location: %w", err)
	}
	return kernel.NewLocation(record.Latitude, record.Longitude)
}
