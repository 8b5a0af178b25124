// Package redis provides a cadence.Storage implementation backed by a
// Redis hash, with keyspace notifications driving live settings reload.
package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Storage persists settings in a single Redis hash. Each group/key pair
// maps to one hash field named "group:key", so the whole settings document
// stays inspectable with HGETALL.
//
// Watch requires Redis to have keyspace notifications enabled:
//
//	CONFIG SET notify-keyspace-events KEA
//
// Or in redis.conf:
//
//	notify-keyspace-events KEA
type Storage struct {
	client *redis.Client
	key    string
}

// New creates a Storage persisting to the given Redis hash key.
func New(client *redis.Client, key string) *Storage {
	return &Storage{
		client: client,
		key:    key,
	}
}

// field returns the hash field name for group/key.
func field(group, key string) string {
	return fmt.Sprintf("%s:%s", group, key)
}

// Read returns the stored value for group/key, or def when the field is
// absent or Redis is unreachable.
func (s *Storage) Read(group, key, def string) string {
	val, err := s.client.HGet(context.Background(), s.key, field(group, key)).Result()
	if err != nil {
		return def
	}
	return val
}

// Write stores value under group/key.
func (s *Storage) Write(group, key, value string) error {
	if err := s.client.HSet(context.Background(), s.key, field(group, key), value).Err(); err != nil {
		return fmt.Errorf("write %s/%s: %w", group, key, err)
	}
	return nil
}

// Watch emits a notification whenever the hash changes, until ctx is
// cancelled. One notification is emitted immediately so consumers can prime
// themselves; coalescing is built in (a pending notification absorbs
// further changes).
func (s *Storage) Watch(ctx context.Context) (<-chan struct{}, error) {
	// Subscribe to keyspace notifications for the hash key. The channel
	// name carries the database index the client is connected to.
	channel := fmt.Sprintf("__keyspace@%d__:%s", s.client.Options().DB, s.key)
	pubsub := s.client.Subscribe(ctx, channel)

	// Verify subscription worked
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to keyspace notifications: %w", err)
	}

	out := make(chan struct{}, 1)

	go func() {
		defer close(out)
		defer pubsub.Close()

		notify := func() {
			select {
			case out <- struct{}{}:
			default:
			}
		}
		notify()

		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}

				// Only react to operations that mutate the hash
				switch msg.Payload {
				case "hset", "hdel", "del", "expired":
					notify()
				}
			}
		}
	}()

	return out, nil
}
