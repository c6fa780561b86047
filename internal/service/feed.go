package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/kumpul-tugas/internal/config"
	"github.com/stemsi/kumpul-tugas/internal/model"
)

// Feed broadcasts newly stored submissions to admin viewers.
type Feed interface {
	Publish(ctx context.Context, sub model.Submission) error
	// Subscribe returns a channel of new submissions and a function that
	// ends the subscription and closes the channel.
	Subscribe(ctx context.Context) (<-chan model.Submission, func(), error)
}

// RedisFeed fans submissions out over Redis Pub/Sub so every server
// instance sees them.
type RedisFeed struct {
	rdb *redis.Client
	log zerolog.Logger
}

// NewRedisFeed creates a new RedisFeed.
func NewRedisFeed(rdb *redis.Client, log zerolog.Logger) *RedisFeed {
	return &RedisFeed{
		rdb: rdb,
		log: log.With().Str("component", "redis_feed").Logger(),
	}
}

// Publish sends sub to the feed channel.
func (f *RedisFeed) Publish(ctx context.Context, sub model.Submission) error {
	payload, err := json.Marshal(sub)
	if err != nil {
		return fmt.Errorf("marshal submission: %w", err)
	}
	return f.rdb.Publish(ctx, config.CacheKey.SubmissionFeedChannel(), payload).Err()
}

// Subscribe attaches to the feed channel.
func (f *RedisFeed) Subscribe(ctx context.Context) (<-chan model.Submission, func(), error) {
	pubsub := f.rdb.Subscribe(ctx, config.CacheKey.SubmissionFeedChannel())
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, nil, fmt.Errorf("subscribe feed: %w", err)
	}

	out := make(chan model.Submission, 16)
	done := make(chan struct{})
	go func() {
		defer close(out)
		msgs := pubsub.Channel()
		for {
			select {
			case <-done:
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var sub model.Submission
				if err := json.Unmarshal([]byte(msg.Payload), &sub); err != nil {
					f.log.Warn().Err(err).Msg("dropping malformed feed message")
					continue
				}
				select {
				case out <- sub:
				case <-done:
					return
				}
			}
		}
	}()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			close(done)
			pubsub.Close()
		})
	}
	return out, cancel, nil
}

// MemoryFeed is an in-process Feed for single-instance deployments.
// Slow subscribers miss events instead of blocking submissions.
type MemoryFeed struct {
	mu   sync.Mutex
	next int
	subs map[int]chan model.Submission
}

// NewMemoryFeed creates a new MemoryFeed.
func NewMemoryFeed() *MemoryFeed {
	return &MemoryFeed{subs: make(map[int]chan model.Submission)}
}

// Publish delivers sub to every current subscriber.
func (f *MemoryFeed) Publish(_ context.Context, sub model.Submission) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, ch := range f.subs {
		select {
		case ch <- sub:
		default:
		}
	}
	return nil
}

// Subscribe registers a new subscriber.
func (f *MemoryFeed) Subscribe(_ context.Context) (<-chan model.Submission, func(), error) {
	f.mu.Lock()
	id := f.next
	f.next++
	ch := make(chan model.Submission, 16)
	f.subs[id] = ch
	f.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			f.mu.Lock()
			delete(f.subs, id)
			close(ch)
			f.mu.Unlock()
		})
	}
	return ch, cancel, nil
}
