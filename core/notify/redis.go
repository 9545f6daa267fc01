package notify

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// DefaultChannel carries change signals between server processes.
const DefaultChannel = "cafe:storefront:events"

type message struct {
	Origin string `json:"origin"`
	Topic  Topic  `json:"topic"`
}

// RedisRelay delivers signals locally and to every other process
// subscribed to the same channel.
type RedisRelay struct {
	*Router
	client  redis.UniversalClient
	channel string
	origin  string
	logger  *zap.Logger
	ready   chan struct{}
	once    sync.Once
}

func NewRedisRelay(client redis.UniversalClient, channel string, logger *zap.Logger, opts ...RouterOption) *RedisRelay {
	if channel == "" {
		channel = DefaultChannel
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisRelay{
		Router:  NewRouter(opts...),
		client:  client,
		channel: channel,
		origin:  uuid.NewString(),
		logger:  logger,
		ready:   make(chan struct{}),
	}
}

// Notify delivers locally then publishes. Publish failures are logged; the
// local delivery has already happened.
func (r *RedisRelay) Notify(ctx context.Context, topic Topic) {
	r.Router.deliver(topic)
	payload, err := json.Marshal(message{Origin: r.origin, Topic: topic})
	if err != nil {
		return
	}
	if err := r.client.Publish(ctx, r.channel, payload).Err(); err != nil {
		r.logger.Warn("publish storefront event failed", zap.String("topic", topic.Name), zap.Error(err))
	}
}

// Ready is closed once Run has subscribed.
func (r *RedisRelay) Ready() <-chan struct{} {
	return r.ready
}

// Run relays foreign signals into the local router until ctx is done.
func (r *RedisRelay) Run(ctx context.Context) error {
	sub := r.client.Subscribe(ctx, r.channel)
	defer sub.Close()
	if _, err := sub.Receive(ctx); err != nil {
		return err
	}
	r.once.Do(func() { close(r.ready) })

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var m message
			if err := json.Unmarshal([]byte(msg.Payload), &m); err != nil {
				r.logger.Warn("dropping malformed storefront event", zap.Error(err))
				continue
			}
			if m.Origin == r.origin {
				continue
			}
			r.Router.deliver(m.Topic)
		}
	}
}
