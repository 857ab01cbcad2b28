package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/angelmondragon/its27-backend/pkg/enums"
	"github.com/angelmondragon/its27-backend/pkg/logger"
)

// ChangeHandler reacts to a setting change announced by a Broadcaster.
type ChangeHandler func(ctx context.Context, key enums.SettingKey)

// Broadcaster announces that a setting was saved so every API instance can
// refresh its subscribers.
type Broadcaster interface {
	Publish(ctx context.Context, key enums.SettingKey) error
}

// LocalBroadcaster delivers changes to a handler in the same process.
type LocalBroadcaster struct {
	mu      sync.RWMutex
	handler ChangeHandler
}

func NewLocalBroadcaster() *LocalBroadcaster {
	return &LocalBroadcaster{}
}

// Listen registers the handler invoked on Publish.
func (b *LocalBroadcaster) Listen(fn ChangeHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handler = fn
}

func (b *LocalBroadcaster) Publish(ctx context.Context, key enums.SettingKey) error {
	b.mu.RLock()
	fn := b.handler
	b.mu.RUnlock()
	if fn != nil {
		fn(ctx, key)
	}
	return nil
}

type changeMessage struct {
	Key enums.SettingKey `json:"key"`
}

const changeEventType = "site_setting.updated"

type messagePublisher interface {
	Publish(ctx context.Context, msg *pubsub.Message) *pubsub.PublishResult
}

type messageReceiver interface {
	Receive(ctx context.Context, f func(context.Context, *pubsub.Message)) error
}

// PubSubBroadcaster publishes changes to a topic and relays the messages from
// its subscription to a ChangeHandler.
type PubSubBroadcaster struct {
	publisher messagePublisher
	receiver  messageReceiver
	logg      *logger.Logger
}

func NewPubSubBroadcaster(publisher *pubsub.Publisher, receiver *pubsub.Subscriber, logg *logger.Logger) (*PubSubBroadcaster, error) {
	if publisher == nil {
		return nil, errors.New("settings publisher is required")
	}
	if receiver == nil {
		return nil, errors.New("settings subscription is required")
	}
	if logg == nil {
		return nil, errors.New("logger is required")
	}
	return &PubSubBroadcaster{publisher: publisher, receiver: receiver, logg: logg}, nil
}

func (b *PubSubBroadcaster) Publish(ctx context.Context, key enums.SettingKey) error {
	data, err := json.Marshal(changeMessage{Key: key})
	if err != nil {
		return fmt.Errorf("encode setting change: %w", err)
	}
	res := b.publisher.Publish(ctx, &pubsub.Message{
		Data:       data,
		Attributes: map[string]string{"event_type": changeEventType, "key": key.String()},
	})
	if _, err := res.Get(ctx); err != nil {
		return fmt.Errorf("publish setting change: %w", err)
	}
	return nil
}

// Run relays changes until ctx is canceled or the subscription errors.
func (b *PubSubBroadcaster) Run(ctx context.Context, handle ChangeHandler) error {
	return b.receiver.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		b.process(ctx, msg.ID, msg.Data, handle)
		msg.Ack()
	})
}

// process decodes one message. Malformed messages are dropped since a retry
// cannot fix them.
func (b *PubSubBroadcaster) process(ctx context.Context, id string, data []byte, handle ChangeHandler) bool {
	logCtx := b.logg.WithField(ctx, "message_id", id)
	var change changeMessage
	if err := json.Unmarshal(data, &change); err != nil {
		b.logg.Error(logCtx, "settings.change_decode_failed", err)
		return false
	}
	if !change.Key.IsValid() {
		b.logg.Warn(b.logg.WithField(logCtx, "key", change.Key), "settings.change_unknown_key")
		return false
	}
	handle(ctx, change.Key)
	return true
}
