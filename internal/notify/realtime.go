package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"visitgate/internal/platform/kafka"
	"visitgate/pkg/domain"
)

// KafkaNotifier publishes realtime host notifications to the notification
// topic. Delivery is fire-and-forget; a dropped ping is not worth failing a
// check-in over.
type KafkaNotifier struct {
	producer *kafka.Producer
	topic    string
	logger   *slog.Logger
}

func NewKafkaNotifier(producer *kafka.Producer, topic string, logger *slog.Logger) *KafkaNotifier {
	return &KafkaNotifier{producer: producer, topic: topic, logger: logger}
}

// Notify publishes one notification keyed by the target user so one host's
// pings stay ordered.
func (n *KafkaNotifier) Notify(ctx context.Context, notification Notification) {
	payload, err := json.Marshal(notification)
	if err != nil {
		n.logger.ErrorContext(ctx, "marshal notification", "error", err)
		return
	}
	key := []byte(notification.UserID.String())
	n.producer.ProduceAsync(ctx, n.topic, key, payload, func(err error) {
		n.logger.WarnContext(ctx, "notification delivery failed",
			"user_id", notification.UserID.String(),
			"error", err,
		)
	})
}

// InMemoryNotifier collects notifications for tests and for running without
// Kafka.
type InMemoryNotifier struct {
	mu   sync.Mutex
	sent []Notification
}

func NewInMemoryNotifier() *InMemoryNotifier {
	return &InMemoryNotifier{}
}

func (n *InMemoryNotifier) Notify(_ context.Context, notification Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, notification)
}

// Sent returns a copy of everything notified so far.
func (n *InMemoryNotifier) Sent() []Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Notification(nil), n.sent...)
}

// SentTo filters sent notifications by target user.
func (n *InMemoryNotifier) SentTo(userID domain.UserID) []Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []Notification
	for _, notification := range n.sent {
		if notification.UserID == userID {
			out = append(out, notification)
		}
	}
	return out
}
