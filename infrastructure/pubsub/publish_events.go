package pubsub

import (
	"context"
	"encoding/json"
	"time"

	"cloud.google.com/go/pubsub"

	"vendor-portal/domain/model"
	"vendor-portal/infrastructure/logger"
)

// NewPubSub creates the Pub/Sub client for the configured project.
func NewPubSub(ctx context.Context, projectID string) (*pubsub.Client, error) {
	return pubsub.NewClient(ctx, projectID)
}

// ProductPublishedEvent is the message body emitted after every publish
// attempt resolves.
type ProductPublishedEvent struct {
	ProductID         int64     `json:"product_id"`
	StorefrontID      string    `json:"storefront_id"`
	Success           bool      `json:"success"`
	PlatformProductID string    `json:"platform_product_id,omitempty"`
	Error             string    `json:"error,omitempty"`
	OccurredAt        time.Time `json:"occurred_at"`
}

type IPublishEvents interface {
	ProductPublished(ctx context.Context, event ProductPublishedEvent) error
}

// PublishEvents emits publish outcomes to a Pub/Sub topic. A nil client makes
// every emit a no-op; moderation never blocks on the broker.
type PublishEvents struct {
	client *pubsub.Client
	topic  string
}

func NewPublishEvents(client *pubsub.Client, topic string) IPublishEvents {
	return &PublishEvents{client: client, topic: topic}
}

func (p *PublishEvents) ProductPublished(ctx context.Context, event ProductPublishedEvent) error {
	if p.client == nil {
		return nil
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	topic := p.client.Topic(p.topic)
	exists, err := topic.Exists(ctx)
	if err != nil {
		return err
	}
	if !exists {
		logger.GetLogger().WithField("topic", p.topic).Info("Topic doesn't exist - creating it")
		if _, err := p.client.CreateTopic(ctx, p.topic); err != nil {
			return err
		}
	}

	serverID, err := topic.Publish(ctx, &pubsub.Message{Data: payload}).Get(ctx)
	if err != nil {
		return err
	}
	logger.GetLogger().
		WithField("server ID", serverID).
		WithField("product_id", event.ProductID).
		Info("Publish event emitted")
	return nil
}

// FromResult builds the event body from a resolved publish attempt.
func FromResult(productID int64, storefrontID string, result model.PublishResult) ProductPublishedEvent {
	return ProductPublishedEvent{
		ProductID:         productID,
		StorefrontID:      storefrontID,
		Success:           result.Success,
		PlatformProductID: result.PlatformProductID,
		Error:             result.ErrorMessage(),
		OccurredAt:        time.Now().UTC(),
	}
}
