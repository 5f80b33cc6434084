package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"cloud.google.com/go/pubsub"

	"github.com/ArtemMikhailenko/mikle-wagn-sub001/internal/services"
)

// PubSubDiscountEventPublisher publishes discount redemption events to a
// Pub/Sub topic consumed by downstream analytics and CRM jobs.
type PubSubDiscountEventPublisher struct {
	topic   *pubsub.Topic
	marshal func(any) ([]byte, error)
}

// NewPubSubDiscountEventPublisher constructs a Pub/Sub backed discount event publisher.
func NewPubSubDiscountEventPublisher(topic *pubsub.Topic) (*PubSubDiscountEventPublisher, error) {
	if topic == nil {
		return nil, errors.New("pubsub discount publisher: topic is required")
	}
	return &PubSubDiscountEventPublisher{
		topic:   topic,
		marshal: json.Marshal,
	}, nil
}

// PublishDiscountRedeemed enqueues a redemption event message on the configured topic.
func (p *PubSubDiscountEventPublisher) PublishDiscountRedeemed(ctx context.Context, event services.DiscountRedeemedEvent) (string, error) {
	if p == nil || p.topic == nil {
		return "", errors.New("pubsub discount publisher: not initialised")
	}

	data, err := p.marshal(event)
	if err != nil {
		return "", fmt.Errorf("marshal discount event: %w", err)
	}

	attrs := make(map[string]string)
	setAttr(attrs, "discountId", event.DiscountID)
	setAttr(attrs, "code", event.Code)
	setAttr(attrs, "orderId", event.OrderID)

	result := p.topic.Publish(ctx, &pubsub.Message{
		Data:       data,
		Attributes: attrs,
	})

	id, err := result.Get(ctx)
	if err != nil {
		return "", fmt.Errorf("publish discount event: %w", err)
	}
	return id, nil
}

func setAttr(attrs map[string]string, key string, value string) {
	if v := strings.TrimSpace(value); v != "" {
		attrs[key] = v
	}
}
