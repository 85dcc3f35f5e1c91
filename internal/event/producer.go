package event

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/mgolovanova35-netizen/wishlist-backend/internal/domain"
	"github.com/mgolovanova35-netizen/wishlist-backend/pkg/logger"
	pkgkafka "github.com/mgolovanova35-netizen/wishlist-backend/pkg/kafka"
)

// Kafka topics for wishlist domain events.
const (
	TopicItemAdded    = "wishlist.item.added"
	TopicItemReserved = "wishlist.item.reserved"
)

const (
	aggregateTypeItem = "wishlist_item"
	source            = "wishlist-backend"
)

// ItemAddedData is the payload for an item.added event.
type ItemAddedData struct {
	ItemID     int64  `json:"item_id"`
	WishlistID int64  `json:"wishlist_id"`
	OwnerID    int64  `json:"owner_id"`
	URL        string `json:"url"`
}

// ItemReservedData is the payload for an item.reserved event.
type ItemReservedData struct {
	ItemID       int64  `json:"item_id"`
	WishlistID   int64  `json:"wishlist_id"`
	ReservedBy   int64  `json:"reserved_by"`
	ReservedName string `json:"reserved_name"`
}

// Producer publishes wishlist domain events. Publishing is best-effort: a
// broker outage is logged and never fails the user's request. A nil
// *Producer is a valid no-op, used when events are disabled.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates an event producer.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{kafka: kafka, logger: logger}
}

// ItemAdded publishes an item.added event.
func (p *Producer) ItemAdded(ctx context.Context, item *domain.WishlistItem, ownerID int64) {
	if p == nil {
		return
	}
	p.publish(ctx, TopicItemAdded, "item.added", item.ID, ItemAddedData{
		ItemID:     item.ID,
		WishlistID: item.WishlistID,
		OwnerID:    ownerID,
		URL:        item.URL,
	})
}

// ItemReserved publishes an item.reserved event.
func (p *Producer) ItemReserved(ctx context.Context, item *domain.WishlistItem) {
	if p == nil || item.ReservedBy == nil {
		return
	}
	var name string
	if item.ReservedName != nil {
		name = *item.ReservedName
	}
	p.publish(ctx, TopicItemReserved, "item.reserved", item.ID, ItemReservedData{
		ItemID:       item.ID,
		WishlistID:   item.WishlistID,
		ReservedBy:   *item.ReservedBy,
		ReservedName: name,
	})
}

func (p *Producer) publish(ctx context.Context, topic, eventType string, itemID int64, data any) {
	evt, err := pkgkafka.NewEvent(eventType, strconv.FormatInt(itemID, 10), aggregateTypeItem, source, data)
	if err != nil {
		p.logger.ErrorContext(ctx, "build event failed",
			slog.String("event_type", eventType),
			slog.String("error", err.Error()),
		)
		return
	}
	evt.WithCorrelationID(logger.CorrelationIDFromContext(ctx))

	if err := p.kafka.Publish(ctx, topic, evt); err != nil {
		// Already logged by the kafka producer; events are best-effort.
		return
	}
}
