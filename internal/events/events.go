// Package events publishes domain events of committed orders.
package events

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/wichananm65/wholesale-shop/internal/order"
)

const OrderCompleted = "order.completed"

// Publisher announces completed orders. Implementations must not mutate o.
type Publisher interface {
	PublishOrderCompleted(ctx context.Context, o order.Order) error
	Close() error
}

type OrderCompletedEvent struct {
	OrderID    int64           `json:"orderId"`
	BuyerEmail string          `json:"buyerEmail"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
	Items      []EventItem     `json:"items"`
	OccurredAt time.Time       `json:"occurredAt"`
}

type EventItem struct {
	ProductID int64           `json:"productId"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

func NewOrderCompletedEvent(o order.Order) OrderCompletedEvent {
	items := make([]EventItem, len(o.Items))
	for i, it := range o.Items {
		items[i] = EventItem{ProductID: it.ProductID, Quantity: it.Quantity, Price: it.Price}
	}
	return OrderCompletedEvent{
		OrderID:    o.ID,
		BuyerEmail: o.BuyerEmail,
		TotalPrice: o.TotalPrice,
		Items:      items,
		OccurredAt: o.UpdatedAt,
	}
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes one message per order, keyed by order id so all
// events of an order land on the same partition.
type KafkaPublisher struct {
	writer messageWriter
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{writer: &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
	}}
}

func (p *KafkaPublisher) PublishOrderCompleted(ctx context.Context, o order.Order) error {
	payload, err := json.Marshal(NewOrderCompletedEvent(o))
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:     []byte(strconv.FormatInt(o.ID, 10)),
		Value:   payload,
		Headers: []kafka.Header{{Key: "event_type", Value: []byte(OrderCompleted)}},
	})
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NopPublisher drops every event. Used when no brokers are configured.
type NopPublisher struct{}

func (NopPublisher) PublishOrderCompleted(context.Context, order.Order) error { return nil }
func (NopPublisher) Close() error                                            { return nil }
