package events

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Os-De/hs-rp.com/internal/cart"
)

const (
	CartCheckedOutEventName    = "CartCheckedOut"
	CartCheckedOutEventVersion = 1
	CartCheckedOutSchemaPath   = "contracts/events/cart/CartCheckedOut.v1.enveloped.schema.json"
	StorefrontProducer         = "storefront-cart"
)

type EventEnvelope struct {
	EventName     string                `json:"eventName"`
	EventVersion  int                   `json:"eventVersion"`
	EventID       string                `json:"eventId"`
	CorrelationID string                `json:"correlationId,omitempty"`
	CausationID   string                `json:"causationId,omitempty"`
	Producer      string                `json:"producer"`
	PartitionKey  string                `json:"partitionKey"`
	Sequence      int64                 `json:"sequence"`
	OccurredAt    time.Time             `json:"occurredAt"`
	Schema        string                `json:"schema"`
	Payload       CartCheckedOutPayload `json:"payload"`
}

type CartCheckedOutPayload struct {
	CartID      string               `json:"cartId"`
	Items       []CartCheckedOutItem `json:"items"`
	ItemCount   int                  `json:"itemCount"`
	TotalAmount float64              `json:"totalAmount"`
	Timestamp   time.Time            `json:"timestamp"`
}

type CartCheckedOutItem struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Amount    string  `json:"amount"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unitPrice"`
}

type EnvelopeOptions struct {
	PartitionKey  string
	Sequence      int64
	Producer      string
	SchemaPath    string
	CorrelationID string
	CausationID   string
	EventID       string
	OccurredAt    time.Time
}

// BuildCartCheckedOutEvent fills in event id, time, schema and producer when
// opts leaves them empty. The partition key defaults to the cart id.
func BuildCartCheckedOutEvent(cartID string, entries []cart.Entry, opts EnvelopeOptions) EventEnvelope {
	eventID := opts.EventID
	if eventID == "" {
		eventID = uuid.NewString()
	}

	occurredAt := opts.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now().UTC()
	}

	schemaPath := opts.SchemaPath
	if schemaPath == "" {
		schemaPath = CartCheckedOutSchemaPath
	}

	producer := opts.Producer
	if producer == "" {
		producer = StorefrontProducer
	}

	partitionKey := opts.PartitionKey
	if partitionKey == "" {
		partitionKey = cartID
	}

	payload := CartCheckedOutPayload{
		CartID:    cartID,
		Items:     make([]CartCheckedOutItem, 0, len(entries)),
		Timestamp: occurredAt,
	}

	total := decimal.Zero
	for _, e := range entries {
		payload.Items = append(payload.Items, CartCheckedOutItem{
			ProductID: e.ID,
			Name:      e.Name,
			Amount:    e.Amount,
			Quantity:  e.Quantity,
			UnitPrice: e.UnitPrice,
		})
		payload.ItemCount += e.Quantity
		total = total.Add(decimal.NewFromFloat(e.UnitPrice).Mul(decimal.NewFromInt(int64(e.Quantity))))
	}
	payload.TotalAmount = total.Round(2).InexactFloat64()

	return EventEnvelope{
		EventName:     CartCheckedOutEventName,
		EventVersion:  CartCheckedOutEventVersion,
		EventID:       eventID,
		CorrelationID: opts.CorrelationID,
		CausationID:   opts.CausationID,
		Producer:      producer,
		PartitionKey:  partitionKey,
		Sequence:      opts.Sequence,
		OccurredAt:    occurredAt,
		Schema:        schemaPath,
		Payload:       payload,
	}
}
