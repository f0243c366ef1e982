// Package events defines the product lifecycle events published by the catalog service.
package events

import (
	"encoding/json"
	"time"

	"github.com/abgdnv/catalog/pkg/messaging"
	"go.opentelemetry.io/otel/propagation"
)

type ProductCreatedEvent struct {
	Carrier   propagation.MapCarrier `json:"carrier,omitempty"`
	ProductID int64                  `json:"product_id"`
	Name      string                 `json:"name"`
	Price     float64                `json:"price"`
	CreatedAt time.Time              `json:"created_at"`
}

func (e ProductCreatedEvent) Subject() string {
	return messaging.ProductCreatedSubject
}

func (e ProductCreatedEvent) Payload() ([]byte, error) {
	return json.Marshal(e)
}

type ProductUpdatedEvent struct {
	Carrier   propagation.MapCarrier `json:"carrier,omitempty"`
	ProductID int64                  `json:"product_id"`
	Name      string                 `json:"name"`
	Price     float64                `json:"price"`
	UpdatedAt time.Time              `json:"updated_at"`
}

func (e ProductUpdatedEvent) Subject() string {
	return messaging.ProductUpdatedSubject
}

func (e ProductUpdatedEvent) Payload() ([]byte, error) {
	return json.Marshal(e)
}

// ProductRemovedEvent is emitted when a product is soft deleted.
type ProductRemovedEvent struct {
	Carrier   propagation.MapCarrier `json:"carrier,omitempty"`
	ProductID int64                  `json:"product_id"`
	RemovedAt time.Time              `json:"removed_at"`
}

func (e ProductRemovedEvent) Subject() string {
	return messaging.ProductRemovedSubject
}

func (e ProductRemovedEvent) Payload() ([]byte, error) {
	return json.Marshal(e)
}
