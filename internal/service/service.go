// Package service provides the implementation of product-related business logic.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	perrors "github.com/abgdnv/catalog/internal/errors"
	"github.com/abgdnv/catalog/internal/events"
	"github.com/abgdnv/catalog/internal/store"
	"github.com/abgdnv/catalog/pkg/messaging"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
)

// ProductService defines the methods for managing products.
// It abstracts the underlying business logic and data access.
type ProductService interface {
	// Create adds a new available product.
	// Store errors are returned unmodified.
	Create(ctx context.Context, product ProductCreateDto) (*ProductDto, error)

	// FindAll returns one page of available products together with paging metadata.
	// A page past the end yields empty data, not an error.
	FindAll(ctx context.Context, pagination PaginationDto) (*PageDto, error)

	// FindOne retrieves an available product by id.
	// Returns *errors.NotFoundError if no available product has that id.
	FindOne(ctx context.Context, id int64) (*ProductDto, error)

	// Update applies the non-nil fields of the patch. Any id in the patch is ignored.
	// Returns *errors.NotFoundError if no available product has that id.
	Update(ctx context.Context, id int64, patch ProductUpdateDto) (*ProductDto, error)

	// Remove soft deletes a product by marking it unavailable.
	// Returns *errors.NotFoundError if no available product has that id.
	Remove(ctx context.Context, id int64) (*ProductDto, error)
}

// Service implements ProductService and provides methods to manage products.
type Service struct {
	store     store.ProductStore
	publisher messaging.Publisher

	createdCounter metric.Int64Counter
	updatedCounter metric.Int64Counter
	removedCounter metric.Int64Counter
}

// NewService creates a new instance of ProductService. A nil publisher disables events.
func NewService(productStore store.ProductStore, publisher messaging.Publisher) *Service {
	if publisher == nil {
		publisher = messaging.NopPublisher{}
	}
	meter := otel.Meter("catalog-service")
	return &Service{
		store:          productStore,
		publisher:      publisher,
		createdCounter: mustCounter(meter, "products_created", "Total number of created products"),
		updatedCounter: mustCounter(meter, "products_updated", "Total number of updated products"),
		removedCounter: mustCounter(meter, "products_removed", "Total number of removed products"),
	}
}

func mustCounter(meter metric.Meter, name, description string) metric.Int64Counter {
	counter, err := meter.Int64Counter(name, metric.WithDescription(description))
	if err != nil {
		panic(fmt.Sprintf("failed to create %s counter: %v", name, err))
	}
	return counter
}

// ProductCreateDto represents the data transfer object for creating a new product.
type ProductCreateDto struct {
	Name  string  `json:"name"  validate:"required,max=100"`
	Price float64 `json:"price" validate:"min=0"`
}

// ProductUpdateDto is a partial update. ID is accepted on the wire and discarded.
type ProductUpdateDto struct {
	ID    *int64   `json:"id,omitempty"`
	Name  *string  `json:"name,omitempty"  validate:"omitempty,min=1,max=100"`
	Price *float64 `json:"price,omitempty" validate:"omitempty,min=0"`
}

// ProductDto represents the data transfer object for a product.
type ProductDto struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Price     float64   `json:"price"`
	Available bool      `json:"available"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// PaginationDto is a 1-based page request.
type PaginationDto struct {
	Page  int32 `json:"page"  validate:"min=1"`
	Limit int32 `json:"limit" validate:"min=1,max=100"`
}

// PageMeta describes the position of a page within the whole result set.
type PageMeta struct {
	Total    int64 `json:"total"`
	Page     int32 `json:"page"`
	LastPage int64 `json:"lastPage"`
}

// PageDto is one page of products.
type PageDto struct {
	Data []ProductDto `json:"data"`
	Meta PageMeta     `json:"meta"`
}

// Create inserts a new product and returns it as a ProductDto.
func (s *Service) Create(ctx context.Context, product ProductCreateDto) (*ProductDto, error) {
	created, err := s.store.Create(ctx, store.CreateParams{Name: product.Name, Price: product.Price})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.ProductCreatedEvent{
		Carrier:   traceCarrier(ctx),
		ProductID: created.ID,
		Name:      created.Name,
		Price:     created.Price,
		CreatedAt: created.CreatedAt,
	})
	s.createdCounter.Add(ctx, 1)

	return toDto(created), nil
}

// FindAll counts the available products and fetches the requested page of them.
func (s *Service) FindAll(ctx context.Context, pagination PaginationDto) (*PageDto, error) {
	paging := NewPaging(pagination)

	total, err := s.store.Count(ctx, true)
	if err != nil {
		return nil, err
	}

	products, err := s.store.FindMany(ctx, true, paging.Offset(), paging.Limit)
	if err != nil {
		return nil, err
	}

	data := make([]ProductDto, len(products))
	for i := range products {
		data[i] = *toDto(&products[i])
	}

	return &PageDto{
		Data: data,
		Meta: PageMeta{
			Total:    total,
			Page:     pagination.Page,
			LastPage: paging.LastPage(total),
		},
	}, nil
}

// FindOne is the existence check used by every operation that addresses a single product.
func (s *Service) FindOne(ctx context.Context, id int64) (*ProductDto, error) {
	product, err := s.store.FindFirst(ctx, id, true)
	if err != nil {
		if errors.Is(err, perrors.ErrProductNotFound) {
			return nil, perrors.NewNotFound(id)
		}
		return nil, err
	}
	return toDto(product), nil
}

// Update checks that the product exists, then applies the patch by id.
// The check and the write are separate store calls.
func (s *Service) Update(ctx context.Context, id int64, patch ProductUpdateDto) (*ProductDto, error) {
	if _, err := s.FindOne(ctx, id); err != nil {
		return nil, err
	}

	updated, err := s.store.Update(ctx, id, store.UpdateParams{Name: patch.Name, Price: patch.Price})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.ProductUpdatedEvent{
		Carrier:   traceCarrier(ctx),
		ProductID: updated.ID,
		Name:      updated.Name,
		Price:     updated.Price,
		UpdatedAt: updated.UpdatedAt,
	})
	s.updatedCounter.Add(ctx, 1)

	return toDto(updated), nil
}

// Remove checks that the product exists, then marks it unavailable.
func (s *Service) Remove(ctx context.Context, id int64) (*ProductDto, error) {
	if _, err := s.FindOne(ctx, id); err != nil {
		return nil, err
	}

	unavailable := false
	removed, err := s.store.Update(ctx, id, store.UpdateParams{Available: &unavailable})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.ProductRemovedEvent{
		Carrier:   traceCarrier(ctx),
		ProductID: removed.ID,
		RemovedAt: removed.UpdatedAt,
	})
	s.removedCounter.Add(ctx, 1)

	return toDto(removed), nil
}

// publish sends the event and only logs a failure; the mutation has already been committed.
func (s *Service) publish(ctx context.Context, event messaging.Event) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		slog.ErrorContext(ctx, "Failed to publish event", "subject", event.Subject(), "error", err)
	}
}

func traceCarrier(ctx context.Context) propagation.MapCarrier {
	carrier := make(propagation.MapCarrier)
	otel.GetTextMapPropagator().Inject(ctx, carrier)
	return carrier
}

// toDto converts a store.Product to a ProductDto.
func toDto(product *store.Product) *ProductDto {
	return &ProductDto{
		ID:        product.ID,
		Name:      product.Name,
		Price:     product.Price,
		Available: product.Available,
		CreatedAt: product.CreatedAt,
		UpdatedAt: product.UpdatedAt,
	}
}
