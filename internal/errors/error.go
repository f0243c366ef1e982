// Package errors provides custom error types for product-related operations.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrProductConflict = errors.New("product already exists")
)

// NotFoundError reports that no available product has the requested id.
// Status is the status code transports report to callers.
type NotFoundError struct {
	ID     int64
	Status int
}

// NewNotFound returns the not-found failure for id.
func NewNotFound(id int64) *NotFoundError {
	return &NotFoundError{ID: id, Status: http.StatusBadRequest}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("Product with id #%d not found", e.ID)
}

func (e *NotFoundError) Unwrap() error {
	return ErrProductNotFound
}
