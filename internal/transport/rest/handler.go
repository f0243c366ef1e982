// Package rest provides HTTP handlers for catalog operations.
package rest

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	perrors "github.com/abgdnv/catalog/internal/errors"
	"github.com/abgdnv/catalog/internal/service"
	"github.com/abgdnv/catalog/pkg/web"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

const (
	defaultPage  int32 = 1
	defaultLimit int32 = 10
)

// ErrorResponse is the body of a not-found reply.
type ErrorResponse struct {
	Message string `json:"message"`
	Status  int    `json:"status"`
}

type Handler struct {
	service  service.ProductService
	validate *validator.Validate
	logger   *slog.Logger
	auth     func(http.Handler) http.Handler
}

// NewHandler creates a new Handler. A non-nil auth middleware guards the write endpoints.
func NewHandler(service service.ProductService, logger *slog.Logger, auth func(http.Handler) http.Handler) *Handler {
	return &Handler{
		service:  service,
		validate: validator.New(),
		logger:   logger.With("component", "rest"),
		auth:     auth,
	}
}

// RegisterRoutes registers the HTTP routes for the catalog service.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1/products", func(r chi.Router) {
		r.Get("/", h.FindAll)
		r.Get("/{id}", h.FindOne)

		r.Group(func(r chi.Router) {
			if h.auth != nil {
				r.Use(h.auth)
			}
			r.Post("/", h.Create)
			r.Patch("/{id}", h.Update)
			r.Delete("/{id}", h.Remove)
		})
	})

	r.Get("/healthz", h.HealthCheck)
}

// FindAll returns one page of available products.
func (h *Handler) FindAll(w http.ResponseWriter, r *http.Request) {
	page, ok := web.ParseQueryInt(r, w, h.logger, "page", defaultPage, web.Gte(1))
	if !ok {
		return
	}
	limit, ok := web.ParseQueryInt(r, w, h.logger, "limit", defaultLimit, web.Between(1, int64(service.MaxLimit)))
	if !ok {
		return
	}
	h.logger.DebugContext(r.Context(), "Received request to find all products", "page", page, "limit", limit)
	result, err := h.service.FindAll(r.Context(), service.PaginationDto{Page: page, Limit: limit})
	if err != nil {
		h.respondServiceError(w, r, err, "Failed to fetch products")
		return
	}
	h.logger.DebugContext(r.Context(), "Successfully retrieved product list", "count", len(result.Data), "total", result.Meta.Total)
	web.RespondJSON(w, h.logger, http.StatusOK, result)
}

// FindOne retrieves an available product by its ID.
func (h *Handler) FindOne(w http.ResponseWriter, r *http.Request) {
	id, ok := web.ParseID(w, r, h.logger)
	if !ok {
		return
	}
	h.logger.DebugContext(r.Context(), "Received request to find product by ID", "ID", id)
	found, err := h.service.FindOne(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, r, err, "Failed to retrieve product")
		return
	}
	web.RespondJSON(w, h.logger, http.StatusOK, found)
}

// Create handles the creation of a new product.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var productCreateDto service.ProductCreateDto
	if !h.decodeAndValidate(w, r, &productCreateDto) {
		return
	}

	newProduct, err := h.service.Create(r.Context(), productCreateDto)
	if err != nil {
		h.respondServiceError(w, r, err, "Failed to create product")
		return
	}
	h.logger.InfoContext(r.Context(), "Product created successfully", "ID", newProduct.ID, "Name", newProduct.Name)
	web.RespondJSON(w, h.logger, http.StatusCreated, newProduct)
}

// Update applies a partial update. An id in the body is ignored in favour of the path.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := web.ParseID(w, r, h.logger)
	if !ok {
		return
	}
	var patch service.ProductUpdateDto
	if !h.decodeAndValidate(w, r, &patch) {
		return
	}

	updated, err := h.service.Update(r.Context(), id, patch)
	if err != nil {
		h.respondServiceError(w, r, err, "Failed to update product")
		return
	}
	h.logger.InfoContext(r.Context(), "Product updated successfully", "ID", updated.ID, "Name", updated.Name)
	web.RespondJSON(w, h.logger, http.StatusOK, updated)
}

// Remove soft deletes a product and returns it.
func (h *Handler) Remove(w http.ResponseWriter, r *http.Request) {
	id, ok := web.ParseID(w, r, h.logger)
	if !ok {
		return
	}
	removed, err := h.service.Remove(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, r, err, "Failed to remove product")
		return
	}
	h.logger.InfoContext(r.Context(), "Product removed successfully", "ID", id)
	web.RespondJSON(w, h.logger, http.StatusOK, removed)
}

// HealthCheck is a simple health check endpoint.
func (h *Handler) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// decodeAndValidate reads the JSON body into dst and runs struct validation.
// On failure it writes a 400 response and returns false.
func (h *Handler) decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.logger.WarnContext(r.Context(), "Error decoding request body", "error", err)
		web.RespondError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			errorResponse := make(map[string]string)
			for _, fieldErr := range validationErrors {
				errorResponse[fieldErr.Field()] = "failed on rule: " + fieldErr.Tag()
			}
			h.logger.WarnContext(r.Context(), "Validation errors occurred", "errors", errorResponse)
			web.RespondJSON(w, h.logger, http.StatusBadRequest, map[string]any{"validation_errors": errorResponse})
			return false
		}
		h.logger.ErrorContext(r.Context(), "Error validating request body", "error", err)
		web.RespondError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

// respondServiceError maps a service failure to an HTTP reply.
func (h *Handler) respondServiceError(w http.ResponseWriter, r *http.Request, err error, message string) {
	var notFound *perrors.NotFoundError
	switch {
	case errors.As(err, &notFound):
		h.logger.WarnContext(r.Context(), "Product not found", "ID", notFound.ID)
		web.RespondJSON(w, h.logger, notFound.Status, ErrorResponse{Message: notFound.Error(), Status: notFound.Status})
	case errors.Is(err, perrors.ErrProductConflict):
		h.logger.WarnContext(r.Context(), "Product name conflict", "error", err)
		web.RespondError(w, h.logger, http.StatusConflict, "Product with this name already exists")
	default:
		h.logger.ErrorContext(r.Context(), message, "error", err)
		web.RespondError(w, h.logger, http.StatusInternalServerError, message)
	}
}
