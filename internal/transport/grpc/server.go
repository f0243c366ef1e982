// Package grpc provides a gRPC server for the catalog service.
package grpc

import (
	"context"
	"errors"
	"log/slog"

	perrors "github.com/abgdnv/catalog/internal/errors"
	"github.com/abgdnv/catalog/internal/service"
	"github.com/go-playground/validator/v10"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	defaultPage  int32 = 1
	defaultLimit int32 = 10
)

// IDRequest addresses a single product.
type IDRequest struct {
	ID int64 `json:"id" validate:"gt=0"`
}

// FindAllRequest is a page request; missing fields take the defaults.
type FindAllRequest struct {
	Page  *int32 `json:"page,omitempty"  validate:"omitempty,min=1"`
	Limit *int32 `json:"limit,omitempty" validate:"omitempty,min=1,max=100"`
}

// UpdateRequest carries the product id and the patch in one object.
type UpdateRequest struct {
	ID    int64    `json:"id"              validate:"gt=0"`
	Name  *string  `json:"name,omitempty"  validate:"omitempty,min=1,max=100"`
	Price *float64 `json:"price,omitempty" validate:"omitempty,min=0"`
}

type Server struct {
	service  service.ProductService
	validate *validator.Validate
	logger   *slog.Logger
}

var _ CatalogServer = (*Server)(nil)

func NewServer(service service.ProductService, logger *slog.Logger) *Server {
	return &Server{
		service:  service,
		validate: validator.New(),
		logger:   logger.With("component", "grpc"),
	}
}

// Register adds the catalog service to a gRPC server.
func (s *Server) Register(g *grpc.Server) {
	RegisterCatalogServer(g, s)
}

func (s *Server) CreateProduct(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var dto service.ProductCreateDto
	if err := s.decode(req, &dto); err != nil {
		return nil, err
	}
	created, err := s.service.Create(ctx, dto)
	if err != nil {
		return nil, s.toStatus(ctx, "CreateProduct", err)
	}
	return s.encode(created)
}

func (s *Server) FindAllProducts(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in FindAllRequest
	if err := s.decode(req, &in); err != nil {
		return nil, err
	}
	pagination := service.PaginationDto{Page: defaultPage, Limit: defaultLimit}
	if in.Page != nil {
		pagination.Page = *in.Page
	}
	if in.Limit != nil {
		pagination.Limit = *in.Limit
	}
	page, err := s.service.FindAll(ctx, pagination)
	if err != nil {
		return nil, s.toStatus(ctx, "FindAllProducts", err)
	}
	return s.encode(page)
}

func (s *Server) FindOneProduct(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in IDRequest
	if err := s.decode(req, &in); err != nil {
		return nil, err
	}
	found, err := s.service.FindOne(ctx, in.ID)
	if err != nil {
		return nil, s.toStatus(ctx, "FindOneProduct", err)
	}
	return s.encode(found)
}

func (s *Server) UpdateProduct(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in UpdateRequest
	if err := s.decode(req, &in); err != nil {
		return nil, err
	}
	updated, err := s.service.Update(ctx, in.ID, service.ProductUpdateDto{ID: &in.ID, Name: in.Name, Price: in.Price})
	if err != nil {
		return nil, s.toStatus(ctx, "UpdateProduct", err)
	}
	return s.encode(updated)
}

func (s *Server) RemoveProduct(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in IDRequest
	if err := s.decode(req, &in); err != nil {
		return nil, err
	}
	removed, err := s.service.Remove(ctx, in.ID)
	if err != nil {
		return nil, s.toStatus(ctx, "RemoveProduct", err)
	}
	return s.encode(removed)
}

// decode unpacks and validates a request; failures are InvalidArgument.
func (s *Server) decode(req *structpb.Struct, v any) error {
	if err := Decode(req, v); err != nil {
		return status.Error(codes.InvalidArgument, err.Error())
	}
	if err := s.validate.Struct(v); err != nil {
		return status.Errorf(codes.InvalidArgument, "validation failed: %v", err)
	}
	return nil
}

func (s *Server) encode(v any) (*structpb.Struct, error) {
	out, err := Encode(v)
	if err != nil {
		s.logger.Error("failed to encode response", "error", err)
		return nil, status.Error(codes.Internal, "internal server error")
	}
	return out, nil
}

// toStatus maps service errors to gRPC status codes.
func (s *Server) toStatus(ctx context.Context, method string, err error) error {
	var notFound *perrors.NotFoundError
	switch {
	case errors.As(err, &notFound):
		return status.Error(codes.NotFound, notFound.Error())
	case errors.Is(err, perrors.ErrProductNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, perrors.ErrProductConflict):
		return status.Error(codes.AlreadyExists, err.Error())
	default:
		s.logger.ErrorContext(ctx, "service call failed", "method", method, "error", err)
		return status.Error(codes.Internal, "internal server error")
	}
}
