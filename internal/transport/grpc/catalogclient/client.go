// Package catalogclient is a typed gRPC client for the catalog service.
package catalogclient

import (
	"context"
	"fmt"

	"github.com/abgdnv/catalog/internal/service"
	catalogrpc "github.com/abgdnv/catalog/internal/transport/grpc"
	"github.com/abgdnv/catalog/pkg/client/grpc/interceptors"
	"github.com/abgdnv/catalog/pkg/config"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"
)

const breakerName = "catalog-service-cb"

// Client calls catalog.v1.CatalogService. Calls are bounded by the configured timeout,
// transient failures are retried and repeated failures open a circuit breaker.
type Client struct {
	conn *grpc.ClientConn
}

// New dials the catalog service. Extra options are appended after the defaults.
func New(cfg config.GrpcClientConfig, opts ...grpc.DialOption) (*Client, error) {
	dialOpts := []grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithStatsHandler(otelgrpc.NewClientHandler()),
		grpc.WithChainUnaryInterceptor(
			interceptors.UnaryClientTimeoutInterceptor(cfg.Timeout),
			interceptors.NewRetryInterceptor(cfg.Resilience.Retry),
			interceptors.NewCircuitBreaker(breakerName, cfg.Resilience.CircuitBreaker),
		),
	}
	dialOpts = append(dialOpts, opts...)

	conn, err := grpc.NewClient(cfg.Addr, dialOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create catalog client: %w", err)
	}
	return &Client{conn: conn}, nil
}

func (c *Client) Close() error {
	return c.conn.Close()
}

func (c *Client) CreateProduct(ctx context.Context, dto service.ProductCreateDto) (*service.ProductDto, error) {
	var out service.ProductDto
	if err := c.invoke(ctx, catalogrpc.CreateProductMethod, dto, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// FindAllProducts requests one page. Zero page or limit lets the server apply its defaults.
func (c *Client) FindAllProducts(ctx context.Context, page, limit int32) (*service.PageDto, error) {
	var req catalogrpc.FindAllRequest
	if page > 0 {
		req.Page = &page
	}
	if limit > 0 {
		req.Limit = &limit
	}
	var out service.PageDto
	if err := c.invoke(ctx, catalogrpc.FindAllProductsMethod, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) FindOneProduct(ctx context.Context, id int64) (*service.ProductDto, error) {
	var out service.ProductDto
	if err := c.invoke(ctx, catalogrpc.FindOneProductMethod, catalogrpc.IDRequest{ID: id}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateProduct(ctx context.Context, id int64, patch service.ProductUpdateDto) (*service.ProductDto, error) {
	req := catalogrpc.UpdateRequest{ID: id, Name: patch.Name, Price: patch.Price}
	var out service.ProductDto
	if err := c.invoke(ctx, catalogrpc.UpdateProductMethod, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) RemoveProduct(ctx context.Context, id int64) (*service.ProductDto, error) {
	var out service.ProductDto
	if err := c.invoke(ctx, catalogrpc.RemoveProductMethod, catalogrpc.IDRequest{ID: id}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// invoke encodes req, performs the unary call and decodes the reply into out.
// gRPC status errors are returned as-is.
func (c *Client) invoke(ctx context.Context, method string, req, out any) error {
	in, err := catalogrpc.Encode(req)
	if err != nil {
		return err
	}
	reply := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, method, in, reply); err != nil {
		return err
	}
	return catalogrpc.Decode(reply, out)
}
