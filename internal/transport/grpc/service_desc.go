package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified name of the catalog RPC service.
const ServiceName = "catalog.v1.CatalogService"

// Full method names, as used by clients.
const (
	CreateProductMethod   = "/" + ServiceName + "/CreateProduct"
	FindAllProductsMethod = "/" + ServiceName + "/FindAllProducts"
	FindOneProductMethod  = "/" + ServiceName + "/FindOneProduct"
	UpdateProductMethod   = "/" + ServiceName + "/UpdateProduct"
	RemoveProductMethod   = "/" + ServiceName + "/RemoveProduct"
)

// CatalogServer is the server API of catalog.v1.CatalogService.
// Requests and responses are JSON-shaped google.protobuf.Struct messages.
type CatalogServer interface {
	CreateProduct(context.Context, *structpb.Struct) (*structpb.Struct, error)
	FindAllProducts(context.Context, *structpb.Struct) (*structpb.Struct, error)
	FindOneProduct(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UpdateProduct(context.Context, *structpb.Struct) (*structpb.Struct, error)
	RemoveProduct(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type unaryCall func(CatalogServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(fullMethod string, call unaryCall) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(CatalogServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod,
		}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(CatalogServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// CatalogServiceDesc is the grpc.ServiceDesc for catalog.v1.CatalogService.
// No file descriptor backs it, so server reflection lists the service but cannot describe it.
var CatalogServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*CatalogServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "CreateProduct", Handler: unaryHandler(CreateProductMethod, CatalogServer.CreateProduct)},
		{MethodName: "FindAllProducts", Handler: unaryHandler(FindAllProductsMethod, CatalogServer.FindAllProducts)},
		{MethodName: "FindOneProduct", Handler: unaryHandler(FindOneProductMethod, CatalogServer.FindOneProduct)},
		{MethodName: "UpdateProduct", Handler: unaryHandler(UpdateProductMethod, CatalogServer.UpdateProduct)},
		{MethodName: "RemoveProduct", Handler: unaryHandler(RemoveProductMethod, CatalogServer.RemoveProduct)},
	},
	Streams: []grpc.StreamDesc{},
}

// RegisterCatalogServer registers srv on s.
func RegisterCatalogServer(s grpc.ServiceRegistrar, srv CatalogServer) {
	s.RegisterService(&CatalogServiceDesc, srv)
}
