package rpc

import (
	"context"

	"google.golang.org/grpc"
)

// FilterGatewayServer is implemented by internal/filter's gRPC front end.
type FilterGatewayServer interface {
	HandleScenario(ctx context.Context, req *HandleScenarioRequest) (*HandleScenarioResponse, error)
}

// FilterGatewayClient is APIServer's seam onto FilterGateway.
type FilterGatewayClient interface {
	HandleScenario(ctx context.Context, req *HandleScenarioRequest, opts ...grpc.CallOption) (*HandleScenarioResponse, error)
}

type filterGatewayClient struct {
	cc grpc.ClientConnInterface
}

func NewFilterGatewayClient(cc grpc.ClientConnInterface) FilterGatewayClient {
	return &filterGatewayClient{cc: cc}
}

func (c *filterGatewayClient) HandleScenario(ctx context.Context, req *HandleScenarioRequest, opts ...grpc.CallOption) (*HandleScenarioResponse, error) {
	out := new(HandleScenarioResponse)
	if err := c.cc.Invoke(ctx, "/filtergateway.FilterGateway/HandleScenario", req, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func _FilterGateway_HandleScenario_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(HandleScenarioRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(FilterGatewayServer).HandleScenario(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/filtergateway.FilterGateway/HandleScenario"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(FilterGatewayServer).HandleScenario(ctx, req.(*HandleScenarioRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// FilterGateway_ServiceDesc is FilterGateway's hand-authored equivalent of
// a protoc-gen-go-grpc _ServiceDesc.
var FilterGateway_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "filtergateway.FilterGateway",
	HandlerType: (*FilterGatewayServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "HandleScenario", Handler: _FilterGateway_HandleScenario_Handler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "filtergateway.proto",
}

func RegisterFilterGatewayServer(s grpc.ServiceRegistrar, srv FilterGatewayServer) {
	s.RegisterService(&FilterGateway_ServiceDesc, srv)
}
