package rpc

import (
	"context"

	"google.golang.org/grpc"
)

// StateManagerServer is implemented by internal/state's gRPC front end.
type StateManagerServer interface {
	ApplyDesired(ctx context.Context, req *ApplyDesiredRequest) (*ApplyDesiredResponse, error)
	ReportStatus(ctx context.Context, req *ReportStatusRequest) (*ReportStatusResponse, error)
	Query(ctx context.Context, req *QueryRequest) (*QueryResponse, error)
}

// StateManagerClient is used by ActionController (ApplyDesired) and
// NodeAgent (ReportStatus).
type StateManagerClient interface {
	ApplyDesired(ctx context.Context, req *ApplyDesiredRequest, opts ...grpc.CallOption) (*ApplyDesiredResponse, error)
	ReportStatus(ctx context.Context, req *ReportStatusRequest, opts ...grpc.CallOption) (*ReportStatusResponse, error)
	Query(ctx context.Context, req *QueryRequest, opts ...grpc.CallOption) (*QueryResponse, error)
}

type stateManagerClient struct {
	cc grpc.ClientConnInterface
}

func NewStateManagerClient(cc grpc.ClientConnInterface) StateManagerClient {
	return &stateManagerClient{cc: cc}
}

func (c *stateManagerClient) ApplyDesired(ctx context.Context, req *ApplyDesiredRequest, opts ...grpc.CallOption) (*ApplyDesiredResponse, error) {
	out := new(ApplyDesiredResponse)
	if err := c.cc.Invoke(ctx, "/statemanager.StateManager/ApplyDesired", req, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *stateManagerClient) ReportStatus(ctx context.Context, req *ReportStatusRequest, opts ...grpc.CallOption) (*ReportStatusResponse, error) {
	out := new(ReportStatusResponse)
	if err := c.cc.Invoke(ctx, "/statemanager.StateManager/ReportStatus", req, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *stateManagerClient) Query(ctx context.Context, req *QueryRequest, opts ...grpc.CallOption) (*QueryResponse, error) {
	out := new(QueryResponse)
	if err := c.cc.Invoke(ctx, "/statemanager.StateManager/Query", req, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func _StateManager_ApplyDesired_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(ApplyDesiredRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(StateManagerServer).ApplyDesired(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/statemanager.StateManager/ApplyDesired"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(StateManagerServer).ApplyDesired(ctx, req.(*ApplyDesiredRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _StateManager_ReportStatus_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(ReportStatusRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(StateManagerServer).ReportStatus(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/statemanager.StateManager/ReportStatus"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(StateManagerServer).ReportStatus(ctx, req.(*ReportStatusRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _StateManager_Query_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(QueryRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(StateManagerServer).Query(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/statemanager.StateManager/Query"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(StateManagerServer).Query(ctx, req.(*QueryRequest))
	}
	return interceptor(ctx, in, info, handler)
}

var StateManager_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "statemanager.StateManager",
	HandlerType: (*StateManagerServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ApplyDesired", Handler: _StateManager_ApplyDesired_Handler},
		{MethodName: "ReportStatus", Handler: _StateManager_ReportStatus_Handler},
		{MethodName: "Query", Handler: _StateManager_Query_Handler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "statemanager.proto",
}

func RegisterStateManagerServer(s grpc.ServiceRegistrar, srv StateManagerServer) {
	s.RegisterService(&StateManager_ServiceDesc, srv)
}
