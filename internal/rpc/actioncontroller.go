package rpc

import (
	"context"

	"google.golang.org/grpc"
)

// ActionControllerServer is implemented by internal/action's gRPC front end.
type ActionControllerServer interface {
	TriggerAction(ctx context.Context, req *TriggerActionRequest) (*TriggerActionResponse, error)
	Reconcile(ctx context.Context, req *ReconcileRequest) (*ReconcileResponse, error)
}

// ActionControllerClient is used by FilterGateway (TriggerAction) and
// StateManager (Reconcile).
type ActionControllerClient interface {
	TriggerAction(ctx context.Context, req *TriggerActionRequest, opts ...grpc.CallOption) (*TriggerActionResponse, error)
	Reconcile(ctx context.Context, req *ReconcileRequest, opts ...grpc.CallOption) (*ReconcileResponse, error)
}

type actionControllerClient struct {
	cc grpc.ClientConnInterface
}

func NewActionControllerClient(cc grpc.ClientConnInterface) ActionControllerClient {
	return &actionControllerClient{cc: cc}
}

func (c *actionControllerClient) TriggerAction(ctx context.Context, req *TriggerActionRequest, opts ...grpc.CallOption) (*TriggerActionResponse, error) {
	out := new(TriggerActionResponse)
	if err := c.cc.Invoke(ctx, "/actioncontroller.ActionController/TriggerAction", req, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *actionControllerClient) Reconcile(ctx context.Context, req *ReconcileRequest, opts ...grpc.CallOption) (*ReconcileResponse, error) {
	out := new(ReconcileResponse)
	if err := c.cc.Invoke(ctx, "/actioncontroller.ActionController/Reconcile", req, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func _ActionController_TriggerAction_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(TriggerActionRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ActionControllerServer).TriggerAction(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/actioncontroller.ActionController/TriggerAction"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ActionControllerServer).TriggerAction(ctx, req.(*TriggerActionRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _ActionController_Reconcile_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(ReconcileRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ActionControllerServer).Reconcile(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/actioncontroller.ActionController/Reconcile"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ActionControllerServer).Reconcile(ctx, req.(*ReconcileRequest))
	}
	return interceptor(ctx, in, info, handler)
}

var ActionController_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "actioncontroller.ActionController",
	HandlerType: (*ActionControllerServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "TriggerAction", Handler: _ActionController_TriggerAction_Handler},
		{MethodName: "Reconcile", Handler: _ActionController_Reconcile_Handler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "actioncontroller.proto",
}

func RegisterActionControllerServer(s grpc.ServiceRegistrar, srv ActionControllerServer) {
	s.RegisterService(&ActionController_ServiceDesc, srv)
}
