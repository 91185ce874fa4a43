package rpc

import (
	"context"

	"google.golang.org/grpc"
)

// PolicyManagerServer is implemented by a real external PolicyManager; the
// in-process allow-all fake in internal/policy implements PolicyClient
// directly instead, bypassing this RPC layer for the all-in-one binary.
type PolicyManagerServer interface {
	CheckPolicy(ctx context.Context, req *CheckPolicyRequest) (*CheckPolicyResponse, error)
}

type PolicyManagerClient interface {
	CheckPolicy(ctx context.Context, req *CheckPolicyRequest, opts ...grpc.CallOption) (*CheckPolicyResponse, error)
}

type policyManagerClient struct {
	cc grpc.ClientConnInterface
}

func NewPolicyManagerClient(cc grpc.ClientConnInterface) PolicyManagerClient {
	return &policyManagerClient{cc: cc}
}

func (c *policyManagerClient) CheckPolicy(ctx context.Context, req *CheckPolicyRequest, opts ...grpc.CallOption) (*CheckPolicyResponse, error) {
	out := new(CheckPolicyResponse)
	if err := c.cc.Invoke(ctx, "/policymanager.PolicyManager/CheckPolicy", req, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func _PolicyManager_CheckPolicy_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(CheckPolicyRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(PolicyManagerServer).CheckPolicy(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/policymanager.PolicyManager/CheckPolicy"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(PolicyManagerServer).CheckPolicy(ctx, req.(*CheckPolicyRequest))
	}
	return interceptor(ctx, in, info, handler)
}

var PolicyManager_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "policymanager.PolicyManager",
	HandlerType: (*PolicyManagerServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "CheckPolicy", Handler: _PolicyManager_CheckPolicy_Handler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "policymanager.proto",
}

func RegisterPolicyManagerServer(s grpc.ServiceRegistrar, srv PolicyManagerServer) {
	s.RegisterService(&PolicyManager_ServiceDesc, srv)
}
