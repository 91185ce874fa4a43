package rpc

import (
	"context"

	"google.golang.org/grpc"
)

// NodeAgentServer is implemented by internal/nodeagent's gRPC front end.
type NodeAgentServer interface {
	HandleWorkload(ctx context.Context, req *HandleWorkloadRequest) (*HandleWorkloadResponse, error)
}

// NodeAgentClient is ActionController's seam onto a node's NodeAgent.
type NodeAgentClient interface {
	HandleWorkload(ctx context.Context, req *HandleWorkloadRequest, opts ...grpc.CallOption) (*HandleWorkloadResponse, error)
}

type nodeAgentClient struct {
	cc grpc.ClientConnInterface
}

func NewNodeAgentClient(cc grpc.ClientConnInterface) NodeAgentClient {
	return &nodeAgentClient{cc: cc}
}

func (c *nodeAgentClient) HandleWorkload(ctx context.Context, req *HandleWorkloadRequest, opts ...grpc.CallOption) (*HandleWorkloadResponse, error) {
	out := new(HandleWorkloadResponse)
	if err := c.cc.Invoke(ctx, "/nodeagent.NodeAgent/HandleWorkload", req, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func _NodeAgent_HandleWorkload_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(HandleWorkloadRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(NodeAgentServer).HandleWorkload(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/nodeagent.NodeAgent/HandleWorkload"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(NodeAgentServer).HandleWorkload(ctx, req.(*HandleWorkloadRequest))
	}
	return interceptor(ctx, in, info, handler)
}

var NodeAgent_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "nodeagent.NodeAgent",
	HandlerType: (*NodeAgentServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "HandleWorkload", Handler: _NodeAgent_HandleWorkload_Handler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "nodeagent.proto",
}

func RegisterNodeAgentServer(s grpc.ServiceRegistrar, srv NodeAgentServer) {
	s.RegisterService(&NodeAgent_ServiceDesc, srv)
}
