package config

import (
	"fmt"

	"github.com/agentoven/agentoven/control-plane/pkg/contracts"
)

// StaticRouter implements contracts.NodeRouter over the settings
// document's host + guest[] node list.
type StaticRouter struct {
	nodes map[string]contracts.NodeEndpoint
}

// NewStaticRouter builds a StaticRouter from settings, advertising each
// node's NodeAgent at its configured IP and the given default port.
func NewStaticRouter(settings *Settings, nodeAgentPort int) *StaticRouter {
	nodes := make(map[string]contracts.NodeEndpoint, len(settings.Guest)+1)
	for _, n := range settings.Nodes() {
		nodes[n.Name] = contracts.NodeEndpoint{
			Name: n.Name,
			Addr: fmt.Sprintf("%s:%d", n.IP, nodeAgentPort),
			Type: n.Type,
		}
	}
	return &StaticRouter{nodes: nodes}
}

func (r *StaticRouter) Resolve(node string) (contracts.NodeEndpoint, bool) {
	ep, ok := r.nodes[node]
	return ep, ok
}
