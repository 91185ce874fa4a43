package rpc_test

import (
	"testing"

	"github.com/agentoven/agentoven/control-plane/internal/rpc"
)

func TestCodecRoundTrip(t *testing.T) {
	c := rpc.Codec{}
	req := &rpc.HandleWorkloadRequest{
		WorkloadName: "low-speed-nav-host",
		Action:       1,
		Description:  "start",
	}

	data, err := c.Marshal(req)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var got rpc.HandleWorkloadRequest
	if err := c.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if got.WorkloadName != req.WorkloadName || got.Action != req.Action || got.Description != req.Description {
		t.Errorf("got %+v, want %+v", got, req)
	}
}

func TestCodecName(t *testing.T) {
	if name := (rpc.Codec{}).Name(); name != rpc.CodecName {
		t.Errorf("Name() = %q, want %q", name, rpc.CodecName)
	}
}
