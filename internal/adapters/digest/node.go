package digest

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/haul/internal/core/ports"
)

// NodeID is the unique identifier for the digester factory node.
const NodeID graft.ID = "adapter.digest"

func init() {
	graft.Register(graft.Node[ports.DigesterFactory]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.DigesterFactory, error) {
			return Factory{}, nil
		},
	})
}
