package cas

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/haul/internal/core/ports"
)

// NodeID is the unique identifier for the content store factory node.
const NodeID graft.ID = "adapter.content_store"

// Factory opens Stores. It implements ports.StoreFactory.
type Factory struct{}

// Open opens the store at location.
func (Factory) Open(ctx context.Context, location string) (ports.ContentStore, error) {
	return Open(ctx, location)
}

func init() {
	graft.Register(graft.Node[ports.StoreFactory]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.StoreFactory, error) {
			return Factory{}, nil
		},
	})
}
