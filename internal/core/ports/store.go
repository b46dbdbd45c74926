package ports

import "context"

// ContentStore persists downloaded bodies by name.
//
//go:generate go run go.uber.org/mock/mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks
type ContentStore interface {
	// Store writes data under name, replacing an existing entry.
	Store(ctx context.Context, name string, data []byte) error

	// MoveOrReplace renames from to to. An existing entry named to is replaced.
	MoveOrReplace(ctx context.Context, from, to string) error

	// Exists reports whether an entry named name is present.
	Exists(ctx context.Context, name string) (bool, error)

	// RemoveAll deletes every entry of the store.
	RemoveAll(ctx context.Context) error

	// Close releases the underlying bucket.
	Close() error
}

// StoreFactory opens content stores by location.
type StoreFactory interface {
	// Open opens the store at location, a local directory or a bucket URL.
	Open(ctx context.Context, location string) (ContentStore, error)
}
