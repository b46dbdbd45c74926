package ports

// Digester derives the stable identifier a download is renamed to.
//
//go:generate mockgen -destination=mocks/digester_mock.go -package=mocks -source=digester.go
type Digester interface {
	// Digest returns a lowercase, fixed-width hex digest of s.
	Digest(s string) string
}

// DigesterFactory resolves digest algorithms by name.
type DigesterFactory interface {
	// New returns the digester for algorithm.
	New(algorithm string) (Digester, error)
}
