// Package digest provides the digesters a download is renamed with.
package digest

import (
	"crypto/sha1" //nolint:gosec // Used for naming, not for security
	"encoding/hex"
	"fmt"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/haul/internal/core/domain"
	"go.trai.ch/haul/internal/core/ports"
	"go.trai.ch/zerr"
)

var (
	_ ports.Digester        = SHA1{}
	_ ports.Digester        = XXHash{}
	_ ports.DigesterFactory = Factory{}
)

// SHA1 digests with SHA-1, rendered as 40 lowercase hex characters.
type SHA1 struct{}

// Digest returns the SHA-1 of s.
func (SHA1) Digest(s string) string {
	sum := sha1.Sum([]byte(s)) //nolint:gosec // See import
	return hex.EncodeToString(sum[:])
}

// XXHash digests with xxhash64, rendered as 16 lowercase hex characters.
type XXHash struct{}

// Digest returns the xxhash64 of s.
func (XXHash) Digest(s string) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(s))
}

// Factory resolves digesters by algorithm name.
type Factory struct{}

// New returns the digester for algorithm. An empty name selects SHA-1.
func (Factory) New(algorithm string) (ports.Digester, error) {
	return New(algorithm)
}

// New returns the digester for algorithm. An empty name selects SHA-1.
func New(algorithm string) (ports.Digester, error) {
	switch algorithm {
	case domain.DigestSHA1, "":
		return SHA1{}, nil
	case domain.DigestXXHash:
		return XXHash{}, nil
	default:
		return nil, zerr.With(zerr.Wrap(domain.ErrUnknownDigest, "failed to select digester"), "algorithm", algorithm)
	}
}
