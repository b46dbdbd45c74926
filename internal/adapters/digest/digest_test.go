package digest_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/haul/internal/adapters/digest"
	"go.trai.ch/haul/internal/core/domain"
)

func TestSHA1_Digest(t *testing.T) {
	d := digest.SHA1{}

	// sha1("abc")
	assert.Equal(t, "a9993e364706816aba3e25717850c26c9cd0d89d", d.Digest("abc"))
	assert.Len(t, d.Digest("http://example.com/a.txt"), 40)
	assert.Equal(t, d.Digest("x"), d.Digest("x"))
	assert.NotEqual(t, d.Digest("x"), d.Digest("y"))
}

func TestXXHash_Digest(t *testing.T) {
	d := digest.XXHash{}

	// xxhash64 of the empty string.
	assert.Equal(t, "ef46db3751d8e999", d.Digest(""))
	assert.Len(t, d.Digest("http://example.com/a.txt"), 16)
	assert.Equal(t, d.Digest("x"), d.Digest("x"))
}

func TestNew(t *testing.T) {
	tests := []struct {
		name      string
		algorithm string
		want      any
	}{
		{"default", "", digest.SHA1{}},
		{"sha1", domain.DigestSHA1, digest.SHA1{}},
		{"xxhash", domain.DigestXXHash, digest.XXHash{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := digest.Factory{}.New(tt.algorithm)
			require.NoError(t, err)
			assert.IsType(t, tt.want, d)
		})
	}
}

func TestNew_Unknown(t *testing.T) {
	_, err := digest.New("md5")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUnknownDigest)
}
