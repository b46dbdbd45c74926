// Package cas implements the content store on top of gocloud.dev blob buckets.
package cas

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gocloud.dev/blob"
	"gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/gcsblob" // gs:// buckets
	_ "gocloud.dev/blob/memblob" // mem:// buckets
	_ "gocloud.dev/blob/s3blob"  // s3:// buckets
	"gocloud.dev/gcerrors"
	"go.trai.ch/haul/internal/core/domain"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// removeConcurrency bounds parallel deletes in RemoveAll.
const removeConcurrency = 8

// Store implements ports.ContentStore on a blob bucket.
type Store struct {
	bucket *blob.Bucket
}

// NewStore wraps an open bucket. The store takes ownership of the bucket.
func NewStore(bucket *blob.Bucket) *Store {
	return &Store{bucket: bucket}
}

// Open opens the store at location. A location with a scheme is opened as a
// bucket URL (file://, mem://, s3://, gs://); anything else is a local
// directory, created if missing.
func Open(ctx context.Context, location string) (*Store, error) {
	if strings.Contains(location, "://") {
		bucket, err := blob.OpenBucket(ctx, location)
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, "failed to open bucket"), "location", location)
		}
		return NewStore(bucket), nil
	}

	dir, err := filepath.Abs(location)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to resolve output directory"), "location", location)
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to create output directory"), "dir", dir)
	}
	bucket, err := fileblob.OpenBucket(dir, &fileblob.Options{NoTempDir: true})
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to open output directory"), "dir", dir)
	}
	return NewStore(bucket), nil
}

// Store writes data under name, replacing an existing entry.
func (s *Store) Store(ctx context.Context, name string, data []byte) error {
	if err := s.bucket.WriteAll(ctx, name, data, nil); err != nil {
		return storageError(err, "failed to write entry", name)
	}
	return nil
}

// MoveOrReplace renames from to to, replacing an existing entry named to.
func (s *Store) MoveOrReplace(ctx context.Context, from, to string) error {
	if from == to {
		return nil
	}
	if err := s.bucket.Copy(ctx, to, from, nil); err != nil {
		return storageError(err, "failed to copy entry", from)
	}
	if err := s.bucket.Delete(ctx, from); err != nil && !isNotExist(err) {
		return storageError(err, "failed to remove moved entry", from)
	}
	return nil
}

// Exists reports whether an entry named name is present.
func (s *Store) Exists(ctx context.Context, name string) (bool, error) {
	ok, err := s.bucket.Exists(ctx, name)
	if err != nil {
		return false, storageError(err, "failed to stat entry", name)
	}
	return ok, nil
}

// Read returns the content stored under name.
func (s *Store) Read(ctx context.Context, name string) ([]byte, error) {
	data, err := s.bucket.ReadAll(ctx, name)
	if err != nil {
		return nil, storageError(err, "failed to read entry", name)
	}
	return data, nil
}

// Keys lists every entry of the store.
func (s *Store) Keys(ctx context.Context) ([]string, error) {
	var keys []string
	iter := s.bucket.List(nil)
	for {
		obj, err := iter.Next(ctx)
		if errors.Is(err, io.EOF) {
			return keys, nil
		}
		if err != nil {
			return nil, storageError(err, "failed to list entries", "")
		}
		if obj.IsDir {
			continue
		}
		keys = append(keys, obj.Key)
	}
}

// RemoveAll deletes every entry of the store.
func (s *Store) RemoveAll(ctx context.Context) error {
	keys, err := s.Keys(ctx)
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(removeConcurrency)
	for _, key := range keys {
		g.Go(func() error {
			if err := s.bucket.Delete(ctx, key); err != nil && !isNotExist(err) {
				return storageError(err, "failed to remove entry", key)
			}
			return nil
		})
	}
	return g.Wait()
}

// Close releases the bucket.
func (s *Store) Close() error {
	if err := s.bucket.Close(); err != nil {
		return zerr.Wrap(err, "failed to close bucket")
	}
	return nil
}

func isNotExist(err error) bool {
	return gcerrors.Code(err) == gcerrors.NotFound
}

func storageError(err error, msg, key string) error {
	wrapped := zerr.With(zerr.Wrap(domain.ErrStorage, msg), "cause", err.Error())
	if key != "" {
		wrapped = zerr.With(wrapped, "key", key)
	}
	return wrapped
}
