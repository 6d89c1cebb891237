package storage

import (
	"context"
	"errors"
)

// Storage keeps donation photos. Keys are slash separated paths such as
// food_items/food_<id>.png.
type Storage interface {
	Put(ctx context.Context, key, contentType string, data []byte) error
	Delete(ctx context.Context, key string) error
	// URL returns a link a browser can fetch the object from.
	URL(ctx context.Context, key string) (string, error)
}

// DeleteAll removes every key, returning the keys that could not be removed
// alongside the joined errors.
func DeleteAll(ctx context.Context, s Storage, keys []string) ([]string, error) {
	var failed []string
	var errs []error
	for _, key := range keys {
		if err := s.Delete(ctx, key); err != nil {
			failed = append(failed, key)
			errs = append(errs, err)
		}
	}
	return failed, errors.Join(errs...)
}
