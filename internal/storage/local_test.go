package storage

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLocalStoreRoundTrip(t *testing.T) {
	store, err := NewLocalStore(t.TempDir(), "http://localhost:8080/uploads")
	assert.NoError(t, err)

	ctx := context.Background()
	payload := []byte("jpeg bytes")

	locator, err := store.Put(ctx, "u1-123-abcd_thumbnail.jpg", bytes.NewReader(payload), int64(len(payload)), "image/jpeg")
	assert.NoError(t, err)
	assert.Equal(t, "u1-123-abcd_thumbnail.jpg", locator)

	data, err := store.Get(ctx, locator)
	assert.NoError(t, err)
	assert.Equal(t, payload, data)

	assert.Equal(t, "http://localhost:8080/uploads/u1-123-abcd_thumbnail.jpg", store.ResolveURL(locator))
}

func TestLocalStoreGetMissing(t *testing.T) {
	store, err := NewLocalStore(t.TempDir(), "http://localhost:8080/uploads")
	assert.NoError(t, err)

	_, err = store.Get(context.Background(), "nope.jpg")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocalStoreDeleteIdempotent(t *testing.T) {
	store, err := NewLocalStore(t.TempDir(), "http://localhost:8080/uploads")
	assert.NoError(t, err)

	ctx := context.Background()
	locator, err := store.Put(ctx, "f.jpg", strings.NewReader("x"), 1, "image/jpeg")
	assert.NoError(t, err)

	assert.NoError(t, store.Delete(ctx, locator))
	// Deleting again is a no-op, not an error.
	assert.NoError(t, store.Delete(ctx, locator))

	_, err = store.Get(ctx, locator)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocalStorePathTraversal(t *testing.T) {
	root := t.TempDir()
	store, err := NewLocalStore(root, "http://localhost:8080/uploads")
	assert.NoError(t, err)

	_, err = store.Get(context.Background(), "../../etc/passwd")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNewObjectKeyUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		key := NewObjectKey("user-1", "thumbnail", ".jpg")
		assert.True(t, strings.HasPrefix(key, "user-1-"))
		assert.True(t, strings.HasSuffix(key, "_thumbnail.jpg"))
		assert.False(t, seen[key], "duplicate key %s", key)
		seen[key] = true
	}
}
