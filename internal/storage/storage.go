// Package storage abstracts where uploaded binaries live. Two backends are
// provided: the local filesystem and Cloudflare R2. Both are addressed
// through BlobStore so the upload pipeline never branches on the driver.
package storage

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
)

// ErrNotFound is returned by Get when the object does not exist. Delete
// never returns it: removing a missing object is a no-op.
var ErrNotFound = errors.New("storage: object not found")

// BlobStore stores binary content under a generated key and hands back an
// opaque locator. Locators from the local backend are relative paths,
// locators from R2 are fully-qualified URLs; callers must treat them as
// opaque either way and use ResolveURL for anything browser-facing.
type BlobStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
	Get(ctx context.Context, locator string) ([]byte, error)
	Delete(ctx context.Context, locator string) error
	ResolveURL(locator string) string
}

// NewObjectKey builds a collision-free object key for a user upload:
// user id, millisecond timestamp, and 8 random bytes. Two concurrent
// uploads by the same user never collide.
func NewObjectKey(userID, suffix, ext string) string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand only fails when the platform entropy source is
		// broken; fall back to the timestamp alone.
		return fmt.Sprintf("%s-%d_%s%s", userID, time.Now().UnixMilli(), suffix, ext)
	}
	return fmt.Sprintf("%s-%d-%s_%s%s", userID, time.Now().UnixMilli(), hex.EncodeToString(buf), suffix, ext)
}

func joinURL(base, path string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}
