// Package thumbcache caches rendered first-page thumbnails per product so
// default-value previews do not re-invoke the remote job pipeline.
package thumbcache

import "context"

// Asset is one cached thumbnail image.
type Asset struct {
	MIME string `json:"mime"`
	Data []byte `json:"data"`
}

// Store is the pluggable cache backend. A Get miss is not an error; it tells
// the caller to fall through to full generation.
type Store interface {
	Get(ctx context.Context, productID string) (Asset, bool, error)
	// Set overwrites any existing entry for productID.
	Set(ctx context.Context, productID string, asset Asset) error
	// Invalidate succeeds even when no entry exists.
	Invalidate(ctx context.Context, productID string) error
	// Durable reports whether entries survive a process restart.
	Durable() bool
}
