// Package cache holds recently rendered bitmaps keyed by content digest
// so identical markup never consumes engine capacity twice.
package cache

import (
	"errors"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Bitmaps is a fixed-size LRU of rendered PNG bytes.
type Bitmaps struct {
	entries *lru.Cache[string, []byte]
}

// New creates a bitmap cache holding up to size entries.
func New(size int) (*Bitmaps, error) {
	if size <= 0 {
		return nil, errors.New("cache: size must be positive")
	}
	entries, err := lru.New[string, []byte](size)
	if err != nil {
		return nil, err
	}
	return &Bitmaps{entries: entries}, nil
}

// Get returns the cached bitmap for digest, if present.
func (b *Bitmaps) Get(digest string) ([]byte, bool) {
	if b == nil {
		return nil, false
	}
	return b.entries.Get(digest)
}

// Add stores a rendered bitmap under its content digest.
func (b *Bitmaps) Add(digest string, data []byte) {
	if b == nil || len(data) == 0 {
		return
	}
	b.entries.Add(digest, data)
}

// Len returns the number of cached bitmaps.
func (b *Bitmaps) Len() int {
	if b == nil {
		return 0
	}
	return b.entries.Len()
}
