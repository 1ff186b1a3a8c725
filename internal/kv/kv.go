// Package kv persists named JSON blobs. The whole activity collection lives
// under a single key, so the interface is deliberately tiny: read a blob,
// replace a blob.
package kv

import "errors"

var ErrNotFound = errors.New("kv: key not found")

type Store interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
	Close() error
}
