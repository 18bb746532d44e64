// Package state persists the last-observed version marker per regulatory
// source across runs.
package state

import "context"

// Versions maps source name to its last-observed version marker: a date
// string, an HTTP timestamp, or a content hash.
type Versions map[string]string

// Clone returns an independent copy.
func (v Versions) Clone() Versions {
	c := make(Versions, len(v))
	for k, val := range v {
		c[k] = val
	}
	return c
}

// Store reads and writes the whole mapping atomically. Load on a missing or
// unreadable backend yields an empty mapping, never an error: lost state
// only means every source looks changed on the next cycle.
type Store interface {
	Load(ctx context.Context) (Versions, error)
	Save(ctx context.Context, v Versions) error
}
