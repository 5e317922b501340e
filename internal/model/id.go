package model

import (
	"sync/atomic"

	"github.com/oklog/ulid/v2"
)

// NewID generates a new ULID string for use as an event identifier.
func NewID() string {
	return ulid.Make().String()
}

// Sequence hands out strictly increasing integer identifiers starting at 1.
// Identifiers are never reused.
type Sequence struct {
	last atomic.Int64
}

// Next returns the next identifier.
func (s *Sequence) Next() int64 {
	return s.last.Add(1)
}

// Last returns the most recently issued identifier, or 0 if none.
func (s *Sequence) Last() int64 {
	return s.last.Load()
}
