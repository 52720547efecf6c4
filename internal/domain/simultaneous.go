package domain

import (
	"encoding/json"
	"fmt"
	"maps"
)

// Simultaneous collects one value per key from a fixed number of contributors.
//
// It reports completion once capacity-1 keys have contributed; the caller that
// discovers completion supplies the last contribution straight to Finalize instead
// of inserting it. The stored map therefore never reaches capacity.
type Simultaneous[K comparable, V any] struct {
	capacity int
	inner    map[K]V
}

// NewSimultaneous returns an empty barrier for capacity contributors.
func NewSimultaneous[K comparable, V any](capacity int) (*Simultaneous[K, V], error) {
	if capacity < 2 {
		return nil, fmt.Errorf("%w: %w: got %d", ErrPrecondition, ErrBarrierCapacity, capacity)
	}
	return &Simultaneous[K, V]{capacity: capacity, inner: make(map[K]V, capacity)}, nil
}

// Capacity is the number of expected contributors.
func (s *Simultaneous[K, V]) Capacity() int { return s.capacity }

// Len is the number of stored contributions.
func (s *Simultaneous[K, V]) Len() int { return len(s.inner) }

// Insert records or overwrites the contribution of key. Overwriting is benign; a new key
// that would fill the barrier to capacity is a protocol violation.
func (s *Simultaneous[K, V]) Insert(key K, value V) error {
	if _, ok := s.inner[key]; !ok && len(s.inner) >= s.capacity-1 {
		return fmt.Errorf("%w: %w: %d of %d stored", ErrProtocol, ErrBarrierOverflow, len(s.inner), s.capacity)
	}
	s.inner[key] = value
	return nil
}

// Get returns the stored contribution of key.
func (s *Simultaneous[K, V]) Get(key K) (V, bool) {
	v, ok := s.inner[key]
	return v, ok
}

// Has reports whether key already contributed.
func (s *Simultaneous[K, V]) Has(key K) bool {
	_, ok := s.inner[key]
	return ok
}

// IsComplete returns a completion view once exactly capacity-1 keys have contributed.
func (s *Simultaneous[K, V]) IsComplete() (Complete[K, V], bool) {
	if len(s.inner) != s.capacity-1 {
		return Complete[K, V]{}, false
	}
	return Complete[K, V]{inner: s.inner}, true
}

// Clone returns an independent copy.
func (s *Simultaneous[K, V]) Clone() *Simultaneous[K, V] {
	if s == nil {
		return nil
	}
	return &Simultaneous[K, V]{capacity: s.capacity, inner: maps.Clone(s.inner)}
}

type simultaneousJSON[K comparable, V any] struct {
	Capacity int     `json:"capacity"`
	Inputs   map[K]V `json:"inputs"`
}

// MarshalJSON encodes the barrier for snapshots and state hashing.
func (s *Simultaneous[K, V]) MarshalJSON() ([]byte, error) {
	return json.Marshal(simultaneousJSON[K, V]{Capacity: s.capacity, Inputs: s.inner})
}

// UnmarshalJSON restores a snapshot, enforcing the same invariants as NewSimultaneous.
func (s *Simultaneous[K, V]) UnmarshalJSON(data []byte) error {
	var raw simultaneousJSON[K, V]
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Capacity < 2 {
		return fmt.Errorf("%w: %w: got %d", ErrPrecondition, ErrBarrierCapacity, raw.Capacity)
	}
	if len(raw.Inputs) >= raw.Capacity {
		return fmt.Errorf("%w: %w: %d of %d stored", ErrProtocol, ErrBarrierOverflow, len(raw.Inputs), raw.Capacity)
	}
	if raw.Inputs == nil {
		raw.Inputs = make(map[K]V, raw.Capacity)
	}
	s.capacity = raw.Capacity
	s.inner = raw.Inputs
	return nil
}

// Complete is a read-only view of a barrier that is missing exactly one contribution.
type Complete[K comparable, V any] struct {
	inner map[K]V
}

// Finalize combines the stored contributions with the last pair. It never mutates the barrier.
func (c Complete[K, V]) Finalize(lastKey K, lastValue V) (map[K]V, error) {
	if _, ok := c.inner[lastKey]; ok {
		return nil, fmt.Errorf("%w: %w: %v", ErrProtocol, ErrDuplicateKey, lastKey)
	}
	out := make(map[K]V, len(c.inner)+1)
	maps.Copy(out, c.inner)
	out[lastKey] = lastValue
	return out, nil
}
