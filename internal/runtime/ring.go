// Copyright (c) 2025 GridPulse authors
// All rights reserved. Use of this source code is governed by an
// MIT-style license that can be found in the LICENSE file.

package runtime

// Ring is a fixed-capacity append-only buffer that evicts the oldest entry
// once full. It is not safe for concurrent use; the service's state lock
// guards every instance.
type Ring[T any] struct {
	buf  []T
	head int
	n    int
}

// NewRing creates a ring with the given capacity.
func NewRing[T any](capacity int) *Ring[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &Ring[T]{buf: make([]T, capacity)}
}

// Push appends v, evicting the oldest entry when full.
func (r *Ring[T]) Push(v T) {
	idx := (r.head + r.n) % len(r.buf)
	r.buf[idx] = v
	if r.n < len(r.buf) {
		r.n++
	} else {
		r.head = (r.head + 1) % len(r.buf)
	}
}

// Len reports how many entries the ring holds.
func (r *Ring[T]) Len() int {
	return r.n
}

// Cap reports the ring's fixed capacity.
func (r *Ring[T]) Cap() int {
	return len(r.buf)
}

// Tail returns a copy of the newest limit entries in commit order. A
// non-positive or oversized limit returns everything.
func (r *Ring[T]) Tail(limit int) []T {
	if limit <= 0 || limit > r.n {
		limit = r.n
	}
	out := make([]T, limit)
	start := r.n - limit
	for i := 0; i < limit; i++ {
		out[i] = r.buf[(r.head+start+i)%len(r.buf)]
	}
	return out
}
