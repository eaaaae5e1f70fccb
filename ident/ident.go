// Package ident produces the identifiers and timestamps stamped onto
// chatbots and conversations before they are submitted to a registry.
package ident

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// GenerateID returns a new random (version 4) UUID string.
// uuid panics if the system entropy source fails; there is no recovery path.
func GenerateID() string {
	return uuid.NewString()
}

// Now returns the current wall-clock time as whole seconds since the Unix epoch.
func Now() int64 {
	return time.Now().Unix()
}

// Generator hands out identifiers and timestamps to a driver.
type Generator interface {
	// NewID returns a fresh identifier.
	NewID() string

	// Now returns the current time in Unix seconds.
	Now() int64
}

// System is the Generator backed by GenerateID and Now.
var System Generator = systemGenerator{}

type systemGenerator struct{}

func (systemGenerator) NewID() string { return GenerateID() }
func (systemGenerator) Now() int64    { return Now() }

// Sequence is a deterministic Generator: identifiers are prefix-1, prefix-2, ...
// and the clock always reads the same instant.
type Sequence struct {
	mu     sync.Mutex
	prefix string
	next   uint64
	at     int64
}

// NewSequence creates a Sequence whose clock is fixed at at.
func NewSequence(prefix string, at int64) *Sequence {
	return &Sequence{prefix: prefix, next: 1, at: at}
}

// NewID returns the next identifier in the sequence.
func (s *Sequence) NewID() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := fmt.Sprintf("%s-%d", s.prefix, s.next)
	s.next++
	return id
}

// Now returns the fixed instant.
func (s *Sequence) Now() int64 {
	return s.at
}
