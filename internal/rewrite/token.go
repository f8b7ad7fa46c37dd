package rewrite

import (
	"sync"

	"github.com/google/uuid"
)

// UUIDv7Generator generates time-sortable UUIDv7 run tokens.
//
// UUIDv7 embeds a timestamp in the most significant bits, so journal
// tokens sort by creation time, which keeps `sair journal list` output
// readable without extra bookkeeping.
//
// Thread-safety: UUIDv7Generator is stateless and safe for concurrent
// use.
type UUIDv7Generator struct{}

// Generate creates a new UUIDv7 and returns it as a hyphenated string.
// Panics if UUID generation fails, which does not happen in practice.
func (g UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// FixedGenerator returns predetermined run tokens for testing, so
// journal rows and driver reports can be asserted exactly.
//
// Thread-safety: safe for concurrent use via internal mutex.
type FixedGenerator struct {
	mu     sync.Mutex
	tokens []string
	idx    int
}

// NewFixedGenerator creates a generator that returns tokens in order.
//
//	gen := NewFixedGenerator("run-1", "run-2")
//	gen.Generate() // "run-1"
//	gen.Generate() // "run-2"
//	gen.Generate() // panic: all tokens exhausted
func NewFixedGenerator(tokens ...string) *FixedGenerator {
	return &FixedGenerator{tokens: tokens}
}

// Generate returns the next predetermined token. Panics once all tokens
// are consumed: the test asked for more runs than it declared.
func (g *FixedGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.idx >= len(g.tokens) {
		panic("FixedGenerator: all tokens exhausted")
	}
	token := g.tokens[g.idx]
	g.idx++
	return token
}
