package testutil

import (
	"fmt"
	"sync"
)

// DefaultFlowPrefix is used when a scenario does not name its flows.
const DefaultFlowPrefix = "test-flow"

// SequentialFlowGenerator returns prefix-1, prefix-2, ... and never runs
// out. Golden traces stay byte-identical between runs while each event
// still gets its own flow.
//
// Implements engine.FlowTokenGenerator.
type SequentialFlowGenerator struct {
	mu     sync.Mutex
	prefix string
	n      int
}

// NewSequentialFlowGenerator creates a generator. An empty prefix means
// DefaultFlowPrefix.
func NewSequentialFlowGenerator(prefix string) *SequentialFlowGenerator {
	if prefix == "" {
		prefix = DefaultFlowPrefix
	}
	return &SequentialFlowGenerator{prefix: prefix}
}

// Generate returns the next token.
func (g *SequentialFlowGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s-%d", g.prefix, g.n)
}

// Reset restarts numbering at 1.
func (g *SequentialFlowGenerator) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n = 0
}
