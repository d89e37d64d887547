package testutil

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSequentialFlowGenerator_Numbers(t *testing.T) {
	gen := NewSequentialFlowGenerator("scenario")

	assert.Equal(t, "scenario-1", gen.Generate())
	assert.Equal(t, "scenario-2", gen.Generate())
	assert.Equal(t, "scenario-3", gen.Generate())
}

func TestSequentialFlowGenerator_DefaultPrefix(t *testing.T) {
	gen := NewSequentialFlowGenerator("")
	assert.Equal(t, "test-flow-1", gen.Generate())
}

func TestSequentialFlowGenerator_Reset(t *testing.T) {
	gen := NewSequentialFlowGenerator("f")
	gen.Generate()
	gen.Generate()
	gen.Reset()
	assert.Equal(t, "f-1", gen.Generate())
}

func TestSequentialFlowGenerator_ThreadSafe(t *testing.T) {
	gen := NewSequentialFlowGenerator("f")

	var mu sync.Mutex
	seen := make(map[string]bool)
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				token := gen.Generate()
				mu.Lock()
				assert.False(t, seen[token], "duplicate token %s", token)
				seen[token] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Len(t, seen, 1000)
}
