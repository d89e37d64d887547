package engine

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventQueue_FIFO(t *testing.T) {
	q := newEventQueue()

	for _, v := range []string{"A", "B", "C"} {
		require.True(t, q.Enqueue(Event{Type: EventTypeSelect, Value: v}))
	}
	assert.Equal(t, 3, q.Len())

	for _, want := range []string{"A", "B", "C"} {
		got, ok := q.TryDequeue()
		require.True(t, ok)
		assert.Equal(t, want, got.Value)
	}

	_, ok := q.TryDequeue()
	assert.False(t, ok, "dequeue from empty queue should return false")
}

func TestEventQueue_ClosedRejects(t *testing.T) {
	q := newEventQueue()
	q.Close()
	q.Close() // idempotent

	assert.True(t, q.Closed())
	assert.False(t, q.Enqueue(Event{Type: EventTypeSelect, Value: "A"}))

	select {
	case _, open := <-q.Wait():
		assert.False(t, open, "wait channel should be closed")
	case <-time.After(time.Second):
		t.Fatal("Wait did not wake after Close")
	}
}

func TestEventQueue_WaitSignals(t *testing.T) {
	q := newEventQueue()
	q.Enqueue(Event{Type: EventTypeSelect, Value: "A"})

	select {
	case <-q.Wait():
	case <-time.After(time.Second):
		t.Fatal("no signal after enqueue")
	}
}

func TestEventQueue_ConcurrentEnqueue(t *testing.T) {
	q := newEventQueue()
	const producers, each = 10, 100

	var wg sync.WaitGroup
	for i := 0; i < producers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < each; j++ {
				q.Enqueue(Event{Type: EventTypeSelect, Value: "x"})
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, producers*each, q.Len())
}

func TestEventType_String(t *testing.T) {
	for _, typ := range []EventType{EventTypeSelect, EventTypeReplaceRecords} {
		assert.Equal(t, typ, ParseEventType(typ.String()))
	}
	assert.Equal(t, "unknown", EventType(99).String())
	assert.Equal(t, EventType(0), ParseEventType("nope"))
}
