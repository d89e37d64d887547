package store

import (
	"path/filepath"
	"testing"
)

// createTestStore creates a new store in a temp directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func selectEvent(seq int64, flow, value string) EventRecord {
	return EventRecord{Seq: seq, Flow: flow, Type: "select", Source: "test", Value: value}
}

func notification(seq int64, flow, origin, value string) NotificationRecord {
	return NotificationRecord{Seq: seq, Flow: flow, Origin: origin, Value: value}
}
