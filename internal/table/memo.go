package table

import "sync"

// Memo caches Normalize results by table identity and roles.
//
// Normalize is referentially transparent, so a cached RecordSet is
// indistinguishable from a fresh one. Memo is safe for concurrent use.
type Memo struct {
	mu    sync.Mutex
	cache map[memoKey]RecordSet
	hits  int
}

type memoKey struct {
	identity string
	roles    Roles
}

// NewMemo creates an empty cache.
func NewMemo() *Memo {
	return &Memo{cache: make(map[memoKey]RecordSet)}
}

// Normalize returns the cached RecordSet for (t, roles), computing it on miss.
// Errors are never cached.
func (m *Memo) Normalize(t CrossTab, roles Roles) (RecordSet, error) {
	id, err := Identity(t)
	if err != nil {
		// Let Normalize produce the fully labelled error.
		return Normalize(t, roles)
	}
	key := memoKey{identity: id, roles: roles}

	m.mu.Lock()
	if rs, ok := m.cache[key]; ok {
		m.hits++
		m.mu.Unlock()
		return rs, nil
	}
	m.mu.Unlock()

	rs, err := Normalize(t, roles)
	if err != nil {
		return RecordSet{}, err
	}

	m.mu.Lock()
	m.cache[key] = rs
	m.mu.Unlock()
	return rs, nil
}

// Hits returns the number of cache hits. Used for tests and diagnostics.
func (m *Memo) Hits() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hits
}

// Len returns the number of cached entries.
func (m *Memo) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.cache)
}
