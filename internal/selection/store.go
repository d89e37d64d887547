package selection

import (
	"log/slog"
)

// Clock stamps notifications with a strictly increasing sequence number.
// engine.Clock satisfies it.
type Clock interface {
	Next() int64
}

// FlowFunc returns the flow token for a new notification chain.
type FlowFunc func() string

// DefaultMaxHops bounds a single notification chain.
const DefaultMaxHops = 64

// Notification announces a change of the selection value.
type Notification struct {
	Seq    int64  // Logical timestamp from the store's clock
	Flow   string // Shared by every notification in one chain
	Origin string // Name of the party that called Set
	Value  string
}

type subscriber struct {
	id   int
	name string
	fn   func(Notification)
}

// Store is the single mediator for the selection value.
//
// Set is idempotent: setting the held value is a no-op that notifies
// nobody. Notifications are delivered in FIFO order, run to completion; a
// Set made from inside a subscriber is queued and delivered after the
// current notification has reached every subscriber. Subscribers never
// receive notifications they originated.
type Store struct {
	value string

	clock  Clock
	flow   FlowFunc
	logger *slog.Logger

	subs   []subscriber
	taps   []subscriber
	nextID int

	pending  []Notification
	draining bool
	chain    string
	budget   hopBudget
	err      error
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithClock sets the clock used to stamp notifications.
func WithClock(c Clock) StoreOption {
	return func(s *Store) {
		s.clock = c
	}
}

// WithFlow sets the flow token source. A token is drawn once per chain.
func WithFlow(fn FlowFunc) StoreOption {
	return func(s *Store) {
		s.flow = fn
	}
}

// WithMaxHops sets the hop budget for one notification chain.
func WithMaxHops(n int) StoreOption {
	return func(s *Store) {
		s.budget = newHopBudget(n)
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) StoreOption {
	return func(s *Store) {
		s.logger = l
	}
}

// NewStore creates a store holding the empty value.
func NewStore(opts ...StoreOption) *Store {
	s := &Store{
		clock:  &counter{},
		flow:   func() string { return "" },
		logger: slog.Default(),
		budget: newHopBudget(DefaultMaxHops),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns the current value.
func (s *Store) Get() string {
	return s.value
}

// Set replaces the value on behalf of origin.
// Returns false, notifying nobody, if value equals the current value.
func (s *Store) Set(origin, value string) bool {
	if value == s.value {
		return false
	}
	s.value = value

	if !s.draining {
		s.chain = s.flow()
	}
	s.pending = append(s.pending, Notification{
		Seq:    s.clock.Next(),
		Flow:   s.chain,
		Origin: origin,
		Value:  value,
	})

	if !s.draining {
		s.drain()
	}
	return true
}

// Subscribe registers fn under name. fn receives every notification whose
// Origin is not name. The returned function removes the subscription.
func (s *Store) Subscribe(name string, fn func(Notification)) (unsubscribe func()) {
	s.nextID++
	id := s.nextID
	s.subs = append(s.subs, subscriber{id: id, name: name, fn: fn})
	return func() {
		s.subs = remove(s.subs, id)
	}
}

// Tap registers fn to observe every notification, including ones a
// subscriber originated. Taps run before subscribers.
func (s *Store) Tap(fn func(Notification)) (untap func()) {
	s.nextID++
	id := s.nextID
	s.taps = append(s.taps, subscriber{id: id, fn: fn})
	return func() {
		s.taps = remove(s.taps, id)
	}
}

// Err returns the error that ended the last chain early, or nil.
func (s *Store) Err() error {
	return s.err
}

func (s *Store) drain() {
	s.draining = true
	s.budget.reset()
	s.err = nil
	defer func() {
		s.draining = false
	}()

	for len(s.pending) > 0 {
		n := s.pending[0]
		s.pending = s.pending[1:]

		if err := s.budget.check(n.Flow); err != nil {
			s.err = err
			s.logger.Error("selection chain dropped",
				"flow", n.Flow,
				"value", n.Value,
				"dropped", len(s.pending)+1,
				"error", err)
			s.pending = nil
			return
		}

		for _, tap := range snapshot(s.taps) {
			tap.fn(n)
		}
		for _, sub := range snapshot(s.subs) {
			if sub.name == n.Origin {
				continue
			}
			sub.fn(n)
		}
	}
}

// snapshot copies subs so subscriptions may change during delivery.
func snapshot(subs []subscriber) []subscriber {
	out := make([]subscriber, len(subs))
	copy(out, subs)
	return out
}

func remove(subs []subscriber, id int) []subscriber {
	out := subs[:0:0]
	for _, sub := range subs {
		if sub.id != id {
			out = append(out, sub)
		}
	}
	return out
}

// counter is the default clock.
type counter struct {
	seq int64
}

func (c *counter) Next() int64 {
	c.seq++
	return c.seq
}
