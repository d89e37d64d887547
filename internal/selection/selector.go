package selection

import (
	"log/slog"
)

// Selector is the user-facing option list and its selected value.
//
// Current is always one of Options, or empty when there are none.
type Selector struct {
	options   []string
	current   string
	listeners []func(string)
	logger    *slog.Logger
}

// NewSelector creates a selector with no options.
func NewSelector(logger *slog.Logger) *Selector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Selector{logger: logger}
}

// OnChange registers fn to be called with each value the selector adopts
// on its own: a user selection, or a fallback when options change.
// Values received through Sync are not reported.
func (s *Selector) OnChange(fn func(value string)) {
	s.listeners = append(s.listeners, fn)
}

// Options returns a copy of the option list.
func (s *Selector) Options() []string {
	out := make([]string, len(s.options))
	copy(out, s.options)
	return out
}

// Current returns the selected value.
func (s *Selector) Current() string {
	return s.current
}

// SetOptions replaces the option list.
//
// If the current value is no longer an option the first option is
// selected (or none, when options is empty) and listeners are notified
// once. Returns DuplicateOptionError, leaving the selector unchanged, if a
// label repeats.
func (s *Selector) SetOptions(options []string) error {
	seen := make(map[string]bool, len(options))
	for _, opt := range options {
		if seen[opt] {
			return &DuplicateOptionError{Option: opt}
		}
		seen[opt] = true
	}

	s.options = make([]string, len(options))
	copy(s.options, options)

	if s.current != "" && seen[s.current] {
		return nil
	}

	next := ""
	if len(s.options) > 0 {
		next = s.options[0]
	}
	if next == s.current {
		return nil
	}

	s.logger.Debug("selector fell back", "from", s.current, "to", next)
	s.current = next
	s.emit(next)
	return nil
}

// UserSelect handles a user choosing value.
//
// Selecting the current value is a no-op. A value outside the options is
// rejected with UnknownOptionError. Otherwise the value is adopted and
// listeners are notified exactly once.
func (s *Selector) UserSelect(value string) error {
	if value == s.current {
		return nil
	}
	if !s.has(value) {
		return &UnknownOptionError{Value: value}
	}
	s.current = value
	s.emit(value)
	return nil
}

// Sync adopts a value decided elsewhere without notifying listeners.
// Values outside the options are ignored.
func (s *Selector) Sync(value string) {
	if value == s.current {
		return
	}
	if !s.has(value) {
		s.logger.Debug("selector ignored sync", "value", value)
		return
	}
	s.current = value
}

func (s *Selector) has(value string) bool {
	for _, opt := range s.options {
		if opt == value {
			return true
		}
	}
	return false
}

func (s *Selector) emit(value string) {
	for _, fn := range s.listeners {
		fn(value)
	}
}
