package harness

import (
	"fmt"
	"slices"
	"strings"
)

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFull trace:\n")
		for _, ev := range e.Trace {
			fmt.Fprintf(&buf, "  %s\n", formatTraceEvent(ev))
		}
	}
	return buf.String()
}

func formatTraceEvent(ev TraceEvent) string {
	if ev.Type == TraceTypeNotification {
		return fmt.Sprintf("[%d] %s notify %s=%q", ev.Seq, ev.Flow, ev.Origin, ev.Value)
	}
	s := fmt.Sprintf("[%d] %s %s (%s)", ev.Seq, ev.Flow, ev.Kind, ev.Source)
	if ev.Value != "" {
		s += fmt.Sprintf(" value=%q", ev.Value)
	}
	if ev.Records > 0 {
		s += fmt.Sprintf(" records=%d", ev.Records)
	}
	if ev.Error != "" {
		s += " error=" + ev.Error
	}
	return s
}

// EvaluateAssertions runs every assertion against result and returns the
// failure messages.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var msgs []string
	for i, a := range assertions {
		if err := evaluate(result, a); err != nil {
			msgs = append(msgs, fmt.Sprintf("assertion %d: %v", i, err))
		}
	}
	return msgs
}

func evaluate(result *Result, a Assertion) error {
	switch a.Type {
	case AssertFinalSelection:
		return assertFinalSelection(result, a)
	case AssertConverged:
		return assertConverged(result)
	case AssertNotificationCount:
		return assertNotificationCount(result, a)
	case AssertNotificationOrder:
		return assertNotificationOrder(result, a)
	case AssertRender:
		return assertRender(result, a)
	case AssertRenderCount:
		return assertRenderCount(result, a)
	case AssertStatus:
		return assertStatus(result, a)
	default:
		return fmt.Errorf("unknown assertion type: %s", a.Type)
	}
}

func assertFinalSelection(result *Result, a Assertion) error {
	f := result.Final
	if f.Store == a.Value && f.Selector == a.Value && f.Chart == a.Value {
		return nil
	}
	return &AssertionError{
		Type:     AssertFinalSelection,
		Expected: fmt.Sprintf("store, selector and chart at %q", a.Value),
		Actual:   fmt.Sprintf("store=%q selector=%q chart=%q", f.Store, f.Selector, f.Chart),
		Trace:    result.Trace,
	}
}

func assertConverged(result *Result) error {
	if result.Final.Converged {
		return nil
	}
	f := result.Final
	return &AssertionError{
		Type:     AssertConverged,
		Expected: "components agree",
		Actual:   fmt.Sprintf("store=%q selector=%q chart=%q", f.Store, f.Selector, f.Chart),
		Trace:    result.Trace,
	}
}

func assertNotificationCount(result *Result, a Assertion) error {
	got := len(result.Notifications(a.Origin))
	if got == *a.Count {
		return nil
	}
	return &AssertionError{
		Type:     AssertNotificationCount,
		Expected: fmt.Sprintf("%d notifications%s", *a.Count, fromOrigin(a.Origin)),
		Actual:   fmt.Sprintf("%d notifications", got),
		Trace:    result.Trace,
	}
}

func assertNotificationOrder(result *Result, a Assertion) error {
	notes := result.Notifications(a.Origin)
	got := make([]string, len(notes))
	for i, n := range notes {
		got[i] = n.Value
	}
	if slices.Equal(got, a.Values) {
		return nil
	}
	return &AssertionError{
		Type:     AssertNotificationOrder,
		Expected: fmt.Sprintf("values %q%s", a.Values, fromOrigin(a.Origin)),
		Actual:   fmt.Sprintf("values %q", got),
		Trace:    result.Trace,
	}
}

func assertRender(result *Result, a Assertion) error {
	if len(result.Renders) == 0 {
		return &AssertionError{
			Type:     AssertRender,
			Expected: "at least one render",
			Actual:   "no renders",
		}
	}
	last := result.Renders[len(result.Renders)-1]
	if a.Category != nil && last.Category != *a.Category {
		return &AssertionError{
			Type:     AssertRender,
			Expected: fmt.Sprintf("category %q", *a.Category),
			Actual:   fmt.Sprintf("category %q", last.Category),
		}
	}
	if a.Records != nil && last.Records != *a.Records {
		return &AssertionError{
			Type:     AssertRender,
			Expected: fmt.Sprintf("%d records", *a.Records),
			Actual:   fmt.Sprintf("%d records", last.Records),
		}
	}
	return nil
}

func assertRenderCount(result *Result, a Assertion) error {
	if len(result.Renders) == *a.Count {
		return nil
	}
	return &AssertionError{
		Type:     AssertRenderCount,
		Expected: fmt.Sprintf("%d renders", *a.Count),
		Actual:   fmt.Sprintf("%d renders", len(result.Renders)),
	}
}

func assertStatus(result *Result, a Assertion) error {
	if string(result.Status.State) == a.State {
		return nil
	}
	return &AssertionError{
		Type:     AssertStatus,
		Expected: fmt.Sprintf("state %q", a.State),
		Actual:   fmt.Sprintf("state %q (%s)", result.Status.State, result.Status.Message),
	}
}

func fromOrigin(origin string) string {
	if origin == "" {
		return ""
	}
	return " from " + origin
}
