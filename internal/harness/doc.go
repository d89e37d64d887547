// Package harness runs scripted user sessions against a regionplot page
// and checks the resulting notification trace.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: asia_then_europe
//	description: "Selecting two regions in turn"
//	dataset: ../tables/phones.yaml   # relative to the scenario; empty means WorldPhones
//	roles: { primary: year, secondary: region, value: phones }
//	steps:
//	  - select: Asia
//	    expect: { selection: Asia }
//	  - select: Atlantis
//	    expect: { error: unknown_option }
//	  - load: ../tables/phones_v2.yaml
//	assertions:
//	  - type: final_selection
//	    value: Asia
//	  - type: notification_count
//	    origin: selector
//	    count: 2
//
// Every scenario starts the page first. A startup failure passes only when
// the scenario declares it with a startup expectation.
//
// # Assertion Types
//
//   - final_selection: store, selector and chart all hold value
//   - converged: the three components agree
//   - notification_count: exactly count notifications, optionally from one origin
//   - notification_order: the notification values in order, optionally from one origin
//   - render: the last render showed category with records records
//   - render_count: exactly count renders
//   - status: the page ended in state
//
// # Deterministic Testing
//
// Each run uses its own in-memory SQLite event log, a
// testutil.DeterministicClock and a testutil.SequentialFlowGenerator, so
// traces are identical across runs and can be compared against golden
// files with RunWithGolden.
package harness
