package harness

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/regionplot/internal/selection"
)

// TraceSnapshot is the golden-file form of a scenario run.
type TraceSnapshot struct {
	ScenarioName string             `json:"scenario_name"`
	FlowToken    string             `json:"flow_token,omitempty"`
	Trace        []TraceEvent       `json:"trace"`
	Renders      []RenderCall       `json:"renders"`
	Final        selection.Snapshot `json:"final"`
}

// MarshalSnapshot renders a run as indented JSON. Field order is fixed by
// the struct definitions, so equal runs produce equal bytes.
func MarshalSnapshot(name, flowToken string, result *Result) ([]byte, error) {
	snap := TraceSnapshot{
		ScenarioName: name,
		FlowToken:    flowToken,
		Trace:        result.Trace,
		Renders:      result.Renders,
		Final:        result.Final,
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// RunWithGolden executes a scenario and compares its trace against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(context.Background(), scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, scenario.FlowToken, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result against its golden file.
func AssertGolden(t *testing.T, name, flowToken string, result *Result) error {
	t.Helper()

	data, err := MarshalSnapshot(name, flowToken, result)
	if err != nil {
		return err
	}
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, data)
	return nil
}
