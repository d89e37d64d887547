package harness

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/regionplot/internal/table"
)

// Scenario is a scripted user session with the assertions it must satisfy.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Dataset is the table installed at startup, relative to the scenario
	// file. Empty means the embedded WorldPhones table.
	Dataset string `yaml:"dataset,omitempty"`

	// Roles maps the table's dimensions onto record roles.
	Roles Roles `yaml:"roles,omitempty"`

	// MaxHops bounds each notification chain. Zero uses the default.
	MaxHops int `yaml:"max_hops,omitempty"`

	// FlowToken prefixes the sequential flow tokens. Defaults to "flow".
	FlowToken string `yaml:"flow_token,omitempty"`

	// Startup is the expected outcome of the initial load. Nil means it
	// must succeed.
	Startup *Expect `yaml:"startup,omitempty"`

	// Steps are the user actions, applied in order.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final trace and state.
	Assertions []Assertion `yaml:"assertions"`

	dir string // Directory the scenario was loaded from
}

// Roles mirrors table.Roles with YAML tags.
type Roles struct {
	Primary   string `yaml:"primary,omitempty"`
	Secondary string `yaml:"secondary,omitempty"`
	Value     string `yaml:"value,omitempty"`
}

func (r Roles) table() table.Roles {
	return table.Roles{Primary: r.Primary, Secondary: r.Secondary, Value: r.Value}
}

// Step is one user action. Exactly one of Select and Load is set.
type Step struct {
	// Select picks a category in the selector.
	Select string `yaml:"select,omitempty"`

	// Load replaces the dataset file and reloads it. Relative to the
	// scenario file.
	Load string `yaml:"load,omitempty"`

	// Expect validates the step's outcome. Nil means it must succeed.
	Expect *Expect `yaml:"expect,omitempty"`
}

// Expect describes a step's expected outcome.
type Expect struct {
	// Error is the expected error kind, one of the Error* constants.
	// Empty means success.
	Error string `yaml:"error,omitempty"`

	// Selection is the store's value after the step.
	Selection *string `yaml:"selection,omitempty"`
}

// Expected error kinds.
const (
	ErrorUnknownOption = "unknown_option"
	ErrorNotReady      = "not_ready"
	ErrorLoad          = "load"
)

// Assertion validates the final trace or state.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Value is the expected selection (final_selection).
	Value string `yaml:"value,omitempty"`

	// Origin restricts notification assertions to one publisher.
	Origin string `yaml:"origin,omitempty"`

	// Count is the expected number of notifications or renders.
	Count *int `yaml:"count,omitempty"`

	// Values are the expected notification values in order.
	Values []string `yaml:"values,omitempty"`

	// Category and Records describe the last render.
	Category *string `yaml:"category,omitempty"`
	Records  *int    `yaml:"records,omitempty"`

	// State is the expected page state (status).
	State string `yaml:"state,omitempty"`
}

// Assertion type constants.
const (
	AssertFinalSelection    = "final_selection"
	AssertConverged         = "converged"
	AssertNotificationCount = "notification_count"
	AssertNotificationOrder = "notification_order"
	AssertRender            = "render"
	AssertRenderCount       = "render_count"
	AssertStatus            = "status"
)

// LoadScenario reads and parses a scenario YAML file. Unknown fields are
// rejected.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	s, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}
	s.dir = filepath.Dir(path)
	return s, nil
}

// ParseScenario decodes and validates a scenario. Relative paths resolve
// against the working directory.
func ParseScenario(data []byte) (*Scenario, error) {
	var s Scenario
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := validateScenario(&s); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &s, nil
}

// LoadScenarios loads each path. Directories contribute their *.yaml and
// *.yml files in name order.
func LoadScenarios(paths []string) ([]*Scenario, error) {
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("failed to read scenario path: %w", err)
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}
		entries, err := os.ReadDir(p)
		if err != nil {
			return nil, fmt.Errorf("failed to read scenario dir: %w", err)
		}
		var found []string
		for _, e := range entries {
			ext := strings.ToLower(filepath.Ext(e.Name()))
			if !e.IsDir() && (ext == ".yaml" || ext == ".yml") {
				found = append(found, filepath.Join(p, e.Name()))
			}
		}
		sort.Strings(found)
		files = append(files, found...)
	}

	out := make([]*Scenario, 0, len(files))
	for _, f := range files {
		s, err := LoadScenario(f)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f, err)
		}
		out = append(out, s)
	}
	return out, nil
}

// resolve returns path relative to the scenario's directory.
func (s *Scenario) resolve(path string) string {
	if path == "" || filepath.IsAbs(path) || s.dir == "" {
		return path
	}
	return filepath.Join(s.dir, path)
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return errors.New("name is required")
	}
	if s.Description == "" {
		return errors.New("description is required")
	}
	if s.MaxHops < 0 {
		return errors.New("max_hops must not be negative")
	}
	if err := validateExpect(s.Startup, true); err != nil {
		return fmt.Errorf("startup: %w", err)
	}
	for i, st := range s.Steps {
		if (st.Select == "") == (st.Load == "") {
			return fmt.Errorf("step %d: exactly one of select or load is required", i)
		}
		if err := validateExpect(st.Expect, st.Load != ""); err != nil {
			return fmt.Errorf("step %d: %w", i, err)
		}
	}
	for i, a := range s.Assertions {
		if err := validateAssertion(a); err != nil {
			return fmt.Errorf("assertion %d (%s): %w", i, a.Type, err)
		}
	}
	return nil
}

func validateExpect(e *Expect, load bool) error {
	if e == nil {
		return nil
	}
	switch e.Error {
	case "", ErrorNotReady:
	case ErrorUnknownOption:
		if load {
			return errors.New("unknown_option cannot result from a load")
		}
	case ErrorLoad:
		if !load {
			return errors.New("load errors only result from a load")
		}
	default:
		return fmt.Errorf("unknown error kind %q", e.Error)
	}
	return nil
}

func validateAssertion(a Assertion) error {
	switch a.Type {
	case AssertFinalSelection:
		if a.Value == "" {
			return errors.New("value is required")
		}
	case AssertConverged:
	case AssertNotificationCount, AssertRenderCount:
		if a.Count == nil {
			return errors.New("count is required")
		}
	case AssertNotificationOrder:
		if a.Values == nil {
			return errors.New("values is required")
		}
	case AssertRender:
		if a.Category == nil && a.Records == nil {
			return errors.New("category or records is required")
		}
	case AssertStatus:
		if a.State == "" {
			return errors.New("state is required")
		}
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
	return nil
}
