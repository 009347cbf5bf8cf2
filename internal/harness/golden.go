package harness

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// TraceSnapshot is what a golden file holds for one scenario run.
type TraceSnapshot struct {
	ScenarioName string       `json:"scenario_name"`
	Today        string       `json:"today"`
	Trace        []TraceEvent `json:"trace"`
}

// MarshalSnapshot renders a snapshot as indented JSON with a trailing
// newline. Map keys are sorted by encoding/json, so output is stable.
func MarshalSnapshot(s TraceSnapshot) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false) // keep "<null>" readable
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// RunWithGolden runs scenario and diffs its trace with
// testdata/golden/<name>.golden. A mismatch fails t through goldie; the
// returned error only reports a scenario that could not run. Pass -update
// to rewrite the fixtures.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}

	today := scenario.Today
	if today == "" {
		today = DefaultToday
	}
	snapshot := TraceSnapshot{
		ScenarioName: scenario.Name,
		Today:        today,
		Trace:        result.Trace,
	}
	if err := assertSnapshot(t, scenario.Name, snapshot); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden diffs an existing result with its golden file.
func AssertGolden(t *testing.T, scenarioName, today string, result *Result) error {
	t.Helper()

	return assertSnapshot(t, scenarioName, TraceSnapshot{
		ScenarioName: scenarioName,
		Today:        today,
		Trace:        result.Trace,
	})
}

func assertSnapshot(t *testing.T, name string, snapshot TraceSnapshot) error {
	t.Helper()

	data, err := MarshalSnapshot(snapshot)
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
