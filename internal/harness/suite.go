package harness

import (
	"fmt"
	"path/filepath"
	"sort"
)

// DuplicateScenarioError is returned when two files in a suite share a
// scenario name, which would make their golden files collide.
type DuplicateScenarioError struct {
	Name  string
	First string
	Other string
}

// Error implements the error interface.
func (e *DuplicateScenarioError) Error() string {
	return fmt.Sprintf("scenario %q defined in both %s and %s", e.Name, e.First, e.Other)
}

// LoadDir loads every *.yaml scenario in dir, sorted by file name.
func LoadDir(dir string) ([]*Scenario, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("list scenarios: %w", err)
	}
	sort.Strings(paths)

	seen := make(map[string]string, len(paths))
	scenarios := make([]*Scenario, 0, len(paths))
	for _, path := range paths {
		s, err := LoadScenario(path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
		if first, ok := seen[s.Name]; ok {
			return nil, &DuplicateScenarioError{Name: s.Name, First: first, Other: path}
		}
		seen[s.Name] = path
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}
