package detector

import (
	"encoding/json"
	"sort"

	"github.com/example/devfetch/internal/model"
)

// DependencyParser extracts dependency names from a structured command
// output. ok is false when the output does not have the expected shape.
type DependencyParser func(data []byte) (names []string, ok bool)

// Registry maps ecosystem kinds to the parser for their dependency listing.
type Registry map[EcosystemKind]DependencyParser

// DefaultRegistry holds the built-in parsers.
var DefaultRegistry = Registry{
	KindNode:   parseNPMList,
	KindPython: parsePipList,
	KindRust:   parseCargoMetadata,
}

// Parse runs the parser registered for kind. It returns nil for unknown
// kinds, malformed output and empty listings.
func (r Registry) Parse(kind EcosystemKind, data []byte) *model.DependencyInfo {
	parse, ok := r[kind]
	if !ok {
		return nil
	}
	names, ok := parse(data)
	if !ok {
		return nil
	}
	return model.NewDependencyInfo(names)
}

// parseNPMList reads `npm list --json`: an object whose "dependencies"
// member is keyed by package name.
func parseNPMList(data []byte) ([]string, bool) {
	var doc struct {
		Dependencies map[string]json.RawMessage `json:"dependencies"`
	}
	if err := json.Unmarshal(data, &doc); err != nil || doc.Dependencies == nil {
		return nil, false
	}
	names := make([]string, 0, len(doc.Dependencies))
	for name := range doc.Dependencies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, true
}

// namesOf collects the string "name" member of each element, skipping
// elements that are not objects or have no such member.
func namesOf(items []json.RawMessage) []string {
	names := make([]string, 0, len(items))
	for _, raw := range items {
		var it struct {
			Name *string `json:"name"`
		}
		if json.Unmarshal(raw, &it) != nil || it.Name == nil {
			continue
		}
		names = append(names, *it.Name)
	}
	return names
}

// parsePipList reads `pip list --format=json`: an array of {"name": ...}.
func parsePipList(data []byte) ([]string, bool) {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil || items == nil {
		return nil, false
	}
	return namesOf(items), true
}

// parseCargoMetadata reads `cargo metadata`: an object with a "packages" array.
func parseCargoMetadata(data []byte) ([]string, bool) {
	var doc struct {
		Packages []json.RawMessage `json:"packages"`
	}
	if err := json.Unmarshal(data, &doc); err != nil || doc.Packages == nil {
		return nil, false
	}
	return namesOf(doc.Packages), true
}
