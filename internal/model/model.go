// Package model holds the records produced by a devfetch scan.
package model

// Category groups a discovered tool by what it is used for.
type Category string

const (
	LanguageToolchain Category = "LanguageToolchain"
	PackageManager    Category = "PackageManager"
	BuildSystem       Category = "BuildSystem"
	DeveloperTool     Category = "DeveloperTool"
	Unknown           Category = "Unknown"
)

// Categories returns every category in display order.
func Categories() []Category {
	return []Category{LanguageToolchain, PackageManager, BuildSystem, DeveloperTool, Unknown}
}

// DisplayName returns the heading used when rendering a category.
func (c Category) DisplayName() string {
	switch c {
	case LanguageToolchain:
		return "Language Toolchains"
	case PackageManager:
		return "Package Managers"
	case BuildSystem:
		return "Build Systems"
	case DeveloperTool:
		return "Developer Tools"
	default:
		return "Other Tools"
	}
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	for _, known := range Categories() {
		if c == known {
			return true
		}
	}
	return false
}

// Tool is a working, version-reporting executable found on the search path.
type Tool struct {
	Name     string   `json:"name"`
	Path     string   `json:"path"`
	Version  *string  `json:"version"`
	Category Category `json:"category"`
}

// DetectedMarker records a marker file that matched in the target directory.
type DetectedMarker struct {
	File      string `json:"file"`
	Ecosystem string `json:"ecosystem"`
}

// DependencyInfo is the dependency count of an ecosystem plus a short sample of names.
type DependencyInfo struct {
	Count  int      `json:"count"`
	Sample []string `json:"sample"`
}

// MaxDependencySample caps DependencyInfo.Sample.
const MaxDependencySample = 5

// NewDependencyInfo builds a DependencyInfo from the full dependency list.
// An empty list yields nil.
func NewDependencyInfo(names []string) *DependencyInfo {
	if len(names) == 0 {
		return nil
	}
	sample := names
	if len(sample) > MaxDependencySample {
		sample = sample[:MaxDependencySample]
	}
	return &DependencyInfo{
		Count:  len(names),
		Sample: append([]string(nil), sample...),
	}
}

// EcosystemInfo is what the ecosystem commands reported for one project ecosystem.
type EcosystemInfo struct {
	Name         string          `json:"name"`
	ToolVersion  *string         `json:"toolVersion"`
	Dependencies *DependencyInfo `json:"dependencies"`
}

// Empty reports whether neither a version nor dependencies were found.
func (e EcosystemInfo) Empty() bool {
	return e.ToolVersion == nil && e.Dependencies == nil
}

// ProjectInfo describes the ecosystems detected in a project directory.
type ProjectInfo struct {
	Path       string                   `json:"path"`
	Markers    []DetectedMarker         `json:"markers"`
	Ecosystems map[string]EcosystemInfo `json:"ecosystems"`
}

// ScanResult is the aggregate output of one devfetch invocation.
type ScanResult struct {
	GlobalTools []Tool       `json:"globalTools"`
	ProjectInfo *ProjectInfo `json:"projectInfo"`
}

// NewScanResult returns an empty result whose tool list marshals as [] rather than null.
func NewScanResult() ScanResult {
	return ScanResult{GlobalTools: []Tool{}}
}

// StringPtr returns a pointer to s, or nil when s is empty.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
