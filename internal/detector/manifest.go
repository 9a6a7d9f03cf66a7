package detector

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"golang.org/x/mod/modfile"
)

// ManifestParser lists the dependencies declared in a marker file. It is
// the fallback when no ecosystem command produced a dependency listing.
type ManifestParser func(data []byte) ([]string, error)

// manifestParsers is keyed by marker pattern.
var manifestParsers = map[string]ManifestParser{
	"package.json":   parsePackageJSON,
	"Cargo.toml":     parseCargoToml,
	"pyproject.toml": parsePyproject,
	"go.mod":         parseGoMod,
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func parsePackageJSON(data []byte) ([]string, error) {
	var doc struct {
		Dependencies map[string]string `json:"dependencies"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode package.json: %w", err)
	}
	return sortedKeys(doc.Dependencies), nil
}

func parseCargoToml(data []byte) ([]string, error) {
	var doc struct {
		Dependencies map[string]any `toml:"dependencies"`
	}
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode Cargo.toml: %w", err)
	}
	return sortedKeys(doc.Dependencies), nil
}

func parsePyproject(data []byte) ([]string, error) {
	var doc struct {
		Project struct {
			Dependencies []string `toml:"dependencies"`
		} `toml:"project"`
		Tool struct {
			Poetry struct {
				Dependencies map[string]any `toml:"dependencies"`
			} `toml:"poetry"`
		} `toml:"tool"`
	}
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode pyproject.toml: %w", err)
	}

	if len(doc.Project.Dependencies) > 0 {
		names := make([]string, 0, len(doc.Project.Dependencies))
		for _, req := range doc.Project.Dependencies {
			if name := requirementName(req); name != "" {
				names = append(names, name)
			}
		}
		return names, nil
	}

	// Poetry lists the interpreter constraint alongside real packages.
	var names []string
	for _, name := range sortedKeys(doc.Tool.Poetry.Dependencies) {
		if !strings.EqualFold(name, "python") {
			names = append(names, name)
		}
	}
	return names, nil
}

// requirementName returns the distribution name of a requirement string
// such as "requests[socks]>=2.31; python_version > '3.8'".
func requirementName(req string) string {
	req = strings.TrimSpace(req)
	if i := strings.IndexAny(req, " <>=!~;[(@"); i >= 0 {
		req = req[:i]
	}
	return req
}

func parseGoMod(data []byte) ([]string, error) {
	f, err := modfile.ParseLax("go.mod", data, nil)
	if err != nil {
		return nil, fmt.Errorf("parse go.mod: %w", err)
	}
	names := make([]string, 0, len(f.Require))
	for _, r := range f.Require {
		names = append(names, r.Mod.Path)
	}
	return names, nil
}
