package pathscan

import "strings"

// defaultVocabulary holds name fragments of known developer tools. A file on
// the search path is a candidate when its name starts with one of them.
var defaultVocabulary = []string{
	// runtimes
	"python", "node", "ruby", "perl", "php", "lua", "java", "javac", "scala",
	"kotlin", "swift", "go", "rust", "cargo", "deno", "bun",
	// compilers
	"gcc", "g++", "clang", "cc", "c++", "rustc", "ghc", "ocaml",
	// package managers
	"npm", "yarn", "pnpm", "pip", "gem", "bundle", "composer", "maven", "mvn",
	"gradle", "mix", "hex", "cabal", "stack", "lein", "rebar", "sbt",
	"poetry", "pipenv", "conda", "mamba", "conan", "vcpkg", "brew",
	// build tools
	"make", "cmake", "ninja", "meson", "bazel", "ant", "rake", "grunt", "gulp",
	"webpack", "vite", "rollup", "parcel", "esbuild", "turbo",
	// version control
	"git", "hg", "svn", "fossil",
	// containers
	"docker", "podman", "kubectl", "helm", "kind", "minikube", "compose",
	// infrastructure
	"terraform", "ansible", "vagrant", "packer",
	// databases
	"psql", "mysql", "sqlite", "mongo", "redis",
	// .NET
	"dotnet", "csc", "fsc", "nuget",
	// testing
	"jest", "mocha", "pytest", "rspec", "junit",
	// linters and formatters
	"eslint", "prettier", "black", "flake8", "pylint", "rubocop", "rustfmt", "clippy",
	// misc
	"jq", "yq", "protoc", "thrift",
}

// Vocabulary decides whether an executable name looks like a developer tool.
type Vocabulary struct {
	fragments []string
}

// NewVocabulary returns the built-in vocabulary extended with extra fragments.
func NewVocabulary(extra ...string) Vocabulary {
	fragments := make([]string, 0, len(defaultVocabulary)+len(extra))
	fragments = append(fragments, defaultVocabulary...)
	for _, e := range extra {
		e = strings.ToLower(strings.TrimSpace(e))
		if e != "" {
			fragments = append(fragments, e)
		}
	}
	return Vocabulary{fragments: fragments}
}

// Matches reports whether name, or name with trailing digits removed, starts
// with a vocabulary fragment. The digit rule covers versioned binaries such
// as python3 or node18.
func (v Vocabulary) Matches(name string) bool {
	lower := strings.ToLower(name)
	if v.matchesPrefix(lower) {
		return true
	}
	base := strings.TrimRight(lower, "0123456789")
	if base == lower || base == "" {
		return false
	}
	return v.matchesPrefix(base)
}

func (v Vocabulary) matchesPrefix(name string) bool {
	for _, f := range v.fragments {
		if strings.HasPrefix(name, f) {
			return true
		}
	}
	return false
}
