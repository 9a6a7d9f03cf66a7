// Package classify assigns each discovered tool exactly one category.
//
// Rules are evaluated in a fixed order and the first match wins, so a name
// listed under several categories (swift, cargo, gradle, dotnet, ...) always
// lands in the earliest one.
package classify

import (
	"path/filepath"
	"slices"
	"strings"

	"github.com/example/devfetch/internal/model"
)

// Rule maps a predicate over (lowercased name, lowercased slash path) to a category.
type Rule struct {
	Category model.Category
	Match    func(name, path string) bool
}

var toolchainPrefixes = []string{
	"python", "python2", "python3", "pypy",
	"node", "deno", "bun",
	"ruby", "irb",
	"java", "javac", "jshell",
	"go",
	"rustc", "rust",
	"gcc", "g++", "clang", "clang++", "cc", "c++",
	"dotnet", "csc", "fsc",
	"php",
	"perl",
	"lua", "luajit",
	"kotlinc", "kotlin",
	"scala", "scalac",
	"swift", "swiftc",
	"dart",
	"rscript",
	"erl", "erlc", "elixir", "iex",
	"ghc", "ghci", "runhaskell",
	"zig",
	"nim",
	"crystal",
	"vlang",
	"julia",
	"ocaml", "ocamlc",
	"fsharp", "fsharpc",
	"clojure", "clj",
	"racket",
	"scheme", "guile",
}

var versionManagerDirs = []string{
	".sdkman", ".nvm", ".rbenv", ".pyenv", ".asdf",
	".rustup", ".cargo", ".local/share/virtualenvs",
}

var packageManagers = []string{
	"npm", "yarn", "pnpm", "bun",
	"pip", "pip3", "pipenv", "poetry", "conda", "mamba", "uv",
	"gem", "bundle", "bundler",
	"composer",
	"cargo",
	"mvn", "gradle", "ant", "sbt",
	"nuget",
	"swift",
	"pub",
	"mix", "hex",
	"cpan", "cpanm",
	"conan", "vcpkg",
	"brew", "apt", "yum", "dnf", "pacman", "zypper",
	"nix", "nix-env",
}

var buildSystems = []string{
	"make", "cmake", "ninja", "meson", "bazel", "buck",
	"gradle", "maven", "ant", "sbt",
	"rake", "grunt", "gulp", "webpack", "vite", "rollup", "parcel",
	"cargo",
	"dotnet",
	"xcodebuild",
	"msbuild",
	"nant",
	"waf",
	"scons",
	"tup",
	"b2", "bjam",
}

var developerToolPrefixes = []string{
	"git", "svn", "hg", "mercurial", "fossil",
	"docker", "podman", "kubectl", "helm", "kind", "minikube",
	"terraform", "ansible", "vagrant", "packer",
	"psql", "mysql", "sqlite3", "mongosh", "redis-cli",
	"code", "emacs", "nvim", "neovim",
	"eslint", "prettier", "black", "flake8", "pylint", "rubocop",
	"rustfmt", "clippy", "gofmt",
	"jest", "mocha", "pytest", "rspec",
	"aws", "gcloud", "az", "heroku", "netlify",
	"gdb", "lldb",
	"perf", "valgrind",
}

var ideDirs = []string{"visual studio code", "jetbrains"}

var rules = []Rule{
	{Category: model.LanguageToolchain, Match: func(name, path string) bool {
		return hasAnyPrefix(name, toolchainPrefixes) || containsAny(path, versionManagerDirs)
	}},
	{Category: model.PackageManager, Match: func(name, _ string) bool {
		return slices.Contains(packageManagers, name)
	}},
	{Category: model.BuildSystem, Match: func(name, _ string) bool {
		return slices.Contains(buildSystems, name)
	}},
	{Category: model.DeveloperTool, Match: func(name, path string) bool {
		return hasAnyPrefix(name, developerToolPrefixes) || containsAny(path, ideDirs)
	}},
}

// Rules returns the ordered rule list. Unknown is implied after the last rule.
func Rules() []Rule {
	return slices.Clone(rules)
}

// Classify returns the category of a tool. It depends only on its arguments.
func Classify(name, path string) model.Category {
	name = strings.ToLower(name)
	path = strings.ToLower(filepath.ToSlash(path))
	for _, r := range rules {
		if r.Match(name, path) {
			return r.Category
		}
	}
	return model.Unknown
}

// Tools sets the category of every tool in place.
func Tools(tools []model.Tool) {
	for i := range tools {
		tools[i].Category = Classify(tools[i].Name, tools[i].Path)
	}
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
