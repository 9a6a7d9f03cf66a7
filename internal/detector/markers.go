package detector

import (
	"slices"
	"strings"
)

// Shape says how a command's output is interpreted.
type Shape int

const (
	// PlainText output carries a version banner.
	PlainText Shape = iota
	// StructuredJSON output carries a dependency listing.
	StructuredJSON
)

// EcosystemKind identifies the family an ecosystem belongs to. Parsers are
// selected by kind, never by the display name.
type EcosystemKind string

const (
	KindNode   EcosystemKind = "node"
	KindPython EcosystemKind = "python"
	KindRust   EcosystemKind = "rust"
	KindGo     EcosystemKind = "go"
	KindJVM    EcosystemKind = "jvm"
	KindRuby   EcosystemKind = "ruby"
	KindPHP    EcosystemKind = "php"
	KindDart   EcosystemKind = "dart"
	KindSwift  EcosystemKind = "swift"
	KindElixir EcosystemKind = "elixir"
	KindNative EcosystemKind = "native"
	KindDotNet EcosystemKind = "dotnet"
)

// Command is one ecosystem command run when its marker is found.
type Command struct {
	Tool  string
	Args  []string
	Shape Shape
}

func (c Command) String() string {
	return strings.Join(append([]string{c.Tool}, c.Args...), " ")
}

// Marker ties a file name, or a glob over file names, to an ecosystem.
type Marker struct {
	Pattern   string
	Ecosystem string
	Kind      EcosystemKind
	Commands  []Command
}

// IsGlob reports whether Pattern must be matched against directory entries.
func (m Marker) IsGlob() bool {
	return strings.ContainsAny(m.Pattern, "*?[")
}

func versionOf(tool string, args ...string) Command {
	if len(args) == 0 {
		args = []string{"--version"}
	}
	return Command{Tool: tool, Args: args, Shape: PlainText}
}

func listing(tool string, args ...string) Command {
	return Command{Tool: tool, Args: args, Shape: StructuredJSON}
}

// markers is evaluated in order; the order is also the order of
// ProjectInfo.Markers.
var markers = []Marker{
	{"package.json", "Node.js", KindNode, []Command{versionOf("node"), listing("npm", "list", "--depth=0", "--json")}},
	{"pyproject.toml", "Python", KindPython, []Command{versionOf("python3"), listing("pip", "list", "--format=json")}},
	{"requirements.txt", "Python", KindPython, []Command{versionOf("python3")}},
	{"Pipfile", "Python (Pipenv)", KindPython, []Command{versionOf("pipenv")}},
	{"poetry.lock", "Python (Poetry)", KindPython, []Command{versionOf("poetry")}},
	{"Cargo.toml", "Rust", KindRust, []Command{versionOf("rustc"), listing("cargo", "metadata", "--no-deps", "--format-version=1")}},
	{"go.mod", "Go", KindGo, []Command{versionOf("go", "version")}},
	{"pom.xml", "Java (Maven)", KindJVM, []Command{versionOf("mvn")}},
	{"build.gradle", "JVM (Gradle)", KindJVM, []Command{versionOf("gradle")}},
	{"build.gradle.kts", "JVM (Gradle/Kotlin)", KindJVM, []Command{versionOf("gradle")}},
	{"Gemfile", "Ruby", KindRuby, []Command{versionOf("ruby"), versionOf("bundle")}},
	{"composer.json", "PHP", KindPHP, []Command{versionOf("php"), versionOf("composer")}},
	{"pubspec.yaml", "Dart/Flutter", KindDart, []Command{versionOf("dart")}},
	{"Package.swift", "Swift", KindSwift, []Command{versionOf("swift")}},
	{"mix.exs", "Elixir", KindElixir, []Command{versionOf("elixir")}},
	{"CMakeLists.txt", "C/C++ (CMake)", KindNative, []Command{versionOf("cmake")}},
	{"Makefile", "C/C++ (Make)", KindNative, []Command{versionOf("make")}},
	{"meson.build", "C/C++ (Meson)", KindNative, []Command{versionOf("meson")}},
	{"*.csproj", ".NET/C#", KindDotNet, []Command{versionOf("dotnet")}},
	{"*.fsproj", ".NET/F#", KindDotNet, []Command{versionOf("dotnet")}},
}

// Markers returns a copy of the marker table in evaluation order.
func Markers() []Marker {
	return slices.Clone(markers)
}
