package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/example/devfetch/internal/config"
	"github.com/example/devfetch/internal/detector"
	"github.com/example/devfetch/internal/pathscan"
	"github.com/spf13/cobra"
)

type doctorCheck struct {
	Name   string
	Status string // "✓", "✗" or "⊘"
	Detail string
	Error  error
}

func newDoctorCmd(loader *config.Loader) *cobra.Command {
	flags := &runtimeFlagSet{}

	cmd := &cobra.Command{
		Use:   "doctor [PATH]",
		Short: "Check the search path, configuration and target directory",
		Long: `The doctor subcommand validates the environment a scan runs in:
- Go runtime version
- search path entries, missing and duplicate directories
- number of developer-tool candidates on the search path
- configuration validity
- target directory and the project markers it contains`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loader.Load(flags.toOverrides(cmd))
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}

			target := "."
			if len(args) > 0 {
				target = args[0]
			}

			checks := runDoctorChecks(&cfg, os.Getenv("PATH"), target)
			printDoctorReport(cmd, checks)

			for _, check := range checks {
				if check.Error != nil {
					return fmt.Errorf("doctor checks failed")
				}
			}

			fmt.Fprintln(cmd.OutOrStdout(), "\n✓ All checks passed. System is ready.")
			return nil
		},
	}

	bindRuntimeFlags(cmd, flags)

	return cmd
}

func runDoctorChecks(cfg *config.RuntimeConfig, pathList, target string) []doctorCheck {
	checks := []doctorCheck{checkGoVersion()}
	checks = append(checks, checkSearchPath(pathList))
	checks = append(checks, checkCandidates(pathList, cfg.ExtraTools))
	checks = append(checks, checkConfiguration(cfg))
	checks = append(checks, checkTargetDirectory(target))
	if cfg.OutputFile != "" {
		checks = append(checks, checkOutputDirectory(filepath.Dir(cfg.OutputFile)))
	}
	return checks
}

func checkGoVersion() doctorCheck {
	return doctorCheck{
		Name:   "Go Runtime",
		Status: "✓",
		Detail: fmt.Sprintf("Version %s (%s/%s)", runtime.Version(), runtime.GOOS, runtime.GOARCH),
	}
}

// checkSearchPath fails only when PATH is empty; missing or repeated
// directories are reported but harmless.
func checkSearchPath(pathList string) doctorCheck {
	check := doctorCheck{Name: "Search Path"}
	if strings.TrimSpace(pathList) == "" {
		check.Status = "✗"
		check.Detail = "PATH is empty"
		check.Error = errors.New("PATH is not set")
		return check
	}

	var entries, missing, duplicates []string
	seen := map[string]bool{}
	for _, dir := range filepath.SplitList(pathList) {
		if dir == "" {
			continue
		}
		entries = append(entries, dir)
		clean := filepath.Clean(dir)
		if seen[clean] {
			duplicates = append(duplicates, dir)
			continue
		}
		seen[clean] = true
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			missing = append(missing, dir)
		}
	}

	check.Status = "✓"
	check.Detail = fmt.Sprintf("%d entries", len(entries))
	if len(missing) > 0 {
		check.Detail += fmt.Sprintf(", missing: %s", strings.Join(missing, ", "))
	}
	if len(duplicates) > 0 {
		check.Detail += fmt.Sprintf(", duplicates: %s", strings.Join(duplicates, ", "))
	}
	return check
}

func checkCandidates(pathList string, extra []string) doctorCheck {
	names := pathscan.ScanSearchPath(pathList, pathscan.NewVocabulary(extra...))
	if len(names) == 0 {
		return doctorCheck{
			Name:   "Tool Candidates",
			Status: "⊘",
			Detail: "No developer-tool candidates on the search path",
		}
	}
	return doctorCheck{
		Name:   "Tool Candidates",
		Status: "✓",
		Detail: fmt.Sprintf("%d candidates to probe", len(names)),
	}
}

func checkConfiguration(cfg *config.RuntimeConfig) doctorCheck {
	if err := cfg.Validate(); err != nil {
		return doctorCheck{
			Name:   "Configuration",
			Status: "✗",
			Detail: "Invalid configuration",
			Error:  err,
		}
	}

	return doctorCheck{
		Name:   "Configuration",
		Status: "✓",
		Detail: fmt.Sprintf("timeout=%s, workers=%d, format=%s", cfg.Timeout, cfg.Workers, cfg.Format),
	}
}

func checkTargetDirectory(target string) doctorCheck {
	check := doctorCheck{Name: "Target Directory"}
	abs, err := filepath.Abs(target)
	if err != nil {
		abs = target
	}

	info, err := os.Stat(abs)
	if err != nil || !info.IsDir() {
		check.Status = "✗"
		check.Detail = abs
		if err == nil {
			err = fmt.Errorf("%s is not a directory", abs)
		}
		check.Error = err
		return check
	}

	markers := detector.MatchMarkers(abs)
	check.Status = "✓"
	if len(markers) == 0 {
		check.Detail = fmt.Sprintf("%s (no project markers)", abs)
		return check
	}
	files := make([]string, 0, len(markers))
	for _, m := range markers {
		files = append(files, m.File)
	}
	check.Detail = fmt.Sprintf("%s (%s)", abs, strings.Join(files, ", "))
	return check
}

func checkOutputDirectory(outputDir string) doctorCheck {
	if err := ensureOutputDir(outputDir); err != nil {
		return doctorCheck{
			Name:   "Output Directory",
			Status: "✗",
			Detail: outputDir,
			Error:  err,
		}
	}

	return doctorCheck{
		Name:   "Output Directory",
		Status: "✓",
		Detail: outputDir,
	}
}

func printDoctorReport(cmd *cobra.Command, checks []doctorCheck) {
	fmt.Fprintln(cmd.OutOrStdout(), "Running environment diagnostics...")

	for _, check := range checks {
		fmt.Fprintf(cmd.OutOrStdout(), "%s %-30s %s\n", check.Status, check.Name+":", check.Detail)
		if check.Error != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "   Error: %v\n", check.Error)
		}
	}
}
