package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/example/devfetch/internal/config"
	"github.com/example/devfetch/internal/events"
	"github.com/example/devfetch/internal/logging"
	"github.com/example/devfetch/internal/model"
	"github.com/example/devfetch/internal/output"
	"github.com/example/devfetch/internal/pathscan"
	"github.com/example/devfetch/internal/scan"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

type scopeFlags struct {
	global bool
	local  bool
}

func (s scopeFlags) options(args []string) scan.Options {
	opts := scan.Options{ScanGlobal: !s.local, ScanLocal: !s.global}
	if len(args) > 0 {
		opts.TargetDir = args[0]
	}
	return opts
}

func newScanCmd(loader *config.Loader) *cobra.Command {
	flags := &runtimeFlagSet{}
	scope := &scopeFlags{}

	cmd := &cobra.Command{
		Use:   "devfetch [PATH]",
		Short: "Discover developer tools and project ecosystems",
		Long: `devfetch scans the executable search path for developer tools, asks each
one for its version and groups them by category. It then inspects the target
directory (default: current directory) for project marker files and queries
the matching toolchains for versions and dependencies.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loader.Load(flags.toOverrides(cmd))
			if err != nil {
				return err
			}

			if err := cfg.Validate(); err != nil {
				return err
			}

			result := runScan(cmd, cfg, scope.options(args))
			return writeReport(cmd.OutOrStdout(), cfg, result)
		},
	}

	bindRuntimeFlags(cmd, flags)
	cmd.Flags().BoolVar(&scope.global, "global", false, "Show only global tools (ignore project context)")
	cmd.Flags().BoolVar(&scope.local, "local", false, "Show only project-specific information (ignore global tools)")
	cmd.MarkFlagsMutuallyExclusive("global", "local")

	return cmd
}

func runScan(cmd *cobra.Command, cfg config.RuntimeConfig, opts scan.Options) model.ScanResult {
	stderr := cmd.ErrOrStderr()
	logger := logging.New(stderr, cfg.Verbose, cfg.NoColor)

	var emitter *events.Emitter
	if cfg.Events {
		emitter = events.NewEmitter(stderr)
	}

	var progress *progressLine
	if !cfg.Verbose && !cfg.Events && isTerminal(stderr) {
		progress = newProgressLine(stderr)
	}

	svc := scan.New(scan.Config{
		Timeout:    cfg.Timeout,
		Workers:    cfg.Workers,
		ExtraTools: cfg.ExtraTools,
		Logger:     logger,
		Events:     emitter,
		OnProgress: func(p pathscan.Progress) {
			if progress != nil {
				progress.update(p)
			}
		},
	})

	result := svc.Run(cmd.Context(), opts)
	if progress != nil {
		progress.clear()
	}
	if err := emitter.Err(); err != nil {
		logger.Warn().Err(err).Msg("event stream incomplete")
	}
	return result
}

func writeReport(stdout io.Writer, cfg config.RuntimeConfig, result model.ScanResult) error {
	if cfg.OutputFile != "" {
		if err := writeResultFile(cfg.OutputFile, result); err != nil {
			return err
		}
	}

	if cfg.Format == config.FormatJSON {
		return output.WriteJSON(stdout, result)
	}

	w, color := output.ColorWriter(stdout, cfg.NoColor)
	if err := output.WritePretty(w, result, color); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}
