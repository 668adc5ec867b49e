package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/cottand/jinfer/inference"
	"github.com/cottand/jinfer/inference/infererr"
	"github.com/cottand/jinfer/internal/log"
	"github.com/cottand/jinfer/scenario"
	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"
)

var InferCmd = &cobra.Command{
	Use:          "infer scenario.yaml...",
	Short:        "Infer the type arguments of the call site each scenario describes",
	RunE:         runInfer,
	Args:         cobra.MinimumNArgs(1),
	SilenceUsage: true,
}

var (
	logLevel *int
	fuel     *int
	dump     *bool
	check    *bool
)

var dumpConfig = spew.ConfigState{Indent: "  ", DisablePointerAddresses: true, SortKeys: true}

func init() {
	logLevel = InferCmd.Flags().IntP("log-level", "l", int(slog.LevelError), "log level")
	fuel = InferCmd.Flags().Int("fuel", 0, "maximum constraint reduction steps per inference, 0 for the default")
	dump = InferCmd.Flags().Bool("dump", false, "dump the raw inference result")
	check = InferCmd.Flags().BoolP("check", "c", false, "compare results against the expectations in each scenario")
}

// loadScenario loads the scenario at path, relative to the working directory
func loadScenario(path string) (*scenario.Scenario, error) {
	target, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("could not get absolute path of target: %w", err)
	}
	return scenario.LoadFile(os.DirFS(filepath.Dir(target)), filepath.Base(target))
}

func runInfer(cmd *cobra.Command, args []string) error {
	log.SetLevel(slog.Level(*logLevel))
	out := cmd.OutOrStdout()

	var failed []string
	for _, path := range args {
		s, err := loadScenario(path)
		if err != nil {
			return fmt.Errorf("could not load scenario (this is not an inference error): %w", err)
		}
		result, errs, err := s.Infer(inference.Options{Fuel: *fuel})
		report(out, s, result, errs, err)

		if *check && s.Expect != nil {
			if mismatches := s.Expect.Check(result, errs, err); len(mismatches) > 0 {
				for _, m := range mismatches {
					_, _ = fmt.Fprintf(out, "  mismatch: %s\n", m)
				}
				failed = append(failed, path)
			}
			continue
		}
		if err != nil || errs.HasError() {
			failed = append(failed, path)
		}
	}
	if len(failed) > 0 {
		return fmt.Errorf("inference failed for %s", strings.Join(failed, ", "))
	}
	return nil
}

func report(out io.Writer, s *scenario.Scenario, result *inference.Inferences, errs *infererr.Errors, err error) {
	if err != nil {
		_, _ = fmt.Fprintf(out, "%s: feature not yet supported: %v\n", s.Name, err)
		return
	}
	_, _ = fmt.Fprintf(out, "%s: %s (%s)\n", s.Name, result, result.Mode)
	for _, inferErr := range errs.Errors() {
		_, _ = fmt.Fprintf(out, "  %s\n", s.FormatError(inferErr))
	}
	if *dump {
		dumpConfig.Fdump(out, result)
	}
}
