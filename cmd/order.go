package cmd

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/cottand/jinfer/inference"
	"github.com/cottand/jinfer/internal/log"
	"github.com/spf13/cobra"
)

var OrderCmd = &cobra.Command{
	Use:          "order scenario.yaml",
	Short:        "Show the order in which a scenario's inference variables are resolved",
	RunE:         runOrder,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
}

func runOrder(cmd *cobra.Command, args []string) error {
	log.SetLevel(slog.LevelError)

	s, err := loadScenario(args[0])
	if err != nil {
		return fmt.Errorf("could not load scenario (this is not an inference error): %w", err)
	}
	result, errs, err := s.Infer(inference.Options{})
	if err != nil {
		return fmt.Errorf("feature not yet supported: %w", err)
	}
	if errs.HasError() {
		sb := &strings.Builder{}
		for _, inferErr := range errs.Errors() {
			sb.WriteString("\n")
			sb.WriteString(s.FormatError(inferErr))
		}
		return fmt.Errorf("errors found during inference:%s", sb.String())
	}

	legend := make([]string, len(result.TypeParams))
	for i, param := range result.TypeParams {
		legend[i] = fmt.Sprintf("α%d = %s", i, param)
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), result.ResolutionOrder)
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), strings.Join(legend, ", "))
	return nil
}
