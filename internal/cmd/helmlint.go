package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/scoutflo/devlint/internal/helmlint"
)

func newHelmlintCmd() *cobra.Command {
	var ignore, threshold, format, output string
	var noFail bool

	cmd := &cobra.Command{
		Use:   "helmlint <chart-dir>",
		Short: "Lint a Helm chart directory (rule family HL)",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			cfg, cfgErr := buildConfig(splitCSV(ignore), threshold, false, noFail)
			if cfgErr != nil {
				exitCode = fatalConfigError(cmd, cfgErr)
				return
			}

			result, err := helmlint.Lint(args[0], cfg)
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), err)
				exitCode = exitParseError
				return
			}

			exitCode = renderAndExit(cmd, result, cfg, format, output, "helmlint")
		},
	}

	cmd.Flags().StringVar(&ignore, "ignore", "", "Comma-separated rule codes to ignore")
	cmd.Flags().StringVar(&threshold, "threshold", "", "Minimum severity to report (error|warning|info|style)")
	cmd.Flags().BoolVar(&noFail, "no-fail", false, "Always exit 0 regardless of findings")
	cmd.Flags().StringVar(&format, "format", "table", "Output format (table|json|sarif|checkstyle|codeclimate|gcc)")
	cmd.Flags().StringVar(&output, "output", "", "Write report to a file instead of stdout")
	return cmd
}
