package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/scoutflo/devlint/internal/dcl"
)

func newDclintCmd() *cobra.Command {
	var content, ignore, threshold, format, output string
	var fix, noFail bool

	cmd := &cobra.Command{
		Use:   "dclint [path]",
		Short: "Lint a docker-compose.yml (rule family DCL)",
		Args:  cobra.MaximumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			var path string
			if len(args) == 1 {
				path = args[0]
			}

			var source, filePath string
			var err error
			if content != "" {
				source, filePath, err = content, "<content>", nil
			} else if resolved, resolveErr := findComposeFile(path); resolveErr != nil {
				err = resolveErr
			} else {
				source, filePath, err = readSource(resolved, "")
			}
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), err)
				exitCode = exitInvalidArgs
				return
			}

			cfg, cfgErr := buildConfig(splitCSV(ignore), threshold, false, noFail)
			if cfgErr != nil {
				exitCode = fatalConfigError(cmd, cfgErr)
				return
			}

			result, lintErr := dcl.Lint(source, filePath, cfg)
			if lintErr != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), lintErr)
				exitCode = exitParseError
				return
			}

			if fix {
				fixed, changedBy := dcl.Fix(source, result)
				if len(changedBy) > 0 {
					if writeErr := os.WriteFile(filePath, []byte(fixed), 0o644); writeErr != nil {
						fmt.Fprintln(cmd.ErrOrStderr(), writeErr)
						exitCode = exitInvalidArgs
						return
					}
					result, lintErr = dcl.Lint(fixed, filePath, cfg)
					if lintErr != nil {
						fmt.Fprintln(cmd.ErrOrStderr(), lintErr)
						exitCode = exitParseError
						return
					}
				}
			}

			exitCode = renderAndExit(cmd, result, cfg, format, output, "dclint")
		},
	}

	cmd.Flags().StringVar(&content, "content", "", "Inline compose YAML instead of a file path")
	cmd.Flags().StringVar(&ignore, "ignore", "", "Comma-separated rule codes to ignore")
	cmd.Flags().StringVar(&threshold, "threshold", "", "Minimum severity to report (error|warning|info|style)")
	cmd.Flags().BoolVar(&fix, "fix", false, "Apply fixable rules' fixes in place before reporting")
	cmd.Flags().BoolVar(&noFail, "no-fail", false, "Always exit 0 regardless of findings")
	cmd.Flags().StringVar(&format, "format", "table", "Output format (table|json|sarif|checkstyle|codeclimate|gcc)")
	cmd.Flags().StringVar(&output, "output", "", "Write report to a file instead of stdout")
	return cmd
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	start := 0
	for i := 0; i <= len(s); i++ {
		if i == len(s) || s[i] == ',' {
			if i > start {
				out = append(out, s[start:i])
			}
			start = i + 1
		}
	}
	return out
}
