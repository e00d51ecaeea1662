// Package cmd wires the cobra CLI surface from spec §6 (dclint, helmlint, kubelint, optimize)
// onto the internal rule engine, optimizer, and formatter packages. It owns no analysis logic of
// its own: every subcommand's Run is argument parsing, I/O, and a call into internal/*.
package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/scoutflo/devlint/internal/apperror"
	"github.com/scoutflo/devlint/internal/rules"
)

// exit codes per spec §6.
const (
	exitOK          = 0
	exitFindings    = 1
	exitInvalidArgs = 2
	exitParseError  = 3
)

// readSource resolves a subcommand's input: an explicit --content string takes precedence over a
// positional path. An empty --content is treated as "no input provided" (spec §9's documented
// empty-content convention), not as an empty file.
func readSource(path, content string) (source, filePath string, err error) {
	if strings.TrimSpace(content) != "" {
		return content, "<content>", nil
	}
	if path == "" {
		return "", "", apperror.New("devlint", apperror.ValidationFailed, "no path or --content provided",
			"Pass a file or directory path, or use --content with inline YAML.")
	}
	info, statErr := os.Stat(path)
	if statErr != nil {
		return "", "", apperror.New("devlint", apperror.FileNotFound, fmt.Sprintf("%s: %v", path, statErr),
			"Use list_directory to explore available paths.")
	}
	if info.IsDir() {
		return "", "", apperror.New("devlint", apperror.ValidationFailed, fmt.Sprintf("%s is a directory, expected a file", path),
			"Pass the path to a specific docker-compose.yml.")
	}
	data, readErr := os.ReadFile(path)
	if readErr != nil {
		return "", "", apperror.New("devlint", apperror.IOErrorCode, fmt.Sprintf("%s: %v", path, readErr))
	}
	return string(data), path, nil
}

// findComposeFile resolves a dclint path argument to a single compose file: the path itself if
// it's a file, or the first docker-compose.y[a]ml found directly inside it if it's a directory.
func findComposeFile(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", apperror.New("devlint", apperror.FileNotFound, fmt.Sprintf("%s: %v", path, err),
			"Use list_directory to explore available paths.")
	}
	if !info.IsDir() {
		return path, nil
	}
	for _, candidate := range []string{"docker-compose.yml", "docker-compose.yaml", "compose.yml", "compose.yaml"} {
		full := filepath.Join(path, candidate)
		if _, err := os.Stat(full); err == nil {
			return full, nil
		}
	}
	return "", apperror.New("devlint", apperror.FileNotFound, fmt.Sprintf("no docker-compose.yml found under %s", path),
		"Pass the path to a specific compose file.")
}

// walkManifestFiles collects every *.yaml/*.yml file under root (root itself if it's a single
// file), skipping dotfiles/dot-directories, in lexicographic path order (spec §5's cross-file
// ordering guarantee).
func walkManifestFiles(root string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, apperror.New("devlint", apperror.FileNotFound, fmt.Sprintf("%s: %v", root, err),
			"Use list_directory to explore available paths.")
	}
	if !info.IsDir() {
		return []string{root}, nil
	}
	var files []string
	walkErr := filepath.Walk(root, func(path string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		base := filepath.Base(path)
		if fi.IsDir() {
			if base != "." && strings.HasPrefix(base, ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(base, ".") {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if ext == ".yaml" || ext == ".yml" {
			files = append(files, path)
		}
		return nil
	})
	if walkErr != nil {
		return nil, apperror.New("devlint", apperror.IOErrorCode, fmt.Sprintf("%s: %v", root, walkErr))
	}
	sort.Strings(files)
	return files, nil
}

// buildConfig assembles a rules.Config from the --ignore/--threshold/--no-fail flags shared by
// every lint subcommand.
func buildConfig(ignore []string, threshold string, disablePragma, noFail bool) (rules.Config, error) {
	cfg := rules.NewConfig()
	cfg.DisableIgnorePragma = disablePragma
	cfg.NoFail = noFail
	for _, code := range ignore {
		code = strings.TrimSpace(code)
		if code == "" {
			continue
		}
		cfg.IgnoreRules[code] = true
	}
	if threshold != "" {
		sev, ok := rules.ParseSeverity(threshold)
		if !ok {
			return cfg, &apperror.ConfigError{Message: fmt.Sprintf("unknown --threshold value %q", threshold)}
		}
		cfg.FailureThreshold = sev
	}
	return cfg, nil
}

// renderAndExit writes result in the requested format to --output (or stdout) and returns the
// process exit code per spec §6's table, honoring --no-fail.
func renderAndExit(cmd *cobra.Command, result rules.LintResult, cfg rules.Config, format, output, toolName string) int {
	out, err := renderLintResult(result, format, toolName)
	if err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), err)
		return exitInvalidArgs
	}
	if writeErr := writeOutput(output, out); writeErr != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), writeErr)
		return exitInvalidArgs
	}
	if cfg.NoFail {
		return exitOK
	}
	if len(result.Failures) > 0 {
		return exitFindings
	}
	return exitOK
}

func writeOutput(output string, data []byte) error {
	if output == "" {
		fmt.Println(string(data))
		return nil
	}
	return os.WriteFile(output, data, 0o644)
}

func fatalConfigError(cmd *cobra.Command, err error) int {
	fmt.Fprintln(cmd.ErrOrStderr(), err)
	return exitInvalidArgs
}
