package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/scoutflo/devlint/internal/rules"
)

func TestSplitCSV(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"DCL001", []string{"DCL001"}},
		{"DCL001,DCL002", []string{"DCL001", "DCL002"}},
		{"DCL001, DCL002 ,", []string{"DCL001", " DCL002 "}},
	}
	for _, c := range cases {
		got := splitCSV(c.in)
		if len(got) != len(c.want) {
			t.Errorf("splitCSV(%q) = %v, want %v", c.in, got, c.want)
			continue
		}
		for i := range got {
			if got[i] != c.want[i] {
				t.Errorf("splitCSV(%q)[%d] = %q, want %q", c.in, i, got[i], c.want[i])
			}
		}
	}
}

func TestBuildConfig(t *testing.T) {
	cfg, err := buildConfig([]string{"DCL001", " DCL002 "}, "warning", false, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cfg.IgnoreRules["DCL001"] {
		t.Errorf("expected DCL001 ignored")
	}
	if !cfg.IgnoreRules["DCL002"] {
		t.Errorf("expected \" DCL002 \" to be stored trimmed as DCL002")
	}
	if cfg.FailureThreshold != rules.SeverityWarning {
		t.Errorf("FailureThreshold = %v, want %v", cfg.FailureThreshold, rules.SeverityWarning)
	}
	if !cfg.NoFail {
		t.Errorf("expected NoFail true")
	}
}

func TestBuildConfigBadThreshold(t *testing.T) {
	if _, err := buildConfig(nil, "not-a-severity", false, false); err == nil {
		t.Fatalf("expected error for invalid --threshold")
	}
}

func TestFindComposeFileDirectFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "stack.yml")
	if err := os.WriteFile(path, []byte("services: {}"), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}
	got, err := findComposeFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != path {
		t.Errorf("findComposeFile(%q) = %q, want %q", path, got, path)
	}
}

func TestFindComposeFileDirectory(t *testing.T) {
	dir := t.TempDir()
	composePath := filepath.Join(dir, "docker-compose.yaml")
	if err := os.WriteFile(composePath, []byte("services: {}"), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}
	got, err := findComposeFile(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != composePath {
		t.Errorf("findComposeFile(%q) = %q, want %q", dir, got, composePath)
	}
}

func TestFindComposeFileNoneFound(t *testing.T) {
	dir := t.TempDir()
	if _, err := findComposeFile(dir); err == nil {
		t.Fatalf("expected error when no compose file is present")
	}
}

func TestWalkManifestFilesSkipsDotfilesAndSorts(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.yaml", "a.yml", "ignore.txt", ".hidden.yaml"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("---"), 0o644); err != nil {
			t.Fatalf("setup: %v", err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, ".git"), 0o755); err != nil {
		t.Fatalf("setup: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, ".git", "config.yaml"), []byte("---"), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}

	got, err := walkManifestFiles(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{filepath.Join(dir, "a.yml"), filepath.Join(dir, "b.yaml")}
	if len(got) != len(want) {
		t.Fatalf("walkManifestFiles = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("walkManifestFiles[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestReadSourceContentTakesPrecedence(t *testing.T) {
	source, filePath, err := readSource("/nonexistent/path", "services: {}")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if source != "services: {}" || filePath != "<content>" {
		t.Errorf("readSource with --content = (%q, %q), want (%q, %q)", source, filePath, "services: {}", "<content>")
	}
}

func TestReadSourceNoInput(t *testing.T) {
	if _, _, err := readSource("", ""); err == nil {
		t.Fatalf("expected error when neither path nor --content is given")
	}
}
