package helmtpl

import "testing"

func TestParseTracksBlocksAndVariables(t *testing.T) {
	src := `{{- if .Values.ingress.enabled }}
kind: Ingress
{{ range .Values.ingress.hosts }}
  host: {{ . }}
{{ end }}
{{- end }}
`
	tpl := Parse("templates/ingress.yaml", src)

	t.Run("no unclosed blocks", func(t *testing.T) {
		if len(tpl.UnclosedBlocks) != 0 {
			t.Errorf("unclosed blocks = %v", tpl.UnclosedBlocks)
		}
	})
	t.Run("tracks .Values usage", func(t *testing.T) {
		vars := tpl.VariablesSorted()
		if len(vars) != 2 || vars[0] != ".Values.ingress.enabled" || vars[1] != ".Values.ingress.hosts" {
			t.Errorf("variables = %v", vars)
		}
	})
}

func TestParseUnclosedBlock(t *testing.T) {
	src := `{{ if .Values.foo }}
unclosed
`
	tpl := Parse("templates/broken.yaml", src)
	if len(tpl.UnclosedBlocks) != 1 {
		t.Fatalf("unclosed blocks = %d, want 1", len(tpl.UnclosedBlocks))
	}
	if tpl.UnclosedBlocks[0].Kind != BlockIf {
		t.Errorf("kind = %v, want If", tpl.UnclosedBlocks[0].Kind)
	}
}

func TestParseUnmatchedEnd(t *testing.T) {
	src := `text
{{ end }}
`
	tpl := Parse("templates/extra.yaml", src)
	if len(tpl.Errors) != 1 {
		t.Fatalf("errors = %d, want 1", len(tpl.Errors))
	}
}

func TestParseIncludeAndTemplateReferences(t *testing.T) {
	src := `{{ include "mychart.labels" . }}
{{ template "mychart.fullname" . }}
`
	tpl := Parse("templates/deployment.yaml", src)
	refs := tpl.ReferencedSorted()
	if len(refs) != 2 || refs[0] != "mychart.fullname" || refs[1] != "mychart.labels" {
		t.Errorf("references = %v", refs)
	}
}

func TestParseDefineRegistersName(t *testing.T) {
	src := `{{- define "mychart.labels" -}}
app: {{ .Chart.Name }}
{{- end -}}
`
	tpl := Parse("templates/_helpers.tpl", src)
	if len(tpl.DefinedNames) != 1 || tpl.DefinedNames[0] != "mychart.labels" {
		t.Errorf("defined names = %v", tpl.DefinedNames)
	}
	if len(tpl.UnclosedBlocks) != 0 {
		t.Errorf("unclosed blocks = %v", tpl.UnclosedBlocks)
	}
}

func TestParseSkipsComments(t *testing.T) {
	src := `{{/* this is a comment with { braces } inside */}}
{{ include "mychart.labels" . }}
`
	tpl := Parse("templates/commented.yaml", src)
	if len(tpl.ReferencedTemplates) != 1 {
		t.Errorf("expected comment to be skipped, references = %v", tpl.ReferencedTemplates)
	}
}

func TestParseFunctionCalls(t *testing.T) {
	src := `{{ if eq .Values.env "prod" }}
{{ toYaml .Values.resources | indent 2 }}
{{ end }}
`
	tpl := Parse("templates/deployment.yaml", src)
	fns := tpl.FunctionsCalled
	for _, want := range []string{"eq", "toYaml", "indent"} {
		if !fns[want] {
			t.Errorf("expected function %q to be recorded, got %v", want, fns)
		}
	}
}
