// Package helmlint implements Helm chart linting: chart metadata validation, values/template
// layout checks, and template-health rules built on internal/helmtpl's sub-parser (spec §4.5).
package helmlint

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/scoutflo/devlint/internal/apperror"
	"github.com/scoutflo/devlint/internal/helmtpl"
	"github.com/scoutflo/devlint/internal/position"
	"github.com/scoutflo/devlint/internal/yamlload"
)

// Chart layout constants, grounded on Helm's own pkg/chartutil file-name conventions.
const (
	ChartYAML   = "Chart.yaml"
	ValuesYAML  = "values.yaml"
	TemplatesDir = "templates"
	HelpersFile = "_helpers.tpl"
	NotesFile   = "NOTES.txt"
)

// APIVersion is Chart.yaml's apiVersion, tagged V1/V2/Unknown per spec §3.
type APIVersion string

const (
	APIVersionV1      APIVersion = "v1"
	APIVersionV2      APIVersion = "v2"
	APIVersionUnknown APIVersion = ""
)

// ChartType is Chart.yaml's `type` field.
type ChartType string

const (
	TypeApplication ChartType = "application"
	TypeLibrary     ChartType = "library"
)

// Maintainer is one entry of Chart.yaml's `maintainers` list.
type Maintainer struct {
	Name  string
	Email string
}

// Dependency is one entry of Chart.yaml's `dependencies` list.
type Dependency struct {
	Name       string
	Version    string
	Repository string
	Position   position.Position
}

// ChartMetadata is the typed, position-tracked decode of Chart.yaml (spec §3).
type ChartMetadata struct {
	APIVersion      APIVersion
	APIVersionRaw   string
	APIVersionPos   position.Position
	Name            string
	NamePos         position.Position
	Version         string
	VersionPos      position.Position
	Description     string
	Type            ChartType
	TypePos         position.Position
	Maintainers     []Maintainer
	Dependencies    []Dependency
	Home            string
	HomePos         position.Position
	Icon            string
	IconPos         position.Position
	Deprecated      bool
	Present         bool
	Position        position.Position
}

// Helper is one `{{ define "name" }}...{{ end }}` block found in a helper file.
type Helper struct {
	Name       string
	Line       int
	Content    string
	DocComment string
}

// HelperFile groups the helpers defined in one template file (usually _helpers.tpl, but Helm
// allows define blocks in any template file).
type HelperFile struct {
	Path    string
	Helpers []Helper
}

// Chart is everything helmlint needs from one chart directory: metadata, raw values, every
// template's sub-parse, and the cross-file helper arena used for unused/undefined-include checks.
type Chart struct {
	Dir              string
	Metadata         ChartMetadata
	ChartYAMLRaw     string
	HasChartYAML     bool
	HasValuesYAML    bool
	ValuesRaw        string
	ValuesRoot       *yaml.Node
	HasTemplatesDir  bool
	HasNotes         bool
	Templates        []*helmtpl.Template
	HelperFiles      []HelperFile
	helperArena      map[string]Helper // helper name -> definition
	helperReferences map[string]bool   // helper name -> referenced by at least one template/helper
}

// TemplateSubject is the rules.Context.Subject for template-scoped (HL3xxx/HL4xxx/HL5xxx) rules:
// the owning Chart (for cross-file helper lookups) plus the specific template being checked.
type TemplateSubject struct {
	Chart    *Chart
	Template *helmtpl.Template
}

// Load reads a chart directory from disk and builds its Chart model: Chart.yaml metadata,
// values.yaml, and every *.yaml/*.tpl file under templates/ sub-parsed by internal/helmtpl.
func Load(dir string) (*Chart, error) {
	c := &Chart{Dir: dir, helperArena: map[string]Helper{}, helperReferences: map[string]bool{}}

	chartYAMLPath := filepath.Join(dir, ChartYAML)
	if data, err := os.ReadFile(chartYAMLPath); err == nil {
		c.HasChartYAML = true
		c.ChartYAMLRaw = string(data)
		meta, err := parseChartMetadata(string(data), chartYAMLPath)
		if err != nil {
			return nil, err
		}
		c.Metadata = meta
	} else if !os.IsNotExist(err) {
		return nil, &apperror.ParseError{File: chartYAMLPath, Message: err.Error()}
	}

	valuesPath := filepath.Join(dir, ValuesYAML)
	if data, err := os.ReadFile(valuesPath); err == nil {
		c.HasValuesYAML = true
		c.ValuesRaw = string(data)
		docs, err := yamlload.Documents(string(data))
		if err == nil && len(docs) > 0 {
			c.ValuesRoot = yamlload.Root(docs[0])
		}
	} else if !os.IsNotExist(err) {
		return nil, &apperror.ParseError{File: valuesPath, Message: err.Error()}
	}

	templatesDir := filepath.Join(dir, TemplatesDir)
	if info, err := os.Stat(templatesDir); err == nil && info.IsDir() {
		c.HasTemplatesDir = true
		if err := filepath.Walk(templatesDir, func(path string, info os.FileInfo, err error) error {
			if err != nil || info.IsDir() {
				return err
			}
			ext := strings.ToLower(filepath.Ext(path))
			if ext != ".yaml" && ext != ".yml" && ext != ".tpl" {
				return nil
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return &apperror.ParseError{File: path, Message: err.Error()}
			}
			rel, _ := filepath.Rel(dir, path)
			tpl := helmtpl.Parse(rel, string(data))
			c.Templates = append(c.Templates, tpl)
			if helpers := extractHelperDefs(string(data)); len(helpers) > 0 {
				hf := HelperFile{Path: rel, Helpers: helpers}
				c.HelperFiles = append(c.HelperFiles, hf)
				for _, h := range helpers {
					c.helperArena[h.Name] = h
				}
			}
			return nil
		}); err != nil {
			return nil, err
		}
	}

	if _, err := os.Stat(filepath.Join(templatesDir, NotesFile)); err == nil {
		c.HasNotes = true
	}

	c.indexHelperReferences()
	sort.Slice(c.Templates, func(i, j int) bool { return c.Templates[i].Path < c.Templates[j].Path })
	return c, nil
}

// indexHelperReferences marks every helper name that any template file, helper files included,
// names directly in an `include`/`template` action; it does not follow references transitively.
func (c *Chart) indexHelperReferences() {
	for _, tpl := range c.Templates {
		for name := range tpl.ReferencedTemplates {
			c.helperReferences[name] = true
		}
	}
}

// DefinesHelper reports whether name is defined anywhere in the chart's helper arena.
func (c *Chart) DefinesHelper(name string) bool {
	_, ok := c.helperArena[name]
	return ok
}

// UnreferencedHelpers returns helper names defined but never referenced by include/template,
// sorted for deterministic output.
func (c *Chart) UnreferencedHelpers() []string {
	var out []string
	for name := range c.helperArena {
		if !c.helperReferences[name] {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

var defineLinePattern = regexp.MustCompile(`\{\{-?\s*define\s+"([^"]+)"\s*-?\}\}`)
var docCommentPattern = regexp.MustCompile(`^\s*\{\{-?\s*/\*\s*(.*?)\s*\*/\s*-?\}\}\s*$`)

// extractHelperDefs scans a template file's raw text line-by-line for `{{ define "name" }}`
// openings, recording the line number and, when the immediately preceding line is a
// `{{/* ... */}}` comment, treating it as the helper's doc comment (spec §3 HelperFile.Helper).
func extractHelperDefs(raw string) []Helper {
	lines := strings.Split(raw, "\n")
	var helpers []Helper
	for i, line := range lines {
		m := defineLinePattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		h := Helper{Name: m[1], Line: i + 1, Content: line}
		if i > 0 {
			if dm := docCommentPattern.FindStringSubmatch(lines[i-1]); dm != nil {
				h.DocComment = dm[1]
			}
		}
		helpers = append(helpers, h)
	}
	return helpers
}

// parseChartMetadata decodes Chart.yaml into a position-tracked ChartMetadata.
func parseChartMetadata(text, path string) (ChartMetadata, error) {
	docs, err := yamlload.Documents(text)
	if err != nil {
		return ChartMetadata{}, err
	}
	if len(docs) == 0 {
		return ChartMetadata{}, nil
	}
	root := yamlload.Root(docs[0])
	if root == nil {
		return ChartMetadata{}, nil
	}
	meta := ChartMetadata{Present: true, Position: yamlload.Pos(root)}

	if k, v, ok := yamlload.MapGet(root, "apiVersion"); ok {
		meta.APIVersionRaw = yamlload.ScalarString(v)
		meta.APIVersionPos = yamlload.Pos(k)
		switch meta.APIVersionRaw {
		case "v1":
			meta.APIVersion = APIVersionV1
		case "v2":
			meta.APIVersion = APIVersionV2
		default:
			meta.APIVersion = APIVersionUnknown
		}
	}
	if k, v, ok := yamlload.MapGet(root, "name"); ok {
		meta.Name = yamlload.ScalarString(v)
		meta.NamePos = yamlload.Pos(k)
	}
	if k, v, ok := yamlload.MapGet(root, "version"); ok {
		meta.Version = yamlload.ScalarString(v)
		meta.VersionPos = yamlload.Pos(k)
	}
	if _, v, ok := yamlload.MapGet(root, "description"); ok {
		meta.Description = yamlload.ScalarString(v)
	}
	if k, v, ok := yamlload.MapGet(root, "type"); ok {
		meta.TypePos = yamlload.Pos(k)
		if yamlload.ScalarString(v) == string(TypeLibrary) {
			meta.Type = TypeLibrary
		} else {
			meta.Type = TypeApplication
		}
	} else {
		meta.Type = TypeApplication
	}
	if k, v, ok := yamlload.MapGet(root, "home"); ok {
		meta.Home = yamlload.ScalarString(v)
		meta.HomePos = yamlload.Pos(k)
	}
	if k, v, ok := yamlload.MapGet(root, "icon"); ok {
		meta.Icon = yamlload.ScalarString(v)
		meta.IconPos = yamlload.Pos(k)
	}
	if _, v, ok := yamlload.MapGet(root, "deprecated"); ok {
		meta.Deprecated = yamlload.ScalarString(v) == "true"
	}
	if _, v, ok := yamlload.MapGet(root, "maintainers"); ok && v.Kind == yaml.SequenceNode {
		for _, item := range v.Content {
			var m Maintainer
			if _, nv, ok := yamlload.MapGet(item, "name"); ok {
				m.Name = yamlload.ScalarString(nv)
			}
			if _, ev, ok := yamlload.MapGet(item, "email"); ok {
				m.Email = yamlload.ScalarString(ev)
			}
			meta.Maintainers = append(meta.Maintainers, m)
		}
	}
	if _, v, ok := yamlload.MapGet(root, "dependencies"); ok && v.Kind == yaml.SequenceNode {
		for _, item := range v.Content {
			dep := Dependency{Position: yamlload.Pos(item)}
			if _, nv, ok := yamlload.MapGet(item, "name"); ok {
				dep.Name = yamlload.ScalarString(nv)
			}
			if _, vv, ok := yamlload.MapGet(item, "version"); ok {
				dep.Version = yamlload.ScalarString(vv)
			}
			if _, rv, ok := yamlload.MapGet(item, "repository"); ok {
				dep.Repository = yamlload.ScalarString(rv)
			}
			meta.Dependencies = append(meta.Dependencies, dep)
		}
	}
	return meta, nil
}
