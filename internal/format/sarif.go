package format

import (
	"encoding/json"
	"sort"

	"github.com/scoutflo/devlint/internal/rules"
)

const sarifSchema = "https://raw.githubusercontent.com/oasis-tcs/sarif-spec/master/Schemata/sarif-schema-2.1.0.json"
const sarifVersion = "2.1.0"

// sarifLevel maps a devlint severity onto SARIF's {error, warning, note} result levels.
func sarifLevel(s rules.Severity) string {
	switch s {
	case rules.SeverityError:
		return "error"
	case rules.SeverityWarning:
		return "warning"
	default:
		return "note"
	}
}

type sarifLog struct {
	Schema  string     `json:"$schema"`
	Version string     `json:"version"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool    sarifTool     `json:"tool"`
	Results []sarifResult `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name           string      `json:"name"`
	InformationURI string      `json:"informationUri,omitempty"`
	Version        string      `json:"version,omitempty"`
	Rules          []sarifRule `json:"rules"`
}

type sarifRule struct {
	ID               string                     `json:"id"`
	Name             string                     `json:"name,omitempty"`
	ShortDescription sarifMultiformatMessage    `json:"shortDescription"`
	HelpURI          string                     `json:"helpUri,omitempty"`
	Properties       map[string]string          `json:"properties,omitempty"`
}

type sarifMultiformatMessage struct {
	Text string `json:"text"`
}

type sarifResult struct {
	RuleID    string          `json:"ruleId"`
	Level     string          `json:"level"`
	Message   sarifMultiformatMessage `json:"message"`
	Locations []sarifLocation `json:"locations"`
}

type sarifLocation struct {
	PhysicalLocation sarifPhysicalLocation `json:"physicalLocation"`
}

type sarifPhysicalLocation struct {
	ArtifactLocation sarifArtifactLocation `json:"artifactLocation"`
	Region           sarifRegion           `json:"region"`
}

type sarifArtifactLocation struct {
	URI string `json:"uri"`
}

type sarifRegion struct {
	StartLine   int `json:"startLine"`
	StartColumn int `json:"startColumn,omitempty"`
}

// SARIF renders a LintResult as a SARIF v2.1.0 log with exactly one run and a deduplicated rules
// catalog built from the diagnostics actually emitted (spec §6).
func SARIF(toolName string, result rules.LintResult) ([]byte, error) {
	seen := map[string]bool{}
	var rulesCatalog []sarifRule
	var results []sarifResult

	for _, d := range result.Failures {
		if !seen[d.Code] {
			seen[d.Code] = true
			rulesCatalog = append(rulesCatalog, sarifRule{
				ID: d.Code, Name: d.RuleName,
				ShortDescription: sarifMultiformatMessage{Text: d.Message},
				Properties:       map[string]string{"category": string(d.Category)},
			})
		}
		results = append(results, sarifResult{
			RuleID: d.Code, Level: sarifLevel(d.Severity),
			Message: sarifMultiformatMessage{Text: d.Message},
			Locations: []sarifLocation{{
				PhysicalLocation: sarifPhysicalLocation{
					ArtifactLocation: sarifArtifactLocation{URI: d.FilePath},
					Region:           sarifRegion{StartLine: max(d.Line, 1), StartColumn: d.Column},
				},
			}},
		})
	}
	sort.Slice(rulesCatalog, func(i, j int) bool { return rulesCatalog[i].ID < rulesCatalog[j].ID })

	log := sarifLog{
		Schema:  sarifSchema,
		Version: sarifVersion,
		Runs: []sarifRun{{
			Tool:    sarifTool{Driver: sarifDriver{Name: toolName, Rules: rulesCatalog}},
			Results: results,
		}},
	}
	return json.MarshalIndent(log, "", "  ")
}
