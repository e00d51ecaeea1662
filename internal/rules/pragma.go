package rules

import (
	"regexp"
	"strings"
)

// PragmaAll is the literal suppress-everything marker.
const PragmaAll = "all"

var pragmaPattern = regexp.MustCompile(`#\s*ignore:\s*([A-Za-z0-9_,\s]+)`)

// PragmaSet maps a 1-indexed source line to the set of rule codes suppressed on that line, either
// because the pragma comment sits on the line itself or on the line immediately before it.
type PragmaSet map[int]map[string]bool

// Suppresses reports whether code is suppressed on line by this pragma set.
func (p PragmaSet) Suppresses(line int, code string) bool {
	codes, ok := p[line]
	if !ok {
		return false
	}
	if codes[PragmaAll] {
		return true
	}
	return codes[code]
}

// ParsePragmas scans raw source lines for "# ignore: CODE1,CODE2" comments (or "# ignore: all")
// and records which lines they suppress. A pragma on line N suppresses diagnostics on line N
// itself and on line N+1 (the "immediately preceding line" rule from spec §4.3).
func ParsePragmas(lines []string) PragmaSet {
	set := PragmaSet{}
	for i, line := range lines {
		lineNo := i + 1
		m := pragmaPattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		codes := map[string]bool{}
		for _, raw := range strings.Split(m[1], ",") {
			c := strings.TrimSpace(raw)
			if c == "" {
				continue
			}
			codes[strings.ToLower(c)] = true
		}
		normalized := map[string]bool{}
		for c := range codes {
			if c == PragmaAll {
				normalized[PragmaAll] = true
				continue
			}
			normalized[strings.ToUpper(c)] = true
		}
		mergeInto(set, lineNo, normalized)
		mergeInto(set, lineNo+1, normalized)
	}
	return set
}

func mergeInto(set PragmaSet, line int, codes map[string]bool) {
	existing, ok := set[line]
	if !ok {
		existing = map[string]bool{}
		set[line] = existing
	}
	for c := range codes {
		existing[c] = true
	}
}
