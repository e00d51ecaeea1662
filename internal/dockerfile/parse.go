// Package dockerfile implements a minimal Dockerfile instruction parser and the small DL-rule
// family the rule framework's own spec examples cite (spec §4.3: "consecutive RUN count for
// Dockerfile DL3059", "missing HEALTHCHECK"). It shares internal/rules exactly like internal/dcl
// does, but its Context.Subject is a *Dockerfile rather than a YAML document, since a Dockerfile
// is a line-oriented instruction stream, not YAML.
package dockerfile

import "strings"

// Instruction is one parsed Dockerfile directive (spec §4.3's rule-framework illustration).
type Instruction struct {
	Keyword string // upper-cased: FROM, RUN, HEALTHCHECK, ...
	Args    string
	Line    int // 1-indexed line of the instruction's first physical line
}

// Dockerfile is the parsed instruction stream a DL-rule's Check runs against.
type Dockerfile struct {
	Instructions []Instruction
}

// Parse splits source into instructions, joining backslash-continued physical lines into one
// logical instruction and skipping blank lines and full-line comments (a `#` as the first
// non-whitespace character). Pragma comments ("# ignore: ...") are handled separately by
// internal/rules.ParsePragmas over the raw lines, not here.
func Parse(source string) *Dockerfile {
	lines := strings.Split(source, "\n")
	df := &Dockerfile{}

	var buf strings.Builder
	startLine := 0
	flush := func() {
		if buf.Len() == 0 {
			return
		}
		text := strings.TrimSpace(buf.String())
		buf.Reset()
		if text == "" {
			return
		}
		keyword, args := splitInstruction(text)
		if keyword == "" {
			return
		}
		df.Instructions = append(df.Instructions, Instruction{Keyword: keyword, Args: args, Line: startLine})
	}

	for i, raw := range lines {
		lineNo := i + 1
		trimmed := strings.TrimRight(raw, "\r")
		stripped := strings.TrimSpace(trimmed)
		if stripped == "" || strings.HasPrefix(stripped, "#") {
			continue
		}
		if buf.Len() == 0 {
			startLine = lineNo
		} else {
			buf.WriteString(" ")
		}
		if strings.HasSuffix(stripped, "\\") {
			buf.WriteString(strings.TrimSuffix(stripped, "\\"))
			continue
		}
		buf.WriteString(stripped)
		flush()
	}
	flush()
	return df
}

// splitInstruction separates a logical instruction's keyword from its arguments.
func splitInstruction(text string) (keyword, args string) {
	fields := strings.SplitN(text, " ", 2)
	keyword = strings.ToUpper(fields[0])
	if len(fields) == 2 {
		args = strings.TrimSpace(fields[1])
	}
	return keyword, args
}

// hasUnquotedPipe reports whether args contains a `|` outside single/double quotes, the
// shell-has-pipes check DL4006 needs.
func hasUnquotedPipe(args string) bool {
	var quote byte
	for i := 0; i < len(args); i++ {
		c := args[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '\'' || c == '"':
			quote = c
		case c == '|':
			return true
		}
	}
	return false
}
