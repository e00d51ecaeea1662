// Package yamlload is the position-preserving YAML loader shared by the Compose and Kubernetes
// analyzers (spec §4.1). It builds on gopkg.in/yaml.v3's yaml.Node, which already tracks the
// (line, column) of every scanned token, the same tree shape the docker-compose formatter in the
// reference corpus walks to reorder/reformat a compose file.
package yamlload

import (
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/scoutflo/devlint/internal/apperror"
	"github.com/scoutflo/devlint/internal/position"
)

// Pos converts a yaml.Node's tracked location into a position.Position.
func Pos(n *yaml.Node) position.Position {
	if n == nil {
		return position.Position{}
	}
	return position.Position{Line: n.Line, Column: n.Column}
}

// Documents splits a (possibly multi-document, "---"-separated) YAML stream into one root node
// per document.
func Documents(text string) ([]*yaml.Node, error) {
	dec := yaml.NewDecoder(strings.NewReader(text))
	var docs []*yaml.Node
	for {
		var doc yaml.Node
		err := dec.Decode(&doc)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &apperror.ParseError{Message: err.Error()}
		}
		docs = append(docs, &doc)
	}
	return docs, nil
}

// Root returns the document's single top-level node (the mapping or sequence under the
// yaml.DocumentNode), or nil if the document is empty.
func Root(doc *yaml.Node) *yaml.Node {
	if doc == nil || doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil
	}
	return doc.Content[0]
}

// MapEntries iterates the key/value node pairs of a mapping node in source order. It is a no-op
// for any other node kind.
func MapEntries(m *yaml.Node) func(yield func(key, value *yaml.Node) bool) {
	return func(yield func(key, value *yaml.Node) bool) {
		if m == nil || m.Kind != yaml.MappingNode {
			return
		}
		for i := 0; i+1 < len(m.Content); i += 2 {
			if !yield(m.Content[i], m.Content[i+1]) {
				return
			}
		}
	}
}

// MapGet looks up a key's key/value node pair in a mapping node.
func MapGet(m *yaml.Node, key string) (keyNode, valueNode *yaml.Node, found bool) {
	if m == nil || m.Kind != yaml.MappingNode {
		return nil, nil, false
	}
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i], m.Content[i+1], true
		}
	}
	return nil, nil, false
}

// ScalarString returns a scalar node's string value, or "" if n is nil or not a scalar.
func ScalarString(n *yaml.Node) string {
	if n == nil || n.Kind != yaml.ScalarNode {
		return ""
	}
	return n.Value
}

// IsEmptyDocument reports whether the raw text has no meaningful YAML content.
func IsEmptyDocument(text string) bool {
	return strings.TrimSpace(text) == ""
}

// RequireNonEmpty returns a VALIDATION_FAILED structured parse error for empty input (spec §8
// boundary case: "Empty file → ParseError with code VALIDATION_FAILED").
func RequireNonEmpty(text, file string) error {
	if IsEmptyDocument(text) {
		return &apperror.ParseError{File: file, Message: fmt.Sprintf("%s: empty document", apperror.ValidationFailed)}
	}
	return nil
}
