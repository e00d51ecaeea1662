package dcl

import (
	"gopkg.in/yaml.v3"

	"github.com/scoutflo/devlint/internal/position"
	"github.com/scoutflo/devlint/internal/yamlload"
)

type scalarEntry struct {
	value string
	pos   position.Position
}

// sequenceScalars returns each scalar item of a sequence node with its position. A non-sequence
// node yields nothing and non-scalar items are skipped, without any diagnostic.
func sequenceScalars(n *yaml.Node) []scalarEntry {
	if n == nil || n.Kind != yaml.SequenceNode {
		return nil
	}
	var out []scalarEntry
	for _, item := range n.Content {
		if item.Kind != yaml.ScalarNode {
			continue
		}
		out = append(out, scalarEntry{value: item.Value, pos: yamlload.Pos(item)})
	}
	return out
}
