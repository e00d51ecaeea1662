package yamlload

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/scoutflo/devlint/internal/apperror"
	"github.com/scoutflo/devlint/internal/position"
)

// RawObject is one `---`-separated document from a Kubernetes manifest stream: the position-
// tracking node (for diagnostics) alongside its re-marshaled bytes (for the typed decode that
// sigs.k8s.io/yaml performs in internal/kubelint).
type RawObject struct {
	Node     *yaml.Node
	Bytes    []byte
	Position position.Position
	Index    int
}

// ParseManifests splits a (possibly multi-document) Kubernetes manifest file into its constituent
// documents. Empty documents between "---" separators are skipped, matching kubectl's own
// tolerance of trailing/leading separators. An entirely empty file is a structural parse error.
func ParseManifests(text, file string) ([]RawObject, error) {
	if err := RequireNonEmpty(text, file); err != nil {
		return nil, err
	}
	docs, err := Documents(text)
	if err != nil {
		return nil, err
	}
	var objects []RawObject
	for i, doc := range docs {
		root := Root(doc)
		if root == nil || root.Kind == 0 {
			continue
		}
		if isEmptyNode(root) {
			continue
		}
		b, err := yaml.Marshal(root)
		if err != nil {
			return nil, &apperror.ParseError{File: file, Message: fmt.Sprintf("document %d: %s", i, err)}
		}
		objects = append(objects, RawObject{
			Node:     root,
			Bytes:    b,
			Position: Pos(root),
			Index:    i,
		})
	}
	return objects, nil
}

func isEmptyNode(n *yaml.Node) bool {
	if n.Kind == yaml.ScalarNode && n.Tag == "!!null" {
		return true
	}
	if n.Kind == yaml.MappingNode && len(n.Content) == 0 {
		return true
	}
	return false
}
