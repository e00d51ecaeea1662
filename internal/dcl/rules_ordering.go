package dcl

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/scoutflo/devlint/internal/rules"
	"github.com/scoutflo/devlint/internal/yamlload"
)

func init() {
	register(portsCanonicalOrderRule{})
	register(servicesCanonicalOrderRule{})
	register(topLevelKeysCanonicalOrderRule{})
}

// topLevelCanonicalOrder is the conventional section order most compose style guides settle on;
// anything not listed sorts after these, in its original relative order.
var topLevelCanonicalOrder = []string{"version", "services", "networks", "volumes", "configs", "secrets"}

// DCL013: a service's ports should be listed in ascending container-port order, so a reader
// scanning top to bottom sees them in a predictable sequence. Fixable: reorders the sequence
// node in place, which carries each port's attached comments along with it.
type portsCanonicalOrderRule struct{}

func (portsCanonicalOrderRule) Meta() rules.Meta {
	return rules.Meta{
		Code:            "DCL013",
		Name:            "ports-canonical-order",
		DefaultSeverity: rules.SeverityStyle,
		Category:        rules.CategoryStyle,
		Description:     "ports should be listed in ascending container-port order",
		Fixable:         true,
	}
}

func (r portsCanonicalOrderRule) Check(ctx *rules.Context) []rules.Diagnostic {
	doc, ok := ctx.Subject.(*yamlload.ComposeDocument)
	if !ok {
		return nil
	}
	var diags []rules.Diagnostic
	for _, name := range doc.ServiceOrder {
		svc := doc.Services[name]
		if len(svc.Ports) < 2 {
			continue
		}
		if !sort.SliceIsSorted(svc.Ports, func(i, j int) bool {
			return portNumber(svc.Ports[i].ContainerPort) < portNumber(svc.Ports[j].ContainerPort)
		}) {
			diags = append(diags, rules.NewDiagnostic(
				r.Meta().Code, r.Meta().Name, r.Meta().DefaultSeverity, r.Meta().Category,
				fmt.Sprintf("service %q: ports are not in ascending container-port order", name),
				ctx.FilePath, svc.PortsPos,
			))
		}
	}
	return diags
}

func (r portsCanonicalOrderRule) Fix(source string) (string, bool) {
	doc, err := yamlload.ParseCompose(source, "")
	if err != nil || doc.Raw == nil {
		return source, false
	}
	changed := false
	for _, name := range doc.ServiceOrder {
		svc := doc.Services[name]
		_, portsNode, found := yamlload.MapGet(svc.Raw, "ports")
		if !found || portsNode.Kind != yaml.SequenceNode || len(portsNode.Content) < 2 {
			continue
		}
		if reorderPortsNode(portsNode) {
			changed = true
		}
	}
	if !changed {
		return source, false
	}
	out, err := yaml.Marshal(doc.Raw)
	if err != nil {
		return source, false
	}
	return string(out), true
}

// reorderPortsNode sorts a ports sequence node's items by container port, extracted from either
// the short-syntax scalar or the long-syntax mapping's "target" key. It reports whether the
// order actually changed.
func reorderPortsNode(n *yaml.Node) bool {
	keys := make([]int, len(n.Content))
	for i, item := range n.Content {
		keys[i] = containerPortOf(item)
	}
	order := make([]int, len(n.Content))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool { return keys[order[i]] < keys[order[j]] })

	changed := false
	for i, idx := range order {
		if idx != i {
			changed = true
			break
		}
	}
	if !changed {
		return false
	}
	reordered := make([]*yaml.Node, len(n.Content))
	for i, idx := range order {
		reordered[i] = n.Content[idx]
	}
	n.Content = reordered
	return true
}

func containerPortOf(item *yaml.Node) int {
	if item.Kind == yaml.ScalarNode {
		return portNumber(parseShortContainerPort(item.Value))
	}
	if item.Kind == yaml.MappingNode {
		if _, v, ok := yamlload.MapGet(item, "target"); ok {
			return portNumber(yamlload.ScalarString(v))
		}
	}
	return 0
}

// parseShortContainerPort extracts the container-port segment from a short-syntax port string
// ("8080:80", "127.0.0.1:8080:80/udp"): the portion after the last ":" and before any "/proto".
func parseShortContainerPort(raw string) string {
	raw = strings.TrimSuffix(strings.TrimSuffix(raw, "/udp"), "/tcp")
	if i := strings.LastIndex(raw, ":"); i >= 0 {
		return raw[i+1:]
	}
	return raw
}

func portNumber(s string) int {
	s = strings.SplitN(s, "-", 2)[0]
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

// DCL014: services should appear in alphabetical order so large compose files stay navigable.
// Detect-only: the source repo this convention is drawn from declares its fix "None" rather than
// reorder a block that commonly carries cross-references and grouped comments; we keep that
// choice rather than risk a reorder that looks correct but reshuffles a deliberately-grouped
// block of related services.
type servicesCanonicalOrderRule struct{}

func (servicesCanonicalOrderRule) Meta() rules.Meta {
	return rules.Meta{
		Code:            "DCL014",
		Name:            "services-canonical-order",
		DefaultSeverity: rules.SeverityStyle,
		Category:        rules.CategoryStyle,
		Description:     "services should be listed in alphabetical order",
		Fixable:         false,
	}
}

func (r servicesCanonicalOrderRule) Check(ctx *rules.Context) []rules.Diagnostic {
	doc, ok := ctx.Subject.(*yamlload.ComposeDocument)
	if !ok {
		return nil
	}
	if sort.StringsAreSorted(doc.ServiceOrder) {
		return nil
	}
	return []rules.Diagnostic{rules.NewDiagnostic(
		r.Meta().Code, r.Meta().Name, r.Meta().DefaultSeverity, r.Meta().Category,
		"services are not listed in alphabetical order",
		ctx.FilePath, doc.ServicesPos,
	)}
}

// DCL015: top-level sections (services, networks, volumes, configs, secrets) should follow the
// conventional order. Fixable: reorders the root mapping's key/value pairs.
type topLevelKeysCanonicalOrderRule struct{}

func (topLevelKeysCanonicalOrderRule) Meta() rules.Meta {
	return rules.Meta{
		Code:            "DCL015",
		Name:            "top-level-keys-canonical-order",
		DefaultSeverity: rules.SeverityStyle,
		Category:        rules.CategoryStyle,
		Description:     "top-level sections should follow the conventional order",
		Fixable:         true,
	}
}

func (r topLevelKeysCanonicalOrderRule) Check(ctx *rules.Context) []rules.Diagnostic {
	doc, ok := ctx.Subject.(*yamlload.ComposeDocument)
	if !ok {
		return nil
	}
	want := canonicalOrder(doc.TopLevelKeys)
	if equalStrings(doc.TopLevelKeys, want) {
		return nil
	}
	return []rules.Diagnostic{rules.NewDiagnostic(
		r.Meta().Code, r.Meta().Name, r.Meta().DefaultSeverity, r.Meta().Category,
		"top-level keys do not follow the conventional order (services, networks, volumes, configs, secrets)",
		ctx.FilePath, doc.TopLevelKeyPos[doc.TopLevelKeys[0]],
	)}
}

func (r topLevelKeysCanonicalOrderRule) Fix(source string) (string, bool) {
	doc, err := yamlload.ParseCompose(source, "")
	if err != nil || doc.Raw == nil || doc.Raw.Kind != yaml.MappingNode {
		return source, false
	}
	want := canonicalOrder(doc.TopLevelKeys)
	if equalStrings(doc.TopLevelKeys, want) {
		return source, false
	}

	pairs := map[string][2]*yaml.Node{}
	for i := 0; i+1 < len(doc.Raw.Content); i += 2 {
		k := doc.Raw.Content[i]
		pairs[k.Value] = [2]*yaml.Node{k, doc.Raw.Content[i+1]}
	}
	reordered := make([]*yaml.Node, 0, len(doc.Raw.Content))
	for _, key := range want {
		if pair, ok := pairs[key]; ok {
			reordered = append(reordered, pair[0], pair[1])
		}
	}
	doc.Raw.Content = reordered

	out, err := yaml.Marshal(doc.Raw)
	if err != nil {
		return source, false
	}
	return string(out), true
}

// canonicalOrder sorts keys by their position in topLevelCanonicalOrder; unlisted keys keep
// their original relative order and sort after every listed key.
func canonicalOrder(keys []string) []string {
	rank := func(k string) int {
		for i, c := range topLevelCanonicalOrder {
			if c == k {
				return i
			}
		}
		return len(topLevelCanonicalOrder)
	}
	out := append([]string(nil), keys...)
	sort.SliceStable(out, func(i, j int) bool { return rank(out[i]) < rank(out[j]) })
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
