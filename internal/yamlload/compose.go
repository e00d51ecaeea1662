package yamlload

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/scoutflo/devlint/internal/apperror"
	"github.com/scoutflo/devlint/internal/position"
)

// ComposeDocument is the position-annotated model of a docker-compose file (spec §3 DCL module).
// Raw keeps the root mapping node around so rule fixes can rewrite it in place.
type ComposeDocument struct {
	Services       map[string]*Service
	ServiceOrder   []string
	Networks       map[string]*yaml.Node
	NetworkOrder   []string
	Volumes        map[string]*yaml.Node
	VolumeOrder    []string
	Configs        map[string]*yaml.Node
	ConfigOrder    []string
	Secrets        map[string]*yaml.Node
	SecretOrder    []string
	ServicesPos    position.Position
	TopLevelKeys   []string
	TopLevelKeyPos map[string]position.Position
	Raw            *yaml.Node
}

// Service is a single `services.<name>` entry.
type Service struct {
	Name             string
	Image            string
	ImagePos         position.Position
	Build            *yaml.Node
	BuildPos         position.Position
	ContainerName    string
	ContainerNamePos position.Position
	Ports            []PortMapping
	PortsPos         position.Position
	DependsOn        []string
	DependsOnPos     position.Position
	Environment      map[string]string
	Position         position.Position
	PullPolicy       string
	HasPullPolicy    bool
	Raw              *yaml.Node
}

// PortMapping is one entry of a service's `ports` list, normalized from either short syntax
// ("8080:80", "127.0.0.1:8080:80/udp") or long syntax (a mapping with target/published/protocol/
// host_ip keys).
type PortMapping struct {
	Raw           string
	HostIP        string
	HostPort      string
	ContainerPort string
	Protocol      string
	Position      position.Position
}

var portPattern = regexp.MustCompile(
	`^(?:(?:(?P<host_ip>[0-9a-zA-Z\.\-]+):)?(?P<host_port>[0-9]+(?:-[0-9]+)?):)?(?P<container_port>[0-9]+(?:-[0-9]+)?)(?:/(?P<protocol>tcp|udp))?$`,
)

// ParseCompose parses a single docker-compose document into a ComposeDocument. Per spec §8, a
// port value outside [0, 65535] is a structural failure that aborts the whole parse; a `ports`
// value that isn't a sequence is instead reported as a semantic diagnostic by the DCL rules
// themselves (parsing continues with an empty Ports list).
func ParseCompose(text, file string) (*ComposeDocument, error) {
	if err := RequireNonEmpty(text, file); err != nil {
		return nil, err
	}
	docs, err := Documents(text)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, &apperror.ParseError{File: file, Message: "empty document"}
	}
	root := Root(docs[0])
	if root == nil || root.Kind != yaml.MappingNode {
		return nil, &apperror.ParseError{File: file, Message: "top-level document must be a mapping"}
	}

	doc := &ComposeDocument{
		Services:       map[string]*Service{},
		Networks:       map[string]*yaml.Node{},
		Volumes:        map[string]*yaml.Node{},
		Configs:        map[string]*yaml.Node{},
		Secrets:        map[string]*yaml.Node{},
		TopLevelKeyPos: map[string]position.Position{},
		Raw:            root,
	}

	for key, value := range iterMap(root) {
		doc.TopLevelKeys = append(doc.TopLevelKeys, key.Value)
		doc.TopLevelKeyPos[key.Value] = Pos(key)

		switch key.Value {
		case "services":
			doc.ServicesPos = Pos(value)
			svcs, err := parseServices(value, file)
			if err != nil {
				return nil, err
			}
			doc.Services = svcs
			for _, k := range mapKeysInOrder(value) {
				doc.ServiceOrder = append(doc.ServiceOrder, k)
			}
		case "networks":
			doc.Networks, doc.NetworkOrder = namedNodes(value)
		case "volumes":
			doc.Volumes, doc.VolumeOrder = namedNodes(value)
		case "configs":
			doc.Configs, doc.ConfigOrder = namedNodes(value)
		case "secrets":
			doc.Secrets, doc.SecretOrder = namedNodes(value)
		}
	}

	return doc, nil
}

func parseServices(servicesNode *yaml.Node, file string) (map[string]*Service, error) {
	services := map[string]*Service{}
	if servicesNode == nil || servicesNode.Kind != yaml.MappingNode {
		return services, nil
	}
	for nameNode, bodyNode := range iterMap(servicesNode) {
		svc := &Service{
			Name:        nameNode.Value,
			Position:    Pos(nameNode),
			Environment: map[string]string{},
			Raw:         bodyNode,
		}
		if bodyNode != nil && bodyNode.Kind == yaml.MappingNode {
			for fk, fv := range iterMap(bodyNode) {
				switch fk.Value {
				case "image":
					svc.Image = ScalarString(fv)
					svc.ImagePos = Pos(fv)
				case "build":
					svc.Build = fv
					svc.BuildPos = Pos(fv)
				case "container_name":
					svc.ContainerName = ScalarString(fv)
					svc.ContainerNamePos = Pos(fv)
				case "pull_policy":
					svc.PullPolicy = ScalarString(fv)
					svc.HasPullPolicy = true
				case "depends_on":
					svc.DependsOnPos = Pos(fv)
					svc.DependsOn = parseDependsOn(fv)
				case "environment":
					svc.Environment = parseEnvironment(fv)
				case "ports":
					svc.PortsPos = Pos(fv)
					ports, err := parsePorts(fv, file, svc.Name)
					if err != nil {
						return nil, err
					}
					svc.Ports = ports
				}
			}
		}
		services[svc.Name] = svc
	}
	return services, nil
}

func parseDependsOn(n *yaml.Node) []string {
	if n == nil {
		return nil
	}
	switch n.Kind {
	case yaml.SequenceNode:
		out := make([]string, 0, len(n.Content))
		for _, item := range n.Content {
			out = append(out, ScalarString(item))
		}
		return out
	case yaml.MappingNode:
		var out []string
		for k := range iterMap(n) {
			out = append(out, k.Value)
		}
		return out
	}
	return nil
}

func parseEnvironment(n *yaml.Node) map[string]string {
	env := map[string]string{}
	if n == nil {
		return env
	}
	switch n.Kind {
	case yaml.MappingNode:
		for k, v := range iterMap(n) {
			env[k.Value] = ScalarString(v)
		}
	case yaml.SequenceNode:
		for _, item := range n.Content {
			raw := ScalarString(item)
			parts := strings.SplitN(raw, "=", 2)
			if len(parts) == 2 {
				env[parts[0]] = parts[1]
			} else {
				env[raw] = ""
			}
		}
	}
	return env
}

func parsePorts(n *yaml.Node, file, service string) ([]PortMapping, error) {
	if n == nil {
		return nil, nil
	}
	if n.Kind != yaml.SequenceNode {
		// Malformed shape (e.g. ports given as a scalar): this is a semantic mismatch the DCL
		// rules themselves diagnose, not a structural parse failure. Return no ports.
		return nil, nil
	}
	var out []PortMapping
	for _, item := range n.Content {
		switch item.Kind {
		case yaml.ScalarNode:
			pm, err := parsePortString(item.Value, Pos(item), file, service)
			if err != nil {
				return nil, err
			}
			out = append(out, pm)
		case yaml.MappingNode:
			pm, err := parsePortMapping(item, file, service)
			if err != nil {
				return nil, err
			}
			out = append(out, pm)
		}
	}
	return out, nil
}

func parsePortString(raw string, pos position.Position, file, service string) (PortMapping, error) {
	m := portPattern.FindStringSubmatch(raw)
	if m == nil {
		return PortMapping{}, &apperror.ParseError{
			File:    file,
			Message: fmt.Sprintf("service %q: malformed port mapping %q", service, raw),
		}
	}
	pm := PortMapping{Raw: raw, Position: pos}
	for i, name := range portPattern.SubexpNames() {
		switch name {
		case "host_ip":
			pm.HostIP = m[i]
		case "host_port":
			pm.HostPort = m[i]
		case "container_port":
			pm.ContainerPort = m[i]
		case "protocol":
			pm.Protocol = m[i]
		}
	}
	if err := validatePortRange(pm.HostPort, file, service, raw); err != nil {
		return PortMapping{}, err
	}
	if err := validatePortRange(pm.ContainerPort, file, service, raw); err != nil {
		return PortMapping{}, err
	}
	return pm, nil
}

func parsePortMapping(n *yaml.Node, file, service string) (PortMapping, error) {
	pm := PortMapping{Position: Pos(n)}
	if _, v, ok := MapGet(n, "target"); ok {
		pm.ContainerPort = ScalarString(v)
	}
	if _, v, ok := MapGet(n, "published"); ok {
		pm.HostPort = ScalarString(v)
	}
	if _, v, ok := MapGet(n, "protocol"); ok {
		pm.Protocol = ScalarString(v)
	}
	if _, v, ok := MapGet(n, "host_ip"); ok {
		pm.HostIP = ScalarString(v)
	}
	pm.Raw = fmt.Sprintf("%s:%s", pm.HostPort, pm.ContainerPort)
	if err := validatePortRange(pm.HostPort, file, service, pm.Raw); err != nil {
		return PortMapping{}, err
	}
	if err := validatePortRange(pm.ContainerPort, file, service, pm.Raw); err != nil {
		return PortMapping{}, err
	}
	return pm, nil
}

// validatePortRange enforces spec §8's boundary rule: 0 and 65535 are valid port numbers; any
// parsed value above 65535 is a structural parse error that aborts the file. Range syntax
// ("8000-8010") and empty values (unset host port) are left to the rules layer.
func validatePortRange(raw, file, service, context string) error {
	raw = strings.SplitN(raw, "-", 2)[0]
	if raw == "" {
		return nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	if n > 65535 {
		return &apperror.ParseError{
			File:    file,
			Message: fmt.Sprintf("service %q: port %d out of range in %q", service, n, context),
		}
	}
	return nil
}

func namedNodes(n *yaml.Node) (map[string]*yaml.Node, []string) {
	out := map[string]*yaml.Node{}
	var order []string
	if n == nil || n.Kind != yaml.MappingNode {
		return out, order
	}
	for k, v := range iterMap(n) {
		out[k.Value] = v
		order = append(order, k.Value)
	}
	return out, order
}

func mapKeysInOrder(n *yaml.Node) []string {
	var keys []string
	if n == nil || n.Kind != yaml.MappingNode {
		return keys
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		keys = append(keys, n.Content[i].Value)
	}
	return keys
}

// iterMap adapts MapEntries to a form usable directly in a range-over-func statement.
func iterMap(m *yaml.Node) func(func(*yaml.Node, *yaml.Node) bool) {
	return MapEntries(m)
}
