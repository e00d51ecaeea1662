package dcl

import (
	"fmt"

	"github.com/scoutflo/devlint/internal/rules"
	"github.com/scoutflo/devlint/internal/yamlload"
)

func init() {
	register(noDuplicateExportedPortsRule{})
	register(noUnboundPortInterfacesRule{})
	register(dependsOnServiceExistsRule{})
}

// DCL003: host-side port bindings must be unique across services, keyed by (host_ip, host_port).
// Container-only ports (no host port) never conflict with anything.
type noDuplicateExportedPortsRule struct{}

func (noDuplicateExportedPortsRule) Meta() rules.Meta {
	return rules.Meta{
		Code:            "DCL003",
		Name:            "no-duplicate-exported-ports",
		DefaultSeverity: rules.SeverityError,
		Category:        rules.CategoryStructure,
		Description:     "host-side port bindings must be unique across services",
	}
}

func (r noDuplicateExportedPortsRule) Check(ctx *rules.Context) []rules.Diagnostic {
	doc, ok := ctx.Subject.(*yamlload.ComposeDocument)
	if !ok {
		return nil
	}

	type occurrence struct {
		service string
		port    yamlload.PortMapping
	}
	byKey := map[string][]occurrence{}
	for _, name := range doc.ServiceOrder {
		svc := doc.Services[name]
		for _, p := range svc.Ports {
			if p.HostPort == "" {
				continue
			}
			key := p.HostIP + ":" + p.HostPort
			byKey[key] = append(byKey[key], occurrence{service: name, port: p})
		}
	}

	var diags []rules.Diagnostic
	for key, occs := range byKey {
		if len(occs) < 2 {
			continue
		}
		_ = key
		for _, o := range occs {
			diags = append(diags, rules.NewDiagnostic(
				r.Meta().Code, r.Meta().Name, r.Meta().DefaultSeverity, r.Meta().Category,
				fmt.Sprintf("service %q: host port %q is bound by %d services", o.service, o.port.HostPort, len(occs)),
				ctx.FilePath, o.port.Position,
			))
		}
	}
	return diags
}

// DCL005: a host_port:container_port mapping with no host_ip binds to all interfaces (0.0.0.0),
// exposing the service beyond the host's loopback/private networks.
type noUnboundPortInterfacesRule struct{}

func (noUnboundPortInterfacesRule) Meta() rules.Meta {
	return rules.Meta{
		Code:            "DCL005",
		Name:            "no-unbound-port-interfaces",
		DefaultSeverity: rules.SeverityWarning,
		Category:        rules.CategorySecurity,
		Description:     "host_port:container_port without host_ip binds to all interfaces",
	}
}

func (r noUnboundPortInterfacesRule) Check(ctx *rules.Context) []rules.Diagnostic {
	doc, ok := ctx.Subject.(*yamlload.ComposeDocument)
	if !ok {
		return nil
	}
	var diags []rules.Diagnostic
	for _, name := range doc.ServiceOrder {
		svc := doc.Services[name]
		for _, p := range svc.Ports {
			if p.HostPort != "" && p.HostIP == "" {
				diags = append(diags, rules.NewDiagnostic(
					r.Meta().Code, r.Meta().Name, r.Meta().DefaultSeverity, r.Meta().Category,
					fmt.Sprintf("service %q: port %s:%s has no host_ip, binds to all interfaces", name, p.HostPort, p.ContainerPort),
					ctx.FilePath, p.Position,
				))
			}
		}
	}
	return diags
}

// DCL012: depends_on must reference services defined in the same file.
type dependsOnServiceExistsRule struct{}

func (dependsOnServiceExistsRule) Meta() rules.Meta {
	return rules.Meta{
		Code:            "DCL012",
		Name:            "depends-on-service-exists",
		DefaultSeverity: rules.SeverityError,
		Category:        rules.CategoryStructure,
		Description:     "depends_on references a service that isn't defined",
	}
}

func (r dependsOnServiceExistsRule) Check(ctx *rules.Context) []rules.Diagnostic {
	doc, ok := ctx.Subject.(*yamlload.ComposeDocument)
	if !ok {
		return nil
	}
	var diags []rules.Diagnostic
	for _, name := range doc.ServiceOrder {
		svc := doc.Services[name]
		for _, dep := range svc.DependsOn {
			if _, exists := doc.Services[dep]; !exists {
				diags = append(diags, rules.NewDiagnostic(
					r.Meta().Code, r.Meta().Name, r.Meta().DefaultSeverity, r.Meta().Category,
					fmt.Sprintf("service %q depends_on undefined service %q", name, dep),
					ctx.FilePath, svc.DependsOnPos,
				))
			}
		}
	}
	return diags
}
