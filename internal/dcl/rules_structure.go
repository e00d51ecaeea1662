package dcl

import (
	"fmt"

	"github.com/scoutflo/devlint/internal/rules"
	"github.com/scoutflo/devlint/internal/yamlload"
)

func init() {
	register(noBuildAndImageRule{})
	register(restartPolicyRequiredRule{})
	register(noPrivilegedServiceRule{})
	register(healthcheckRecommendedRule{})
	register(noHostNetworkModeRule{})
}

// DCL001: a service declaring both build and image without pull_policy is ambiguous about which
// source wins on `docker compose build` vs `docker compose pull`.
type noBuildAndImageRule struct{}

func (noBuildAndImageRule) Meta() rules.Meta {
	return rules.Meta{
		Code:            "DCL001",
		Name:            "no-build-and-image",
		DefaultSeverity: rules.SeverityWarning,
		Category:        rules.CategoryStructure,
		Description:     "a service declaring both build and image without pull_policy is ambiguous",
	}
}

func (r noBuildAndImageRule) Check(ctx *rules.Context) []rules.Diagnostic {
	doc, ok := ctx.Subject.(*yamlload.ComposeDocument)
	if !ok {
		return nil
	}
	var diags []rules.Diagnostic
	for _, name := range doc.ServiceOrder {
		svc := doc.Services[name]
		if svc.Build != nil && svc.Image != "" && !svc.HasPullPolicy {
			diags = append(diags, rules.NewDiagnostic(
				r.Meta().Code, r.Meta().Name, r.Meta().DefaultSeverity, r.Meta().Category,
				fmt.Sprintf("service %q declares both build and image without pull_policy", name),
				ctx.FilePath, svc.Position,
			))
		}
	}
	return diags
}

// DCL002: a service with no explicit restart policy inherits Docker's default of "no", which is
// rarely what's intended for a long-running service.
type restartPolicyRequiredRule struct{}

func (restartPolicyRequiredRule) Meta() rules.Meta {
	return rules.Meta{
		Code:            "DCL002",
		Name:            "restart-policy-required",
		DefaultSeverity: rules.SeverityInfo,
		Category:        rules.CategoryBestPractice,
		Description:     "service has no explicit restart policy",
	}
}

func (r restartPolicyRequiredRule) Check(ctx *rules.Context) []rules.Diagnostic {
	doc, ok := ctx.Subject.(*yamlload.ComposeDocument)
	if !ok {
		return nil
	}
	var diags []rules.Diagnostic
	for _, name := range doc.ServiceOrder {
		svc := doc.Services[name]
		if _, _, found := yamlload.MapGet(svc.Raw, "restart"); !found {
			diags = append(diags, rules.NewDiagnostic(
				r.Meta().Code, r.Meta().Name, r.Meta().DefaultSeverity, r.Meta().Category,
				fmt.Sprintf("service %q has no restart policy", name),
				ctx.FilePath, svc.Position,
			))
		}
	}
	return diags
}

// DCL004: a privileged container can access and modify the host's devices, defeating most
// container isolation.
type noPrivilegedServiceRule struct{}

func (noPrivilegedServiceRule) Meta() rules.Meta {
	return rules.Meta{
		Code:            "DCL004",
		Name:            "no-privileged-service",
		DefaultSeverity: rules.SeverityError,
		Category:        rules.CategorySecurity,
		Description:     "service runs in privileged mode",
	}
}

func (r noPrivilegedServiceRule) Check(ctx *rules.Context) []rules.Diagnostic {
	doc, ok := ctx.Subject.(*yamlload.ComposeDocument)
	if !ok {
		return nil
	}
	var diags []rules.Diagnostic
	for _, name := range doc.ServiceOrder {
		svc := doc.Services[name]
		if k, v, found := yamlload.MapGet(svc.Raw, "privileged"); found && yamlload.ScalarString(v) == "true" {
			diags = append(diags, rules.NewDiagnostic(
				r.Meta().Code, r.Meta().Name, r.Meta().DefaultSeverity, r.Meta().Category,
				fmt.Sprintf("service %q runs with privileged: true", name),
				ctx.FilePath, yamlload.Pos(k),
			))
		}
	}
	return diags
}

// DCL006: a service with no healthcheck can't be restarted automatically on a liveness failure
// and gives `depends_on: condition: service_healthy` nothing to wait on.
type healthcheckRecommendedRule struct{}

func (healthcheckRecommendedRule) Meta() rules.Meta {
	return rules.Meta{
		Code:            "DCL006",
		Name:            "healthcheck-recommended",
		DefaultSeverity: rules.SeverityStyle,
		Category:        rules.CategoryBestPractice,
		Description:     "service has no healthcheck",
	}
}

func (r healthcheckRecommendedRule) Check(ctx *rules.Context) []rules.Diagnostic {
	doc, ok := ctx.Subject.(*yamlload.ComposeDocument)
	if !ok {
		return nil
	}
	var diags []rules.Diagnostic
	for _, name := range doc.ServiceOrder {
		svc := doc.Services[name]
		if _, _, found := yamlload.MapGet(svc.Raw, "healthcheck"); !found {
			diags = append(diags, rules.NewDiagnostic(
				r.Meta().Code, r.Meta().Name, r.Meta().DefaultSeverity, r.Meta().Category,
				fmt.Sprintf("service %q has no healthcheck", name),
				ctx.FilePath, svc.Position,
			))
		}
	}
	return diags
}

// DCL008: network_mode: host removes network namespace isolation between the container and the
// host, exposing every host port the process binds.
type noHostNetworkModeRule struct{}

func (noHostNetworkModeRule) Meta() rules.Meta {
	return rules.Meta{
		Code:            "DCL008",
		Name:            "no-host-network-mode",
		DefaultSeverity: rules.SeverityWarning,
		Category:        rules.CategorySecurity,
		Description:     "service uses network_mode: host",
	}
}

func (r noHostNetworkModeRule) Check(ctx *rules.Context) []rules.Diagnostic {
	doc, ok := ctx.Subject.(*yamlload.ComposeDocument)
	if !ok {
		return nil
	}
	var diags []rules.Diagnostic
	for _, name := range doc.ServiceOrder {
		svc := doc.Services[name]
		if k, v, found := yamlload.MapGet(svc.Raw, "network_mode"); found && yamlload.ScalarString(v) == "host" {
			diags = append(diags, rules.NewDiagnostic(
				r.Meta().Code, r.Meta().Name, r.Meta().DefaultSeverity, r.Meta().Category,
				fmt.Sprintf("service %q uses network_mode: host", name),
				ctx.FilePath, yamlload.Pos(k),
			))
		}
	}
	return diags
}
