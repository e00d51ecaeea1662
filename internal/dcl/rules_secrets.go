package dcl

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/scoutflo/devlint/internal/rules"
	"github.com/scoutflo/devlint/internal/yamlload"
)

var secretKeyPattern = regexp.MustCompile(`(?i)(password|secret|token|apikey|api_key|private_key)`)

func init() {
	register(noPlaintextSecretsRule{})
	register(noAbsoluteHostBindMountRule{})
}

// DCL007: an environment variable whose name looks secret-shaped and whose value is a literal
// (not a ${VAR} substitution referencing the host/CI environment) bakes the secret into the
// compose file itself.
type noPlaintextSecretsRule struct{}

func (noPlaintextSecretsRule) Meta() rules.Meta {
	return rules.Meta{
		Code:            "DCL007",
		Name:            "no-plaintext-secrets-in-environment",
		DefaultSeverity: rules.SeverityError,
		Category:        rules.CategorySecurity,
		Description:     "environment value looks like a plaintext secret",
	}
}

func (r noPlaintextSecretsRule) Check(ctx *rules.Context) []rules.Diagnostic {
	doc, ok := ctx.Subject.(*yamlload.ComposeDocument)
	if !ok {
		return nil
	}
	var diags []rules.Diagnostic
	for _, name := range doc.ServiceOrder {
		svc := doc.Services[name]
		envNode, _, found := yamlload.MapGet(svc.Raw, "environment")
		pos := svc.Position
		if found {
			pos = yamlload.Pos(envNode)
		}
		for key, value := range svc.Environment {
			if !secretKeyPattern.MatchString(key) {
				continue
			}
			if value == "" || strings.HasPrefix(value, "${") {
				continue
			}
			diags = append(diags, rules.NewDiagnostic(
				r.Meta().Code, r.Meta().Name, r.Meta().DefaultSeverity, r.Meta().Category,
				fmt.Sprintf("service %q: environment variable %q looks like a plaintext secret", name, key),
				ctx.FilePath, pos,
			))
		}
	}
	return diags
}

// DCL010: a bind mount with an absolute host path couples the compose file to one machine's
// filesystem layout; named volumes or relative paths are portable across environments.
type noAbsoluteHostBindMountRule struct{}

func (noAbsoluteHostBindMountRule) Meta() rules.Meta {
	return rules.Meta{
		Code:            "DCL010",
		Name:            "no-absolute-host-bind-mount",
		DefaultSeverity: rules.SeverityInfo,
		Category:        rules.CategoryBestPractice,
		Description:     "bind mount uses an absolute host path",
	}
}

func (r noAbsoluteHostBindMountRule) Check(ctx *rules.Context) []rules.Diagnostic {
	doc, ok := ctx.Subject.(*yamlload.ComposeDocument)
	if !ok {
		return nil
	}
	var diags []rules.Diagnostic
	for _, name := range doc.ServiceOrder {
		svc := doc.Services[name]
		_, v, found := yamlload.MapGet(svc.Raw, "volumes")
		if !found {
			continue
		}
		for _, item := range sequenceScalars(v) {
			parts := strings.SplitN(item.value, ":", 2)
			if len(parts) < 2 {
				continue
			}
			if strings.HasPrefix(parts[0], "/") {
				diags = append(diags, rules.NewDiagnostic(
					r.Meta().Code, r.Meta().Name, r.Meta().DefaultSeverity, r.Meta().Category,
					fmt.Sprintf("service %q: volume %q binds an absolute host path", name, item.value),
					ctx.FilePath, item.pos,
				))
			}
		}
	}
	return diags
}
