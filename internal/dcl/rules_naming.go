package dcl

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/scoutflo/devlint/internal/rules"
	"github.com/scoutflo/devlint/internal/yamlload"
)

// DefaultContainerNamePattern is DCL009's default pattern, overridable per spec §4.4.
var DefaultContainerNamePattern = regexp.MustCompile(`^[a-z][a-z0-9_-]*$`)

func init() {
	register(NewServiceContainerNameRule(DefaultContainerNamePattern))
	register(serviceImageRequireExplicitTagRule{})
}

// DCL009: container_name should follow a predictable naming convention.
type serviceContainerNameRegexRule struct {
	pattern *regexp.Regexp
}

// NewServiceContainerNameRule builds DCL009 with a caller-supplied pattern override.
func NewServiceContainerNameRule(pattern *regexp.Regexp) rules.Rule {
	return serviceContainerNameRegexRule{pattern: pattern}
}

func (serviceContainerNameRegexRule) Meta() rules.Meta {
	return rules.Meta{
		Code:            "DCL009",
		Name:            "service-container-name-regex",
		DefaultSeverity: rules.SeverityStyle,
		Category:        rules.CategoryStyle,
		Description:     "container_name should match the configured naming pattern",
	}
}

func (r serviceContainerNameRegexRule) Check(ctx *rules.Context) []rules.Diagnostic {
	doc, ok := ctx.Subject.(*yamlload.ComposeDocument)
	if !ok {
		return nil
	}
	var diags []rules.Diagnostic
	for _, name := range doc.ServiceOrder {
		svc := doc.Services[name]
		if svc.ContainerName == "" {
			continue
		}
		if !r.pattern.MatchString(svc.ContainerName) {
			diags = append(diags, rules.NewDiagnostic(
				r.Meta().Code, r.Meta().Name, r.Meta().DefaultSeverity, r.Meta().Category,
				fmt.Sprintf("service %q: container_name %q does not match pattern %s", name, svc.ContainerName, r.pattern.String()),
				ctx.FilePath, svc.ContainerNamePos,
			))
		}
	}
	return diags
}

// DCL011: an image with no explicit tag floats to whatever "latest" resolves to at pull time;
// an explicit ":latest" is just as unpinned but worth a distinct message since it was written
// deliberately.
type serviceImageRequireExplicitTagRule struct{}

func (serviceImageRequireExplicitTagRule) Meta() rules.Meta {
	return rules.Meta{
		Code:            "DCL011",
		Name:            "service-image-require-explicit-tag",
		DefaultSeverity: rules.SeverityWarning,
		Category:        rules.CategoryBestPractice,
		Description:     "image should pin an explicit tag or digest",
	}
}

func (r serviceImageRequireExplicitTagRule) Check(ctx *rules.Context) []rules.Diagnostic {
	doc, ok := ctx.Subject.(*yamlload.ComposeDocument)
	if !ok {
		return nil
	}
	var diags []rules.Diagnostic
	for _, name := range doc.ServiceOrder {
		svc := doc.Services[name]
		if svc.Image == "" {
			continue
		}
		if strings.Contains(svc.Image, "@sha256:") {
			continue
		}
		tag, hasTag := imageTag(svc.Image)
		switch {
		case !hasTag:
			diags = append(diags, rules.NewDiagnostic(
				r.Meta().Code, r.Meta().Name, r.Meta().DefaultSeverity, r.Meta().Category,
				fmt.Sprintf("service %q: image %q has no tag", name, svc.Image),
				ctx.FilePath, svc.ImagePos,
			))
		case tag == "latest":
			diags = append(diags, rules.NewDiagnostic(
				r.Meta().Code, r.Meta().Name, r.Meta().DefaultSeverity, r.Meta().Category,
				fmt.Sprintf("service %q: image %q is pinned to the floating :latest tag", name, svc.Image),
				ctx.FilePath, svc.ImagePos,
			))
		}
	}
	return diags
}

// imageTag splits an image reference's tag from its repository, being careful not to mistake a
// registry port ("myregistry.local:5000/app") for a tag separator.
func imageTag(image string) (tag string, hasTag bool) {
	lastSlash := strings.LastIndex(image, "/")
	rest := image
	if lastSlash >= 0 {
		rest = image[lastSlash+1:]
	}
	colon := strings.LastIndex(rest, ":")
	if colon == -1 {
		return "", false
	}
	return rest[colon+1:], true
}
