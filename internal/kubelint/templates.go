package kubelint

import (
	"fmt"
	"strings"

	corev1 "k8s.io/api/core/v1"

	"github.com/scoutflo/devlint/internal/rules"
)

var registry = rules.NewRegistry()

func register(r rules.Rule) { registry.Register(r) }

// Registry returns the package-level kubelint template registry.
func Registry() *rules.Registry { return registry }

func init() {
	register(privilegedRule{})
	register(hostNamespaceRule{field: "host-network", get: func(s *corev1.PodSpec) bool { return s.HostNetwork }})
	register(hostNamespaceRule{field: "host-pid", get: func(s *corev1.PodSpec) bool { return s.HostPID }})
	register(hostNamespaceRule{field: "host-ipc", get: func(s *corev1.PodSpec) bool { return s.HostIPC }})
	register(hostMountsRule{})
	register(writableHostMountRule{})
	register(latestTagRule{})
	register(sysctlsRule{})
	register(dnsConfigOptionsRule{})
	register(startupPortRule{})
}

var sysctlPrefixes = []string{"kernel.shm", "kernel.msg", "kernel.sem", "fs.mqueue.", "net."}

func podSpecOf(ctx *rules.Context) (*K8sObject, *corev1.PodSpec) {
	obj, ok := ctx.Subject.(*K8sObject)
	if !ok {
		return nil, nil
	}
	return obj, obj.PodSpec()
}

// privilegedRule flags any container running with securityContext.privileged == true.
type privilegedRule struct{}

func (privilegedRule) Meta() rules.Meta {
	return rules.Meta{
		Code:            "KL4001",
		Name:            "privileged",
		DefaultSeverity: rules.SeverityError,
		Category:        rules.CategorySecurity,
		Description:     "container runs with securityContext.privileged",
		SupportedKinds:  kindStrings(WorkloadKinds),
	}
}

func (r privilegedRule) Check(ctx *rules.Context) []rules.Diagnostic {
	obj, spec := podSpecOf(ctx)
	if spec == nil {
		return nil
	}
	var diags []rules.Diagnostic
	for _, c := range append(append([]corev1.Container{}, spec.InitContainers...), spec.Containers...) {
		if c.SecurityContext != nil && c.SecurityContext.Privileged != nil && *c.SecurityContext.Privileged {
			diags = append(diags, withRemediation(rules.NewDiagnostic(
				r.Meta().Code, r.Meta().Name, r.Meta().DefaultSeverity, r.Meta().Category,
				fmt.Sprintf("container %q runs privileged", c.Name), obj.FilePath, obj.Position,
			), "set securityContext.privileged to false and grant specific capabilities instead"))
		}
	}
	return diags
}

// hostNamespaceRule covers host-network/host-pid/host-ipc, which all share the same shape: a
// boolean PodSpec field that shares the container's namespace with the node.
type hostNamespaceRule struct {
	field string
	get   func(*corev1.PodSpec) bool
}

func (r hostNamespaceRule) Meta() rules.Meta {
	code := map[string]string{"host-network": "KL4002", "host-pid": "KL4003", "host-ipc": "KL4004"}[r.field]
	return rules.Meta{
		Code:            code,
		Name:            r.field,
		DefaultSeverity: rules.SeverityError,
		Category:        rules.CategorySecurity,
		Description:     fmt.Sprintf("PodSpec sets %s", r.field),
		SupportedKinds:  kindStrings(WorkloadKinds),
	}
}

func (r hostNamespaceRule) Check(ctx *rules.Context) []rules.Diagnostic {
	obj, spec := podSpecOf(ctx)
	if spec == nil || !r.get(spec) {
		return nil
	}
	return []rules.Diagnostic{withRemediation(rules.NewDiagnostic(
		r.Meta().Code, r.Meta().Name, r.Meta().DefaultSeverity, r.Meta().Category,
		fmt.Sprintf("workload %q shares the node's %s namespace", obj.Name, strings.TrimPrefix(r.field, "host-")),
		obj.FilePath, obj.Position,
	), "remove "+r.field+" unless the workload genuinely needs node-level access")}
}

// hostMountsRule flags any volume backed by hostPath.
type hostMountsRule struct{}

func (hostMountsRule) Meta() rules.Meta {
	return rules.Meta{
		Code:            "KL4005",
		Name:            "host-mounts",
		DefaultSeverity: rules.SeverityWarning,
		Category:        rules.CategorySecurity,
		Description:     "workload mounts a hostPath volume",
		SupportedKinds:  kindStrings(WorkloadKinds),
	}
}

func (r hostMountsRule) Check(ctx *rules.Context) []rules.Diagnostic {
	obj, spec := podSpecOf(ctx)
	if spec == nil {
		return nil
	}
	var diags []rules.Diagnostic
	for _, v := range spec.Volumes {
		if v.HostPath != nil {
			diags = append(diags, withRemediation(rules.NewDiagnostic(
				r.Meta().Code, r.Meta().Name, r.Meta().DefaultSeverity, r.Meta().Category,
				fmt.Sprintf("volume %q mounts host path %q", v.Name, v.HostPath.Path),
				obj.FilePath, obj.Position,
			), "prefer a PersistentVolumeClaim or projected volume over hostPath"))
		}
	}
	return diags
}

// writableHostMountRule flags a container mounting a hostPath volume without readOnly: true.
type writableHostMountRule struct{}

func (writableHostMountRule) Meta() rules.Meta {
	return rules.Meta{
		Code:            "KL4006",
		Name:            "writable-host-mount",
		DefaultSeverity: rules.SeverityError,
		Category:        rules.CategorySecurity,
		Description:     "container mounts a hostPath volume without readOnly",
		SupportedKinds:  kindStrings(WorkloadKinds),
	}
}

func (r writableHostMountRule) Check(ctx *rules.Context) []rules.Diagnostic {
	obj, spec := podSpecOf(ctx)
	if spec == nil {
		return nil
	}
	hostPathVolumes := map[string]bool{}
	for _, v := range spec.Volumes {
		if v.HostPath != nil {
			hostPathVolumes[v.Name] = true
		}
	}
	var diags []rules.Diagnostic
	for _, c := range append(append([]corev1.Container{}, spec.InitContainers...), spec.Containers...) {
		for _, mnt := range c.VolumeMounts {
			if hostPathVolumes[mnt.Name] && !mnt.ReadOnly {
				diags = append(diags, withRemediation(rules.NewDiagnostic(
					r.Meta().Code, r.Meta().Name, r.Meta().DefaultSeverity, r.Meta().Category,
					fmt.Sprintf("container %q mounts host volume %q writably", c.Name, mnt.Name),
					obj.FilePath, obj.Position,
				), "add readOnly: true to the volumeMount"))
			}
		}
	}
	return diags
}

// latestTagRule flags an untagged image or an explicit :latest tag with no digest.
type latestTagRule struct{}

func (latestTagRule) Meta() rules.Meta {
	return rules.Meta{
		Code:            "KL4007",
		Name:            "latest-tag",
		DefaultSeverity: rules.SeverityWarning,
		Category:        rules.CategoryBestPractice,
		Description:     "container image floats on :latest or has no tag",
		SupportedKinds:  kindStrings(WorkloadKinds),
	}
}

func (r latestTagRule) Check(ctx *rules.Context) []rules.Diagnostic {
	obj, spec := podSpecOf(ctx)
	if spec == nil {
		return nil
	}
	var diags []rules.Diagnostic
	for _, c := range append(append([]corev1.Container{}, spec.InitContainers...), spec.Containers...) {
		if strings.Contains(c.Image, "@sha256:") {
			continue
		}
		tag, hasTag := imageTag(c.Image)
		if !hasTag || tag == "latest" {
			diags = append(diags, withRemediation(rules.NewDiagnostic(
				r.Meta().Code, r.Meta().Name, r.Meta().DefaultSeverity, r.Meta().Category,
				fmt.Sprintf("container %q image %q is untagged or pinned to :latest", c.Name, c.Image),
				obj.FilePath, obj.Position,
			), "pin the image to an explicit tag or @sha256 digest"))
		}
	}
	return diags
}

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

// sysctlsRule flags any sysctl name in a namespace the cluster can't safely share across pods.
type sysctlsRule struct{}

func (sysctlsRule) Meta() rules.Meta {
	return rules.Meta{
		Code:            "KL4008",
		Name:            "sysctls",
		DefaultSeverity: rules.SeverityWarning,
		Category:        rules.CategorySecurity,
		Description:     "PodSpec sets a namespaced or unsafe sysctl",
		SupportedKinds:  kindStrings(WorkloadKinds),
	}
}

func (r sysctlsRule) Check(ctx *rules.Context) []rules.Diagnostic {
	obj, spec := podSpecOf(ctx)
	if spec == nil || spec.SecurityContext == nil {
		return nil
	}
	var diags []rules.Diagnostic
	for _, s := range spec.SecurityContext.Sysctls {
		for _, prefix := range sysctlPrefixes {
			if strings.HasPrefix(s.Name, prefix) {
				diags = append(diags, withRemediation(rules.NewDiagnostic(
					r.Meta().Code, r.Meta().Name, r.Meta().DefaultSeverity, r.Meta().Category,
					fmt.Sprintf("sysctl %q is not safely namespaced per-pod", s.Name),
					obj.FilePath, obj.Position,
				), "avoid namespaced sysctls unless the node's kubelet allowlists them"))
				break
			}
		}
	}
	return diags
}

// dnsConfigOptionsRule flags an ndots value above 5, a common source of DNS latency from
// unnecessary search-domain expansion.
type dnsConfigOptionsRule struct{}

func (dnsConfigOptionsRule) Meta() rules.Meta {
	return rules.Meta{
		Code:            "KL5001",
		Name:            "dnsconfig-options",
		DefaultSeverity: rules.SeverityInfo,
		Category:        rules.CategoryPerformance,
		Description:     "dnsConfig ndots is set above 5",
		SupportedKinds:  kindStrings(WorkloadKinds),
	}
}

func (r dnsConfigOptionsRule) Check(ctx *rules.Context) []rules.Diagnostic {
	obj, spec := podSpecOf(ctx)
	if spec == nil || spec.DNSConfig == nil {
		return nil
	}
	for _, opt := range spec.DNSConfig.Options {
		if opt.Name != "ndots" || opt.Value == nil {
			continue
		}
		n := 0
		fmt.Sscanf(*opt.Value, "%d", &n)
		if n > 5 {
			return []rules.Diagnostic{withRemediation(rules.NewDiagnostic(
				r.Meta().Code, r.Meta().Name, r.Meta().DefaultSeverity, r.Meta().Category,
				fmt.Sprintf("dnsConfig ndots is %d, above the recommended 5", n),
				obj.FilePath, obj.Position,
			), "lower ndots or use fully-qualified domain names to skip search-domain expansion")}
		}
	}
	return nil
}

// startupPortRule flags a startup probe targeting a port the container doesn't expose, when the
// container exposes any ports at all.
type startupPortRule struct{}

func (startupPortRule) Meta() rules.Meta {
	return rules.Meta{
		Code:            "KL5002",
		Name:            "startup-port",
		DefaultSeverity: rules.SeverityWarning,
		Category:        rules.CategoryBestPractice,
		Description:     "startup probe port doesn't match any exposed container port",
		SupportedKinds:  kindStrings(WorkloadKinds),
	}
}

func (r startupPortRule) Check(ctx *rules.Context) []rules.Diagnostic {
	obj, spec := podSpecOf(ctx)
	if spec == nil {
		return nil
	}
	var diags []rules.Diagnostic
	for _, c := range spec.Containers {
		if c.StartupProbe == nil || c.StartupProbe.HTTPGet == nil && c.StartupProbe.TCPSocket == nil {
			continue
		}
		if len(c.Ports) == 0 {
			continue
		}
		probePort := startupProbePort(c.StartupProbe)
		if probePort == nil {
			continue
		}
		matched := false
		for _, p := range c.Ports {
			if p.ContainerPort == *probePort {
				matched = true
				break
			}
		}
		if !matched {
			diags = append(diags, withRemediation(rules.NewDiagnostic(
				r.Meta().Code, r.Meta().Name, r.Meta().DefaultSeverity, r.Meta().Category,
				fmt.Sprintf("container %q startup probe targets port %d, which isn't exposed", c.Name, *probePort),
				obj.FilePath, obj.Position,
			), "point the startup probe at one of the container's declared ports"))
		}
	}
	return diags
}

func startupProbePort(p *corev1.Probe) *int32 {
	if p.HTTPGet != nil && p.HTTPGet.Port.IntValue() != 0 {
		v := int32(p.HTTPGet.Port.IntValue())
		return &v
	}
	if p.TCPSocket != nil && p.TCPSocket.Port.IntValue() != 0 {
		v := int32(p.TCPSocket.Port.IntValue())
		return &v
	}
	return nil
}

func withRemediation(d rules.Diagnostic, remediation string) rules.Diagnostic {
	d.Remediation = remediation
	d.Fixable = false
	return d
}

func kindStrings(kinds []Kind) []string {
	out := make([]string, len(kinds))
	for i, k := range kinds {
		out[i] = string(k)
	}
	return out
}
