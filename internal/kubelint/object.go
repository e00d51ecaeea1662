// Package kubelint implements Kubernetes manifest analysis: a tagged-variant object model decoded
// from parsed YAML, and the kubelint "templates" (parameterizable security/best-practice rules)
// from spec §4.6.
package kubelint

import (
	appsv1 "k8s.io/api/apps/v1"
	autoscalingv2 "k8s.io/api/autoscaling/v2"
	batchv1 "k8s.io/api/batch/v1"
	corev1 "k8s.io/api/core/v1"
	networkingv1 "k8s.io/api/networking/v1"
	policyv1 "k8s.io/api/policy/v1"
	rbacv1 "k8s.io/api/rbac/v1"

	"github.com/scoutflo/devlint/internal/position"
)

// Kind enumerates the supported K8sObject variants (spec §3).
type Kind string

const (
	KindDeployment         Kind = "Deployment"
	KindStatefulSet        Kind = "StatefulSet"
	KindDaemonSet          Kind = "DaemonSet"
	KindPod                Kind = "Pod"
	KindJob                Kind = "Job"
	KindCronJob            Kind = "CronJob"
	KindReplicaSet         Kind = "ReplicaSet"
	KindService            Kind = "Service"
	KindIngress            Kind = "Ingress"
	KindNetworkPolicy      Kind = "NetworkPolicy"
	KindRole               Kind = "Role"
	KindClusterRole        Kind = "ClusterRole"
	KindRoleBinding        Kind = "RoleBinding"
	KindClusterRoleBinding Kind = "ClusterRoleBinding"
	KindServiceAccount     Kind = "ServiceAccount"
	KindHPA                Kind = "HorizontalPodAutoscaler"
	KindPDB                Kind = "PodDisruptionBudget"
	KindPVC                Kind = "PersistentVolumeClaim"
	KindUnknown            Kind = "Unknown"
)

// WorkloadKinds lists the variants that carry a PodSpec.
var WorkloadKinds = []Kind{KindDeployment, KindStatefulSet, KindDaemonSet, KindReplicaSet, KindJob, KindCronJob, KindPod}

// K8sObject is the tagged-variant model over the supported Kubernetes kinds. Exactly one typed
// field is populated, matching Kind; Unknown holds the raw decode for anything else.
type K8sObject struct {
	Kind        Kind
	APIVersion  string
	Name        string
	Namespace   string
	Labels      map[string]string
	Annotations map[string]string
	Position    position.Position
	FilePath    string

	Deployment         *appsv1.Deployment
	StatefulSet        *appsv1.StatefulSet
	DaemonSet          *appsv1.DaemonSet
	ReplicaSet         *appsv1.ReplicaSet
	Pod                *corev1.Pod
	Job                *batchv1.Job
	CronJob            *batchv1.CronJob
	Service            *corev1.Service
	Ingress            *networkingv1.Ingress
	NetworkPolicy      *networkingv1.NetworkPolicy
	Role               *rbacv1.Role
	ClusterRole        *rbacv1.ClusterRole
	RoleBinding        *rbacv1.RoleBinding
	ClusterRoleBinding *rbacv1.ClusterRoleBinding
	ServiceAccount     *corev1.ServiceAccount
	HPA                *autoscalingv2.HorizontalPodAutoscaler
	PDB                *policyv1.PodDisruptionBudget
	PVC                *corev1.PersistentVolumeClaim

	Unknown map[string]interface{}
}

// PodSpec returns the object's pod template spec for workload kinds, or nil for non-workload
// kinds (Service, Ingress, RBAC objects, etc).
func (o *K8sObject) PodSpec() *corev1.PodSpec {
	switch o.Kind {
	case KindDeployment:
		return &o.Deployment.Spec.Template.Spec
	case KindStatefulSet:
		return &o.StatefulSet.Spec.Template.Spec
	case KindDaemonSet:
		return &o.DaemonSet.Spec.Template.Spec
	case KindReplicaSet:
		return &o.ReplicaSet.Spec.Template.Spec
	case KindJob:
		return &o.Job.Spec.Template.Spec
	case KindCronJob:
		return &o.CronJob.Spec.JobTemplate.Spec.Template.Spec
	case KindPod:
		return &o.Pod.Spec
	}
	return nil
}

// Containers returns the object's containers plus init containers for workload kinds, nil
// otherwise.
func (o *K8sObject) Containers() []corev1.Container {
	spec := o.PodSpec()
	if spec == nil {
		return nil
	}
	all := make([]corev1.Container, 0, len(spec.Containers)+len(spec.InitContainers))
	all = append(all, spec.InitContainers...)
	all = append(all, spec.Containers...)
	return all
}
