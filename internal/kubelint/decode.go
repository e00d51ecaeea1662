package kubelint

import (
	"fmt"

	appsv1 "k8s.io/api/apps/v1"
	autoscalingv2 "k8s.io/api/autoscaling/v2"
	batchv1 "k8s.io/api/batch/v1"
	corev1 "k8s.io/api/core/v1"
	networkingv1 "k8s.io/api/networking/v1"
	policyv1 "k8s.io/api/policy/v1"
	rbacv1 "k8s.io/api/rbac/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"sigs.k8s.io/yaml"

	"github.com/scoutflo/devlint/internal/yamlload"
)

// typeMeta is decoded first, cheaply, to learn apiVersion/kind before committing to a typed
// struct decode.
type typeMeta struct {
	APIVersion string            `json:"apiVersion"`
	Kind       string            `json:"kind"`
	Metadata   metav1.ObjectMeta `json:"metadata"`
}

var kindLookup = map[string]Kind{
	"Deployment":              KindDeployment,
	"StatefulSet":             KindStatefulSet,
	"DaemonSet":               KindDaemonSet,
	"Pod":                     KindPod,
	"Job":                     KindJob,
	"CronJob":                 KindCronJob,
	"ReplicaSet":              KindReplicaSet,
	"Service":                 KindService,
	"Ingress":                 KindIngress,
	"NetworkPolicy":           KindNetworkPolicy,
	"Role":                    KindRole,
	"ClusterRole":             KindClusterRole,
	"RoleBinding":             KindRoleBinding,
	"ClusterRoleBinding":      KindClusterRoleBinding,
	"ServiceAccount":          KindServiceAccount,
	"HorizontalPodAutoscaler": KindHPA,
	"PodDisruptionBudget":     KindPDB,
	"PersistentVolumeClaim":   KindPVC,
}

// DecodeObjects parses a manifest file's raw documents into K8sObjects. A document whose kind
// isn't one of the supported variants still decodes as KindUnknown (not an error) so callers can
// report on it generically; a document that can't even be parsed as YAML at all was already
// rejected by yamlload.ParseManifests.
func DecodeObjects(file, source string) ([]*K8sObject, error) {
	raws, err := yamlload.ParseManifests(source, file)
	if err != nil {
		return nil, err
	}
	objects := make([]*K8sObject, 0, len(raws))
	for _, raw := range raws {
		obj, err := decodeOne(raw, file)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", file, err)
		}
		objects = append(objects, obj)
	}
	return objects, nil
}

func decodeOne(raw yamlload.RawObject, file string) (*K8sObject, error) {
	var meta typeMeta
	if err := yaml.Unmarshal(raw.Bytes, &meta); err != nil {
		return nil, fmt.Errorf("decoding object metadata: %w", err)
	}

	obj := &K8sObject{
		Kind:        Kind(meta.Kind),
		APIVersion:  meta.APIVersion,
		Name:        meta.Metadata.Name,
		Namespace:   meta.Metadata.Namespace,
		Labels:      meta.Metadata.Labels,
		Annotations: meta.Metadata.Annotations,
		Position:    raw.Position,
		FilePath:    file,
	}

	kind, ok := kindLookup[meta.Kind]
	if !ok {
		obj.Kind = KindUnknown
		var generic map[string]interface{}
		if err := yaml.Unmarshal(raw.Bytes, &generic); err != nil {
			return nil, fmt.Errorf("decoding unknown-kind object: %w", err)
		}
		obj.Unknown = generic
		return obj, nil
	}
	obj.Kind = kind

	var decodeErr error
	switch kind {
	case KindDeployment:
		obj.Deployment = &appsv1.Deployment{}
		decodeErr = yaml.Unmarshal(raw.Bytes, obj.Deployment)
	case KindStatefulSet:
		obj.StatefulSet = &appsv1.StatefulSet{}
		decodeErr = yaml.Unmarshal(raw.Bytes, obj.StatefulSet)
	case KindDaemonSet:
		obj.DaemonSet = &appsv1.DaemonSet{}
		decodeErr = yaml.Unmarshal(raw.Bytes, obj.DaemonSet)
	case KindReplicaSet:
		obj.ReplicaSet = &appsv1.ReplicaSet{}
		decodeErr = yaml.Unmarshal(raw.Bytes, obj.ReplicaSet)
	case KindPod:
		obj.Pod = &corev1.Pod{}
		decodeErr = yaml.Unmarshal(raw.Bytes, obj.Pod)
	case KindJob:
		obj.Job = &batchv1.Job{}
		decodeErr = yaml.Unmarshal(raw.Bytes, obj.Job)
	case KindCronJob:
		obj.CronJob = &batchv1.CronJob{}
		decodeErr = yaml.Unmarshal(raw.Bytes, obj.CronJob)
	case KindService:
		obj.Service = &corev1.Service{}
		decodeErr = yaml.Unmarshal(raw.Bytes, obj.Service)
	case KindIngress:
		obj.Ingress = &networkingv1.Ingress{}
		decodeErr = yaml.Unmarshal(raw.Bytes, obj.Ingress)
	case KindNetworkPolicy:
		obj.NetworkPolicy = &networkingv1.NetworkPolicy{}
		decodeErr = yaml.Unmarshal(raw.Bytes, obj.NetworkPolicy)
	case KindRole:
		obj.Role = &rbacv1.Role{}
		decodeErr = yaml.Unmarshal(raw.Bytes, obj.Role)
	case KindClusterRole:
		obj.ClusterRole = &rbacv1.ClusterRole{}
		decodeErr = yaml.Unmarshal(raw.Bytes, obj.ClusterRole)
	case KindRoleBinding:
		obj.RoleBinding = &rbacv1.RoleBinding{}
		decodeErr = yaml.Unmarshal(raw.Bytes, obj.RoleBinding)
	case KindClusterRoleBinding:
		obj.ClusterRoleBinding = &rbacv1.ClusterRoleBinding{}
		decodeErr = yaml.Unmarshal(raw.Bytes, obj.ClusterRoleBinding)
	case KindServiceAccount:
		obj.ServiceAccount = &corev1.ServiceAccount{}
		decodeErr = yaml.Unmarshal(raw.Bytes, obj.ServiceAccount)
	case KindHPA:
		obj.HPA = &autoscalingv2.HorizontalPodAutoscaler{}
		decodeErr = yaml.Unmarshal(raw.Bytes, obj.HPA)
	case KindPDB:
		obj.PDB = &policyv1.PodDisruptionBudget{}
		decodeErr = yaml.Unmarshal(raw.Bytes, obj.PDB)
	case KindPVC:
		obj.PVC = &corev1.PersistentVolumeClaim{}
		decodeErr = yaml.Unmarshal(raw.Bytes, obj.PVC)
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("decoding %s %q: %w", meta.Kind, meta.Metadata.Name, decodeErr)
	}
	return obj, nil
}
