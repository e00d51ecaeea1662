package kubelint

import "k8s.io/apimachinery/pkg/runtime/schema"

// gvrByKind maps a parsed object's Kind to its GroupVersionResource, adapted from the resource
// lookup table the teacher's dynamic client uses to address arbitrary cluster resources. Kubelint
// itself never talks to a cluster (static analysis only); no other package in this repository
// calls GroupVersionResourceFor.
var gvrByKind = map[Kind]schema.GroupVersionResource{
	KindDeployment:         {Group: "apps", Version: "v1", Resource: "deployments"},
	KindStatefulSet:        {Group: "apps", Version: "v1", Resource: "statefulsets"},
	KindDaemonSet:          {Group: "apps", Version: "v1", Resource: "daemonsets"},
	KindReplicaSet:         {Group: "apps", Version: "v1", Resource: "replicasets"},
	KindPod:                {Group: "", Version: "v1", Resource: "pods"},
	KindJob:                {Group: "batch", Version: "v1", Resource: "jobs"},
	KindCronJob:            {Group: "batch", Version: "v1", Resource: "cronjobs"},
	KindService:            {Group: "", Version: "v1", Resource: "services"},
	KindIngress:            {Group: "networking.k8s.io", Version: "v1", Resource: "ingresses"},
	KindNetworkPolicy:      {Group: "networking.k8s.io", Version: "v1", Resource: "networkpolicies"},
	KindRole:               {Group: "rbac.authorization.k8s.io", Version: "v1", Resource: "roles"},
	KindClusterRole:        {Group: "rbac.authorization.k8s.io", Version: "v1", Resource: "clusterroles"},
	KindRoleBinding:        {Group: "rbac.authorization.k8s.io", Version: "v1", Resource: "rolebindings"},
	KindClusterRoleBinding: {Group: "rbac.authorization.k8s.io", Version: "v1", Resource: "clusterrolebindings"},
	KindServiceAccount:     {Group: "", Version: "v1", Resource: "serviceaccounts"},
	KindHPA:                {Group: "autoscaling", Version: "v2", Resource: "horizontalpodautoscalers"},
	KindPDB:                {Group: "policy", Version: "v1", Resource: "poddisruptionbudgets"},
	KindPVC:                {Group: "", Version: "v1", Resource: "persistentvolumeclaims"},
}

// GroupVersionResourceFor returns the GVR for a parsed object's kind.
func GroupVersionResourceFor(kind Kind) (schema.GroupVersionResource, bool) {
	gvr, ok := gvrByKind[kind]
	return gvr, ok
}
