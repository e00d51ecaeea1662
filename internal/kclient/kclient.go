// Package kclient resolves a Kubernetes REST config the same way the teacher's cluster client
// did: try in-cluster credentials first, then fall back to kubeconfig (KUBECONFIG env var or
// client-go's default loading rules), and exposes the typed clientsets the live optimizer needs.
package kclient

import (
	"fmt"

	"k8s.io/client-go/discovery"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
	metricsclientset "k8s.io/metrics/pkg/client/clientset/versioned"

	"github.com/scoutflo/devlint/internal/apperror"
)

// Client bundles the clientsets the live optimizer and kubelint's GVR lookups share.
type Client struct {
	REST      *rest.Config
	Clientset *kubernetes.Clientset
	Metrics   *metricsclientset.Clientset
	Discovery discovery.DiscoveryInterface
}

// resolveConfig mirrors the teacher's two-path resolution: in-cluster config when running inside
// a pod, otherwise the kubeconfig loading rules (KUBECONFIG env var, then
// ~/.kube/config), with an explicit --kubeconfig override taking precedence over both. contextName
// selects a non-current context within that kubeconfig (the optimizer's `--cluster <ctx>` flag);
// a non-empty contextName skips the in-cluster attempt, since in-cluster config has no contexts.
func resolveConfig(kubeconfigPath, contextName string) (*rest.Config, error) {
	if kubeconfigPath == "" && contextName == "" {
		if cfg, err := rest.InClusterConfig(); err == nil {
			return cfg, nil
		}
	}

	loadingRules := clientcmd.NewDefaultClientConfigLoadingRules()
	if kubeconfigPath != "" {
		loadingRules.ExplicitPath = kubeconfigPath
	}
	overrides := &clientcmd.ConfigOverrides{}
	if contextName != "" {
		overrides.CurrentContext = contextName
	}
	cfg, err := clientcmd.NewNonInteractiveDeferredLoadingClientConfig(loadingRules, overrides).ClientConfig()
	if err != nil {
		return nil, &apperror.NetworkError{Source: "kubeconfig", Message: "failed to resolve cluster configuration", Cause: err}
	}
	return cfg, nil
}

// New resolves cluster credentials and constructs the clientset/metrics/discovery clients. An
// empty kubeconfigPath defers to in-cluster config, then the standard kubeconfig loading rules.
// contextName, if non-empty, selects that context within the resolved kubeconfig.
func New(kubeconfigPath, contextName string) (*Client, error) {
	restCfg, err := resolveConfig(kubeconfigPath, contextName)
	if err != nil {
		return nil, err
	}

	clientset, err := kubernetes.NewForConfig(restCfg)
	if err != nil {
		return nil, &apperror.NetworkError{Source: "cluster", Message: "failed to build clientset", Cause: err}
	}

	metricsClient, err := metricsclientset.NewForConfig(restCfg)
	if err != nil {
		return nil, &apperror.NetworkError{Source: "metrics-server", Message: "failed to build metrics clientset", Cause: err}
	}

	discoveryClient, err := discovery.NewDiscoveryClientForConfig(restCfg)
	if err != nil {
		return nil, &apperror.NetworkError{Source: "cluster", Message: "failed to build discovery client", Cause: err}
	}

	return &Client{
		REST:      restCfg,
		Clientset: clientset,
		Metrics:   metricsClient,
		Discovery: discoveryClient,
	}, nil
}

// HasMetricsAPI probes server discovery for the metrics.k8s.io API group, the cheap precondition
// check before attempting a metrics-server snapshot.
func (c *Client) HasMetricsAPI() bool {
	groups, err := c.Discovery.ServerGroups()
	if err != nil {
		return false
	}
	for _, g := range groups.Groups {
		if g.Name == "metrics.k8s.io" {
			return true
		}
	}
	return false
}

func (c *Client) String() string {
	if c == nil || c.REST == nil {
		return "kclient(unconfigured)"
	}
	return fmt.Sprintf("kclient(%s)", c.REST.Host)
}
