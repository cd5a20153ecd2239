package k8s

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes/fake"

	"github.com/prometheus-mcp-server/pmcpctl/internal/naming"
)

func pod(name, release string, phase corev1.PodPhase, ready bool) *corev1.Pod {
	return &corev1.Pod{
		ObjectMeta: metav1.ObjectMeta{
			Name:      name,
			Namespace: "monitoring",
			Labels: map[string]string{
				naming.LabelName:     "prometheus-mcp-server",
				naming.LabelInstance: release,
			},
		},
		Spec: corev1.PodSpec{
			Containers: []corev1.Container{{Name: "prometheus-mcp-server"}},
		},
		Status: corev1.PodStatus{
			Phase: phase,
			ContainerStatuses: []corev1.ContainerStatus{
				{Name: "prometheus-mcp-server", Ready: ready, RestartCount: 2},
			},
		},
	}
}

func TestSelectorBuilder(t *testing.T) {
	b, err := NewSelectorBuilder().WithName("prometheus-mcp-server")
	require.NoError(t, err)
	b, err = b.WithInstance("")
	require.NoError(t, err)
	assert.Equal(t, "app.kubernetes.io/name=prometheus-mcp-server", b.Build())

	_, err = NewSelectorBuilder().WithInstance("not a valid value!")
	assert.Error(t, err)
}

func TestReleaseSelector(t *testing.T) {
	sel, err := ReleaseSelector(naming.Context{
		Chart:   naming.Chart{Name: "prometheus-mcp-server"},
		Release: naming.Release{Name: "observability"},
	})
	require.NoError(t, err)
	assert.Equal(t, "app.kubernetes.io/instance=observability,app.kubernetes.io/name=prometheus-mcp-server", sel)
}

func TestGetPodStatus(t *testing.T) {
	cs := fake.NewSimpleClientset(
		pod("a", "observability", corev1.PodRunning, true),
		pod("b", "observability", corev1.PodRunning, false),
		pod("c", "observability", corev1.PodPending, true),
		pod("d", "other", corev1.PodRunning, true),
	)
	c := NewClient(cs, "monitoring")
	assert.Equal(t, "monitoring", c.Namespace())

	sel, err := SelectorFromLabels(map[string]string{naming.LabelInstance: "observability"})
	require.NoError(t, err)

	status, err := c.GetPodStatus(context.Background(), sel)
	require.NoError(t, err)
	assert.Equal(t, PodStatus{Total: 3, Ready: 1}, status)
	assert.Equal(t, "1/3", status.String())

	pods, err := c.ListPods(context.Background(), sel)
	require.NoError(t, err)
	require.Len(t, pods, 3)
	for _, p := range pods {
		assert.Equal(t, []string{"prometheus-mcp-server"}, p.Containers)
		assert.Equal(t, int32(2), p.Restarts)
	}
}
