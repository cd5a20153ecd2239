package list

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	chartv2 "helm.sh/helm/v4/pkg/chart/v2"
	v1 "helm.sh/helm/v4/pkg/release/v1"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/labels"
	"k8s.io/client-go/kubernetes/fake"

	"github.com/prometheus-mcp-server/pmcpctl/internal/naming"
	"github.com/prometheus-mcp-server/pmcpctl/internal/runtime"
	"github.com/prometheus-mcp-server/pmcpctl/internal/runtime/runtimetest"
)

func newRelease(name string, status v1.Status) *v1.Release {
	return &v1.Release{
		Name:      name,
		Namespace: "monitoring",
		Version:   1,
		Info:      &v1.Info{Status: status, Notes: "notes"},
		Chart: &chartv2.Chart{Metadata: &chartv2.Metadata{
			Name: "prometheus-mcp-server", Version: "1.2.0", AppVersion: "1.2.0",
		}},
		Config: map[string]any{"replicaCount": 1},
	}
}

func execute(t *testing.T, helm *runtimetest.MockHelmClient, clientset *fake.Clientset, args ...string) (string, error) {
	t.Helper()

	rt := runtime.New(
		runtime.WithNamespace("monitoring"),
		runtime.WithHelmFactory(func(*runtime.Runtime) (runtime.HelmClient, error) { return helm, nil }),
		runtime.WithKubernetesFactory(func(*runtime.Runtime) (runtime.KubernetesClient, error) { return clientset, nil }),
	)
	cmd := New()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(append([]string{}, args...))
	err := cmd.ExecuteContext(runtime.WithRuntime(context.Background(), rt))
	return out.String(), err
}

func decode(t *testing.T, out string) []map[string]any {
	t.Helper()
	var doc struct {
		Data []map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	return doc.Data
}

func TestList(t *testing.T) {
	releases := []*v1.Release{
		newRelease("observability", v1.StatusDeployed),
		nil,
		newRelease("staging", v1.StatusFailed),
	}

	tests := []struct {
		name     string
		args     []string
		selector string
		check    func(t *testing.T, out string)
	}{
		{
			name: "json drops values and notes",
			args: []string{"-o", "json"},
			check: func(t *testing.T, out string) {
				vms := decode(t, out)
				require.Len(t, vms, 2)
				assert.Equal(t, "observability", vms[0]["release"])
				assert.Equal(t, "failed", vms[1]["status"])
				assert.NotContains(t, vms[0], "values")
				assert.NotContains(t, vms[0], "notes")
			},
		},
		{
			name:     "chart version filter",
			args:     []string{"-o", "json", "--chart-version", "1.2.0"},
			selector: "pmcpctl.dev/chart-version=1.2.0",
			check: func(t *testing.T, out string) {
				assert.Len(t, decode(t, out), 2)
			},
		},
		{
			name: "detailed adds pod readiness",
			args: []string{"-o", "json", "--detailed"},
			check: func(t *testing.T, out string) {
				vms := decode(t, out)
				require.Len(t, vms, 2)
				assert.Equal(t, "1/1", vms[0]["podStatus"])
				assert.Equal(t, "0/0", vms[1]["podStatus"])
			},
		},
		{
			name: "table",
			args: []string{},
			check: func(t *testing.T, out string) {
				assert.Contains(t, out, "observability")
				assert.Contains(t, out, "staging")
				assert.NotContains(t, out, "PODS")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clientset := fake.NewSimpleClientset(&corev1.Pod{
				ObjectMeta: metav1.ObjectMeta{
					Name:      "observability-prometheus-mcp-server-abcde",
					Namespace: "monitoring",
					Labels:    map[string]string{naming.LabelInstance: "observability"},
				},
				Status: corev1.PodStatus{
					Phase:             corev1.PodRunning,
					ContainerStatuses: []corev1.ContainerStatus{{Ready: true}},
				},
			})

			helm := &runtimetest.MockHelmClient{}
			helm.On("List", mock.Anything, mock.MatchedBy(func(sel labels.Selector) bool {
				return sel.String() == tt.selector
			})).Return(releases, nil).Once()

			out, err := execute(t, helm, clientset, tt.args...)
			require.NoError(t, err)
			tt.check(t, out)
			helm.AssertExpectations(t)
		})
	}
}

func TestListEmpty(t *testing.T) {
	helm := &runtimetest.MockHelmClient{}
	helm.On("List", mock.Anything, mock.Anything).Return([]*v1.Release{}, nil).Twice()

	out, err := execute(t, helm, fake.NewSimpleClientset())
	require.NoError(t, err)
	assert.Empty(t, out, "table output logs instead of printing an empty table")

	out, err = execute(t, helm, fake.NewSimpleClientset(), "-o", "json")
	require.NoError(t, err)
	assert.Empty(t, decode(t, out))
}

func TestListErrors(t *testing.T) {
	helm := &runtimetest.MockHelmClient{}
	helm.On("List", mock.Anything, mock.Anything).Return(nil, errors.New("unable to connect")).Once()

	_, err := execute(t, helm, fake.NewSimpleClientset(), "-o", "json")
	assert.ErrorContains(t, err, "failed to list releases: unable to connect")

	_, err = execute(t, helm, fake.NewSimpleClientset(), "-o", "xml")
	assert.ErrorContains(t, err, "invalid output format")
}
