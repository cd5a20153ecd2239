package history

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	v1 "helm.sh/helm/v4/pkg/release/v1"

	"github.com/prometheus-mcp-server/pmcpctl/internal/helm"
	"github.com/prometheus-mcp-server/pmcpctl/internal/runtime"
	"github.com/prometheus-mcp-server/pmcpctl/internal/runtime/runtimetest"
)

func execute(t *testing.T, client *runtimetest.MockHelmClient, args ...string) (string, error) {
	t.Helper()

	rt := runtime.New(
		runtime.WithReleaseName("observability"),
		runtime.WithHelmFactory(func(*runtime.Runtime) (runtime.HelmClient, error) { return client, nil }),
	)
	cmd := New()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(append([]string{}, args...))
	err := cmd.ExecuteContext(runtime.WithRuntime(context.Background(), rt))
	return out.String(), err
}

func revision(version int, status v1.Status) *v1.Release {
	return &v1.Release{
		Name:    "observability",
		Version: version,
		Info:    &v1.Info{Status: status, Description: status.String()},
	}
}

func TestHistory(t *testing.T) {
	revisions := []*v1.Release{
		revision(3, v1.StatusDeployed),
		nil,
		revision(1, v1.StatusSuperseded),
		revision(2, v1.StatusFailed),
	}

	tests := []struct {
		name  string
		args  []string
		limit int
		check func(t *testing.T, out string)
	}{
		{
			name:  "json sorted ascending",
			args:  []string{"-o", "json"},
			limit: helm.DefaultHistoryMax,
			check: func(t *testing.T, out string) {
				var doc struct {
					Data []map[string]any `json:"data"`
				}
				require.NoError(t, json.Unmarshal([]byte(out), &doc))
				require.Len(t, doc.Data, 3)
				for i, rv := range doc.Data {
					assert.EqualValues(t, i+1, rv["revision"])
				}
				assert.Equal(t, "failed", doc.Data[1]["status"])
			},
		},
		{
			name:  "max is passed through",
			args:  []string{"--max", "2", "-o", "yaml"},
			limit: 2,
			check: func(t *testing.T, out string) {
				assert.Contains(t, out, "_metadata:")
				assert.Contains(t, out, "status: deployed")
			},
		},
		{
			name:  "table",
			args:  []string{},
			limit: helm.DefaultHistoryMax,
			check: func(t *testing.T, out string) {
				assert.Contains(t, out, "superseded")
				assert.Less(t, bytes.Index([]byte(out), []byte("superseded")), bytes.Index([]byte(out), []byte("deployed")))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &runtimetest.MockHelmClient{}
			client.On("History", mock.Anything, "observability", tt.limit).Return(revisions, nil).Once()

			out, err := execute(t, client, tt.args...)
			require.NoError(t, err)
			tt.check(t, out)
			client.AssertExpectations(t)
		})
	}
}

func TestHistoryError(t *testing.T) {
	client := &runtimetest.MockHelmClient{}
	client.On("History", mock.Anything, "observability", helm.DefaultHistoryMax).
		Return(nil, errors.New("release 'observability' not found")).Once()

	_, err := execute(t, client)
	assert.EqualError(t, err, "release 'observability' not found")
}
