package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prometheus-mcp-server/pmcpctl/internal/chart"
	"github.com/prometheus-mcp-server/pmcpctl/internal/naming"
)

func TestCheckRendered(t *testing.T) {
	ctx := naming.Context{
		Chart:   naming.Chart{Name: "prometheus-mcp-server"},
		Release: naming.Release{Name: "observability"},
	}

	ok := &chart.Rendered{Manifests: map[string]string{
		"templates/service.yaml": `apiVersion: v1
kind: Service
metadata:
  name: observability-prometheus-mcp-server
  labels:
    app.kubernetes.io/name: prometheus-mcp-server
    app.kubernetes.io/instance: observability
`,
	}}
	assert.NoError(t, CheckRendered(ok, ctx))

	bad := &chart.Rendered{Manifests: map[string]string{
		"templates/a.yaml": `apiVersion: v1
kind: Service
metadata:
  name: svc
  labels:
    app.kubernetes.io/name: other
`,
		"templates/b.yaml": `apiVersion: v1
kind: ConfigMap
metadata:
  labels: {}
`,
	}}
	err := CheckRendered(bad, ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `Service/svc: label app.kubernetes.io/instance is "", expected "observability"`)
	assert.Contains(t, err.Error(), `Service/svc: label app.kubernetes.io/name is "other"`)
	assert.Contains(t, err.Error(), "ConfigMap has no name")
}
