package names

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/prometheus-mcp-server/pmcpctl/internal/naming"
)

func TestDerive(t *testing.T) {
	view := Derive(naming.Context{
		Chart: naming.Chart{Name: "prometheus-mcp-server", Version: "1.2.0+rc.1", AppVersion: "1.2.0"},
		Values: naming.Values{
			ServiceAccount: naming.ServiceAccount{Create: false},
			Image:          naming.Image{Registry: "ghcr.io", Repository: "pab1it0/prometheus-mcp-server", Version: "sha256:" + strings.Repeat("f", 64)},
		},
		Release: naming.Release{Name: "prometheus-mcp-server-prod"},
	})

	assert.Equal(t, View{
		Name:               "prometheus-mcp-server",
		Fullname:           "prometheus-mcp-server-prod",
		Chart:              "prometheus-mcp-server-1.2.0_rc.1",
		ServiceAccountName: "default",
		Image:              "ghcr.io/pab1it0/prometheus-mcp-server@sha256:" + strings.Repeat("f", 64),
	}, view)
}
