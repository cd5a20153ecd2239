package install

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/prometheus-mcp-server/pmcpctl/internal/runtime"
	"github.com/prometheus-mcp-server/pmcpctl/internal/runtime/runtimetest"
	"github.com/prometheus-mcp-server/pmcpctl/internal/values"
)

func execute(t *testing.T, helm *runtimetest.MockHelmClient, release string, set []string, args ...string) (string, error) {
	t.Helper()

	rt := runtime.New(
		runtime.WithNamespace("monitoring"),
		runtime.WithReleaseName(release),
		runtime.WithValuesOptions(values.Options{Set: set}),
		runtime.WithHelmFactory(func(*runtime.Runtime) (runtime.HelmClient, error) { return helm, nil }),
	)
	cmd := New()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(append([]string{}, args...))
	err := cmd.ExecuteContext(runtime.WithRuntime(context.Background(), rt))
	return out.String(), err
}

func TestInstall(t *testing.T) {
	tests := []struct {
		name       string
		release    string
		set        []string
		args       []string
		dryRun     bool
		installErr error
		wantNotes  bool
		wantErr    string
		noInstall  bool
	}{
		{
			name:      "install prints notes",
			release:   "observability",
			args:      []string{},
			wantNotes: true,
		},
		{
			name:    "dry run is quiet",
			release: "observability",
			args:    []string{"--dry-run"},
			dryRun:  true,
		},
		{
			name:       "helm failure",
			release:    "observability",
			args:       []string{},
			installErr: errors.New("another operation is in progress"),
			wantErr:    "another operation is in progress",
		},
		{
			name:      "invalid release name",
			release:   "Observability",
			args:      []string{},
			wantErr:   "invalid derived names",
			noInstall: true,
		},
		{
			name:    "validation skipped",
			release: "Observability",
			args:    []string{"--skip-validation", "--dry-run"},
			dryRun:  true,
		},
		{
			name:      "schema violation",
			release:   "observability",
			set:       []string{"replicaCount=-1"},
			args:      []string{},
			wantErr:   "values validation failed",
			noInstall: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			helm := &runtimetest.MockHelmClient{}
			if !tt.noInstall {
				helm.On("Install", mock.Anything, tt.release, mock.Anything, tt.dryRun).Return(tt.installErr).Once()
			}

			out, err := execute(t, helm, tt.release, tt.set, tt.args...)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			if tt.wantNotes {
				assert.Contains(t, out, "NOTES:\nprometheus-mcp-server")
			} else {
				assert.NotContains(t, out, "NOTES:")
			}

			if tt.noInstall {
				helm.AssertNotCalled(t, "Install", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
			}
			helm.AssertExpectations(t)
		})
	}
}

func TestInstallPassesLayeredValues(t *testing.T) {
	helm := &runtimetest.MockHelmClient{}
	helm.On("Install", mock.Anything, "observability", mock.Anything, false).Return(nil).Once()

	_, err := execute(t, helm, "observability", []string{"replicaCount=3", "fullnameOverride=pmcp"})
	require.NoError(t, err)

	vals := helm.Calls[0].Arguments.Get(2).(map[string]any)
	assert.EqualValues(t, 3, vals["replicaCount"])
	assert.Equal(t, "pmcp", vals["fullnameOverride"])
	assert.Contains(t, vals, "prometheus", "chart defaults are sent along")
}
