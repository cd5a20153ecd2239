package cli

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	v1 "helm.sh/helm/v4/pkg/release/v1"

	"github.com/prometheus-mcp-server/pmcpctl/internal/k8s"
	"github.com/prometheus-mcp-server/pmcpctl/internal/naming"
	"github.com/prometheus-mcp-server/pmcpctl/internal/runtime"
	"github.com/prometheus-mcp-server/pmcpctl/internal/ui"
)

// PodStatusGetter summarizes pod readiness for a label selector.
type PodStatusGetter interface {
	GetPodStatus(ctx context.Context, selector string) (k8s.PodStatus, error)
}

// ReleaseViewModel represents the curated output structure for json/yaml
// matching what is displayed in table mode.
type ReleaseViewModel struct {
	Release      string         `json:"release" yaml:"release"`
	Namespace    string         `json:"namespace" yaml:"namespace"`
	Status       string         `json:"status" yaml:"status"`
	Revision     int            `json:"revision" yaml:"revision"`
	Chart        string         `json:"chart" yaml:"chart"`
	AppVersion   string         `json:"appVersion,omitempty" yaml:"appVersion,omitempty"`
	LastDeployed string         `json:"lastDeployed,omitempty" yaml:"lastDeployed,omitempty"`
	Age          string         `json:"age,omitempty" yaml:"age,omitempty"`
	Description  string         `json:"description,omitempty" yaml:"description,omitempty"`
	Values       map[string]any `json:"values,omitempty" yaml:"values,omitempty"`
	Notes        string         `json:"notes,omitempty" yaml:"notes,omitempty"`
	PodCount     int            `json:"podCount" yaml:"podCount"`
	ReadyPods    int            `json:"readyPods" yaml:"readyPods"`
	PodStatus    string         `json:"podStatus,omitempty" yaml:"podStatus,omitempty"` // e.g. "2/3"
}

// RevisionViewModel is one entry of a release history.
type RevisionViewModel struct {
	Revision    int    `json:"revision" yaml:"revision"`
	Updated     string `json:"updated,omitempty" yaml:"updated,omitempty"`
	Status      string `json:"status" yaml:"status"`
	Chart       string `json:"chart" yaml:"chart"`
	AppVersion  string `json:"appVersion,omitempty" yaml:"appVersion,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// chartInfo returns the chart label and app version recorded in a release.
func chartInfo(rel *v1.Release) (string, string) {
	if rel.Chart == nil || rel.Chart.Metadata == nil {
		return "unknown", ""
	}
	md := rel.Chart.Metadata
	return naming.ChartLabel(naming.Chart{Name: md.Name, Version: md.Version}), md.AppVersion
}

// ReleaseToViewModel converts a Helm release to a view model for output
func ReleaseToViewModel(rel *v1.Release) ReleaseViewModel {
	vm := ReleaseViewModel{
		Release:   rel.Name,
		Namespace: rel.Namespace,
		Revision:  int(rel.Version),
		Status:    "unknown",
	}
	vm.Chart, vm.AppVersion = chartInfo(rel)

	if rel.Info != nil {
		vm.Status = rel.Info.Status.String()
		if !rel.Info.LastDeployed.IsZero() {
			vm.LastDeployed = rel.Info.LastDeployed.Format(time.RFC3339)
			vm.Age = humanize.Time(rel.Info.LastDeployed.Time)
		}
		vm.Description = rel.Info.Description
		vm.Notes = rel.Info.Notes
	}

	if len(rel.Config) > 0 {
		vm.Values = rel.Config
	}

	return vm
}

// ReleaseToViewModelWithPods adds pod readiness to the view model. Pod
// lookup failures leave the counters at zero.
func ReleaseToViewModelWithPods(ctx context.Context, pods PodStatusGetter, rel *v1.Release) ReleaseViewModel {
	vm := ReleaseToViewModel(rel)
	vm.PodStatus = k8s.PodStatus{}.String()
	if pods == nil {
		return vm
	}

	selector, err := k8s.SelectorFromLabels(map[string]string{naming.LabelInstance: rel.Name})
	if err != nil {
		return vm
	}
	status, err := pods.GetPodStatus(ctx, selector)
	if err != nil {
		return vm
	}

	vm.PodCount = status.Total
	vm.ReadyPods = status.Ready
	vm.PodStatus = status.String()
	return vm
}

// ReleaseToRevision converts one history entry.
func ReleaseToRevision(rel *v1.Release) RevisionViewModel {
	rv := RevisionViewModel{Revision: int(rel.Version), Status: "unknown"}
	rv.Chart, rv.AppVersion = chartInfo(rel)
	if rel.Info != nil {
		rv.Status = rel.Info.Status.String()
		rv.Description = rel.Info.Description
		if !rel.Info.LastDeployed.IsZero() {
			rv.Updated = rel.Info.LastDeployed.Format(time.RFC3339)
		}
	}
	return rv
}

// Row converts the view model to a table row.
func (vm ReleaseViewModel) Row() ui.Row {
	return ui.Row{
		"release":    vm.Release,
		"status":     fmt.Sprintf("● %s", vm.Status),
		"pods":       vm.PodStatus,
		"revision":   strconv.Itoa(vm.Revision),
		"chart":      vm.Chart,
		"appVersion": vm.AppVersion,
		"age":        vm.Age,
		"namespace":  vm.Namespace,
	}
}

// Row converts the revision to a table row.
func (rv RevisionViewModel) Row() ui.Row {
	return ui.Row{
		"revision":    strconv.Itoa(rv.Revision),
		"updated":     rv.Updated,
		"status":      rv.Status,
		"chart":       rv.Chart,
		"appVersion":  rv.AppVersion,
		"description": rv.Description,
	}
}

func grayStyle(string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(ui.ColorGray))
}

// GetTableColumns returns the release columns; the pod column only shows
// when detailed is set.
func GetTableColumns(detailed bool) []ui.Column {
	return []ui.Column{
		{
			Title:    "RELEASE",
			Key:      "release",
			MinWidth: 10,
			MaxWidth: 40,
			StyleFunc: func(string) lipgloss.Style {
				return lipgloss.NewStyle().Foreground(lipgloss.Color(ui.ColorBrightWhite))
			},
		},
		{
			Title:     "STATUS",
			Key:       "status",
			MinWidth:  10,
			MaxWidth:  20,
			StyleFunc: ui.GetStatusStyle,
		},
		{
			Title:     "PODS",
			Key:       "pods",
			MinWidth:  6,
			MaxWidth:  10,
			StyleFunc: ui.GetReadyStyle,
			Hidden:    !detailed,
		},
		{
			Title:     "REV",
			Key:       "revision",
			Width:     4,
			StyleFunc: grayStyle,
		},
		{
			Title:    "CHART",
			Key:      "chart",
			MinWidth: 10,
			MaxWidth: 40,
			StyleFunc: func(string) lipgloss.Style {
				return lipgloss.NewStyle().Foreground(lipgloss.Color(ui.ColorBrightCyan))
			},
		},
		{
			Title:     "APP VERSION",
			Key:       "appVersion",
			MinWidth:  11,
			MaxWidth:  20,
			StyleFunc: grayStyle,
		},
		{
			Title:     "AGE",
			Key:       "age",
			MinWidth:  8,
			MaxWidth:  20,
			StyleFunc: grayStyle,
		},
		{
			Title:     "NAMESPACE",
			Key:       "namespace",
			MinWidth:  10,
			MaxWidth:  20,
			StyleFunc: grayStyle,
		},
	}
}

// GetHistoryColumns returns the columns of the history table.
func GetHistoryColumns() []ui.Column {
	return []ui.Column{
		{Title: "REV", Key: "revision", Width: 4, StyleFunc: grayStyle},
		{Title: "UPDATED", Key: "updated", MinWidth: 20, MaxWidth: 25, StyleFunc: grayStyle},
		{Title: "STATUS", Key: "status", MinWidth: 10, MaxWidth: 20, StyleFunc: ui.GetStatusStyle},
		{Title: "CHART", Key: "chart", MinWidth: 10, MaxWidth: 40},
		{Title: "APP VERSION", Key: "appVersion", MinWidth: 11, MaxWidth: 20, StyleFunc: grayStyle},
		{Title: "DESCRIPTION", Key: "description", MinWidth: 11},
	}
}

// GetHelmClient initializes and returns a Helm client from the runtime context.
func GetHelmClient(ctx context.Context) (runtime.HelmClient, error) {
	rt := runtime.FromRuntime(ctx)
	if rt == nil {
		return nil, fmt.Errorf("runtime not initialized")
	}

	helmClient, err := rt.Helm()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize helm client: %w", err)
	}

	return helmClient, nil
}

// GetRuntime returns the runtime stored in the context.
func GetRuntime(ctx context.Context) (*runtime.Runtime, error) {
	rt := runtime.FromRuntime(ctx)
	if rt == nil {
		return nil, fmt.Errorf("runtime not initialized")
	}
	return rt, nil
}
