package chart

import (
	"errors"
	"fmt"

	"github.com/Masterminds/semver/v3"
	"sigs.k8s.io/yaml"

	"github.com/prometheus-mcp-server/pmcpctl/internal/naming"
)

// Metadata is the subset of Chart.yaml the tooling relies on.
type Metadata struct {
	APIVersion  string `json:"apiVersion"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Type        string `json:"type,omitempty"`
	Version     string `json:"version"`
	AppVersion  string `json:"appVersion,omitempty"`
}

// LoadMetadata parses the embedded Chart.yaml.
func LoadMetadata() (*Metadata, error) {
	data, err := ReadFile(ChartFile)
	if err != nil {
		return nil, err
	}
	return ParseMetadata(data)
}

// ParseMetadata parses Chart.yaml content and checks the chart version is
// strict SemVer 2.
func ParseMetadata(data []byte) (*Metadata, error) {
	var m Metadata
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", ChartFile, err)
	}
	if m.Name == "" {
		return nil, errors.New("chart name is required")
	}
	if _, err := semver.StrictNewVersion(m.Version); err != nil {
		return nil, fmt.Errorf("chart version %q is not valid SemVer 2: %w", m.Version, err)
	}
	return &m, nil
}

// Naming converts the metadata into the naming chart descriptor.
func (m *Metadata) Naming() naming.Chart {
	return naming.Chart{
		Name:       m.Name,
		Version:    m.Version,
		AppVersion: m.AppVersion,
	}
}
