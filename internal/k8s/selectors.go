// Copyright 2025 The pmcpctl Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package k8s

import (
	"fmt"
	"maps"
	"slices"

	"k8s.io/apimachinery/pkg/labels"
	"k8s.io/apimachinery/pkg/selection"

	"github.com/prometheus-mcp-server/pmcpctl/internal/naming"
)

// SelectorBuilder builds label selectors over the chart selector labels.
type SelectorBuilder struct {
	selector labels.Selector
}

// NewSelectorBuilder creates a new selector builder
func NewSelectorBuilder() *SelectorBuilder {
	return &SelectorBuilder{
		selector: labels.NewSelector(),
	}
}

// WithLabel adds an equality requirement. Empty values are ignored.
func (sb *SelectorBuilder) WithLabel(key, value string) (*SelectorBuilder, error) {
	if value == "" {
		return sb, nil
	}
	req, err := labels.NewRequirement(key, selection.Equals, []string{value})
	if err != nil {
		return nil, fmt.Errorf("failed to create %s label requirement: %w", key, err)
	}
	sb.selector = sb.selector.Add(*req)
	return sb, nil
}

// WithName adds the app.kubernetes.io/name requirement.
func (sb *SelectorBuilder) WithName(name string) (*SelectorBuilder, error) {
	return sb.WithLabel(naming.LabelName, name)
}

// WithInstance adds the app.kubernetes.io/instance requirement.
func (sb *SelectorBuilder) WithInstance(release string) (*SelectorBuilder, error) {
	return sb.WithLabel(naming.LabelInstance, release)
}

// Build returns the final label selector string
func (sb *SelectorBuilder) Build() string {
	return sb.selector.String()
}

// SelectorFromLabels builds a selector matching every entry of set, in key order.
func SelectorFromLabels(set map[string]string) (string, error) {
	builder := NewSelectorBuilder()
	for _, key := range slices.Sorted(maps.Keys(set)) {
		var err error
		if builder, err = builder.WithLabel(key, set[key]); err != nil {
			return "", err
		}
	}
	return builder.Build(), nil
}

// ReleaseSelector selects the pods of the release described by ctx.
func ReleaseSelector(ctx naming.Context) (string, error) {
	return SelectorFromLabels(naming.SelectorLabels(ctx))
}
