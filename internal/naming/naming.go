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

package naming

import (
	"fmt"
	"maps"
	"strings"
)

// Truncate cuts s to MaxNameLength bytes and drops any trailing "-" left at
// the cut.
func Truncate(s string) string {
	if len(s) > MaxNameLength {
		s = s[:MaxNameLength]
	}
	return strings.TrimRight(s, "-")
}

// baseName is nameOverride when set, otherwise the chart name. It is not
// truncated; Fullname compares against the untruncated value.
func baseName(ctx Context) string {
	if ctx.Values.NameOverride != "" {
		return ctx.Values.NameOverride
	}
	return ctx.Chart.Name
}

// Name returns the chart base name.
func Name(ctx Context) string {
	return Truncate(baseName(ctx))
}

// Fullname returns the fully qualified app name. An explicit override wins;
// otherwise a release name that already contains the base name is used as is,
// and any other release name is prefixed to the base name.
func Fullname(ctx Context) string {
	if ctx.Values.FullnameOverride != "" {
		return Truncate(ctx.Values.FullnameOverride)
	}

	name := baseName(ctx)
	if strings.Contains(ctx.Release.Name, name) {
		return Truncate(ctx.Release.Name)
	}
	return Truncate(fmt.Sprintf("%s-%s", ctx.Release.Name, name))
}

// ChartLabel returns the value of the helm.sh/chart label. "+" is not allowed
// in label values so build metadata separators become "_".
func ChartLabel(chart Chart) string {
	return Truncate(strings.ReplaceAll(chart.Name+"-"+chart.Version, "+", "_"))
}

// SelectorLabels returns the labels used by workloads and services to select
// the chart's pods. They must stay stable across upgrades.
func SelectorLabels(ctx Context) map[string]string {
	return map[string]string{
		LabelName:     Name(ctx),
		LabelInstance: ctx.Release.Name,
	}
}

// Labels returns the common labels applied to every object.
func Labels(ctx Context) map[string]string {
	labels := map[string]string{
		LabelChart: ChartLabel(ctx.Chart),
	}
	maps.Copy(labels, SelectorLabels(ctx))
	if ctx.Chart.AppVersion != "" {
		labels[LabelVersion] = ctx.Chart.AppVersion
	}
	labels[LabelManagedBy] = ctx.Release.Service
	return labels
}

// ServiceAccountName returns the service account the pods run as.
func ServiceAccountName(ctx Context) string {
	if ctx.Values.ServiceAccount.Name != "" {
		return ctx.Values.ServiceAccount.Name
	}
	if ctx.Values.ServiceAccount.Create {
		return Fullname(ctx)
	}
	return DefaultServiceAccountName
}

// IsDigest reports whether version is a content digest rather than a tag.
func IsDigest(version string) bool {
	return len(version) >= len(DigestPrefix) && version[:len(DigestPrefix)] == DigestPrefix
}

// ImageReference formats img as registry/repository@digest when the version
// is a digest and registry/repository:tag otherwise.
func ImageReference(img Image) string {
	if IsDigest(img.Version) {
		return fmt.Sprintf("%s/%s@%s", img.Registry, img.Repository, img.Version)
	}
	return fmt.Sprintf("%s/%s:%s", img.Registry, img.Repository, img.Version)
}

// ResolveImage returns the configured image with an empty version replaced by
// the chart's appVersion.
func ResolveImage(ctx Context) Image {
	img := ctx.Values.Image
	if img.Version == "" {
		img.Version = ctx.Chart.AppVersion
	}
	return img
}
