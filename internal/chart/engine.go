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

package chart

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"strings"
	"text/template"

	sprig "github.com/Masterminds/sprig/v3"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"sigs.k8s.io/yaml"

	"github.com/prometheus-mcp-server/pmcpctl/internal/naming"
)

const noValue = "<no value>"

// ReleaseInfo is exposed to templates as .Release.
type ReleaseInfo struct {
	Name      string
	Namespace string
	Service   string
	Revision  int
	IsInstall bool
	IsUpgrade bool
}

// RenderInput is the dot context of every template.
type RenderInput struct {
	Chart   naming.Chart
	Values  map[string]any
	Release ReleaseInfo
}

// NewRenderInput builds a render context for a fresh install.
func NewRenderInput(ch naming.Chart, values map[string]any, rel naming.Release) RenderInput {
	service := rel.Service
	if service == "" {
		service = naming.DefaultReleaseService
	}
	return RenderInput{
		Chart:  ch,
		Values: values,
		Release: ReleaseInfo{
			Name:      rel.Name,
			Namespace: rel.Namespace,
			Service:   service,
			Revision:  1,
			IsInstall: true,
		},
	}
}

// Rendered holds the output of a chart render.
type Rendered struct {
	// Manifests maps template path to rendered content. Empty outputs are omitted.
	Manifests map[string]string
	Notes     string
}

// Names returns the manifest paths in sorted order.
func (r *Rendered) Names() []string {
	names := make([]string, 0, len(r.Manifests))
	for name := range r.Manifests {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// String joins all manifests into a single YAML stream with source comments.
func (r *Rendered) String() string {
	var b strings.Builder
	for _, name := range r.Names() {
		b.WriteString("---\n# Source: ")
		b.WriteString(name)
		b.WriteString("\n")
		b.WriteString(strings.TrimSpace(r.Manifests[name]))
		b.WriteString("\n")
	}
	return b.String()
}

// Objects decodes every manifest into unstructured Kubernetes objects.
func (r *Rendered) Objects() ([]*unstructured.Unstructured, error) {
	var objs []*unstructured.Unstructured
	for _, name := range r.Names() {
		for i, doc := range strings.Split(r.Manifests[name], "\n---") {
			if strings.TrimSpace(doc) == "" {
				continue
			}
			obj := map[string]any{}
			if err := yaml.Unmarshal([]byte(doc), &obj); err != nil {
				return nil, fmt.Errorf("failed to decode %s (document %d): %w", name, i, err)
			}
			if len(obj) == 0 {
				continue
			}
			objs = append(objs, &unstructured.Unstructured{Object: obj})
		}
	}
	return objs, nil
}

// Engine renders chart templates with sprig and the Helm template helpers.
type Engine struct {
	tmpl  *template.Template
	files []string
}

// NewEngine parses the embedded chart templates.
func NewEngine() (*Engine, error) {
	sub, err := fs.Sub(FS, Root)
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded chart: %w", err)
	}
	return NewEngineFS(sub)
}

// NewEngineFS parses every file below templates/ in fsys.
func NewEngineFS(fsys fs.FS) (*Engine, error) {
	e := &Engine{}
	e.tmpl = template.New("chart").Option("missingkey=zero")
	e.tmpl.Funcs(e.funcMap())

	err := fs.WalkDir(fsys, TemplatesDir, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return fmt.Errorf("failed to walk directory %s: %w", p, walkErr)
		}
		if d.IsDir() {
			return nil
		}
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return fmt.Errorf("failed to read template %s: %w", p, err)
		}
		if _, err := e.tmpl.New(p).Parse(string(data)); err != nil {
			return fmt.Errorf("failed to parse template %s: %w", p, err)
		}
		if !strings.HasPrefix(path.Base(p), "_") {
			e.files = append(e.files, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.Sort(e.files)
	return e, nil
}

// Include evaluates a single named template.
func (e *Engine) Include(name string, data any) (string, error) {
	var buf strings.Builder
	if err := e.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return "", err
	}
	return strings.ReplaceAll(buf.String(), noValue, ""), nil
}

// Render executes every non-partial template against in.
func (e *Engine) Render(in RenderInput) (*Rendered, error) {
	out := &Rendered{Manifests: map[string]string{}}
	for _, name := range e.files {
		s, err := e.Include(name, in)
		if err != nil {
			return nil, fmt.Errorf("failed to render %s: %w", name, err)
		}
		if path.Base(name) == NotesFile {
			out.Notes = strings.TrimSpace(s)
			continue
		}
		if strings.TrimSpace(s) == "" {
			continue
		}
		out.Manifests[name] = s
	}
	return out, nil
}

func (e *Engine) funcMap() template.FuncMap {
	f := sprig.TxtFuncMap()
	delete(f, "env")
	delete(f, "expandenv")

	f["toYaml"] = toYAML
	f["required"] = required
	f["include"] = func(name string, data any) (string, error) {
		var buf strings.Builder
		if err := e.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
			return "", err
		}
		return buf.String(), nil
	}
	return f
}

func toYAML(v any) string {
	data, err := yaml.Marshal(v)
	if err != nil {
		return ""
	}
	return strings.TrimSuffix(string(data), "\n")
}

func required(msg string, v any) (any, error) {
	switch val := v.(type) {
	case nil:
		return nil, errors.New(msg)
	case string:
		if val == "" {
			return nil, errors.New(msg)
		}
	}
	return v, nil
}
