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

// Package chart embeds the prometheus-mcp-server Helm chart and renders its
// templates in-process with a Helm compatible engine.
package chart

import (
	"crypto/sha256"
	"embed"
	"encoding/hex"
	"fmt"
	"io/fs"
	"path"
	"sync"
)

// FS holds the chart directory. The all: prefix keeps _helpers.tpl.
//
//go:embed all:chart
var FS embed.FS

const (
	// Root is the chart directory inside FS.
	Root = "chart"

	ChartFile    = "Chart.yaml"
	ValuesFile   = "values.yaml"
	SchemaFile   = "values.schema.json"
	TemplatesDir = "templates"
	NotesFile    = "NOTES.txt"
)

var (
	hashOnce sync.Once
	hash     string
	hashErr  error
)

// ReadFile reads a file relative to the chart root.
func ReadFile(name string) ([]byte, error) {
	data, err := FS.ReadFile(path.Join(Root, name))
	if err != nil {
		return nil, fmt.Errorf("failed to read chart file %s: %w", name, err)
	}
	return data, nil
}

// DefaultValues returns the raw values.yaml shipped with the chart.
func DefaultValues() ([]byte, error) {
	return ReadFile(ValuesFile)
}

// Schema returns the raw values.schema.json shipped with the chart.
func Schema() ([]byte, error) {
	return ReadFile(SchemaFile)
}

// Hash returns a digest over every embedded chart path and its content.
// It is computed once per process.
func Hash() (string, error) {
	hashOnce.Do(func() {
		hasher := sha256.New()
		hashErr = fs.WalkDir(FS, Root, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return fmt.Errorf("failed to access embedded chart file %s: %w", p, err)
			}
			if d.IsDir() {
				return nil
			}
			data, err := FS.ReadFile(p)
			if err != nil {
				return fmt.Errorf("failed to read embedded file %s: %w", p, err)
			}
			hasher.Write([]byte(p))
			hasher.Write(data)
			return nil
		})
		if hashErr == nil {
			hash = hex.EncodeToString(hasher.Sum(nil))
		}
	})
	return hash, hashErr
}
