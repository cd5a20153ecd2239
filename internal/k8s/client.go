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

// Package k8s queries the workloads of a prometheus-mcp-server release.
package k8s

import (
	"fmt"

	"k8s.io/client-go/kubernetes"

	"github.com/prometheus-mcp-server/pmcpctl/internal/runtime"
)

// Client wraps the Kubernetes queries used by the CLI.
type Client struct {
	clientset kubernetes.Interface
	namespace string
}

// NewClient creates a client scoped to namespace.
func NewClient(clientset kubernetes.Interface, namespace string) *Client {
	return &Client{
		clientset: clientset,
		namespace: namespace,
	}
}

// NewClientFromRuntime creates a client from a runtime instance
func NewClientFromRuntime(rt *runtime.Runtime) (*Client, error) {
	cs, err := rt.Kubernetes()
	if err != nil {
		return nil, fmt.Errorf("failed to get kubernetes client: %w", err)
	}
	return NewClient(cs, rt.Namespace()), nil
}

// Namespace returns the namespace this client operates in
func (c *Client) Namespace() string {
	return c.namespace
}
