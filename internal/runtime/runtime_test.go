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

package runtime

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"k8s.io/client-go/kubernetes/fake"

	"github.com/prometheus-mcp-server/pmcpctl/internal/runtime/runtimetest"
	"github.com/prometheus-mcp-server/pmcpctl/internal/values"
)

// MockLoggerProvider records log calls.
type MockLoggerProvider struct {
	mock.Mock
}

func (m *MockLoggerProvider) Debug(msg string, keyvals ...any) { m.Called(msg, keyvals) }
func (m *MockLoggerProvider) Info(msg string, keyvals ...any)  { m.Called(msg, keyvals) }
func (m *MockLoggerProvider) Warn(msg string, keyvals ...any)  { m.Called(msg, keyvals) }
func (m *MockLoggerProvider) Error(msg string, keyvals ...any) { m.Called(msg, keyvals) }

func (m *MockLoggerProvider) With(keyvals ...any) LoggerProvider {
	args := m.Called(keyvals)
	return args.Get(0).(LoggerProvider)
}

func TestRuntimeWithDependencyInjection(t *testing.T) {
	t.Run("should use injected dependencies", func(t *testing.T) {
		mockHelm := &runtimetest.MockHelmClient{}
		clientset := fake.NewSimpleClientset()
		mockLogger := &MockLoggerProvider{}
		mockLogger.On("Debug", "Initialized helm client", mock.Anything).Return()

		rt := New(
			WithHelmFactory(func(r *Runtime) (HelmClient, error) { return mockHelm, nil }),
			WithKubernetesFactory(func(r *Runtime) (KubernetesClient, error) { return clientset, nil }),
			WithLogger(mockLogger),
		)

		helmClient, err := rt.Helm()
		require.NoError(t, err)
		k8sClient, err := rt.Kubernetes()
		require.NoError(t, err)

		assert.Same(t, mockHelm, helmClient)
		assert.Equal(t, clientset, k8sClient)
		mockLogger.AssertExpectations(t)
	})

	t.Run("should use default configuration values", func(t *testing.T) {
		rt := New()

		assert.Equal(t, DefaultStorageDriver, rt.storageDriver)
		assert.Equal(t, DefaultTimeout, rt.timeout)
		assert.Equal(t, DefaultReleaseName, rt.ReleaseName())
		assert.Equal(t, DefaultNamespace, rt.Namespace())
	})

	t.Run("should override configuration with options", func(t *testing.T) {
		rt := New(
			WithTimeout(5*time.Minute),
			WithNamespace("monitoring"),
			WithReleaseName("observability"),
			WithStorageDriver(HelmStorageDriverConfigMap),
			WithDebug(true),
		)

		assert.Equal(t, 5*time.Minute, rt.Timeout())
		assert.Equal(t, "monitoring", rt.Namespace())
		assert.Equal(t, "observability", rt.ReleaseName())
		assert.Equal(t, HelmStorageDriverConfigMap, rt.storageDriver)
		assert.True(t, rt.DebugKeepTempChart())
	})

	t.Run("should memoize clients", func(t *testing.T) {
		mockHelm := &runtimetest.MockHelmClient{}
		callCount := 0

		rt := New(WithHelmFactory(func(r *Runtime) (HelmClient, error) {
			callCount++
			return mockHelm, nil
		}))

		client1, err1 := rt.Helm()
		client2, err2 := rt.Helm()

		assert.NoError(t, err1)
		assert.NoError(t, err2)
		assert.Same(t, client1, client2)
		assert.Equal(t, 1, callCount, "Factory should be called only once due to memoization")
	})

	t.Run("should handle factory errors", func(t *testing.T) {
		rt := New(WithHelmFactory(func(r *Runtime) (HelmClient, error) {
			return nil, errors.New("helm factory error")
		}))

		client, err := rt.Helm()

		assert.Error(t, err)
		assert.Nil(t, client)
		assert.Contains(t, err.Error(), "failed to create helm client")
	})
}

func TestRuntimeValues(t *testing.T) {
	t.Run("passes options and memoizes", func(t *testing.T) {
		opts := values.Options{Set: []string{"replicaCount=2"}, Strict: true}
		calls := 0
		rt := New(
			WithValuesOptions(opts),
			WithValuesLoader(func(ctx context.Context, got values.Options) (*values.Result, error) {
				calls++
				assert.Equal(t, opts, got)
				return &values.Result{Values: &values.Values{ReplicaCount: 2}}, nil
			}),
		)

		first, err := rt.Values(context.Background())
		require.NoError(t, err)
		second, err := rt.Values(context.Background())
		require.NoError(t, err)

		assert.Same(t, first, second)
		assert.Equal(t, 1, calls)
	})

	t.Run("loads real chart values by default", func(t *testing.T) {
		res, err := New().Values(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "ghcr.io", res.Values.Image.Registry)
	})

	t.Run("wraps loader errors", func(t *testing.T) {
		rt := New(WithValuesLoader(func(context.Context, values.Options) (*values.Result, error) {
			return nil, errors.New("bad file")
		}))
		_, err := rt.Values(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to load values: bad file")
	})
}

func TestRuntimeClose(t *testing.T) {
	mockHelm := &runtimetest.MockHelmClient{}
	mockHelm.On("Close").Return(errors.New("busy")).Once()

	rt := New(WithHelmFactory(func(r *Runtime) (HelmClient, error) { return mockHelm, nil }))
	_, err := rt.Helm()
	require.NoError(t, err)

	err = rt.Close()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "busy")

	assert.NoError(t, rt.Close(), "second close has nothing to release")
	mockHelm.AssertExpectations(t)
}

func TestConfigurationValidation(t *testing.T) {
	t.Run("should validate timeout bounds", func(t *testing.T) {
		tests := []struct {
			name     string
			timeout  time.Duration
			expected bool
		}{
			{"valid timeout", 5 * time.Minute, true},
			{"minimum timeout", HelmTimeoutMin, true},
			{"maximum timeout", HelmTimeoutMax, true},
			{"too short", 10 * time.Second, false},
			{"too long", 120 * time.Minute, false},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				assert.Equal(t, tt.expected, ValidateTimeout(tt.timeout))
			})
		}
	})

	t.Run("should validate storage drivers", func(t *testing.T) {
		for _, driver := range GetValidStorageDrivers() {
			assert.True(t, ValidateStorageDriver(driver), driver)
		}
		assert.False(t, ValidateStorageDriver("etcd"))
	})
}

func TestRuntimeContext(t *testing.T) {
	rt := New()
	var provider RuntimeProvider = rt
	assert.NotNil(t, provider)

	assert.Same(t, rt, FromRuntime(WithRuntime(context.Background(), rt)))
	assert.Nil(t, FromRuntime(context.Background()))
}
