// Package runtimetest provides testify mocks for the runtime interfaces.
package runtimetest

import (
	"context"

	"github.com/stretchr/testify/mock"
	v1 "helm.sh/helm/v4/pkg/release/v1"
	"k8s.io/apimachinery/pkg/labels"
)

// MockHelmClient is a mock implementation of runtime.HelmClient.
type MockHelmClient struct {
	mock.Mock
}

func (m *MockHelmClient) Install(ctx context.Context, releaseName string, vals map[string]any, dryRun bool) error {
	args := m.Called(ctx, releaseName, vals, dryRun)
	return args.Error(0)
}

func (m *MockHelmClient) Uninstall(ctx context.Context, releaseName string) error {
	args := m.Called(ctx, releaseName)
	return args.Error(0)
}

func (m *MockHelmClient) Get(ctx context.Context, releaseName string) (*v1.Release, error) {
	args := m.Called(ctx, releaseName)
	rel, _ := args.Get(0).(*v1.Release)
	return rel, args.Error(1)
}

func (m *MockHelmClient) List(ctx context.Context, selector labels.Selector) ([]*v1.Release, error) {
	args := m.Called(ctx, selector)
	rels, _ := args.Get(0).([]*v1.Release)
	return rels, args.Error(1)
}

func (m *MockHelmClient) History(ctx context.Context, releaseName string, max int) ([]*v1.Release, error) {
	args := m.Called(ctx, releaseName, max)
	rels, _ := args.Get(0).([]*v1.Release)
	return rels, args.Error(1)
}

func (m *MockHelmClient) Rollback(ctx context.Context, releaseName string, revision int) error {
	args := m.Called(ctx, releaseName, revision)
	return args.Error(0)
}

func (m *MockHelmClient) Close() error {
	args := m.Called()
	return args.Error(0)
}
