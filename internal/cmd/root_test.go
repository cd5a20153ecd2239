package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	chartv2 "helm.sh/helm/v4/pkg/chart/v2"
	v1 "helm.sh/helm/v4/pkg/release/v1"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes/fake"

	"github.com/prometheus-mcp-server/pmcpctl/internal/naming"
	"github.com/prometheus-mcp-server/pmcpctl/internal/runtime"
	"github.com/prometheus-mcp-server/pmcpctl/internal/runtime/runtimetest"
)

type CommandSuite struct {
	suite.Suite
	helm      *runtimetest.MockHelmClient
	clientset *fake.Clientset
}

func TestCommandSuite(t *testing.T) {
	suite.Run(t, new(CommandSuite))
}

func (s *CommandSuite) SetupTest() {
	s.helm = &runtimetest.MockHelmClient{}
	s.clientset = fake.NewSimpleClientset()
}

func (s *CommandSuite) TearDownTest() {
	s.helm.AssertExpectations(s.T())
}

// run executes pmcpctl with args against the mocks and returns stdout.
func (s *CommandSuite) run(args ...string) (string, error) {
	root, cleanup := NewRootCommand(
		runtime.WithHelmFactory(func(*runtime.Runtime) (runtime.HelmClient, error) { return s.helm, nil }),
		runtime.WithKubernetesFactory(func(*runtime.Runtime) (runtime.KubernetesClient, error) { return s.clientset, nil }),
	)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(append([]string{"--quiet", "-n", "monitoring", "-r", "observability"}, args...))

	err := root.ExecuteContext(context.Background())
	s.Require().NoError(cleanup())
	return out.String(), err
}

func (s *CommandSuite) decodeData(out string, into any) {
	var doc struct {
		Metadata map[string]string `json:"_metadata"`
		Data     json.RawMessage   `json:"data"`
	}
	s.Require().NoError(json.Unmarshal([]byte(out), &doc))
	s.Equal("pmcpctl", doc.Metadata["tool"])
	s.Require().NoError(json.Unmarshal(doc.Data, into))
}

func release(name string, version int, status v1.Status) *v1.Release {
	return &v1.Release{
		Name:      name,
		Namespace: "monitoring",
		Version:   version,
		Info:      &v1.Info{Status: status, Description: "Install complete", Notes: "port-forward hint"},
		Chart: &chartv2.Chart{Metadata: &chartv2.Metadata{
			Name:       "prometheus-mcp-server",
			Version:    "1.2.0",
			AppVersion: "1.2.0",
		}},
		Config: map[string]any{"replicaCount": 2},
	}
}

func (s *CommandSuite) TestNames() {
	out, err := s.run("names", "-o", "json")
	s.Require().NoError(err)

	var view map[string]string
	s.decodeData(out, &view)
	s.Equal("prometheus-mcp-server", view["name"])
	s.Equal("observability-prometheus-mcp-server", view["fullname"])
	s.Equal("prometheus-mcp-server-1.2.0", view["chart"])
	s.Equal("observability-prometheus-mcp-server", view["serviceAccountName"])
	s.Equal("ghcr.io/pab1it0/prometheus-mcp-server:1.2.0", view["image"])
}

func (s *CommandSuite) TestNamesTableWithOverrides() {
	out, err := s.run("names", "--set", "fullnameOverride=pmcp", "--set", "serviceAccount.create=false")
	s.Require().NoError(err)
	s.Contains(out, "fullname")
	s.Contains(out, "pmcp")
	s.Contains(out, naming.DefaultServiceAccountName)
}

func (s *CommandSuite) TestNamesWithImageFlag() {
	digest := "sha256:" + strings.Repeat("a", 64)
	out, err := s.run("names", "-o", "json", "--image", "quay.io/team/pmcp@"+digest)
	s.Require().NoError(err)

	var view map[string]string
	s.decodeData(out, &view)
	s.Equal("quay.io/team/pmcp@"+digest, view["image"])
}

func (s *CommandSuite) TestLabels() {
	out, err := s.run("labels", "--selector", "-o", "json")
	s.Require().NoError(err)

	var set map[string]string
	s.decodeData(out, &set)
	s.Equal(map[string]string{
		naming.LabelName:     "prometheus-mcp-server",
		naming.LabelInstance: "observability",
	}, set)

	out, err = s.run("labels", "-o", "yaml")
	s.Require().NoError(err)
	s.Contains(out, "_metadata:")
	s.Contains(out, naming.LabelManagedBy+": Helm")
}

func (s *CommandSuite) TestTemplate() {
	out, err := s.run("template", "-s", "templates/service.yaml", "--notes")
	s.Require().NoError(err)
	s.Contains(out, "# Source: templates/service.yaml")
	s.Contains(out, "kind: Service")
	s.NotContains(out, "kind: Deployment")
	s.Contains(out, "NOTES:")

	_, err = s.run("template", "-s", "templates/missing.yaml")
	s.ErrorContains(err, "could not find template")
}

func (s *CommandSuite) TestValidate() {
	_, err := s.run("validate")
	s.NoError(err)

	_, err = s.run("validate", "--set", "nameOverride=Not_Valid")
	s.ErrorContains(err, "invalid derived names")

	_, err = s.run("validate", "--set", "bogus=1", "--strict")
	s.ErrorContains(err, "unknown values keys: bogus")
}

func (s *CommandSuite) TestInvalidGlobalFlags() {
	_, err := s.run("names", "--storage-driver", "sql")
	s.ErrorContains(err, "invalid storage driver")

	_, err = s.run("names", "--timeout", "1s")
	s.ErrorContains(err, "invalid timeout")

	_, err = s.run("names", "-o", "xml")
	s.ErrorContains(err, "invalid output format")
}

func (s *CommandSuite) TestInstall() {
	s.helm.On("Install", mock.Anything, "observability", mock.Anything, false).Return(nil).Once()
	s.helm.On("Close").Return(nil).Once()

	out, err := s.run("install", "--set", "replicaCount=2")
	s.Require().NoError(err)
	s.Contains(out, "NOTES:")

	vals := s.helm.Calls[0].Arguments.Get(2).(map[string]any)
	s.EqualValues(2, vals["replicaCount"])
}

func (s *CommandSuite) TestInstallDryRunFailure() {
	s.helm.On("Install", mock.Anything, "observability", mock.Anything, true).Return(errors.New("boom")).Once()
	s.helm.On("Close").Return(nil).Once()

	_, err := s.run("install", "--dry-run")
	s.EqualError(err, "boom")
}

func (s *CommandSuite) TestInstallRejectsInvalidNames() {
	_, err := s.run("install", "-r", "Observability")
	s.ErrorContains(err, "invalid derived names")
}

func (s *CommandSuite) TestUninstall() {
	s.helm.On("Uninstall", mock.Anything, "observability").Return(nil).Once()
	s.helm.On("Close").Return(nil).Once()

	_, err := s.run("uninstall", "--yes")
	s.NoError(err)
}

func (s *CommandSuite) TestList() {
	s.helm.On("List", mock.Anything, mock.Anything).Return([]*v1.Release{
		release("observability", 2, v1.StatusDeployed),
		nil,
		release("staging", 1, v1.StatusFailed),
	}, nil).Once()
	s.helm.On("Close").Return(nil).Once()

	out, err := s.run("list", "-o", "json", "--chart-version", "1.2.0")
	s.Require().NoError(err)

	var vms []map[string]any
	s.decodeData(out, &vms)
	s.Require().Len(vms, 2)
	s.Equal("observability", vms[0]["release"])
	s.Equal("failed", vms[1]["status"])
	s.NotContains(vms[0], "values")

	selector := s.helm.Calls[0].Arguments.Get(1)
	s.Contains(selector.(interface{ String() string }).String(), "pmcpctl.dev/chart-version=1.2.0")
}

func (s *CommandSuite) TestListEmpty() {
	s.helm.On("List", mock.Anything, mock.Anything).Return([]*v1.Release{}, nil).Once()
	s.helm.On("Close").Return(nil).Once()

	out, err := s.run("list")
	s.NoError(err)
	s.Empty(out)
}

func (s *CommandSuite) TestStatus() {
	s.helm.On("Get", mock.Anything, "observability").Return(release("observability", 3, v1.StatusDeployed), nil).Once()
	s.helm.On("Close").Return(nil).Once()

	_, err := s.clientset.CoreV1().Pods("monitoring").Create(context.Background(), &corev1.Pod{
		ObjectMeta: metav1.ObjectMeta{
			Name:      "observability-prometheus-mcp-server-abcde",
			Namespace: "monitoring",
			Labels:    map[string]string{naming.LabelInstance: "observability"},
		},
		Status: corev1.PodStatus{
			Phase:             corev1.PodRunning,
			ContainerStatuses: []corev1.ContainerStatus{{Ready: true}},
		},
	}, metav1.CreateOptions{})
	s.Require().NoError(err)

	out, err := s.run("status", "-o", "json", "--show-values")
	s.Require().NoError(err)

	var vm map[string]any
	s.decodeData(out, &vm)
	s.Equal("1/1", vm["podStatus"])
	s.EqualValues(3, vm["revision"])
	s.Contains(vm, "values")
	s.NotContains(vm, "notes")
}

func (s *CommandSuite) TestStatusTable() {
	s.helm.On("Get", mock.Anything, "observability").Return(release("observability", 3, v1.StatusDeployed), nil).Once()
	s.helm.On("Close").Return(nil).Once()

	out, err := s.run("status", "--skip-pods", "--show-notes")
	s.Require().NoError(err)
	s.Contains(out, "observability")
	s.Contains(out, "NOTES:\nport-forward hint")
	s.NotContains(out, "PODS")
}

func (s *CommandSuite) TestStatusNotFound() {
	s.helm.On("Get", mock.Anything, "observability").Return(nil, errors.New(`release "observability" not found`)).Once()
	s.helm.On("Close").Return(nil).Once()

	_, err := s.run("status")
	s.ErrorContains(err, "pmcpctl list")
}

func (s *CommandSuite) TestHistory() {
	s.helm.On("History", mock.Anything, "observability", 5).Return([]*v1.Release{
		release("observability", 2, v1.StatusDeployed),
		release("observability", 1, v1.StatusSuperseded),
	}, nil).Once()
	s.helm.On("Close").Return(nil).Once()

	out, err := s.run("history", "--max", "5", "-o", "json")
	s.Require().NoError(err)

	var revs []map[string]any
	s.decodeData(out, &revs)
	s.Require().Len(revs, 2)
	s.EqualValues(1, revs[0]["revision"])
	s.EqualValues(2, revs[1]["revision"])
}

func (s *CommandSuite) TestRollback() {
	s.helm.On("Rollback", mock.Anything, "observability", 2).Return(nil).Once()
	s.helm.On("Close").Return(nil).Once()

	_, err := s.run("rollback", "2", "--yes")
	s.NoError(err)
}

func (s *CommandSuite) TestRollbackToPrevious() {
	s.helm.On("Rollback", mock.Anything, "observability", 0).Return(nil).Once()
	s.helm.On("Close").Return(nil).Once()

	_, err := s.run("rollback", "-y")
	s.NoError(err)
}

func (s *CommandSuite) TestRollbackInvalidRevision() {
	_, err := s.run("rollback", "abc", "--yes")
	s.ErrorContains(err, "revision must be a positive integer")
}
