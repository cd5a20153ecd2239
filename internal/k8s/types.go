package k8s

import "fmt"

// PodInfo contains information about a pod
type PodInfo struct {
	Name       string   `json:"name"`
	Namespace  string   `json:"namespace"`
	Containers []string `json:"containers"`
	Phase      string   `json:"phase"`
	Ready      bool     `json:"ready"`
	Restarts   int32    `json:"restarts"`
}

// PodStatus summarizes the pods of a release.
type PodStatus struct {
	Total int `json:"total"`
	Ready int `json:"ready"`
}

// String renders the summary as ready/total.
func (s PodStatus) String() string {
	return fmt.Sprintf("%d/%d", s.Ready, s.Total)
}
