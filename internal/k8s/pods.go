package k8s

import (
	"context"
	"fmt"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// ListPods returns the pods matching selector.
func (c *Client) ListPods(ctx context.Context, selector string) ([]PodInfo, error) {
	pods, err := c.clientset.CoreV1().Pods(c.namespace).List(ctx, metav1.ListOptions{
		LabelSelector: selector,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list pods: %w", err)
	}

	infos := make([]PodInfo, 0, len(pods.Items))
	for _, pod := range pods.Items {
		infos = append(infos, toPodInfo(&pod))
	}
	return infos, nil
}

// GetPodStatus counts the ready pods among those matching selector.
func (c *Client) GetPodStatus(ctx context.Context, selector string) (PodStatus, error) {
	pods, err := c.ListPods(ctx, selector)
	if err != nil {
		return PodStatus{}, err
	}

	status := PodStatus{Total: len(pods)}
	for _, pod := range pods {
		if pod.Ready {
			status.Ready++
		}
	}
	return status, nil
}

func toPodInfo(pod *corev1.Pod) PodInfo {
	info := PodInfo{
		Name:       pod.Name,
		Namespace:  pod.Namespace,
		Containers: make([]string, 0, len(pod.Spec.Containers)),
		Phase:      string(pod.Status.Phase),
	}
	for _, container := range pod.Spec.Containers {
		info.Containers = append(info.Containers, container.Name)
	}

	info.Ready = pod.Status.Phase == corev1.PodRunning
	for _, cs := range pod.Status.ContainerStatuses {
		info.Restarts += cs.RestartCount
		if !cs.Ready {
			info.Ready = false
		}
	}
	return info
}
