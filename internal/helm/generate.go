package helm

import (
	"context"
	"fmt"
	"os"

	"github.com/prometheus-mcp-server/pmcpctl/internal/chart"
	"github.com/prometheus-mcp-server/pmcpctl/internal/logging"
)

// PrepareChart expands the embedded chart into a temporary directory the Helm
// loader can read and returns its path. The expanded tree is cached by chart
// content hash; callers receive a private copy they may remove.
func PrepareChart(ctx context.Context) (string, error) {
	key, err := chart.Hash()
	if err != nil {
		return "", fmt.Errorf("failed to hash embedded chart: %w", err)
	}

	cached, ok := charts.lookup(key)
	if ok {
		logging.FromContext(ctx).Debug("Using cached chart", "path", cached)
	} else {
		cached, err = copyToTemp(chart.FS, chart.Root, TempChartPrefix)
		if err != nil {
			return "", fmt.Errorf("failed to expand embedded chart: %w", err)
		}
		charts.store(key, cached)
	}

	dir, err := copyToTemp(os.DirFS(cached), ".", TempChartCopyPrefix)
	if err != nil {
		return "", fmt.Errorf("failed to copy cached chart: %w", err)
	}
	return dir, nil
}
