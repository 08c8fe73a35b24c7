package manager

import "strings"

// estimateProgress derives a setup percentage from log content using the
// bootstrap script's milestones. Capped at 95 until the workload is
// confirmed reachable.
func estimateProgress(logs []string) float64 {
	if len(logs) == 0 {
		return 5
	}
	progress := 10.0
	text := strings.ToLower(strings.Join(logs, " "))

	milestone := func(substr string, pct float64) {
		if strings.Contains(text, substr) && pct > progress {
			progress = pct
		}
	}
	milestone("install", 20)
	milestone("clone", 30)
	milestone("download", 40)
	milestone("model", 60)
	milestone("starting workload", 90)
	milestone("running", 90)

	if progress > 95 {
		progress = 95
	}
	return progress
}
