package manager

import (
	"time"

	"podd/pkg/types"
)

// validTransitions is the lifecycle state machine. Anything not listed is
// rejected by the update path. failed -> terminated is permitted so a
// failed pod's remote resources can still be torn down.
var validTransitions = map[types.Status][]types.Status{
	types.StatusInitializing: {types.StatusRunning, types.StatusFailed, types.StatusTerminated},
	types.StatusRunning:      {types.StatusStopped, types.StatusFailed, types.StatusTerminated},
	types.StatusStopped:      {types.StatusInitializing, types.StatusRunning, types.StatusTerminated},
	types.StatusFailed:       {types.StatusTerminated},
	types.StatusTerminated:   {},
}

func canTransition(from, to types.Status) bool {
	if from == to {
		return true
	}
	for _, s := range validTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// podState is the registry's internal record: the externally visible pod
// plus monitor bookkeeping that never leaves this package.
type podState struct {
	rec types.Pod

	// consecutive provider poll failures; reset on any success.
	failures int
	// number of provider log lines already absorbed into rec.SetupLogs.
	lastLogCount int
	// last time a cost_update event was broadcast for this pod.
	lastCostEvent time.Time
	// start of the current initializing phase (creation or resume).
	setupStarted time.Time
	// true while a poll goroutine is in flight for this pod.
	polling bool
}

// copyRec returns a deep copy safe to hand to callers.
func (p *podState) copyRec() types.Pod {
	out := p.rec
	out.SetupLogs = make([]string, len(p.rec.SetupLogs))
	copy(out.SetupLogs, p.rec.SetupLogs)
	return out
}

const maxSetupLogs = 100

// addLog appends a timestamped setup log line, keeping the newest
// maxSetupLogs entries.
func (p *podState) addLog(now time.Time, line string) {
	p.rec.SetupLogs = append(p.rec.SetupLogs, "["+now.Format("15:04:05")+"] "+line)
	if n := len(p.rec.SetupLogs); n > maxSetupLogs {
		p.rec.SetupLogs = p.rec.SetupLogs[n-maxSetupLogs:]
	}
}

// formatUptime renders elapsed time as HH:MM:SS for status events.
func formatUptime(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int(d.Seconds())
	return timePad(secs/3600) + ":" + timePad(secs%3600/60) + ":" + timePad(secs%60)
}

func timePad(n int) string {
	if n < 10 {
		return "0" + string(rune('0'+n))
	}
	// minutes/seconds never exceed 59; hours may grow arbitrarily
	out := ""
	for n > 0 {
		out = string(rune('0'+n%10)) + out
		n /= 10
	}
	return out
}
