package vault

import "time"

// ProgressFunc observes pipeline progress: a percentage in [0,100] and a
// human-readable stage message. Calls arrive at bounded cadence, not per
// frame.
type ProgressFunc func(percent float64, message string)

// progressMeter throttles and monotonizes progress reporting. Stage
// transitions and completion always get through; intermediate updates are
// rate-limited.
type progressMeter struct {
	fn       ProgressFunc
	interval time.Duration
	lastAt   time.Time
	lastPct  float64
	lastMsg  string
}

func newProgressMeter(fn ProgressFunc) *progressMeter {
	return &progressMeter{fn: fn, interval: 150 * time.Millisecond}
}

func (m *progressMeter) report(percent float64, message string) {
	if m.fn == nil {
		return
	}
	if percent < m.lastPct {
		percent = m.lastPct
	}
	now := time.Now()
	stageChange := message != m.lastMsg
	final := percent >= 100
	if !stageChange && !final && now.Sub(m.lastAt) < m.interval {
		return
	}
	m.lastAt = now
	m.lastPct = percent
	m.lastMsg = message
	m.fn(percent, message)
}
