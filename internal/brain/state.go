// Per-agent AI bookkeeping: the pending guard, the rolling call
// history backing the rate limiter, and the bounded action log kept
// for prompt continuity. Created lazily on first reference; lives for
// the agent's lifetime.
package brain

import (
	"time"

	"wildmind/internal/action"
)

// HistoryEntry is one attempted action in the agent's bounded log.
type HistoryEntry struct {
	Action  string         `json:"action"`
	Args    map[string]any `json:"args,omitempty"`
	Pending bool           `json:"pending"`
	Result  *action.Result `json:"result,omitempty"`
	At      time.Time      `json:"at"`
}

type pendingCompletion struct {
	due    time.Time
	name   string
	result action.Result
}

// AgentAIState is the trigger engine's per-agent record.
type AgentAIState struct {
	Enabled  bool
	Pending  bool
	LastCall time.Time

	// Rolling call-timestamp window for rate limiting.
	CallTimes []time.Time

	History      []HistoryEntry
	LastDecision *Decision
	Intent       string
	Plan         []string

	// Critical-transition edge detection.
	foodCritical   bool
	warmthCritical bool
	energyCritical bool
	healthLow      bool

	completions []pendingCompletion
}

// recordCall stamps a service call into the rolling window.
func (st *AgentAIState) recordCall(now time.Time, window time.Duration) {
	st.LastCall = now
	st.CallTimes = append(st.CallTimes, now)
	st.pruneCalls(now, window)
}

// pruneCalls drops timestamps that slid out of the window.
func (st *AgentAIState) pruneCalls(now time.Time, window time.Duration) {
	cutoff := now.Add(-window)
	kept := st.CallTimes[:0]
	for _, t := range st.CallTimes {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	st.CallTimes = kept
}

// callAllowed applies the sliding-window count and the minimum
// spacing between consecutive calls.
func (st *AgentAIState) callAllowed(now time.Time, window time.Duration, maxCalls int, minSpacing time.Duration) bool {
	st.pruneCalls(now, window)
	if len(st.CallTimes) >= maxCalls {
		return false
	}
	if !st.LastCall.IsZero() && now.Sub(st.LastCall) < minSpacing {
		return false
	}
	return true
}

// appendHistory adds an entry, trimming the log to limit.
func (st *AgentAIState) appendHistory(e HistoryEntry, limit int) {
	st.History = append(st.History, e)
	if limit > 0 && len(st.History) > limit {
		st.History = st.History[len(st.History)-limit:]
	}
}

// resolveHistory records the result onto the most recent pending
// entry for the action, or appends a bare entry if none matches.
func (st *AgentAIState) resolveHistory(name string, res action.Result, at time.Time, limit int) {
	for i := len(st.History) - 1; i >= 0; i-- {
		if st.History[i].Pending && st.History[i].Action == name {
			r := res
			st.History[i].Pending = false
			st.History[i].Result = &r
			return
		}
	}
	r := res
	st.appendHistory(HistoryEntry{Action: name, Result: &r, At: at}, limit)
}

// recentOutcomes returns up to n resolved entries, newest last.
func (st *AgentAIState) recentOutcomes(n int) []HistoryEntry {
	var out []HistoryEntry
	for _, e := range st.History {
		if e.Result != nil {
			out = append(out, e)
		}
	}
	if len(out) > n {
		out = out[len(out)-n:]
	}
	return out
}
