package action

import (
	"wildmind/internal/world"
)

// Result is the universal completion contract delivered to every
// action callback, exactly once per started action. A superseded
// action's callback is never invoked at all; callers must treat
// supersession, not just completion, as possible.
type Result struct {
	Success     bool          `json:"success"`
	Reason      string        `json:"reason,omitempty"`
	Interrupted bool          `json:"interrupted,omitempty"`
	// Inner carries the failure of a nested navigation step for
	// composite actions.
	Inner *Result `json:"inner,omitempty"`
	// Entity is the matched or arrived-at target where applicable
	// (searchFor success, moveTo arrival at a live entity).
	Entity *world.Entity `json:"-"`
}

// Callback receives an action's single completion result.
type Callback func(Result)

// failure builds a failed result with the given reason.
func failure(reason string) Result {
	return Result{Success: false, Reason: reason}
}

// onceCallback wraps cb so repeated invocations after the first are
// dropped. Composite chains re-enter themselves; this keeps the
// exactly-once contract at the outer boundary.
func onceCallback(cb Callback) Callback {
	fired := false
	return func(res Result) {
		if fired || cb == nil {
			return
		}
		fired = true
		cb(res)
	}
}
