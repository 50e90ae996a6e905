// Package action implements the movement/action state machine and the
// validation/execution pipeline that turns a parsed decision into
// world-state changes.
package action

// Failure reasons reported through Result.Reason. Validation and
// state-conflict reasons are recoverable; entity_dead is terminal for
// the agent's action subsystem.
const (
	ReasonEntityDead        = "entity_dead"
	ReasonHPCritical        = "hp_critical"
	ReasonTimeout           = "timeout"
	ReasonUnknownAction     = "unknown_action"
	ReasonMissingArgument   = "missing_argument"
	ReasonInvalidTarget     = "invalid_target"
	ReasonTargetNotFound    = "target_not_found"
	ReasonInventoryFull     = "inventory_full"
	ReasonItemNotFound      = "item_not_found"
	ReasonItemNotInInventory = "item_not_in_inventory"
	ReasonNoSticks          = "no_sticks"
	ReasonNoWarmthSource    = "no_warmth_source"
	ReasonNavigationFailed  = "navigation_failed"
	ReasonCollectionFailed  = "collection_failed"
	ReasonExecutionError    = "execution_error"
)

var knownReasons = map[string]struct{}{
	ReasonEntityDead:         {},
	ReasonHPCritical:         {},
	ReasonTimeout:            {},
	ReasonUnknownAction:      {},
	ReasonMissingArgument:    {},
	ReasonInvalidTarget:      {},
	ReasonTargetNotFound:     {},
	ReasonInventoryFull:      {},
	ReasonItemNotFound:       {},
	ReasonItemNotInInventory: {},
	ReasonNoSticks:           {},
	ReasonNoWarmthSource:     {},
	ReasonNavigationFailed:   {},
	ReasonCollectionFailed:   {},
	ReasonExecutionError:     {},
}

// IsKnownReason reports whether code is part of the reason taxonomy.
// The empty string (success) is known.
func IsKnownReason(code string) bool {
	if code == "" {
		return true
	}
	_, ok := knownReasons[code]
	return ok
}
