package action

// Action names — the closed set the validator accepts.
const (
	ActionCollect   = "collect"
	ActionDrop      = "drop"
	ActionEat       = "eat"
	ActionMoveTo    = "moveTo"
	ActionSearchFor = "searchFor"
	ActionAddFuel   = "addFuel"
	ActionSleep     = "sleep"
	ActionWander    = "wander"
)

// Command is a structured action request: a name from the closed set
// plus its arguments as decoded JSON values.
type Command struct {
	Name string         `json:"name"`
	Args map[string]any `json:"args,omitempty"`
}

// argString returns a string argument, or "" when absent or not a
// string.
func (c Command) argString(key string) string {
	s, _ := c.Args[key].(string)
	return s
}

// argNumber returns a numeric argument. JSON numbers decode as
// float64; integers sent by stricter callers are widened too.
func (c Command) argNumber(key string) (float64, bool) {
	switch v := c.Args[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	}
	return 0, false
}

// hasArg reports whether the argument is present at all.
func (c Command) hasArg(key string) bool {
	_, ok := c.Args[key]
	return ok
}
