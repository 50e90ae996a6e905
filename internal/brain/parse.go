// Decision parsing — tolerant of fenced code blocks and surrounding
// prose, strict about the JSON shape.
package brain

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"wildmind/internal/action"
	"wildmind/internal/agent"
)

// Decision is the structured output of the external service.
type Decision struct {
	Intent     string         `json:"intent"`
	Plan       []string       `json:"plan"`
	NextAction action.Command `json:"next_action"`
	Bubble     agent.Bubble   `json:"bubble"`
}

const decisionSchemaJSON = `{
  "type": "object",
  "required": ["intent", "next_action"],
  "properties": {
    "intent": {"type": "string"},
    "plan": {"type": "array", "items": {"type": "string"}},
    "next_action": {
      "type": "object",
      "required": ["name"],
      "properties": {
        "name": {"type": "string", "minLength": 1},
        "args": {"type": "object"}
      }
    },
    "bubble": {
      "type": "object",
      "properties": {
        "text": {"type": "string"},
        "emoji": {"type": "string"}
      }
    }
  }
}`

var decisionSchema = jsonschema.MustCompileString("decision.schema.json", decisionSchemaJSON)

// ParseDecision extracts and validates a Decision from raw response
// text. Tolerates a fenced code block wrapper with an optional
// language tag and prose around the JSON object.
func ParseDecision(raw string) (*Decision, error) {
	text := stripCodeFence(raw)

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end <= start {
		return nil, fmt.Errorf("no JSON object found in response")
	}
	jsonStr := text[start : end+1]

	var shape any
	if err := json.Unmarshal([]byte(jsonStr), &shape); err != nil {
		return nil, fmt.Errorf("parse decision: %w", err)
	}
	if err := decisionSchema.Validate(shape); err != nil {
		return nil, fmt.Errorf("invalid decision shape: %w", err)
	}

	var dec Decision
	if err := json.Unmarshal([]byte(jsonStr), &dec); err != nil {
		return nil, fmt.Errorf("parse decision: %w", err)
	}
	return &dec, nil
}

// stripCodeFence removes a surrounding ```-fence, keeping the body.
func stripCodeFence(s string) string {
	t := strings.TrimSpace(s)
	if !strings.HasPrefix(t, "```") {
		return s
	}
	if idx := strings.Index(t, "\n"); idx != -1 {
		t = t[idx+1:]
	} else {
		return s
	}
	if idx := strings.LastIndex(t, "```"); idx != -1 {
		t = t[:idx]
	}
	return t
}
