package validation

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// assistantRequestSchema validates the job payload handed to the
// process-message worker. Extra workflow variables are allowed; only the
// assistant fields are constrained.
const assistantRequestSchema = `{
  "type": "object",
  "required": ["message", "tenantId", "userId"],
  "properties": {
    "message":  {"type": "string", "minLength": 1},
    "tenantId": {"type": "string", "minLength": 1},
    "userId":   {"type": "string", "minLength": 1},
    "isVoice":  {"type": "boolean"},
    "context":  {"type": "string"},
    "conversationHistory": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["speaker", "message"],
        "properties": {
          "speaker":   {"type": "string", "enum": ["user", "assistant"]},
          "message":   {"type": "string"},
          "timestamp": {"type": "string"}
        }
      }
    }
  }
}`

var requestSchema = gojsonschema.NewStringLoader(assistantRequestSchema)

// ValidateAssistantRequest checks a raw JSON job payload against the
// assistant request schema and returns a single aggregated error.
func ValidateAssistantRequest(raw []byte) error {
	result, err := gojsonschema.Validate(requestSchema, gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return fmt.Errorf("schema validation: %w", err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return fmt.Errorf("invalid assistant request: %s", strings.Join(msgs, "; "))
	}
	return nil
}
