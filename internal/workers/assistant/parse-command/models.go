// internal/workers/assistant/parse-command/models.go
package parsecommand

import "assistant-workers/internal/assistant/command"

type Input struct {
	Message  string `json:"message"`
	TenantID string `json:"tenantId"`
	UserID   string `json:"userId"`
}

type Output struct {
	Intent              string            `json:"intent"`
	Confidence          int               `json:"confidence"`
	Entities            command.EntityBag `json:"entities"`
	QuickActionEligible bool              `json:"quickActionEligible"`
}
