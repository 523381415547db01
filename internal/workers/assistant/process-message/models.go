// internal/workers/assistant/process-message/models.go
package processmessage

import "assistant-workers/internal/models"

// Input is the validated assistant request carried in the job variables.
type Input = models.AssistantRequest

type Output struct {
	AssistantResponse *models.AssistantResponse `json:"assistantResponse"`
}
