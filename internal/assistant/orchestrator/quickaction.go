package orchestrator

import (
	"fmt"

	"assistant-workers/internal/assistant/command"
	"assistant-workers/internal/models"
)

// buildQuickAction turns an eligible creation command into a deterministic
// response that instructs the caller to perform the action. Confidence is
// the classifier weight rescaled to 0..1.
func buildQuickAction(cmd *command.ParsedCommand) *models.AssistantResponse {
	var text string
	switch cmd.Type {
	case command.IntentCreateLead:
		text = fmt.Sprintf("Creating a lead for %s.", cmd.Entities.CompanyName)
	case command.IntentCreateCustomer:
		text = fmt.Sprintf("Adding %s as a customer.", cmd.Entities.CompanyName)
	case command.IntentCreateQuotation:
		text = fmt.Sprintf("Creating a quotation for %s.", cmd.Entities.CustomerName)
	case command.IntentCreateInvoice:
		text = fmt.Sprintf("Creating an invoice for %s.", cmd.Entities.CustomerName)
	default:
		// The gate admits creation intents only; anything else is a
		// programming error upstream.
		text = fmt.Sprintf("Performing %s.", cmd.Type.Humanize())
	}

	return &models.AssistantResponse{
		Text:           text,
		Type:           models.ResponseTypeQuickCommand,
		Confidence:     float64(cmd.Confidence) / 100,
		Command:        cmd,
		RequiresAction: true,
		ActionType:     string(cmd.Type),
		ActionPayload:  cmd.Entities,
	}
}
