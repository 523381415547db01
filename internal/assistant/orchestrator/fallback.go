package orchestrator

import (
	"fmt"
	"strings"

	"assistant-workers/internal/assistant/command"
	"assistant-workers/internal/common/metrics"
	"assistant-workers/internal/models"
)

// lowConfidenceThreshold separates intents the classifier is sure enough
// about to name back to the user from those that fall through to the keyword
// buckets.
const lowConfidenceThreshold = 80

// keywordBucket maps loose topic keywords to a canned steer when no intent
// rule fired strongly enough.
type keywordBucket struct {
	reason   string
	keywords []string
	text     string
}

var fallbackBuckets = []keywordBucket{
	{
		reason:   "revenue",
		keywords: []string{"revenue", "sales"},
		text:     "I can help with sales figures. Try asking for a sales summary, today's collection, or your top customers.",
	},
	{
		reason:   "customer",
		keywords: []string{"customer", "client"},
		text:     "I can help with customers. Try \"create customer\", \"top customers\", or ask about a specific customer's outstanding balance.",
	},
	{
		reason:   "invoice",
		keywords: []string{"invoice", "payment"},
		text:     "I can help with invoices and payments. Try \"pending invoices\", \"overdue invoices\", or \"create invoice\".",
	},
}

const genericFallbackText = "I can help you create leads, customers, quotations and invoices, or answer questions about collections, outstanding amounts and sales. What would you like to do?"

// buildFallback produces the terminal local response when the conversational
// path is unavailable or failed. The cascade is fixed: a recognized but
// weakly-classified intent asks for more detail at 0.5, a keyword bucket
// steers at 0.4, and the generic capability text closes at 0.3. Fallback
// responses never request an action.
func buildFallback(cmd *command.ParsedCommand, message string) *models.AssistantResponse {
	if cmd.Type != command.IntentUnknown && cmd.Confidence < lowConfidenceThreshold {
		metrics.Fallbacks.WithLabelValues("low_confidence").Inc()
		return &models.AssistantResponse{
			Text:       fmt.Sprintf("It looks like you want help with %s. Could you give me a bit more detail?", cmd.Type.Humanize()),
			Type:       models.ResponseTypeConversation,
			Confidence: 0.5,
			Command:    cmd,
		}
	}

	lowered := strings.ToLower(message)
	for _, bucket := range fallbackBuckets {
		for _, keyword := range bucket.keywords {
			if strings.Contains(lowered, keyword) {
				metrics.Fallbacks.WithLabelValues(bucket.reason).Inc()
				return &models.AssistantResponse{
					Text:       bucket.text,
					Type:       models.ResponseTypeConversation,
					Confidence: 0.4,
					Command:    cmd,
				}
			}
		}
	}

	metrics.Fallbacks.WithLabelValues("generic").Inc()
	return &models.AssistantResponse{
		Text:       genericFallbackText,
		Type:       models.ResponseTypeConversation,
		Confidence: 0.3,
		Command:    cmd,
	}
}
