package backend

import (
	"context"
	"fmt"
	"strings"

	"assistant-workers/internal/models"
)

// Conversational is the contract the orchestrator programs against. The
// production implementation is GenAIClient; tests substitute a mock.
type Conversational interface {
	// IsConfigured reports whether a credential is currently set. When false
	// the orchestrator skips the backend entirely.
	IsConfigured() bool

	// SetAPIKey swaps the process-wide credential. Safe for concurrent use
	// with in-flight requests.
	SetAPIKey(key string)

	// FetchContext retrieves tenant business context used to enrich a query.
	// A nil context with nil error means no context was available.
	FetchContext(ctx context.Context, tenantID, message string) (*EnhancedContext, error)

	// ProcessQuery sends the message with its history and optional enhanced
	// context and returns the synthesized answer.
	ProcessQuery(ctx context.Context, req *QueryRequest) (*QueryResult, error)
}

// EnhancedContext is a business snapshot for one tenant, fetched per message
// and cached briefly.
type EnhancedContext struct {
	Summary    string                 `json:"summary"`
	Highlights []string               `json:"highlights,omitempty"`
	Data       map[string]interface{} `json:"data,omitempty"`
}

// AsTurn renders the context as a synthetic assistant turn so it can ride
// along in the conversation history without a dedicated request field.
func (c *EnhancedContext) AsTurn() models.ConversationTurn {
	parts := []string{c.Summary}
	for _, h := range c.Highlights {
		parts = append(parts, fmt.Sprintf("- %s", h))
	}
	return models.ConversationTurn{
		Speaker: models.SpeakerAssistant,
		Message: fmt.Sprintf("[business context] %s", strings.Join(parts, "\n")),
	}
}

// QueryRequest carries everything the backend needs for one answer.
type QueryRequest struct {
	Message  string                    `json:"message"`
	TenantID string                    `json:"tenantId"`
	UserID   string                    `json:"userId"`
	History  []models.ConversationTurn `json:"conversationHistory,omitempty"`
	Context  *EnhancedContext          `json:"context,omitempty"`
}

// QueryResult is a sanitized backend answer: Text is never empty,
// Confidence is always within [0, 1], and RequiresAction is never true
// without ActionType.
type QueryResult struct {
	Text           string                 `json:"text"`
	Confidence     float64                `json:"confidence"`
	RequiresAction bool                   `json:"requiresAction,omitempty"`
	ActionType     string                 `json:"actionType,omitempty"`
	ActionPayload  interface{}            `json:"actionPayload,omitempty"`
	Data           map[string]interface{} `json:"data,omitempty"`
}
