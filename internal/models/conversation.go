package models

// Speaker values for conversation turns.
const (
	SpeakerUser      = "user"
	SpeakerAssistant = "assistant"
)

// Response types produced by the orchestrator.
const (
	ResponseTypeQuickCommand = "quick_command"
	ResponseTypeConversation = "conversation"
)

// ConversationTurn is a single utterance in a tenant/user conversation.
// Turns are ordered chronologically; the order is significant because the
// history is replayed verbatim to the conversational backend.
type ConversationTurn struct {
	Speaker   string `json:"speaker"` // "user" or "assistant"
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// AssistantRequest is one incoming message plus its conversational scope.
// ConversationHistory is read-only input: the orchestrator appends synthetic
// turns only to a local copy.
type AssistantRequest struct {
	Message             string             `json:"message"`
	TenantID            string             `json:"tenantId"`
	UserID              string             `json:"userId"`
	ConversationHistory []ConversationTurn `json:"conversationHistory,omitempty"`
	IsVoice             bool               `json:"isVoice,omitempty"`
	Context             string             `json:"context,omitempty"`
}
