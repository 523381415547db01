package models

import "assistant-workers/internal/assistant/command"

// AssistantResponse is the single terminal value for every processed message.
// Type is "quick_command" or "conversation"; Confidence is on the 0..1 scale.
// RequiresAction is never true without ActionType being set.
type AssistantResponse struct {
	Text           string                 `json:"text"`
	Type           string                 `json:"type"`
	Confidence     float64                `json:"confidence"`
	Command        *command.ParsedCommand `json:"command,omitempty"`
	RequiresAction bool                   `json:"requiresAction,omitempty"`
	ActionType     string                 `json:"actionType,omitempty"`
	ActionPayload  interface{}            `json:"actionPayload,omitempty"`
	Data           interface{}            `json:"data,omitempty"`
}
