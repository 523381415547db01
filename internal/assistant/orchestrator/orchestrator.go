// Package orchestrator routes each assistant message through exactly one of
// three paths: a deterministic quick action, the conversational backend, or
// the local fallback cascade. Respond always yields a well-formed response;
// backend failures degrade to fallback and are never surfaced to callers.
package orchestrator

import (
	"context"
	"errors"

	"assistant-workers/internal/assistant/backend"
	"assistant-workers/internal/assistant/command"
	commonerrors "assistant-workers/internal/common/errors"
	"assistant-workers/internal/common/logger"
	"assistant-workers/internal/common/metrics"
	"assistant-workers/internal/models"
)

// Response path labels for metrics.
const (
	pathQuickAction  = "quick_action"
	pathConversation = "conversation"
	pathFallback     = "fallback"
)

type Orchestrator struct {
	backend backend.Conversational
	logger  logger.Logger
}

// New builds an orchestrator. conv may be nil; every message then resolves
// via quick action or fallback.
func New(conv backend.Conversational, log logger.Logger) *Orchestrator {
	return &Orchestrator{
		backend: conv,
		logger:  log.WithFields(map[string]interface{}{"component": "orchestrator"}),
	}
}

// Respond processes one message end to end. It never returns an error: the
// worst outcome for the caller is a generic fallback response.
func (o *Orchestrator) Respond(ctx context.Context, req *models.AssistantRequest) *models.AssistantResponse {
	cmd := command.Parse(req.Message)
	metrics.CommandsClassified.WithLabelValues(string(cmd.Type)).Inc()

	log := o.logger.WithFields(map[string]interface{}{
		"tenantId": req.TenantID,
		"userId":   req.UserID,
		"intent":   string(cmd.Type),
	})

	if command.EligibleForQuickAction(cmd) {
		log.Info("quick action", map[string]interface{}{"confidence": cmd.Confidence})
		metrics.MessagesProcessed.WithLabelValues(pathQuickAction).Inc()
		return buildQuickAction(cmd)
	}

	if response := o.tryConversation(ctx, req, cmd, log); response != nil {
		metrics.MessagesProcessed.WithLabelValues(pathConversation).Inc()
		return response
	}

	metrics.MessagesProcessed.WithLabelValues(pathFallback).Inc()
	return buildFallback(cmd, req.Message)
}

// tryConversation attempts the backend path. A nil return means the caller
// should fall back; every backend error ends up here as nil after logging.
func (o *Orchestrator) tryConversation(ctx context.Context, req *models.AssistantRequest, cmd *command.ParsedCommand, log logger.Logger) *models.AssistantResponse {
	if o.backend == nil || !o.backend.IsConfigured() {
		log.Debug("backend unconfigured, using fallback", nil)
		return nil
	}

	// History is read-only input; synthetic turns go on a local copy only.
	history := make([]models.ConversationTurn, len(req.ConversationHistory))
	copy(history, req.ConversationHistory)

	enhanced, err := o.backend.FetchContext(ctx, req.TenantID, req.Message)
	if err != nil {
		stdErr := commonerrors.NewContextFetchFailedError(err)
		log.Warn("context fetch failed, using fallback", map[string]interface{}{
			"errorCode": string(stdErr.Code),
			"error":     err.Error(),
		})
		return nil
	}
	if enhanced != nil {
		history = append(history, enhanced.AsTurn())
	}

	result, err := o.backend.ProcessQuery(ctx, &backend.QueryRequest{
		Message:  req.Message,
		TenantID: req.TenantID,
		UserID:   req.UserID,
		History:  history,
		Context:  enhanced,
	})
	if err != nil {
		stdErr := classifyBackendError(err)
		log.Warn("backend query failed, using fallback", map[string]interface{}{
			"errorCode": string(stdErr.Code),
			"error":     err.Error(),
		})
		return nil
	}

	requiresAction := result.RequiresAction && result.ActionType != ""
	response := &models.AssistantResponse{
		Text:           result.Text,
		Type:           models.ResponseTypeConversation,
		Confidence:     result.Confidence,
		Command:        cmd,
		RequiresAction: requiresAction,
		Data:           result.Data,
	}
	if requiresAction {
		response.ActionType = result.ActionType
		response.ActionPayload = result.ActionPayload
	}
	return response
}

// classifyBackendError maps the backend's sentinel errors onto the shared
// error taxonomy so degraded paths log a stable error code.
func classifyBackendError(err error) *commonerrors.StandardError {
	switch {
	case errors.Is(err, backend.ErrUnconfigured):
		return commonerrors.NewBackendUnconfiguredError()
	case errors.Is(err, backend.ErrTimeout):
		return commonerrors.NewBackendTimeoutError()
	default:
		return commonerrors.NewBackendRequestFailedError(err)
	}
}
