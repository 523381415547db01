// internal/workers/assistant/process-message/handler.go
package processmessage

import (
	"context"
	"encoding/json"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"assistant-workers/internal/assistant/audit"
	"assistant-workers/internal/assistant/history"
	"assistant-workers/internal/assistant/orchestrator"
	commonerrors "assistant-workers/internal/common/errors"
	"assistant-workers/internal/common/logger"
	"assistant-workers/internal/common/metrics"
	"assistant-workers/internal/common/observability"
	"assistant-workers/internal/common/validation"
	"assistant-workers/internal/models"
)

const (
	TaskType = "process-message"
)

// Handler runs one assistant message through the orchestrator and manages
// the surrounding persistence: history load when the request carries none,
// history append afterwards, and a best-effort audit record. Persistence
// failures never fail the job; the response is the contract.
type Handler struct {
	config       *Config
	orchestrator *orchestrator.Orchestrator
	history      *history.Store
	audit        *audit.Store
	errorHandler *commonerrors.ErrorHandler
	logger       logger.Logger
	obs          *observability.Observability
}

// NewHandler builds the worker. historyStore and auditStore may be nil;
// the corresponding step is then skipped.
func NewHandler(config *Config, orch *orchestrator.Orchestrator, historyStore *history.Store, auditStore *audit.Store, log logger.Logger) *Handler {
	workerLog := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		orchestrator: orch,
		history:      historyStore,
		audit:        auditStore,
		errorHandler: commonerrors.NewErrorHandler(workerLog),
		logger:       workerLog,
	}
}

// SetObservability attaches the OTel meter set. Optional; nothing is
// recorded when unset.
func (h *Handler) SetObservability(obs *observability.Observability) {
	h.obs = obs
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	start := time.Now()
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	if err := validation.ValidateAssistantRequest([]byte(job.Variables)); err != nil {
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(commonerrors.ErrCodeRequestValidationFailed)).Inc()
		h.errorHandler.HandleJobError(ctx, client, job, commonerrors.NewRequestValidationFailedError(err.Error()))
		return
	}

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(commonerrors.ErrCodeRequestValidationFailed)).Inc()
		h.errorHandler.HandleJobError(ctx, client, job, commonerrors.NewRequestValidationFailedError(err.Error()))
		return
	}

	output := h.execute(ctx, &input)

	h.completeJob(client, job, output)
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
}

// execute always produces a response; degraded paths surface as fallback
// answers, never as errors.
func (h *Handler) execute(ctx context.Context, input *Input) *Output {
	start := time.Now()
	log := h.logger.WithFields(map[string]interface{}{
		"tenantId": input.TenantID,
		"userId":   input.UserID,
	})

	// A request without history gets the stored conversation. A load failure
	// degrades to an empty history.
	if len(input.ConversationHistory) == 0 && h.history != nil {
		stored, err := h.history.Load(ctx, input.TenantID, input.UserID)
		if err != nil {
			stdErr := commonerrors.NewHistoryLoadFailedError(err)
			log.Warn("history load failed", map[string]interface{}{
				"errorCode": string(stdErr.Code),
				"error":     err.Error(),
			})
		} else {
			input.ConversationHistory = stored
		}
	}

	response := h.orchestrator.Respond(ctx, input)

	if h.history != nil {
		err := h.history.Append(ctx, input.TenantID, input.UserID,
			models.ConversationTurn{Speaker: models.SpeakerUser, Message: input.Message},
			models.ConversationTurn{Speaker: models.SpeakerAssistant, Message: response.Text},
		)
		if err != nil {
			stdErr := commonerrors.NewHistoryAppendFailedError(err)
			log.Warn("history append failed", map[string]interface{}{
				"errorCode": string(stdErr.Code),
				"error":     err.Error(),
			})
		}
	}

	if h.audit != nil {
		rec := &audit.Record{
			TenantID:     input.TenantID,
			UserID:       input.UserID,
			Message:      input.Message,
			Confidence:   response.Confidence,
			ResponseType: response.Type,
			ResponseText: response.Text,
			IsVoice:      input.IsVoice,
		}
		if response.Command != nil {
			rec.Intent = string(response.Command.Type)
		}
		if err := h.audit.Write(ctx, rec); err != nil {
			stdErr := commonerrors.NewAuditWriteFailedError(err)
			log.Warn("audit write failed", map[string]interface{}{
				"errorCode": string(stdErr.Code),
				"error":     err.Error(),
			})
		}
	}

	if h.obs != nil {
		h.obs.RecordMessageProcessed(ctx, response.Type)
		h.obs.RecordMessageDuration(ctx, time.Since(start), response.Type)
	}

	log.Info("message processed", map[string]interface{}{
		"responseType": response.Type,
		"confidence":   response.Confidence,
	})

	return &Output{AssistantResponse: response}
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)

	if err != nil {
		h.logger.Error("Failed to create complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		return
	}

	_, err = cmd.Send(context.Background())
	if err != nil {
		h.logger.Error("Failed to send complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
	}
}

// Execute method for direct usage
func (h *Handler) Execute(ctx context.Context, input *Input) *Output {
	return h.execute(ctx, input)
}
