package backend

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"assistant-workers/internal/common/config"
	"assistant-workers/internal/common/database"
	commonhttp "assistant-workers/internal/common/http"
	"assistant-workers/internal/common/logger"
	"assistant-workers/internal/common/metrics"
)

var (
	ErrUnconfigured  = errors.New("BACKEND_UNCONFIGURED")
	ErrTimeout       = errors.New("BACKEND_TIMEOUT")
	ErrRequestFailed = errors.New("BACKEND_REQUEST_FAILED")
)

// insufficientDataText replaces a blank backend answer.
const insufficientDataText = "I don't have enough information to answer that."

// GenAIClient talks to the conversational AI backend over HTTP. The API key
// is process-wide mutable state guarded by a read/write mutex so it can be
// rotated without restarting the workers.
type GenAIClient struct {
	baseURL    string
	timeout    time.Duration
	maxRetries int
	client     *commonhttp.Client
	cache      *database.RedisClient
	cacheTTL   time.Duration
	logger     logger.Logger

	mu     sync.RWMutex
	apiKey string
}

// NewGenAIClient builds a client from config. cache may be nil; context
// fetches then always hit the backend.
func NewGenAIClient(cfg config.BackendConfig, cache *database.RedisClient, log logger.Logger) *GenAIClient {
	timeout := time.Duration(cfg.Timeout) * time.Millisecond
	return &GenAIClient{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		timeout:    timeout,
		maxRetries: cfg.MaxRetries,
		client:     commonhttp.NewClient(timeout),
		cache:      cache,
		cacheTTL:   time.Duration(cfg.ContextCacheTTL) * time.Second,
		logger:     log.WithFields(map[string]interface{}{"component": "genai-client"}),
		apiKey:     cfg.APIKey,
	}
}

// SetAPIKey swaps the credential used for all subsequent requests.
func (c *GenAIClient) SetAPIKey(key string) {
	c.mu.Lock()
	c.apiKey = key
	c.mu.Unlock()
}

// IsConfigured reports whether a non-empty credential is set.
func (c *GenAIClient) IsConfigured() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.apiKey != ""
}

func (c *GenAIClient) currentKey() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.apiKey
}

// FetchContext returns the tenant's business context, serving from the Redis
// cache when a recent fetch for the same tenant and message exists.
func (c *GenAIClient) FetchContext(ctx context.Context, tenantID, message string) (*EnhancedContext, error) {
	if !c.IsConfigured() {
		return nil, ErrUnconfigured
	}

	key := contextCacheKey(tenantID, message)
	if c.cache != nil {
		if cached, err := c.cache.Get(ctx, key); err == nil {
			var enhanced EnhancedContext
			if err := json.Unmarshal([]byte(cached), &enhanced); err == nil {
				return &enhanced, nil
			}
		}
	}

	var enhanced EnhancedContext
	err := c.postJSON(ctx, "/api/ai/context", "fetch_context", map[string]interface{}{
		"tenantId": tenantID,
		"message":  message,
	}, &enhanced)
	if err != nil {
		return nil, err
	}

	if enhanced.Summary == "" && len(enhanced.Highlights) == 0 && len(enhanced.Data) == 0 {
		return nil, nil
	}

	if c.cache != nil {
		if raw, err := json.Marshal(&enhanced); err == nil {
			if err := c.cache.Set(ctx, key, string(raw), c.cacheTTL); err != nil {
				c.logger.Warn("context cache write failed", map[string]interface{}{
					"tenantId": tenantID,
					"error":    err.Error(),
				})
			}
		}
	}

	return &enhanced, nil
}

// ProcessQuery sends the message to the backend and sanitizes the answer:
// blank text becomes a stock insufficient-data sentence at confidence 0.1,
// and an out-of-range confidence is clamped to 0.5.
func (c *GenAIClient) ProcessQuery(ctx context.Context, req *QueryRequest) (*QueryResult, error) {
	if !c.IsConfigured() {
		return nil, ErrUnconfigured
	}

	var apiResponse struct {
		Text           string                 `json:"text"`
		Confidence     float64                `json:"confidence"`
		RequiresAction bool                   `json:"requiresAction"`
		ActionType     string                 `json:"actionType"`
		ActionPayload  interface{}            `json:"actionPayload"`
		Data           map[string]interface{} `json:"data"`
	}
	if err := c.postJSON(ctx, "/api/ai/query", "process_query", req, &apiResponse); err != nil {
		return nil, err
	}

	if strings.TrimSpace(apiResponse.Text) == "" {
		apiResponse.Text = insufficientDataText
		apiResponse.Confidence = 0.1
	}
	if apiResponse.Confidence < 0.0 || apiResponse.Confidence > 1.0 {
		apiResponse.Confidence = 0.5
	}
	// An action without a type is not actionable.
	if apiResponse.RequiresAction && strings.TrimSpace(apiResponse.ActionType) == "" {
		apiResponse.RequiresAction = false
		apiResponse.ActionPayload = nil
	}

	c.logger.Debug("backend query completed", map[string]interface{}{
		"tenantId":       req.TenantID,
		"confidence":     apiResponse.Confidence,
		"requiresAction": apiResponse.RequiresAction,
	})

	return &QueryResult{
		Text:           apiResponse.Text,
		Confidence:     apiResponse.Confidence,
		RequiresAction: apiResponse.RequiresAction,
		ActionType:     apiResponse.ActionType,
		ActionPayload:  apiResponse.ActionPayload,
		Data:           apiResponse.Data,
	}, nil
}

// postJSON issues one backend call with exponential backoff retries. The
// request body is rebuilt per attempt and the credential is re-read per
// attempt so a concurrent SetAPIKey takes effect mid-retry.
func (c *GenAIClient) postJSON(ctx context.Context, path, operation string, payload, out interface{}) error {
	start := time.Now()
	defer func() {
		metrics.BackendRequestDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	}()

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%w: marshal: %v", ErrRequestFailed, err)
	}

	var resp *http.Response
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(100*(1<<(attempt-1))) * time.Millisecond
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ErrTimeout
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("%w: %v", ErrRequestFailed, err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.currentKey())

		resp, lastErr = c.client.Do(req)
		if lastErr == nil {
			if resp.StatusCode == http.StatusOK {
				break
			}
			resp.Body.Close()
			lastErr = fmt.Errorf("status %d", resp.StatusCode)
			resp = nil
		}

		if ctx.Err() != nil {
			return ErrTimeout
		}
	}

	if lastErr != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return ErrTimeout
		}
		return fmt.Errorf("%w: %v", ErrRequestFailed, lastErr)
	}
	if resp == nil {
		return fmt.Errorf("%w: no successful response after retries", ErrRequestFailed)
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode: %v", ErrRequestFailed, err)
	}
	return nil
}

func contextCacheKey(tenantID, message string) string {
	digest := sha256.Sum256([]byte(message))
	return "ctxcache:" + tenantID + ":" + hex.EncodeToString(digest[:8])
}
