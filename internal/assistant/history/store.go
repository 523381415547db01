// Package history persists per-tenant, per-user conversation turns in Redis.
// Each conversation is a list keyed by tenant and user, capped to a maximum
// turn count and expired after a period of inactivity.
package history

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"assistant-workers/internal/common/config"
	"assistant-workers/internal/common/database"
	"assistant-workers/internal/common/logger"
	"assistant-workers/internal/models"
)

type Store struct {
	redis    *database.RedisClient
	maxTurns int
	ttl      time.Duration
	logger   logger.Logger
}

func NewStore(client *database.RedisClient, cfg config.HistoryConfig, log logger.Logger) *Store {
	return &Store{
		redis:    client,
		maxTurns: cfg.MaxTurns,
		ttl:      time.Duration(cfg.TTLHours) * time.Hour,
		logger:   log.WithFields(map[string]interface{}{"component": "history-store"}),
	}
}

func conversationKey(tenantID, userID string) string {
	return "hist:" + tenantID + ":" + userID
}

// Load returns all stored turns in chronological order. A missing
// conversation is an empty slice, not an error. Turns that fail to decode
// are skipped so one corrupt entry cannot poison the whole history.
func (s *Store) Load(ctx context.Context, tenantID, userID string) ([]models.ConversationTurn, error) {
	raw, err := s.redis.Client.LRange(ctx, conversationKey(tenantID, userID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}

	turns := make([]models.ConversationTurn, 0, len(raw))
	for _, item := range raw {
		var turn models.ConversationTurn
		if err := json.Unmarshal([]byte(item), &turn); err != nil {
			s.logger.Warn("skipping undecodable history turn", map[string]interface{}{
				"tenantId": tenantID,
				"userId":   userID,
				"error":    err.Error(),
			})
			continue
		}
		turns = append(turns, turn)
	}
	return turns, nil
}

// Append pushes turns onto the conversation, trims it to the configured
// maximum (oldest turns drop first) and refreshes the expiry.
func (s *Store) Append(ctx context.Context, tenantID, userID string, turns ...models.ConversationTurn) error {
	if len(turns) == 0 {
		return nil
	}

	key := conversationKey(tenantID, userID)
	values := make([]interface{}, 0, len(turns))
	for i := range turns {
		if turns[i].Timestamp == "" {
			turns[i].Timestamp = time.Now().UTC().Format(time.RFC3339)
		}
		raw, err := json.Marshal(&turns[i])
		if err != nil {
			return fmt.Errorf("encode history turn: %w", err)
		}
		values = append(values, raw)
	}

	pipe := s.redis.Client.TxPipeline()
	pipe.RPush(ctx, key, values...)
	if s.maxTurns > 0 {
		pipe.LTrim(ctx, key, int64(-s.maxTurns), -1)
	}
	if s.ttl > 0 {
		pipe.Expire(ctx, key, s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("append history: %w", err)
	}
	return nil
}

// Clear drops the whole conversation for a tenant/user pair.
func (s *Store) Clear(ctx context.Context, tenantID, userID string) error {
	return s.redis.Del(ctx, conversationKey(tenantID, userID))
}
