// Package audit records every processed assistant interaction in Postgres.
// Writes are best effort from the caller's point of view; a failed insert
// never blocks a response.
package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"assistant-workers/internal/common/database"
	"assistant-workers/internal/common/logger"
)

// Record is one processed interaction.
type Record struct {
	ID           string
	TenantID     string
	UserID       string
	Message      string
	Intent       string
	Confidence   float64
	ResponseType string
	ResponseText string
	IsVoice      bool
	CreatedAt    time.Time
}

type Store struct {
	db     *database.PostgresClient
	logger logger.Logger
}

func NewStore(db *database.PostgresClient, log logger.Logger) *Store {
	return &Store{
		db:     db,
		logger: log.WithFields(map[string]interface{}{"component": "audit-store"}),
	}
}

const insertInteraction = `
	INSERT INTO assistant_interactions
		(id, tenant_id, user_id, message, intent, confidence, response_type, response_text, is_voice, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

// Write inserts one interaction row. ID and CreatedAt are filled in when
// empty so callers only provide the domain fields.
func (s *Store) Write(ctx context.Context, rec *Record) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.Exec(ctx, insertInteraction,
		rec.ID,
		rec.TenantID,
		rec.UserID,
		rec.Message,
		rec.Intent,
		rec.Confidence,
		rec.ResponseType,
		rec.ResponseText,
		rec.IsVoice,
		rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert interaction: %w", err)
	}

	s.logger.Debug("interaction recorded", map[string]interface{}{
		"tenantId": rec.TenantID,
		"intent":   rec.Intent,
	})
	return nil
}

// RecentByTenant returns the newest interactions for a tenant, most recent
// first, for support and debugging queries.
func (s *Store) RecentByTenant(ctx context.Context, tenantID string, limit int) ([]Record, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, tenant_id, user_id, message, intent, confidence, response_type, response_text, is_voice, created_at
		FROM assistant_interactions
		WHERE tenant_id = $1
		ORDER BY created_at DESC
		LIMIT $2`, tenantID, limit)
	if err != nil {
		return nil, fmt.Errorf("query interactions: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.TenantID, &rec.UserID, &rec.Message, &rec.Intent,
			&rec.Confidence, &rec.ResponseType, &rec.ResponseText, &rec.IsVoice, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan interaction: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
