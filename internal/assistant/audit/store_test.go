package audit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"assistant-workers/internal/common/database"
	"assistant-workers/internal/common/logger"
)

func newTestStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewStore(&database.PostgresClient{DB: db}, logger.NewTestLogger(t)), mock
}

func TestWriteFillsIDAndTimestamp(t *testing.T) {
	store, mock := newTestStore(t)

	rec := &Record{
		TenantID:     "t1",
		UserID:       "u1",
		Message:      "show top 10 debtors",
		Intent:       "top_debtors",
		Confidence:   0.8,
		ResponseType: "conversation",
		ResponseText: "Your top debtors are...",
	}

	mock.ExpectExec("INSERT INTO assistant_interactions").
		WithArgs(sqlmock.AnyArg(), "t1", "u1", "show top 10 debtors", "top_debtors", 0.8,
			"conversation", "Your top debtors are...", false, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, store.Write(context.Background(), rec))

	_, err := uuid.Parse(rec.ID)
	assert.NoError(t, err, "generated ID should be a UUID")
	assert.False(t, rec.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWritePreservesProvidedID(t *testing.T) {
	store, mock := newTestStore(t)

	id := uuid.New().String()
	created := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	rec := &Record{ID: id, TenantID: "t1", UserID: "u1", Message: "hi", Intent: "unknown", ResponseType: "conversation", CreatedAt: created}

	mock.ExpectExec("INSERT INTO assistant_interactions").
		WithArgs(id, "t1", "u1", "hi", "unknown", 0.0, "conversation", "", false, created).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, store.Write(context.Background(), rec))
	assert.Equal(t, id, rec.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWritePropagatesError(t *testing.T) {
	store, mock := newTestStore(t)

	mock.ExpectExec("INSERT INTO assistant_interactions").
		WillReturnError(errors.New("connection reset"))

	err := store.Write(context.Background(), &Record{TenantID: "t1"})
	assert.ErrorContains(t, err, "insert interaction")
}

func TestRecentByTenant(t *testing.T) {
	store, mock := newTestStore(t)

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{
		"id", "tenant_id", "user_id", "message", "intent", "confidence", "response_type", "response_text", "is_voice", "created_at",
	}).
		AddRow(uuid.New().String(), "t1", "u1", "pending invoices", "pending_invoices", 0.85, "conversation", "3 pending", false, now).
		AddRow(uuid.New().String(), "t1", "u2", "create lead for Acme", "create_lead", 0.75, "conversation", "Tell me more", true, now.Add(-time.Minute))

	mock.ExpectQuery("SELECT (.+) FROM assistant_interactions").
		WithArgs("t1", 10).
		WillReturnRows(rows)

	records, err := store.RecentByTenant(context.Background(), "t1", 10)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "pending_invoices", records[0].Intent)
	assert.Equal(t, "create_lead", records[1].Intent)
	assert.True(t, records[1].IsVoice)
	assert.NoError(t, mock.ExpectationsWereMet())
}
