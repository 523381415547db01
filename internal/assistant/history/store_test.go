package history

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"assistant-workers/internal/common/config"
	"assistant-workers/internal/common/database"
	"assistant-workers/internal/common/logger"
	"assistant-workers/internal/models"
)

func newTestStore(t *testing.T, maxTurns int) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client, err := database.NewRedis(config.RedisConfig{Address: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	return NewStore(client, config.HistoryConfig{MaxTurns: maxTurns, TTLHours: 72}, logger.NewTestLogger(t)), mr
}

func TestLoadEmptyConversation(t *testing.T) {
	store, _ := newTestStore(t, 50)

	turns, err := store.Load(context.Background(), "t1", "u1")
	require.NoError(t, err)
	assert.Empty(t, turns)
}

func TestAppendAndLoadRoundTrip(t *testing.T) {
	store, _ := newTestStore(t, 50)
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, "t1", "u1",
		models.ConversationTurn{Speaker: models.SpeakerUser, Message: "show pending invoices"},
		models.ConversationTurn{Speaker: models.SpeakerAssistant, Message: "You have 3 pending invoices."},
	))

	turns, err := store.Load(ctx, "t1", "u1")
	require.NoError(t, err)
	require.Len(t, turns, 2)
	assert.Equal(t, models.SpeakerUser, turns[0].Speaker)
	assert.Equal(t, "show pending invoices", turns[0].Message)
	assert.NotEmpty(t, turns[0].Timestamp, "append stamps missing timestamps")
	assert.Equal(t, models.SpeakerAssistant, turns[1].Speaker)
}

func TestAppendTrimsOldestTurns(t *testing.T) {
	store, _ := newTestStore(t, 4)
	ctx := context.Background()

	for i := 0; i < 6; i++ {
		require.NoError(t, store.Append(ctx, "t1", "u1", models.ConversationTurn{
			Speaker: models.SpeakerUser,
			Message: fmt.Sprintf("message %d", i),
		}))
	}

	turns, err := store.Load(ctx, "t1", "u1")
	require.NoError(t, err)
	require.Len(t, turns, 4)
	assert.Equal(t, "message 2", turns[0].Message)
	assert.Equal(t, "message 5", turns[3].Message)
}

func TestAppendSetsExpiry(t *testing.T) {
	store, mr := newTestStore(t, 50)

	require.NoError(t, store.Append(context.Background(), "t1", "u1", models.ConversationTurn{
		Speaker: models.SpeakerUser,
		Message: "hello",
	}))

	ttl := mr.TTL("hist:t1:u1")
	assert.Equal(t, 72*time.Hour, ttl)
}

func TestConversationsAreIsolated(t *testing.T) {
	store, _ := newTestStore(t, 50)
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, "t1", "u1", models.ConversationTurn{Speaker: models.SpeakerUser, Message: "first"}))
	require.NoError(t, store.Append(ctx, "t1", "u2", models.ConversationTurn{Speaker: models.SpeakerUser, Message: "second"}))
	require.NoError(t, store.Append(ctx, "t2", "u1", models.ConversationTurn{Speaker: models.SpeakerUser, Message: "third"}))

	turns, err := store.Load(ctx, "t1", "u1")
	require.NoError(t, err)
	require.Len(t, turns, 1)
	assert.Equal(t, "first", turns[0].Message)
}

func TestLoadSkipsCorruptTurns(t *testing.T) {
	store, mr := newTestStore(t, 50)
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, "t1", "u1", models.ConversationTurn{Speaker: models.SpeakerUser, Message: "good"}))
	mr.Lpush("hist:t1:u1", "{not json")

	turns, err := store.Load(ctx, "t1", "u1")
	require.NoError(t, err)
	require.Len(t, turns, 1)
	assert.Equal(t, "good", turns[0].Message)
}

func TestLoadPropagatesRedisErrors(t *testing.T) {
	client, mock := redismock.NewClientMock()
	store := NewStore(&database.RedisClient{Client: client}, config.HistoryConfig{MaxTurns: 50, TTLHours: 72}, logger.NewTestLogger(t))

	mock.ExpectLRange("hist:t1:u1", 0, -1).SetErr(assert.AnError)

	_, err := store.Load(context.Background(), "t1", "u1")
	assert.ErrorContains(t, err, "load history")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClear(t *testing.T) {
	store, _ := newTestStore(t, 50)
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, "t1", "u1", models.ConversationTurn{Speaker: models.SpeakerUser, Message: "bye"}))
	require.NoError(t, store.Clear(ctx, "t1", "u1"))

	turns, err := store.Load(ctx, "t1", "u1")
	require.NoError(t, err)
	assert.Empty(t, turns)
}
