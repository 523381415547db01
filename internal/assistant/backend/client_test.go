package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"assistant-workers/internal/common/config"
	"assistant-workers/internal/common/database"
	"assistant-workers/internal/common/logger"
	"assistant-workers/internal/models"
)

func newTestClient(t *testing.T, baseURL string, cache *database.RedisClient) *GenAIClient {
	t.Helper()
	return NewGenAIClient(config.BackendConfig{
		BaseURL:         baseURL,
		APIKey:          "test-key",
		Timeout:         2000,
		MaxRetries:      2,
		ContextCacheTTL: 60,
	}, cache, logger.NewNoOpLogger())
}

func TestProcessQuery(t *testing.T) {
	var gotAuth string
	var gotBody QueryRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/ai/query", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		json.NewEncoder(w).Encode(map[string]interface{}{
			"text":       "Collections today total ₹42,000 across 6 invoices.",
			"confidence": 0.92,
			"data":       map[string]interface{}{"total": 42000},
		})
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, nil)
	result, err := client.ProcessQuery(context.Background(), &QueryRequest{
		Message:  "today's collection",
		TenantID: "t1",
		UserID:   "u1",
		History:  []models.ConversationTurn{{Speaker: models.SpeakerUser, Message: "hi"}},
	})
	require.NoError(t, err)

	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.Equal(t, "today's collection", gotBody.Message)
	assert.Equal(t, "Collections today total ₹42,000 across 6 invoices.", result.Text)
	assert.Equal(t, 0.92, result.Confidence)
	assert.Equal(t, float64(42000), result.Data["total"])
}

func TestProcessQueryDecodesActionFields(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"text":           "I can create that lead for you.",
			"confidence":     0.85,
			"requiresAction": true,
			"actionType":     "create_lead",
			"actionPayload":  map[string]interface{}{"companyName": "Acme Corp"},
		})
	}))
	defer srv.Close()

	result, err := newTestClient(t, srv.URL, nil).ProcessQuery(context.Background(), &QueryRequest{Message: "q", TenantID: "t1", UserID: "u1"})
	require.NoError(t, err)

	assert.True(t, result.RequiresAction)
	assert.Equal(t, "create_lead", result.ActionType)
	assert.Equal(t, map[string]interface{}{"companyName": "Acme Corp"}, result.ActionPayload)
}

func TestProcessQueryDropsActionWithoutType(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"text":           "ok",
			"confidence":     0.9,
			"requiresAction": true,
			"actionPayload":  map[string]interface{}{"stray": true},
		})
	}))
	defer srv.Close()

	result, err := newTestClient(t, srv.URL, nil).ProcessQuery(context.Background(), &QueryRequest{Message: "q", TenantID: "t1", UserID: "u1"})
	require.NoError(t, err)

	assert.False(t, result.RequiresAction)
	assert.Empty(t, result.ActionType)
	assert.Nil(t, result.ActionPayload)
}

func TestProcessQuerySanitizesResponse(t *testing.T) {
	tests := []struct {
		name           string
		body           map[string]interface{}
		wantText       string
		wantConfidence float64
	}{
		{
			name:           "blank text",
			body:           map[string]interface{}{"text": "   ", "confidence": 0.9},
			wantText:       insufficientDataText,
			wantConfidence: 0.1,
		},
		{
			name:           "confidence above range",
			body:           map[string]interface{}{"text": "ok", "confidence": 1.7},
			wantText:       "ok",
			wantConfidence: 0.5,
		},
		{
			name:           "confidence below range",
			body:           map[string]interface{}{"text": "ok", "confidence": -0.2},
			wantText:       "ok",
			wantConfidence: 0.5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(tt.body)
			}))
			defer srv.Close()

			result, err := newTestClient(t, srv.URL, nil).ProcessQuery(context.Background(), &QueryRequest{Message: "q", TenantID: "t1", UserID: "u1"})
			require.NoError(t, err)
			assert.Equal(t, tt.wantText, result.Text)
			assert.Equal(t, tt.wantConfidence, result.Confidence)
		})
	}
}

func TestProcessQueryUnconfigured(t *testing.T) {
	client := newTestClient(t, "http://backend.invalid", nil)
	client.SetAPIKey("")

	_, err := client.ProcessQuery(context.Background(), &QueryRequest{Message: "q"})
	assert.ErrorIs(t, err, ErrUnconfigured)

	_, err = client.FetchContext(context.Background(), "t1", "q")
	assert.ErrorIs(t, err, ErrUnconfigured)
}

func TestProcessQueryRetriesServerErrors(t *testing.T) {
	var attempts int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&attempts, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"text": "recovered", "confidence": 0.8})
	}))
	defer srv.Close()

	result, err := newTestClient(t, srv.URL, nil).ProcessQuery(context.Background(), &QueryRequest{Message: "q", TenantID: "t1", UserID: "u1"})
	require.NoError(t, err)
	assert.Equal(t, "recovered", result.Text)
	assert.Equal(t, int32(3), atomic.LoadInt32(&attempts))
}

func TestProcessQueryExhaustedRetries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv.URL, nil).ProcessQuery(context.Background(), &QueryRequest{Message: "q"})
	assert.ErrorIs(t, err, ErrRequestFailed)
}

func TestProcessQueryTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		json.NewEncoder(w).Encode(map[string]interface{}{"text": "late"})
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := newTestClient(t, srv.URL, nil).ProcessQuery(ctx, &QueryRequest{Message: "q"})
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestSetAPIKeyTakesEffect(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(map[string]interface{}{"text": "ok", "confidence": 0.7})
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, nil)
	client.SetAPIKey("rotated-key")
	assert.True(t, client.IsConfigured())

	_, err := client.ProcessQuery(context.Background(), &QueryRequest{Message: "q"})
	require.NoError(t, err)
	assert.Equal(t, "Bearer rotated-key", gotAuth)
}

func TestFetchContextUsesCache(t *testing.T) {
	mr := miniredis.RunT(t)
	cache, err := database.NewRedis(config.RedisConfig{Address: mr.Addr()})
	require.NoError(t, err)
	defer cache.Close()

	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/ai/context", r.URL.Path)
		atomic.AddInt32(&hits, 1)
		json.NewEncoder(w).Encode(EnhancedContext{
			Summary:    "3 invoices pending",
			Highlights: []string{"Acme Corp owes ₹50,000"},
		})
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, cache)

	first, err := client.FetchContext(context.Background(), "t1", "pending invoices")
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.Equal(t, "3 invoices pending", first.Summary)

	second, err := client.FetchContext(context.Background(), "t1", "pending invoices")
	require.NoError(t, err)
	require.NotNil(t, second)
	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits), "second fetch should be served from cache")

	// Different tenant misses the cache.
	_, err = client.FetchContext(context.Background(), "t2", "pending invoices")
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&hits))
}

func TestFetchContextEmptyIsNil(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{})
	}))
	defer srv.Close()

	enhanced, err := newTestClient(t, srv.URL, nil).FetchContext(context.Background(), "t1", "anything")
	require.NoError(t, err)
	assert.Nil(t, enhanced)
}

func TestEnhancedContextAsTurn(t *testing.T) {
	turn := (&EnhancedContext{
		Summary:    "busy week",
		Highlights: []string{"5 new leads"},
	}).AsTurn()

	assert.Equal(t, models.SpeakerAssistant, turn.Speaker)
	assert.Contains(t, turn.Message, "[business context] busy week")
	assert.Contains(t, turn.Message, "- 5 new leads")
}
