// internal/workers/assistant/parse-command/handler_test.go
package parsecommand

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLogger implements the Logger interface for testing
type TestLogger struct {
	t      *testing.T
	fields map[string]interface{}
}

func NewTestLogger(t *testing.T) *TestLogger {
	return &TestLogger{
		t:      t,
		fields: make(map[string]interface{}),
	}
}

func (l *TestLogger) Info(msg string, fields map[string]interface{}) {
	l.t.Logf("INFO: %s %v", msg, fields)
}

func (l *TestLogger) Error(msg string, fields map[string]interface{}) {
	l.t.Logf("ERROR: %s %v", msg, fields)
}

func (l *TestLogger) With(fields map[string]interface{}) Logger {
	newLogger := &TestLogger{
		t:      l.t,
		fields: make(map[string]interface{}),
	}
	for k, v := range l.fields {
		newLogger.fields[k] = v
	}
	for k, v := range fields {
		newLogger.fields[k] = v
	}
	return newLogger
}

func createTestConfig() *Config {
	return &Config{
		Timeout: 5 * time.Second,
	}
}

func TestHandler_Execute_Success(t *testing.T) {
	tests := []struct {
		name           string
		message        string
		wantIntent     string
		wantConfidence int
		wantEligible   bool
	}{
		{
			name:           "creation command",
			message:        "create lead for Acme Corp",
			wantIntent:     "create_lead",
			wantConfidence: 75,
			wantEligible:   false,
		},
		{
			name:           "report command with limit",
			message:        "show top 10 debtors",
			wantIntent:     "top_debtors",
			wantConfidence: 80,
			wantEligible:   false,
		},
		{
			name:           "unclassifiable message",
			message:        "call 9876543210 now",
			wantIntent:     "unknown",
			wantConfidence: 0,
			wantEligible:   false,
		},
	}

	handler := NewHandler(createTestConfig(), NewTestLogger(t))

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output, err := handler.Execute(context.Background(), &Input{
				Message:  tt.message,
				TenantID: "t1",
				UserID:   "u1",
			})
			require.NoError(t, err)

			assert.Equal(t, tt.wantIntent, output.Intent)
			assert.Equal(t, tt.wantConfidence, output.Confidence)
			assert.Equal(t, tt.wantEligible, output.QuickActionEligible)
		})
	}
}

func TestHandler_Execute_ExtractsEntities(t *testing.T) {
	handler := NewHandler(createTestConfig(), NewTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{
		Message: "create lead for Acme Corp phone 9876543210 budget ₹50,000",
	})
	require.NoError(t, err)

	assert.Equal(t, "Acme Corp", output.Entities.Name)
	assert.Equal(t, "9876543210", output.Entities.Phone)
	assert.Equal(t, float64(50000), output.Entities.Amount)
}

func TestHandler_Execute_EmptyMessage(t *testing.T) {
	handler := NewHandler(createTestConfig(), NewTestLogger(t))

	_, err := handler.Execute(context.Background(), &Input{Message: ""})
	assert.ErrorIs(t, err, ErrEmptyMessage)
}
