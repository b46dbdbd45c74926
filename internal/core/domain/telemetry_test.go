package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/haul/internal/core/domain"
)

func TestJobStatus(t *testing.T) {
	tests := []struct {
		name       string
		status     domain.JobStatus
		isTerminal bool
	}{
		{"Pending", domain.JobStatusPending, false},
		{"Running", domain.JobStatusRunning, false},
		{"Paused", domain.JobStatusPaused, false},
		{"Completed", domain.JobStatusCompleted, true},
		{"Cancelled", domain.JobStatusCancelled, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.isTerminal, tt.status.IsTerminal())
		})
	}
}

func TestLogLevel_String(t *testing.T) {
	tests := []struct {
		level    domain.LogLevel
		expected string
	}{
		{domain.LogLevelDebug, "DEBUG"},
		{domain.LogLevelInfo, "INFO"},
		{domain.LogLevelWarn, "WARN"},
		{domain.LogLevelError, "ERROR"},
		{domain.LogLevel(999), "INFO"}, // Default case
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.level.String())
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, domain.LogLevelDebug, domain.ParseLogLevel("debug"))
	assert.Equal(t, domain.LogLevelWarn, domain.ParseLogLevel(" WARN "))
	assert.Equal(t, domain.LogLevelWarn, domain.ParseLogLevel("warning"))
	assert.Equal(t, domain.LogLevelError, domain.ParseLogLevel("error"))
	assert.Equal(t, domain.LogLevelInfo, domain.ParseLogLevel("verbose"))
}
