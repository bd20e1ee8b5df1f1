package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/KasumiMercury/primind-task-alarm/internal/domain"
)

func TestNewAlarmStatusSuccess(t *testing.T) {
	tests := []struct {
		name           string
		input          string
		expected       domain.AlarmStatus
		schedulable    bool
		isUserDecision bool
	}{
		{
			name:        "pending",
			input:       "pending",
			expected:    domain.AlarmStatusPending,
			schedulable: true,
		},
		{
			name:           "snoozed",
			input:          "snoozed",
			expected:       domain.AlarmStatusSnoozed,
			schedulable:    true,
			isUserDecision: true,
		},
		{
			name:     "fired",
			input:    "fired",
			expected: domain.AlarmStatusFired,
		},
		{
			name:           "dismissed",
			input:          "dismissed",
			expected:       domain.AlarmStatusDismissed,
			isUserDecision: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, err := domain.NewAlarmStatus(tt.input)

			assert.NoError(t, err)
			assert.Equal(t, tt.expected, status)
			assert.Equal(t, tt.schedulable, status.IsSchedulable())
			assert.Equal(t, tt.isUserDecision, status.IsUserDecision())
		})
	}
}

func TestNewAlarmStatusError(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{
			name:  "empty",
			input: "",
		},
		{
			name:  "capitalised variant",
			input: "Pending",
		},
		{
			name:  "unknown",
			input: "muted",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := domain.NewAlarmStatus(tt.input)

			assert.ErrorIs(t, err, domain.ErrInvalidAlarmStatus)
		})
	}
}
