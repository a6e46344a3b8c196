package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseOrderStatus(t *testing.T) {
	for _, status := range OrderStatuses {
		got, ok := ParseOrderStatus(string(status))
		assert.True(t, ok, status)
		assert.Equal(t, status, got)
	}

	for _, bad := range []string{"", "pending", "Delivered", "CANCELLED"} {
		_, ok := ParseOrderStatus(bad)
		assert.False(t, ok, bad)
	}
}

func TestOrderStatusTransitions(t *testing.T) {
	tests := []struct {
		from     OrderStatus
		to       OrderStatus
		allowed  bool
		restores bool
	}{
		{StatusPending, StatusProcessing, true, false},
		{StatusProcessing, StatusShipped, true, false},
		{StatusShipped, StatusCompleted, true, false},
		{StatusPending, StatusCancelled, true, true},
		{StatusProcessing, StatusCancelled, true, true},
		{StatusShipped, StatusCancelled, true, true},
		{StatusCompleted, StatusCompleted, true, false},
		{StatusCancelled, StatusCancelled, true, false},
		{StatusCompleted, StatusCancelled, false, false},
		{StatusCompleted, StatusPending, false, false},
		{StatusCancelled, StatusPending, false, false},
		{StatusCancelled, StatusCompleted, false, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to))
			assert.Equal(t, tt.restores, tt.from.RestoresStock(tt.to))
		})
	}
}
