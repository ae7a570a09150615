package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to TransactionStatus
		want     bool
	}{
		{StatusPending, StatusAuthorized, true},
		{StatusPending, StatusFailed, true},
		{StatusPending, StatusCancelled, true},
		{StatusPending, StatusCompleted, false},
		{StatusAuthorized, StatusCaptured, true},
		{StatusCaptured, StatusCompleted, true},
		{StatusCompleted, StatusRefunded, true},
		{StatusCompleted, StatusPending, false},
		{StatusFailed, StatusPending, false},
		{StatusRefunded, StatusCompleted, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CanTransition(tt.from, tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestCanTransitionSession(t *testing.T) {
	assert.True(t, CanTransitionSession(SessionActive, SessionCompleted))
	assert.True(t, CanTransitionSession(SessionActive, SessionAbandoned))
	assert.False(t, CanTransitionSession(SessionCompleted, SessionActive))
	assert.False(t, CanTransitionSession(SessionAbandoned, SessionCompleted))
}

func TestTransitionPath(t *testing.T) {
	path, err := TransitionPath(StatusPending, StatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, []TransactionStatus{StatusAuthorized, StatusCaptured, StatusCompleted}, path)

	_, err = TransitionPath(StatusFailed, StatusCompleted)
	assert.Error(t, err)
}

func TestTerminal(t *testing.T) {
	assert.True(t, StatusFailed.Terminal())
	assert.True(t, StatusRefunded.Terminal())
	assert.False(t, StatusPending.Terminal())
}
