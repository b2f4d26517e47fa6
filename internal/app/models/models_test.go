package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequestStatusTransitions(t *testing.T) {
	terminal := []RequestStatus{StatusApproved, StatusRejected, StatusCancelled}

	for _, target := range terminal {
		assert.True(t, StatusPending.CanTransitionTo(target), "pending -> %s should be allowed", target)
	}

	assert.False(t, StatusPending.CanTransitionTo(StatusPending))
	assert.False(t, StatusPending.CanTransitionTo(RequestStatus("archived")))

	for _, from := range terminal {
		assert.True(t, from.IsTerminal())
		for _, target := range []RequestStatus{StatusPending, StatusApproved, StatusRejected, StatusCancelled} {
			assert.False(t, from.CanTransitionTo(target), "%s -> %s should be rejected", from, target)
		}
	}

	assert.False(t, StatusPending.IsTerminal())
	assert.True(t, StatusPending.IsValid())
	assert.False(t, RequestStatus("unknown").IsValid())
}
