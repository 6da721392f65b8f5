package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"backend/internal/models"
)

func TestReviewTransitionsFromPending(t *testing.T) {
	require.NoError(t, checkReviewTransition(models.ReviewStatusPending, models.ReviewStatusApproved))
	require.NoError(t, checkReviewTransition(models.ReviewStatusPending, models.ReviewStatusRejected))
}

func TestReviewTerminalStatesRejectFurtherTransitions(t *testing.T) {
	// A second transition attempt on an already-moderated review is
	// rejected, including moving back to pending.
	for _, from := range []string{models.ReviewStatusApproved, models.ReviewStatusRejected} {
		for _, to := range []string{models.ReviewStatusPending, models.ReviewStatusApproved, models.ReviewStatusRejected} {
			err := checkReviewTransition(from, to)
			require.Error(t, err, "%s -> %s should be rejected", from, to)

			var invalid invalidTransitionError
			assert.ErrorAs(t, err, &invalid)
		}
	}
}

func TestReviewTransitionUnknownStatus(t *testing.T) {
	assert.Error(t, checkReviewTransition("garbage", models.ReviewStatusApproved))
	assert.Error(t, checkReviewTransition(models.ReviewStatusPending, "garbage"))
}

func TestContactTransitionTable(t *testing.T) {
	valid := []struct{ from, to string }{
		{models.ContactStatusNew, models.ContactStatusInProgress},
		{models.ContactStatusNew, models.ContactStatusResolved},
		{models.ContactStatusNew, models.ContactStatusClosed},
		{models.ContactStatusInProgress, models.ContactStatusResolved},
		{models.ContactStatusInProgress, models.ContactStatusClosed},
		{models.ContactStatusResolved, models.ContactStatusClosed},
	}
	for _, tc := range valid {
		assert.NoError(t, checkContactTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}

	invalid := []struct{ from, to string }{
		{models.ContactStatusClosed, models.ContactStatusNew},
		{models.ContactStatusClosed, models.ContactStatusResolved},
		{models.ContactStatusResolved, models.ContactStatusInProgress},
		{models.ContactStatusResolved, models.ContactStatusNew},
		{models.ContactStatusInProgress, models.ContactStatusNew},
	}
	for _, tc := range invalid {
		assert.Error(t, checkContactTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestContactNeedsResponseStamp(t *testing.T) {
	assert.True(t, contactNeedsResponseStamp(models.ContactStatusResolved))
	assert.True(t, contactNeedsResponseStamp(models.ContactStatusClosed))
	assert.False(t, contactNeedsResponseStamp(models.ContactStatusInProgress))
	assert.False(t, contactNeedsResponseStamp(models.ContactStatusNew))
}
