package handlers

import (
	"fmt"

	"backend/internal/models"
)

// Explicit transition tables for the moderation workflows. A transition not
// present in the table is rejected instead of written, so statuses cannot be
// set to arbitrary values through the update handlers.

var reviewTransitions = map[string][]string{
	models.ReviewStatusPending: {models.ReviewStatusApproved, models.ReviewStatusRejected},
	// approved and rejected are terminal.
	models.ReviewStatusApproved: {},
	models.ReviewStatusRejected: {},
}

var contactTransitions = map[string][]string{
	models.ContactStatusNew:        {models.ContactStatusInProgress, models.ContactStatusResolved, models.ContactStatusClosed},
	models.ContactStatusInProgress: {models.ContactStatusResolved, models.ContactStatusClosed},
	models.ContactStatusResolved:   {models.ContactStatusClosed},
	models.ContactStatusClosed:     {},
}

type invalidTransitionError struct {
	From string
	To   string
}

func (e invalidTransitionError) Error() string {
	return fmt.Sprintf("cannot transition from %q to %q", e.From, e.To)
}

func checkTransition(table map[string][]string, from, to string) error {
	allowed, ok := table[from]
	if !ok {
		return invalidTransitionError{From: from, To: to}
	}
	for _, next := range allowed {
		if next == to {
			return nil
		}
	}
	return invalidTransitionError{From: from, To: to}
}

func checkReviewTransition(from, to string) error {
	return checkTransition(reviewTransitions, from, to)
}

func checkContactTransition(from, to string) error {
	return checkTransition(contactTransitions, from, to)
}

// contactNeedsResponseStamp reports whether moving to this status records
// who handled the inquiry and when.
func contactNeedsResponseStamp(to string) bool {
	return to == models.ContactStatusResolved || to == models.ContactStatusClosed
}
