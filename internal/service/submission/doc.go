// Package submission runs a document upload against a payment link:
//
//	RECEIVED -> VALIDATED -> LINK_RESOLVED -> NOTIFIED_OPERATOR -> NOTIFIED_SUBMITTER -> COMPLETE
//
// Validation runs before any store or mail call. The two notifications are
// sent in order and are not atomic; every run records a
// domain.DispatchOutcome so a partially notified submission is visible in
// logs and metrics. Nothing is retried, rolled back or queued.
package submission
