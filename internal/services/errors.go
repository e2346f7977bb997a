// Package services defines the business logic for the knowledge base,
// FAQ feedback and the escalation queue. This file centralizes common
// service-level error values so that they can be consistently returned by
// service methods and checked by callers.
//
// Translation into user-facing messages or HTTP status codes is performed at
// the handler layer.
package services

import "errors"

// Escalation-related errors.
var (
	// ErrMissingEscalationID is returned when a mutation names no conversation.
	ErrMissingEscalationID = errors.New("escalation id is required")

	// ErrEscalationNotFound indicates that the conversation does not exist or
	// has already left the open queue.
	ErrEscalationNotFound = errors.New("escalation not found")

	// ErrEmptyAssignee is returned when an assignment names no team member.
	ErrEmptyAssignee = errors.New("team member id is required")

	// ErrTeamMemberNotFound is returned when the assignee is not on the team.
	ErrTeamMemberNotFound = errors.New("team member not found")

	// ErrEmptyResolution is returned when a resolve request carries no text.
	ErrEmptyResolution = errors.New("resolution is empty")
)

// Knowledge-base errors.
var (
	// ErrFAQNotFound indicates that the catalog has no item with the given id.
	ErrFAQNotFound = errors.New("faq not found")

	// ErrDuplicateFeedback is returned when a client rates an item it has
	// already rated. The first verdict wins.
	ErrDuplicateFeedback = errors.New("feedback already exists")
)
