// Package handlers defines the machine-readable error codes of the API.
//
// Every error response carries an HTTP status and one of these codes;
// clients branch on the code, not the message.
//
//	{
//	  "success": false,
//	  "request_id": "e1b9be03-4999-4289-9f03-999b042d65d6",
//	  "code": "conflict",
//	  "message": "feedback already recorded"
//	}
package handlers

const (
	ErrCodeBadRequest       = "bad_request"
	ErrCodeNotFound         = "not_found"
	ErrCodeConflict         = "conflict"
	ErrCodeRateLimited      = "too_many_requests"
	ErrCodeInternal         = "internal_error"
	ErrCodeMethodNotAllowed = "method_not_allowed"

	// Knowledge base.
	ErrCodeFAQNotFound     = "faq_not_found"
	ErrCodeMissingClientID = "missing_client_id"

	// Escalations.
	ErrCodeEscalationNotFound = "escalation_not_found"
	ErrCodeTeamMemberNotFound = "team_member_not_found"
	ErrCodeMissingField       = "missing_field"
	ErrCodeListFailed         = "list_failed"
	ErrCodeUpdateFailed       = "update_failed"
)
