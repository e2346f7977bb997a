// Escalation HTTP handlers.
//
//   - GET   /admin/support/escalations                  (open queue, ETag)
//   - PATCH /admin/support/escalations                  (assign {id, assignTo})
//   - POST  /admin/support/escalations/{id}/take-over
//   - POST  /support/escalations/{id}/resolve           ({resolution})
//   - POST  /support/escalations/{id}/reassign          ({assignee})
//
// Idempotency:
// When the request carries an Idempotency-Key and the same caller already
// completed the same action on the same escalation with that key, the
// recorded status is returned with `Idempotency-Replayed: true` and the
// mutation does not run again.
package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-support-desk/internal/domain"
	"github.com/tbourn/go-support-desk/internal/http/middleware"
	"github.com/tbourn/go-support-desk/internal/repo"
	"github.com/tbourn/go-support-desk/internal/services"
	"github.com/tbourn/go-support-desk/internal/utils"
)

// Pagination describes the page returned by the queue listing.
type Pagination struct {
	Page       int   `json:"page"       example:"1"`
	Limit      int   `json:"limit"      example:"20"`
	Total      int64 `json:"total"      example:"4"`
	TotalPages int   `json:"totalPages" example:"1"`
}

// EscalationListResponse is one page of the open queue. Summary covers the
// whole open queue regardless of filters.
type EscalationListResponse struct {
	Success     bool                           `json:"success" example:"true"`
	Data        []domain.EscalatedConversation `json:"data"`
	Pagination  Pagination                     `json:"pagination"`
	Summary     domain.EscalationSummary       `json:"summary"`
	TeamMembers []domain.TeamMember            `json:"teamMembers"`
}

// AssignRequest hands an escalation to a team member.
type AssignRequest struct {
	ID       string `json:"id"       example:"esc-001"`
	AssignTo string `json:"assignTo" example:"user-002"`
}

// ResolveRequest closes an escalation.
type ResolveRequest struct {
	Resolution string `json:"resolution" example:"Reset the API key and confirmed the webhook fires."`
}

// ReassignRequest moves an escalation to another team member.
type ReassignRequest struct {
	Assignee string `json:"assignee" example:"user-003"`
}

// escalationFilter parses priority, assigned and assignedTo.
func escalationFilter(c *gin.Context) (repo.EscalationFilter, error) {
	var f repo.EscalationFilter

	p := domain.Priority(strings.ToLower(strings.TrimSpace(c.Query("priority"))))
	if p != "" && p != "all" {
		if !p.IsValid() {
			return f, fmt.Errorf("unknown priority %q", p)
		}
		f.Priority = p
	}
	assigned, err := utils.OptionalBool(c.Query("assigned"))
	if err != nil {
		return f, fmt.Errorf("assigned: %w", err)
	}
	f.Assigned = assigned
	f.AssignedTo = strings.TrimSpace(c.Query("assignedTo"))
	return f, nil
}

// ListEscalations godoc
// @ID          listEscalations
// @Summary     List open escalations
// @Description Open conversations (escalated or reassigned) ordered by priority then escalation time. Supports a weak ETag via If-None-Match.
// @Tags        Escalations
// @Produce     json
//
// @Param       If-None-Match  header  string  false "Return 304 if ETag matches"
// @Param       priority       query   string  false "urgent, high, normal, low or all"  example(urgent)
// @Param       assigned       query   bool    false "Only assigned (true) or unassigned (false)"
// @Param       assignedTo     query   string  false "Team member id"  example(user-001)
// @Param       page           query   int     false "Page number"     minimum(1) default(1)
// @Param       limit          query   int     false "Items per page"  minimum(1) maximum(100) default(20)
//
// @Success     200  {object} handlers.EscalationListResponse
// @Header      200  {string} ETag "Weak ETag for the queue state"
// @Success     304  {string} string "Not Modified"
// @Failure     400  {object} handlers.ErrorResponse
// @Failure     500  {object} handlers.ErrorResponse
// @Router      /admin/support/escalations [get]
func (h *Handlers) ListEscalations(c *gin.Context) {
	ctx := c.Request.Context()

	f, err := escalationFilter(c)
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		return
	}
	page, limit := utils.PageBounds(c.Query("page"), c.Query("limit"), 20, 100)

	// ETag pre-check (best effort).
	if count, maxTS, err := h.esc.Stats(ctx); err == nil {
		var ts int64
		if maxTS != nil {
			ts = maxTS.UnixNano()
		}
		etag := fmt.Sprintf(`W/"escalations:%d:%d"`, count, ts)
		c.Header("ETag", etag)
		if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
			c.Status(http.StatusNotModified)
			return
		}
	}

	p, err := h.esc.List(ctx, f, page, limit)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, "Failed to fetch escalations")
		return
	}
	ok(c, http.StatusOK, EscalationListResponse{
		Success: true,
		Data:    p.Items,
		Pagination: Pagination{
			Page:       p.Page,
			Limit:      p.Limit,
			Total:      p.Total,
			TotalPages: p.TotalPages(),
		},
		Summary:     p.Summary,
		TeamMembers: p.Team,
	})
}

// AssignEscalation godoc
// @ID          assignEscalation
// @Summary     Assign an escalation
// @Description Hands an open escalation to a team member; the status is unchanged.
// @Tags        Escalations
// @Accept      json
// @Produce     json
// @Param       X-User-ID        header  string  false "Acting agent"
// @Param       Idempotency-Key  header  string  false "Key for safe retries"
// @Param       body             body    handlers.AssignRequest  true  "Assignment"
// @Success     200  {object} handlers.DataResponse{data=domain.EscalatedConversation}
// @Failure     400  {object} handlers.ErrorResponse "Escalation ID or team member ID missing"
// @Failure     404  {object} handlers.ErrorResponse "Escalation or team member not found"
// @Failure     409  {object} handlers.ErrorResponse "Idempotency-Key reused for another action"
// @Failure     500  {object} handlers.ErrorResponse
// @Router      /admin/support/escalations [patch]
func (h *Handlers) AssignEscalation(c *gin.Context) {
	var req AssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	id := strings.TrimSpace(req.ID)
	h.mutate(c, services.ActionAssign, id, func() (any, error) {
		e, err := h.esc.Assign(c.Request.Context(), id, req.AssignTo)
		if err != nil {
			return nil, err
		}
		return DataResponse{Success: true, Data: e}, nil
	})
}

// TakeOverEscalation godoc
// @ID          takeOverEscalation
// @Summary     Take over an escalation
// @Description Assigns the escalation to the calling agent and removes it from the open queue.
// @Tags        Escalations
// @Produce     json
// @Param       X-User-ID        header  string  false "Acting agent"  example(user-001)
// @Param       Idempotency-Key  header  string  false "Key for safe retries"
// @Param       id               path    string  true  "Escalation id"  example(esc-001)
// @Success     200  {object} handlers.SuccessResponse
// @Failure     404  {object} handlers.ErrorResponse "Not found or no longer open"
// @Failure     500  {object} handlers.ErrorResponse
// @Router      /admin/support/escalations/{id}/take-over [post]
func (h *Handlers) TakeOverEscalation(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	h.mutate(c, services.ActionTakeOver, id, func() (any, error) {
		return SuccessResponse{Success: true}, h.esc.TakeOver(c.Request.Context(), id, userID(c))
	})
}

// ResolveEscalation godoc
// @ID          resolveEscalation
// @Summary     Resolve an escalation
// @Tags        Escalations
// @Accept      json
// @Produce     json
// @Param       X-User-ID        header  string  false "Acting agent"
// @Param       Idempotency-Key  header  string  false "Key for safe retries"
// @Param       id               path    string  true  "Escalation id"  example(esc-001)
// @Param       body             body    handlers.ResolveRequest  true  "Resolution note"
// @Success     200  {object} handlers.SuccessResponse
// @Failure     400  {object} handlers.ErrorResponse "Resolution missing"
// @Failure     404  {object} handlers.ErrorResponse "Not found or no longer open"
// @Failure     500  {object} handlers.ErrorResponse
// @Router      /support/escalations/{id}/resolve [post]
func (h *Handlers) ResolveEscalation(c *gin.Context) {
	var req ResolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	id := strings.TrimSpace(c.Param("id"))
	h.mutate(c, services.ActionResolve, id, func() (any, error) {
		return SuccessResponse{Success: true}, h.esc.Resolve(c.Request.Context(), id, req.Resolution)
	})
}

// ReassignEscalation godoc
// @ID          reassignEscalation
// @Summary     Reassign an escalation
// @Description Hands the escalation to another team member; it stays in the open queue.
// @Tags        Escalations
// @Accept      json
// @Produce     json
// @Param       X-User-ID        header  string  false "Acting agent"
// @Param       Idempotency-Key  header  string  false "Key for safe retries"
// @Param       id               path    string  true  "Escalation id"  example(esc-001)
// @Param       body             body    handlers.ReassignRequest  true  "New assignee"
// @Success     200  {object} handlers.SuccessResponse
// @Failure     400  {object} handlers.ErrorResponse "Assignee missing"
// @Failure     404  {object} handlers.ErrorResponse "Escalation or team member not found"
// @Failure     500  {object} handlers.ErrorResponse
// @Router      /support/escalations/{id}/reassign [post]
func (h *Handlers) ReassignEscalation(c *gin.Context) {
	var req ReassignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	id := strings.TrimSpace(c.Param("id"))
	h.mutate(c, services.ActionReassign, id, func() (any, error) {
		return SuccessResponse{Success: true}, h.esc.Reassign(c.Request.Context(), id, req.Assignee)
	})
}

// idempotencyKey prefers the key validated by middleware and falls back to
// the raw header when the validator is not installed.
func idempotencyKey(c *gin.Context) string {
	if k, found := middleware.GetIdempotencyKey(c); found {
		return k
	}
	return strings.TrimSpace(c.GetHeader(middleware.HeaderIdempotencyKey))
}

// mutate runs one escalation mutation with Idempotency-Key replay and
// records the outcome when it succeeds.
func (h *Handlers) mutate(c *gin.Context, action, id string, run func() (any, error)) {
	ctx := c.Request.Context()
	uid := userID(c)
	key := idempotencyKey(c)
	useIdem := key != "" && id != "" && h.idem != nil

	// Replay path.
	if useIdem {
		if rec, err := h.idem.Lookup(ctx, uid, id, key, time.Now().UTC()); err == nil && rec != nil {
			if rec.Action != action {
				fail(c, http.StatusConflict, ErrCodeConflict, "Idempotency-Key already used for another action")
				return
			}
			c.Header("Idempotency-Replayed", "true")
			h.replay(c, action, id, rec.Status)
			return
		}
	}

	body, err := run()
	if err != nil {
		escalationFail(c, err)
		return
	}
	ok(c, http.StatusOK, body)

	// Store path (best effort).
	if useIdem {
		if err := h.idem.Remember(ctx, uid, id, key, action, http.StatusOK); err != nil {
			middleware.LoggerFrom(c).Warn().Err(err).
				Str("escalation_id", id).
				Str("action", action).
				Msg("idempotency record not stored")
		}
	}
}

// replay answers a repeated mutation. Assign returns the current record so
// the client sees the same shape as the first response.
func (h *Handlers) replay(c *gin.Context, action, id string, status int) {
	if action == services.ActionAssign {
		if e, err := h.esc.Get(c.Request.Context(), id); err == nil {
			ok(c, status, DataResponse{Success: true, Data: e})
			return
		}
	}
	ok(c, status, SuccessResponse{Success: true})
}

// escalationFail maps service errors to responses.
func escalationFail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrMissingEscalationID):
		fail(c, http.StatusBadRequest, ErrCodeMissingField, "Escalation ID is required")
	case errors.Is(err, services.ErrEmptyAssignee):
		fail(c, http.StatusBadRequest, ErrCodeMissingField, "Team member ID is required")
	case errors.Is(err, services.ErrEmptyResolution):
		fail(c, http.StatusBadRequest, ErrCodeMissingField, "Resolution is required")
	case errors.Is(err, services.ErrEscalationNotFound):
		fail(c, http.StatusNotFound, ErrCodeEscalationNotFound, "Escalation not found")
	case errors.Is(err, services.ErrTeamMemberNotFound):
		fail(c, http.StatusNotFound, ErrCodeTeamMemberNotFound, "Team member not found")
	default:
		fail(c, http.StatusInternalServerError, ErrCodeUpdateFailed, "Failed to update escalation")
	}
}
