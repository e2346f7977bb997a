// FAQ feedback handler.
//
//   - POST /support/faq-feedback  (helpful / not helpful, first verdict wins)
package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-support-desk/internal/services"
)

// LeaveFeedbackRequest is the verdict on one FAQ item. IsHelpful is a
// pointer so a missing field is rejected instead of read as false.
type LeaveFeedbackRequest struct {
	FAQID     string `json:"faqId"     binding:"required" example:"gs-1"`
	IsHelpful *bool  `json:"isHelpful" binding:"required" example:"true"`
}

// LeaveFeedback godoc
// @ID          leaveFAQFeedback
// @Summary     Rate an FAQ answer
// @Description Records whether the answer helped. Each client can rate an item once.
// @Tags        FAQ
// @Accept      json
// @Param       X-Client-ID  header  string  false "Client id (falls back to X-User-ID; one of them is required)"
// @Param       body         body    handlers.LeaveFeedbackRequest  true  "Verdict"
// @Success     204  {string} string "No Content"
// @Failure     400  {object} handlers.ErrorResponse "Invalid payload or no client id"
// @Failure     404  {object} handlers.ErrorResponse "FAQ not found"
// @Failure     409  {object} handlers.ErrorResponse "Already rated"
// @Failure     500  {object} handlers.ErrorResponse
// @Router      /support/faq-feedback [post]
func (h *Handlers) LeaveFeedback(c *gin.Context) {
	client, ok := requireClient(c)
	if !ok {
		return
	}
	var req LeaveFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.FAQID) == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "faqId and isHelpful are required")
		return
	}

	err := h.fb.Leave(c.Request.Context(), client, strings.TrimSpace(req.FAQID), *req.IsHelpful)
	switch {
	case err == nil:
		noContent(c)
	case errors.Is(err, services.ErrFAQNotFound):
		fail(c, http.StatusNotFound, ErrCodeFAQNotFound, "FAQ not found")
	case errors.Is(err, services.ErrDuplicateFeedback):
		fail(c, http.StatusConflict, ErrCodeConflict, "feedback already recorded")
	default:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not record feedback")
	}
}
