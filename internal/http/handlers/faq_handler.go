// FAQ HTTP handlers.
//
//   - GET  /support/faqs               (ranked search / category browse)
//   - GET  /support/faqs/categories
//   - GET  /support/faqs/popular
//   - GET  /support/faqs/recent        (per client, X-Client-ID)
//   - GET  /support/faqs/{id}          (item + related + server tallies)
//   - POST /support/faqs/{id}/view     (history + aggregate counter)
package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-support-desk/internal/domain"
	"github.com/tbourn/go-support-desk/internal/services"
	"github.com/tbourn/go-support-desk/internal/utils"
)

const (
	defaultShortList = 5
	maxShortList     = 50
)

// shortLimit reads ?limit= for the popular and recent lists.
func shortLimit(c *gin.Context) int {
	n := utils.AtoiDefault(c.Query("limit"), defaultShortList)
	switch {
	case n < 1:
		return defaultShortList
	case n > maxShortList:
		return maxShortList
	}
	return n
}

// SearchFAQs godoc
// @ID          searchFAQs
// @Summary     Search the FAQ catalog
// @Description Ranks items by title, keyword and answer matches. A blank query lists the category (or the whole catalog) in catalog order.
// @Tags        FAQ
// @Produce     json
//
// @Param       q         query  string  false "Search text"           example(api key)
// @Param       category  query  string  false "Category id"           example(integration)
// @Param       limit     query  int     false "Maximum results (0 = all)" minimum(0)
//
// @Success     200  {object} handlers.DataResponse{data=[]search.Match}
// @Failure     500  {object} handlers.ErrorResponse
// @Router      /support/faqs [get]
func (h *Handlers) SearchFAQs(c *gin.Context) {
	limit := utils.AtoiDefault(c.Query("limit"), 0)
	if limit < 0 {
		limit = 0
	}
	category := domain.FAQCategory(strings.TrimSpace(c.Query("category")))
	if category == "all" {
		category = ""
	}

	matches, err := h.kb.Search(c.Request.Context(), c.Query("q"), category, limit)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "search failed")
		return
	}
	data(c, matches)
}

// ListFAQCategories godoc
// @ID          listFAQCategories
// @Summary     List FAQ categories
// @Tags        FAQ
// @Produce     json
// @Success     200  {object} handlers.DataResponse{data=[]domain.FAQCategoryInfo}
// @Router      /support/faqs/categories [get]
func (h *Handlers) ListFAQCategories(c *gin.Context) {
	data(c, h.kb.Categories())
}

// PopularFAQs godoc
// @ID          popularFAQs
// @Summary     Most viewed FAQ items
// @Description Ranks by the catalog view count plus views recorded by this server.
// @Tags        FAQ
// @Produce     json
// @Param       limit  query  int  false "Maximum items" minimum(1) maximum(50) default(5)
// @Success     200  {object} handlers.DataResponse{data=[]domain.FAQItem}
// @Failure     500  {object} handlers.ErrorResponse
// @Router      /support/faqs/popular [get]
func (h *Handlers) PopularFAQs(c *gin.Context) {
	items, err := h.kb.Popular(c.Request.Context(), shortLimit(c))
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not load popular items")
		return
	}
	data(c, items)
}

// RecentFAQs godoc
// @ID          recentFAQs
// @Summary     Recently viewed FAQ items
// @Description Most recent first. Items removed from the catalog are skipped.
// @Tags        FAQ
// @Produce     json
// @Param       X-Client-ID  header  string  false "Client id (falls back to X-User-ID; one of them is required)" example(browser-42)
// @Param       limit        query   int     false "Maximum items" minimum(1) maximum(50) default(5)
// @Success     200  {object} handlers.DataResponse{data=[]domain.FAQItem}
// @Failure     400  {object} handlers.ErrorResponse "No client id"
// @Router      /support/faqs/recent [get]
func (h *Handlers) RecentFAQs(c *gin.Context) {
	id, ok := requireClient(c)
	if !ok {
		return
	}
	data(c, h.kb.Recent(c.Request.Context(), id, shortLimit(c)))
}

// GetFAQ godoc
// @ID          getFAQ
// @Summary     Get one FAQ item
// @Description Returns the item, its related articles (one level) and the server's feedback and view tallies.
// @Tags        FAQ
// @Produce     json
// @Param       id  path  string  true  "FAQ id"  example(gs-1)
// @Success     200  {object} handlers.DataResponse{data=services.FAQDetail}
// @Failure     404  {object} handlers.ErrorResponse
// @Failure     500  {object} handlers.ErrorResponse
// @Router      /support/faqs/{id} [get]
func (h *Handlers) GetFAQ(c *gin.Context) {
	d, err := h.kb.Item(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, services.ErrFAQNotFound) {
			fail(c, http.StatusNotFound, ErrCodeFAQNotFound, "FAQ not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not load FAQ")
		return
	}
	data(c, d)
}

// RecordFAQView godoc
// @ID          recordFAQView
// @Summary     Record that an FAQ item was opened
// @Description Anonymous views only bump the aggregate counter; identified clients also get the item in their history.
// @Tags        FAQ
// @Param       X-Client-ID  header  string  false "Client id (falls back to X-User-ID)"
// @Param       id           path    string  true  "FAQ id"  example(gs-1)
// @Success     204  {string} string "No Content"
// @Failure     404  {object} handlers.ErrorResponse
// @Failure     500  {object} handlers.ErrorResponse
// @Router      /support/faqs/{id}/view [post]
func (h *Handlers) RecordFAQView(c *gin.Context) {
	if err := h.kb.RecordView(c.Request.Context(), clientID(c), c.Param("id")); err != nil {
		if errors.Is(err, services.ErrFAQNotFound) {
			fail(c, http.StatusNotFound, ErrCodeFAQNotFound, "FAQ not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not record view")
		return
	}
	noContent(c)
}
