package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/tbourn/go-support-desk/internal/domain"
	"github.com/tbourn/go-support-desk/internal/search"
	"github.com/tbourn/go-support-desk/internal/services"
)

func TestSearchFAQs_ParamsAndEnvelope(t *testing.T) {
	var gotQ string
	var gotCat domain.FAQCategory
	var gotLimit int
	kb := stubKB{search: func(_ context.Context, q string, cat domain.FAQCategory, limit int) ([]search.Match, error) {
		gotQ, gotCat, gotLimit = q, cat, limit
		return []search.Match{{FAQ: domain.FAQItem{ID: "bl-1"}, MatchType: search.MatchTitle, Score: 3}}, nil
	}}
	r := newRouter(New(kb, nil, nil))

	w := send(r, http.MethodGet, "/support/faqs?q=refund&category=billing&limit=3", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if gotQ != "refund" || gotCat != "billing" || gotLimit != 3 {
		t.Fatalf("args = %q %q %d", gotQ, gotCat, gotLimit)
	}
	var body struct {
		Success bool           `json:"success"`
		Data    []search.Match `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil || !body.Success || len(body.Data) != 1 || body.Data[0].FAQ.ID != "bl-1" {
		t.Fatalf("body = %s (%v)", w.Body.String(), err)
	}

	// "all" means no category filter; negative limits mean no limit
	send(r, http.MethodGet, "/support/faqs?category=all&limit=-4", "", nil)
	if gotCat != "" || gotLimit != 0 {
		t.Fatalf("all/negative = %q %d", gotCat, gotLimit)
	}
}

func TestSearchFAQs_InternalError(t *testing.T) {
	kb := stubKB{search: func(context.Context, string, domain.FAQCategory, int) ([]search.Match, error) {
		return nil, errors.New("boom")
	}}
	w := send(newRouter(New(kb, nil, nil)), http.MethodGet, "/support/faqs", "", nil)
	if w.Code != http.StatusInternalServerError || decodeErr(t, w).Code != ErrCodeInternal {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestFAQLists_CategoriesPopularRecent(t *testing.T) {
	var popLimit, recLimit int
	var recClient string
	kb := stubKB{
		popular: func(_ context.Context, limit int) ([]domain.FAQItem, error) {
			popLimit = limit
			return []domain.FAQItem{{ID: "p"}}, nil
		},
		recent: func(_ context.Context, clientID string, limit int) []domain.FAQItem {
			recClient, recLimit = clientID, limit
			return []domain.FAQItem{}
		},
	}
	r := newRouter(New(kb, nil, nil))

	if w := send(r, http.MethodGet, "/support/faqs/categories", "", nil); w.Code != http.StatusOK {
		t.Fatalf("categories = %d", w.Code)
	}
	send(r, http.MethodGet, "/support/faqs/popular", "", nil)
	if popLimit != defaultShortList {
		t.Fatalf("default popular limit = %d", popLimit)
	}
	send(r, http.MethodGet, "/support/faqs/popular?limit=500", "", nil)
	if popLimit != maxShortList {
		t.Fatalf("capped popular limit = %d", popLimit)
	}

	w := send(r, http.MethodGet, "/support/faqs/recent?limit=2", "", map[string]string{"X-Client-ID": "browser-1"})
	if w.Code != http.StatusOK || recClient != "browser-1" || recLimit != 2 {
		t.Fatalf("recent = %d %q %d", w.Code, recClient, recLimit)
	}
	if w.Body.String() != `{"success":true,"data":[]}` {
		t.Fatalf("empty recent body = %s", w.Body.String())
	}
	send(r, http.MethodGet, "/support/faqs/recent", "", map[string]string{"X-User-ID": "agent-4"})
	if recClient != "agent-4" {
		t.Fatalf("client id fallback = %q", recClient)
	}
	recClient = "unchanged"
	if w := send(r, http.MethodGet, "/support/faqs/recent", "", nil); w.Code != http.StatusBadRequest || decodeErr(t, w).Code != ErrCodeMissingClientID {
		t.Fatalf("anonymous recent = %d %s", w.Code, w.Body.String())
	}
	if recClient != "unchanged" {
		t.Fatalf("anonymous recent reached the service as %q", recClient)
	}

	kb.popular = func(context.Context, int) ([]domain.FAQItem, error) { return nil, errors.New("db down") }
	if w := send(newRouter(New(kb, nil, nil)), http.MethodGet, "/support/faqs/popular", "", nil); w.Code != http.StatusInternalServerError {
		t.Fatalf("popular error = %d", w.Code)
	}
}

func TestGetFAQ_AndRecordView(t *testing.T) {
	var viewed []string
	kb := stubKB{
		item: func(_ context.Context, id string) (*services.FAQDetail, error) {
			if id != "gs-1" {
				return nil, services.ErrFAQNotFound
			}
			return &services.FAQDetail{Item: domain.FAQItem{ID: id}, Related: []domain.FAQItem{{ID: "gs-2"}}}, nil
		},
		recordView: func(_ context.Context, clientID, id string) error {
			if id == "ghost" {
				return services.ErrFAQNotFound
			}
			if id == "boom" {
				return errors.New("db")
			}
			viewed = append(viewed, clientID+":"+id)
			return nil
		},
	}
	r := newRouter(New(kb, nil, nil))

	w := send(r, http.MethodGet, "/support/faqs/gs-1", "", nil)
	var body struct {
		Data services.FAQDetail `json:"data"`
	}
	if w.Code != http.StatusOK || json.Unmarshal(w.Body.Bytes(), &body) != nil || body.Data.Related[0].ID != "gs-2" {
		t.Fatalf("get = %d %s", w.Code, w.Body.String())
	}
	if w := send(r, http.MethodGet, "/support/faqs/nope", "", nil); w.Code != http.StatusNotFound || decodeErr(t, w).Code != ErrCodeFAQNotFound {
		t.Fatalf("missing item = %d", w.Code)
	}

	if w := send(r, http.MethodPost, "/support/faqs/gs-1/view", "", map[string]string{"X-Client-ID": "c1"}); w.Code != http.StatusNoContent {
		t.Fatalf("view = %d", w.Code)
	}
	if len(viewed) != 1 || viewed[0] != "c1:gs-1" {
		t.Fatalf("viewed = %v", viewed)
	}
	if w := send(r, http.MethodPost, "/support/faqs/gs-1/view", "", nil); w.Code != http.StatusNoContent {
		t.Fatalf("anonymous view = %d", w.Code)
	}
	if len(viewed) != 2 || viewed[1] != ":gs-1" {
		t.Fatalf("anonymous view recorded as %v", viewed)
	}
	if w := send(r, http.MethodPost, "/support/faqs/ghost/view", "", nil); w.Code != http.StatusNotFound {
		t.Fatalf("ghost view = %d", w.Code)
	}
	if w := send(r, http.MethodPost, "/support/faqs/boom/view", "", nil); w.Code != http.StatusInternalServerError {
		t.Fatalf("failing view = %d", w.Code)
	}
}

func TestLeaveFeedback(t *testing.T) {
	type call struct {
		client, faq string
		helpful     bool
	}
	var calls []call
	fb := stubFB{fn: func(_ context.Context, clientID, faqID string, isHelpful bool) error {
		switch faqID {
		case "ghost":
			return services.ErrFAQNotFound
		case "dup":
			return services.ErrDuplicateFeedback
		case "boom":
			return errors.New("db")
		}
		calls = append(calls, call{clientID, faqID, isHelpful})
		return nil
	}}
	r := newRouter(New(nil, fb, nil))
	hdr := map[string]string{"X-Client-ID": "c9"}

	if w := send(r, http.MethodPost, "/support/faq-feedback", `{"faqId":"gs-1","isHelpful":false}`, hdr); w.Code != http.StatusNoContent {
		t.Fatalf("ok = %d %s", w.Code, w.Body.String())
	}
	if len(calls) != 1 || calls[0] != (call{"c9", "gs-1", false}) {
		t.Fatalf("calls = %+v", calls)
	}

	if w := send(r, http.MethodPost, "/support/faq-feedback", `{"faqId":"gs-2","isHelpful":true}`, nil); w.Code != http.StatusBadRequest || decodeErr(t, w).Code != ErrCodeMissingClientID {
		t.Fatalf("anonymous feedback = %d %s", w.Code, w.Body.String())
	}
	if len(calls) != 1 {
		t.Fatalf("anonymous feedback reached the service: %+v", calls)
	}

	cases := []struct {
		body string
		want int
		code string
	}{
		{`{"faqId":"gs-1"}`, http.StatusBadRequest, ErrCodeBadRequest},
		{`{"faqId":"  ","isHelpful":true}`, http.StatusBadRequest, ErrCodeBadRequest},
		{`not json`, http.StatusBadRequest, ErrCodeBadRequest},
		{`{"faqId":"ghost","isHelpful":true}`, http.StatusNotFound, ErrCodeFAQNotFound},
		{`{"faqId":"dup","isHelpful":true}`, http.StatusConflict, ErrCodeConflict},
		{`{"faqId":"boom","isHelpful":true}`, http.StatusInternalServerError, ErrCodeInternal},
	}
	for _, tc := range cases {
		w := send(r, http.MethodPost, "/support/faq-feedback", tc.body, hdr)
		if w.Code != tc.want || decodeErr(t, w).Code != tc.code {
			t.Fatalf("%s: status %d body %s", tc.body, w.Code, w.Body.String())
		}
	}
}
