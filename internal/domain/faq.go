// Package domain defines the data model shared by the knowledge-base and
// escalation engines, the persistence layer, and the HTTP transport.
// Catalog types are plain values; server-side records are mapped with GORM.
package domain

import "time"

// FAQCategory identifies one of the fixed knowledge-base sections.
type FAQCategory string

// Categories shipped with the default catalog.
const (
	CategoryGettingStarted FAQCategory = "getting-started"
	CategoryIntegration    FAQCategory = "integration"
	CategoryBilling        FAQCategory = "billing"
	CategoryClaims         FAQCategory = "claims"
	CategoryTechnical      FAQCategory = "technical"
)

// FAQCategoryInfo describes a category for display. Icon is an opaque key
// interpreted by the rendering client.
type FAQCategoryInfo struct {
	ID          FAQCategory `json:"id"          yaml:"id"`
	Label       string      `json:"label"       yaml:"label"`
	Description string      `json:"description" yaml:"description"`
	Icon        string      `json:"icon"        yaml:"icon"`
}

// FAQItem is a single question/answer pair of the catalog.
//
// RelatedArticles holds directed references to other item IDs; they are
// resolved one level deep only. ViewCount and Helpful are the catalog's
// static popularity figures.
type FAQItem struct {
	ID              string      `json:"id"                        yaml:"id"`
	Question        string      `json:"question"                  yaml:"question"`
	Answer          string      `json:"answer"                    yaml:"answer"`
	Category        FAQCategory `json:"category"                  yaml:"category"`
	Keywords        []string    `json:"keywords"                  yaml:"keywords"`
	RelatedArticles []string    `json:"relatedArticles,omitempty" yaml:"relatedArticles"`
	ViewCount       int         `json:"viewCount,omitempty"       yaml:"viewCount"`
	Helpful         int         `json:"helpful,omitempty"         yaml:"helpful"`
	NotHelpful      int         `json:"notHelpful,omitempty"      yaml:"notHelpful"`
}

// ViewHistoryEntry records when a client last opened an FAQ item.
// A history holds at most one entry per FAQID.
type ViewHistoryEntry struct {
	FAQID    string    `json:"faqId"`
	ViewedAt time.Time `json:"viewedAt"`
}

// FeedbackValue is the per-item verdict a reader leaves on an answer.
type FeedbackValue string

const (
	FeedbackHelpful    FeedbackValue = "helpful"
	FeedbackNotHelpful FeedbackValue = "not-helpful"
)

// FeedbackFromBool maps the wire boolean to a FeedbackValue.
func FeedbackFromBool(isHelpful bool) FeedbackValue {
	if isHelpful {
		return FeedbackHelpful
	}
	return FeedbackNotHelpful
}
