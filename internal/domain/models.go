package domain

import (
	"time"

	"gorm.io/gorm"
)

// FAQFeedback is a reader's verdict on a catalog item. A client can leave
// only one feedback entry per item (enforced by unique index).
//
// Fields:
//   - ID: UUID primary key (char(36)).
//   - FAQID: catalog item id (unique per client).
//   - ClientID: identifier of the reader (unique per item).
//   - Value: "helpful" or "not-helpful".
//   - CreatedAt / UpdatedAt: timestamps managed by GORM.
//   - DeletedAt: soft deletion marker.
type FAQFeedback struct {
	ID        string         `json:"id"         gorm:"type:char(36);primaryKey"`
	FAQID     string         `json:"faq_id"     gorm:"type:varchar(64);not null;index;uniqueIndex:ux_faq_feedback_client"`
	ClientID  string         `json:"client_id"  gorm:"type:varchar(64);not null;index;uniqueIndex:ux_faq_feedback_client"`
	Value     FeedbackValue  `json:"value"      gorm:"type:varchar(16);not null;check:value IN ('helpful','not-helpful')"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-"          gorm:"index"`
}

// TableName returns the database table name for FAQFeedback.
func (FAQFeedback) TableName() string { return "faq_feedback" }

// FAQView is the aggregate view counter for one catalog item. It adds to
// the static ViewCount shipped with the catalog.
type FAQView struct {
	FAQID     string    `json:"faq_id"     gorm:"type:varchar(64);primaryKey"`
	Views     int64     `json:"views"      gorm:"not null;default:0"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for FAQView.
func (FAQView) TableName() string { return "faq_views" }

// KVEntry is one value of the namespaced key-value table that backs
// per-client state such as view history.
type KVEntry struct {
	Namespace string    `gorm:"type:varchar(64);primaryKey"`
	Key       string    `gorm:"type:varchar(128);primaryKey"`
	Value     []byte    `gorm:"type:blob;not null"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// TableName returns the database table name for KVEntry.
func (KVEntry) TableName() string { return "kv_entries" }
