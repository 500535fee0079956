package site

import "time"

// Status is the publication state of a site.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
)

// Site is stored in the "sites" collection. OwnerID is written once at creation.
type Site struct {
	ID               string    `json:"id" bson:"_id"`
	OwnerID          string    `json:"ownerId" bson:"ownerId"`
	Title            string    `json:"title" bson:"title"`
	DraftContent     string    `json:"draftContent,omitempty" bson:"draftContent,omitempty"`
	PublishedContent string    `json:"publishedContent,omitempty" bson:"publishedContent,omitempty"`
	Status           Status    `json:"status" bson:"status"`
	CreatedAt        time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt" bson:"updatedAt"`
}

// HistoryEntry is an immutable snapshot of a site's content, stored in
// "site_history" and scoped to its site by SiteID.
type HistoryEntry struct {
	ID          string    `json:"id" bson:"_id"`
	SiteID      string    `json:"-" bson:"siteId"`
	Content     string    `json:"content" bson:"content"`
	PageStyles  string    `json:"pageStyles" bson:"pageStyles"`
	VersionName string    `json:"versionName" bson:"versionName"`
	UID         string    `json:"uid" bson:"uid"`
	SavedAt     time.Time `json:"savedAt" bson:"savedAt"`
}

// Update is a partial site update. Nil fields are left untouched; repositories
// apply all set fields in a single write.
type Update struct {
	Title            *string
	DraftContent     *string
	PublishedContent *string
	Status           *Status
	UpdatedAt        time.Time
}
