package model

import "time"

// Post is a community post, optionally sharing a preset.
//
// The counters are adjusted only through dedicated increment operations at
// the store layer — never read back, modified, and written wholesale.
type Post struct {
	ID           string    `json:"id"           db:"id"`
	Title        string    `json:"title"        db:"title"`
	Content      string    `json:"content"      db:"content"`
	PresetID     string    `json:"presetId"     db:"preset_id"` // weak reference, may be empty
	CreatedBy    string    `json:"createdBy"    db:"created_by"`
	IsPublic     bool      `json:"isPublic"     db:"is_public"`
	ImageURL     string    `json:"imageUrl"     db:"image_url"`
	LikeCount    int64     `json:"likeCount"    db:"like_count"`
	DislikeCount int64     `json:"dislikeCount" db:"dislike_count"`
	CommentCount int64     `json:"commentCount" db:"comment_count"`
	ScrapCount   int64     `json:"scrapCount"   db:"scrap_count"`
	CreatedAt    time.Time `json:"createdAt"    db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt"    db:"updated_at"`
}

// PostPatch lists the optionally-settable fields of a post update.
// Counters are deliberately absent — they move only via increments.
type PostPatch struct {
	Title    *string `json:"title"`
	Content  *string `json:"content"`
	PresetID *string `json:"presetId"`
	IsPublic *bool   `json:"isPublic"`
	ImageURL *string `json:"imageUrl"`
}
