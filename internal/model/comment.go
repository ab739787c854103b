package model

import "time"

// Comment belongs to a post. Deleting the post deletes its comments.
type Comment struct {
	ID           string    `json:"id"           db:"id"`
	PostID       string    `json:"postId"       db:"post_id"`
	CreatedBy    string    `json:"createdBy"    db:"created_by"`
	Content      string    `json:"content"      db:"content"`
	LikeCount    int64     `json:"likeCount"    db:"like_count"`
	DislikeCount int64     `json:"dislikeCount" db:"dislike_count"`
	CreatedAt    time.Time `json:"createdAt"    db:"created_at"`
}
