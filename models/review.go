package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Review is the post-meetup writeup. One row per meetup, last write wins.
type Review struct {
	MeetupID    uuid.UUID      `gorm:"type:uuid;primaryKey" json:"meetup_id"`
	AuthorID    uuid.UUID      `gorm:"type:uuid" json:"author_id"`
	Mood        string         `gorm:"size:30" json:"mood"` // great, good, okay, bad
	CommentText string         `json:"comment_text,omitempty"`
	PhotoRefs   pq.StringArray `gorm:"type:text[]" json:"photo_refs,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

type SubmitReviewRequest struct {
	Mood        string   `json:"mood" binding:"required"`
	CommentText string   `json:"comment_text"`
	PhotoRefs   []string `json:"photo_refs"`
}
