package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Invite categories
const (
	CategorySent          = "sent"
	CategoryReceived      = "received"
	CategoryReviewRequest = "review_request"
)

// Participant response statuses
const (
	ResponsePending  = "pending"
	ResponseAccepted = "accepted"
	ResponseDeclined = "declined"
)

type Invite struct {
	ID             uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	UserID         uuid.UUID     `gorm:"type:uuid;index" json:"user_id"` // inbox owner
	Category       string        `gorm:"not null;size:20" json:"category"` // sent, received, review_request
	Place          string        `gorm:"size:255" json:"place"`
	Date           string        `gorm:"size:50" json:"date"`
	Time           string        `gorm:"size:50" json:"time"`
	Note           string        `json:"note,omitempty"`
	LinkedMeetupID *uuid.UUID    `gorm:"type:uuid" json:"linked_meetup_id,omitempty"` // set iff category == review_request
	Participants   []Participant `gorm:"foreignKey:InviteID;constraint:OnDelete:CASCADE" json:"participants"`
	CreatedAt      time.Time     `json:"created_at"`
}

func (i *Invite) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// IsInbound reports whether the invite counts toward the inbox badge.
func (i *Invite) IsInbound() bool {
	return i.Category == CategoryReceived || i.Category == CategoryReviewRequest
}

// Clone returns a deep copy. Participants are owned by their invite, so
// edits always work on copies, never shared slices.
func (i Invite) Clone() Invite {
	out := i
	out.Participants = make([]Participant, len(i.Participants))
	copy(out.Participants, i.Participants)
	if i.LinkedMeetupID != nil {
		id := *i.LinkedMeetupID
		out.LinkedMeetupID = &id
	}
	return out
}

type Participant struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	InviteID       uuid.UUID `gorm:"type:uuid;index" json:"invite_id"`
	FriendID       uuid.UUID `gorm:"type:uuid" json:"friend_id"`
	DisplayName    string    `gorm:"not null;size:100" json:"display_name"`
	AvatarRef      string    `json:"avatar_ref,omitempty"`
	ResponseStatus string    `gorm:"default:pending;size:20" json:"response_status"` // pending, accepted, declined
	Position       int       `json:"position"` // display order within the invite
}

func (p *Participant) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// Request structs
type ComposeInviteRequest struct {
	Friends []string `json:"friends" binding:"required,min=1"` // user IDs
	Place   string   `json:"place" binding:"required"`
	Date    string   `json:"date" binding:"required"`
	Time    string   `json:"time" binding:"required"`
	Message string   `json:"message"`
}

type EditInviteRequest struct {
	Place              string              `json:"place"`
	Date               string              `json:"date"`
	Time               string              `json:"time"`
	AddParticipants    []ParticipantInput  `json:"add_participants"`
	RemoveParticipants []string            `json:"remove_participants"` // participant IDs
}

type ParticipantInput struct {
	FriendID    string `json:"friend_id"`
	DisplayName string `json:"display_name" binding:"required"`
	AvatarRef   string `json:"avatar_ref"`
}

// Response structs
type InboxResponse struct {
	Sent  []Invite `json:"sent"`
	Inbox []Invite `json:"inbox"`
	Badge int      `json:"badge"`
}
