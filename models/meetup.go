package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Meetup is a completed hangout recorded in the ledger. Review request
// invites link back to these rows.
type Meetup struct {
	ID            uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	HostID        uuid.UUID        `gorm:"type:uuid;index" json:"host_id"`
	Title         string           `gorm:"not null;size:255" json:"title"`
	Place         string           `gorm:"size:255" json:"place"`
	ImageCategory string           `gorm:"size:30" json:"image_category"`
	Date          string           `gorm:"size:50" json:"date"`
	Attendees     []MeetupAttendee `gorm:"foreignKey:MeetupID;constraint:OnDelete:CASCADE" json:"attendees"`
	CreatedAt     time.Time        `json:"created_at"`
}

func (m *Meetup) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

type MeetupAttendee struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	MeetupID  uuid.UUID `gorm:"type:uuid;index" json:"meetup_id"`
	UserID    uuid.UUID `gorm:"type:uuid" json:"user_id"`
	Name      string    `gorm:"size:100" json:"name"`
	AvatarRef string    `json:"avatar_ref,omitempty"`
}

func (ma *MeetupAttendee) BeforeCreate(tx *gorm.DB) error {
	if ma.ID == uuid.Nil {
		ma.ID = uuid.New()
	}
	return nil
}

// Request structs
type RecordMeetupRequest struct {
	Title     string          `json:"title" binding:"required"`
	Place     string          `json:"place" binding:"required"`
	Date      string          `json:"date" binding:"required"`
	Attendees []AttendeeInput `json:"attendees" binding:"required,min=1"`
}

type AttendeeInput struct {
	UserID    string `json:"user_id" binding:"required"`
	Name      string `json:"name" binding:"required"`
	AvatarRef string `json:"avatar_ref"`
}
