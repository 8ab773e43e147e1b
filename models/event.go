package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UpcomingEvent is an accepted hangout, materialized when the accept
// confirmation window expires.
type UpcomingEvent struct {
	ID                     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID                 uuid.UUID `gorm:"type:uuid;index" json:"user_id"`
	SourceInviteID         uuid.UUID `gorm:"type:uuid" json:"source_invite_id"`
	Title                  string    `gorm:"not null;size:255" json:"title"`
	PrimaryParticipantName string    `gorm:"size:100" json:"primary_participant_name"`
	Place                  string    `gorm:"size:255" json:"place"`
	Date                   string    `gorm:"size:50" json:"date"`
	Time                   string    `gorm:"size:50" json:"time"`
	ImageCategory          string    `gorm:"size:30" json:"image_category"`
	CreatedAt              time.Time `json:"created_at"`
}

func (e *UpcomingEvent) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
