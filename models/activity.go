package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Activity struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID `gorm:"type:uuid;index" json:"user_id"` // whose feed this row belongs to
	ActorID     uuid.UUID `gorm:"type:uuid" json:"actor_id"`
	Actor       User      `gorm:"foreignKey:ActorID" json:"actor,omitempty"`
	Type        string    `gorm:"not null;size:30" json:"type"` // invite_sent, invite_accepted, invite_declined, counter_proposed, review_submitted, meetup_recorded
	ReferenceID uuid.UUID `gorm:"type:uuid" json:"reference_id,omitempty"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

func (a *Activity) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
