package services

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"hangout-backend/config"
	"hangout-backend/database"
	"hangout-backend/invites"
	"hangout-backend/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Session is one user's live inbox: the in-memory invite collection plus
// the coordinator that drives its lifecycle.
type Session struct {
	UserID      uuid.UUID
	Coordinator *invites.Coordinator
}

type SessionManager struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*Session
}

var sessionManager *SessionManager

func GetSessionManager() *SessionManager {
	if sessionManager == nil {
		sessionManager = &SessionManager{sessions: make(map[uuid.UUID]*Session)}
	}
	return sessionManager
}

// ForUser returns the user's live session, hydrating it from postgres on
// first use.
func (sm *SessionManager) ForUser(userID uuid.UUID) (*Session, error) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if session, ok := sm.sessions[userID]; ok {
		return session, nil
	}

	var rows []models.Invite
	err := database.DB.
		Where("user_id = ?", userID).
		Preload("Participants", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("hydrate invites: %w", err)
	}

	store := invites.NewStore(rows)
	coordinator := invites.NewCoordinator(invites.Config{
		Store:         store,
		Events:        &eventSink{userID: userID},
		Ledger:        &meetupLedger{},
		Reviews:       &reviewSink{userID: userID},
		Persistence:   &invitePersistence{},
		OnInboxCount:  badgeObserver(userID),
		ConfirmWindow: time.Duration(config.AppConfig.ConfirmWindowMS) * time.Millisecond,
	})

	session := &Session{UserID: userID, Coordinator: coordinator}
	sm.sessions[userID] = session
	return session, nil
}

// Peek returns a live session without hydrating one. Used when fanning
// out invites to recipients who may not be online.
func (sm *SessionManager) Peek(userID uuid.UUID) (*Session, bool) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	session, ok := sm.sessions[userID]
	return session, ok
}

// Drop closes a user's session, cancelling any pending confirmation
// timers so their deferred mutations never apply.
func (sm *SessionManager) Drop(userID uuid.UUID) {
	sm.mu.Lock()
	session, ok := sm.sessions[userID]
	delete(sm.sessions, userID)
	sm.mu.Unlock()

	if ok {
		session.Coordinator.Close()
	}
}

// ============================================================
// GORM-BACKED COLLABORATORS
// ============================================================

// eventSink materializes accepted invites as upcoming events.
type eventSink struct {
	userID uuid.UUID
}

func (s *eventSink) CreateUpcomingEvent(payload invites.EventPayload) {
	event := models.UpcomingEvent{
		UserID:                 s.userID,
		SourceInviteID:         payload.SourceInviteID,
		Title:                  payload.Title,
		PrimaryParticipantName: payload.PrimaryParticipantName,
		Place:                  payload.Place,
		Date:                   payload.Date,
		Time:                   payload.Time,
		ImageCategory:          payload.ImageCategory,
	}
	if err := database.DB.Create(&event).Error; err != nil {
		log.Printf("❌ Failed to create upcoming event: %v", err)
		return
	}

	database.DB.Create(&models.Activity{
		UserID:      s.userID,
		ActorID:     s.userID,
		Type:        "invite_accepted",
		ReferenceID: payload.SourceInviteID,
		Description: fmt.Sprintf("Accepted \"%s\" on %s", payload.Title, payload.Date),
	})
}

// meetupLedger resolves review-request links against the meetups table.
type meetupLedger struct{}

func (l *meetupLedger) FindMeetup(id uuid.UUID) (models.Meetup, bool) {
	var meetup models.Meetup
	err := database.DB.Preload("Attendees").First(&meetup, "id = ?", id).Error
	if err != nil {
		return models.Meetup{}, false
	}
	return meetup, true
}

// reviewSink upserts reviews keyed by meetup id, last write wins.
type reviewSink struct {
	userID uuid.UUID
}

func (s *reviewSink) SaveReview(review models.Review) {
	review.AuthorID = s.userID
	err := database.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "meetup_id"}},
		UpdateAll: true,
	}).Create(&review).Error
	if err != nil {
		log.Printf("❌ Failed to save review: %v", err)
		return
	}

	database.DB.Create(&models.Activity{
		UserID:      s.userID,
		ActorID:     s.userID,
		Type:        "review_submitted",
		ReferenceID: review.MeetupID,
		Description: fmt.Sprintf("Reviewed a meetup: %s", review.Mood),
	})
}

// invitePersistence mirrors in-memory invite mutations to postgres.
type invitePersistence struct{}

func (p *invitePersistence) InviteUpdated(inv models.Invite) {
	err := database.DB.Model(&models.Invite{}).Where("id = ?", inv.ID).Updates(map[string]interface{}{
		"place": inv.Place,
		"date":  inv.Date,
		"time":  inv.Time,
		"note":  inv.Note,
	}).Error
	if err != nil {
		log.Printf("❌ Failed to update invite %s: %v", inv.ID, err)
		return
	}

	// Participants are owned by the invite; rewrite the set wholesale so
	// edits (removals, appends) land in one shape.
	database.DB.Where("invite_id = ?", inv.ID).Delete(&models.Participant{})
	for i := range inv.Participants {
		inv.Participants[i].InviteID = inv.ID
		database.DB.Create(&inv.Participants[i])
	}
}

func (p *invitePersistence) InviteRemoved(id uuid.UUID) {
	database.DB.Where("invite_id = ?", id).Delete(&models.Participant{})
	database.DB.Where("id = ?", id).Delete(&models.Invite{})
}

// badgeObserver returns the single badge-count subscriber for a user:
// cache the fresh count in redis and nudge the client with a data push.
func badgeObserver(userID uuid.UUID) func(int) {
	return func(count int) {
		if database.Redis != nil {
			key := fmt.Sprintf("badge:%s", userID)
			if err := database.Redis.Set(context.Background(), key, count, 0).Err(); err != nil {
				log.Printf("⚠️  Failed to cache badge count: %v", err)
			}
		}

		var user models.User
		if err := database.DB.First(&user, "id = ?", userID).Error; err == nil {
			GetNotificationService().PushBadgeCount(user.FCMToken, count)
		}
	}
}
