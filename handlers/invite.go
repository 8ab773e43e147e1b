package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"hangout-backend/database"
	"hangout-backend/invites"
	"hangout-backend/models"
	"hangout-backend/services"
	"hangout-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// POST /api/invites — compose a new hangout invite
func ComposeInvite(c *gin.Context) {
	userID := utils.GetCurrentUserID(c)

	var req models.ComposeInviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	var sender models.User
	if err := database.DB.First(&sender, "id = ?", userID).Error; err != nil {
		utils.NotFound(c, "User not found")
		return
	}

	var friends []models.User
	for _, friendInput := range req.Friends {
		friendID, err := uuid.Parse(friendInput)
		if err != nil {
			utils.BadRequest(c, "Invalid friend ID")
			return
		}
		var friend models.User
		if err := database.DB.First(&friend, "id = ?", friendID).Error; err != nil {
			utils.NotFound(c, "Friend not found")
			return
		}
		friends = append(friends, friend)
	}

	// The sender's copy: participants are the invited friends, the
	// sender stays implicit.
	sent := models.Invite{
		ID:       uuid.New(),
		UserID:   userID,
		Category: models.CategorySent,
		Place:    req.Place,
		Date:     req.Date,
		Time:     req.Time,
		Note:     req.Message,
	}
	for i, friend := range friends {
		sent.Participants = append(sent.Participants, models.Participant{
			ID:             uuid.New(),
			InviteID:       sent.ID,
			FriendID:       friend.ID,
			DisplayName:    friend.Name,
			AvatarRef:      friend.AvatarRef,
			ResponseStatus: models.ResponsePending,
			Position:       i,
		})
	}
	if err := database.DB.Create(&sent).Error; err != nil {
		utils.InternalError(c, "Failed to create invite")
		return
	}

	session, err := services.GetSessionManager().ForUser(userID)
	if err != nil {
		utils.InternalError(c, "Failed to load session")
		return
	}
	session.Coordinator.AddInvite(sent)

	// Each recipient gets a received invite with the sender as its
	// single participant.
	for _, friend := range friends {
		received := models.Invite{
			ID:       uuid.New(),
			UserID:   friend.ID,
			Category: models.CategoryReceived,
			Place:    req.Place,
			Date:     req.Date,
			Time:     req.Time,
			Note:     req.Message,
			Participants: []models.Participant{{
				ID:             uuid.New(),
				FriendID:       sender.ID,
				DisplayName:    sender.Name,
				AvatarRef:      sender.AvatarRef,
				ResponseStatus: models.ResponsePending,
			}},
		}
		received.Participants[0].InviteID = received.ID
		if err := database.DB.Create(&received).Error; err != nil {
			continue
		}

		if live, ok := services.GetSessionManager().Peek(friend.ID); ok {
			live.Coordinator.AddInvite(received)
		}
		go services.GetNotificationService().NotifyInviteReceived(friend, sender, received)
	}

	database.DB.Create(&models.Activity{
		UserID:      userID,
		ActorID:     userID,
		Type:        "invite_sent",
		ReferenceID: sent.ID,
		Description: fmt.Sprintf("%s proposed %s on %s", sender.Name, req.Place, req.Date),
	})

	utils.SuccessResponse(c, http.StatusCreated, "Invite sent", sent)
}

// GET /api/invites — the two inbox tabs
func GetInvites(c *gin.Context) {
	userID := utils.GetCurrentUserID(c)

	session, err := services.GetSessionManager().ForUser(userID)
	if err != nil {
		utils.InternalError(c, "Failed to load session")
		return
	}

	sent, inbox := session.Coordinator.Partition()
	utils.SuccessResponse(c, http.StatusOK, "", models.InboxResponse{
		Sent:  sent,
		Inbox: inbox,
		Badge: session.Coordinator.InboxCount(),
	})
}

// GET /api/invites/badge
func GetBadgeCount(c *gin.Context) {
	userID := utils.GetCurrentUserID(c)

	// Redis fast path; fall back to recomputing from the live session.
	if database.Redis != nil {
		key := fmt.Sprintf("badge:%s", userID)
		if cached, err := database.Redis.Get(context.Background(), key).Result(); err == nil {
			if count, err := strconv.Atoi(cached); err == nil {
				utils.SuccessResponse(c, http.StatusOK, "", gin.H{"badge": count})
				return
			}
		}
	}

	session, err := services.GetSessionManager().ForUser(userID)
	if err != nil {
		utils.InternalError(c, "Failed to load session")
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", gin.H{"badge": session.Coordinator.InboxCount()})
}

// POST /api/invites/:id/accept
func AcceptInvite(c *gin.Context) {
	respondToInvite(c, true)
}

// POST /api/invites/:id/decline
func DeclineInvite(c *gin.Context) {
	respondToInvite(c, false)
}

func respondToInvite(c *gin.Context, accept bool) {
	userID := utils.GetCurrentUserID(c)
	inviteID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid invite ID")
		return
	}

	session, err := services.GetSessionManager().ForUser(userID)
	if err != nil {
		utils.InternalError(c, "Failed to load session")
		return
	}

	var conf invites.Confirmation
	if accept {
		conf, err = session.Coordinator.RequestAccept(inviteID)
	} else {
		conf, err = session.Coordinator.RequestDecline(inviteID)
	}
	if errors.Is(err, invites.ErrAlreadyConfirming) {
		// Double submit: report the confirmation already in flight.
		pending, _ := session.Coordinator.PendingConfirmation(inviteID)
		utils.SuccessResponse(c, http.StatusOK, "Already confirming", pending)
		return
	}
	if err != nil {
		respondCoordinatorError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Confirming", conf)
}

// POST /api/invites/:id/undo
func UndoConfirmation(c *gin.Context) {
	userID := utils.GetCurrentUserID(c)
	inviteID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid invite ID")
		return
	}

	session, err := services.GetSessionManager().ForUser(userID)
	if err != nil {
		utils.InternalError(c, "Failed to load session")
		return
	}

	if !session.Coordinator.CancelConfirmation(inviteID) {
		utils.NotFound(c, "No pending confirmation for this invite")
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Confirmation cancelled", nil)
}

// PUT /api/invites/:id — edit a sent invite, or counter-propose on a
// received one
func EditInvite(c *gin.Context) {
	userID := utils.GetCurrentUserID(c)
	inviteID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid invite ID")
		return
	}

	var req models.EditInviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	changes := invites.EditChanges{
		Place: req.Place,
		Date:  req.Date,
		Time:  req.Time,
	}
	for _, input := range req.AddParticipants {
		friendID, _ := uuid.Parse(input.FriendID)
		changes.AddParticipants = append(changes.AddParticipants, models.Participant{
			FriendID:    friendID,
			DisplayName: input.DisplayName,
			AvatarRef:   input.AvatarRef,
		})
	}
	for _, pid := range req.RemoveParticipants {
		parsed, err := uuid.Parse(pid)
		if err != nil {
			utils.BadRequest(c, "Invalid participant ID")
			return
		}
		changes.RemoveParticipants = append(changes.RemoveParticipants, parsed)
	}

	session, err := services.GetSessionManager().ForUser(userID)
	if err != nil {
		utils.InternalError(c, "Failed to load session")
		return
	}

	conf, err := session.Coordinator.SubmitEdit(inviteID, changes)
	if err != nil {
		respondCoordinatorError(c, err)
		return
	}

	updated, _ := session.Coordinator.Get(inviteID)
	if conf != nil {
		// Counter-proposal: let the original sender know.
		go notifyCounterProposal(userID, updated)
		database.DB.Create(&models.Activity{
			UserID:      userID,
			ActorID:     userID,
			Type:        "counter_proposed",
			ReferenceID: inviteID,
			Description: updated.Note,
		})
	}

	utils.SuccessResponse(c, http.StatusOK, "Invite updated", gin.H{
		"invite":       updated,
		"confirmation": conf,
	})
}

func notifyCounterProposal(responderID uuid.UUID, invite models.Invite) {
	if len(invite.Participants) == 0 {
		return
	}
	var responder, sender models.User
	if err := database.DB.First(&responder, "id = ?", responderID).Error; err != nil {
		return
	}
	if err := database.DB.First(&sender, "id = ?", invite.Participants[0].FriendID).Error; err != nil {
		return
	}
	services.GetNotificationService().NotifyCounterProposal(sender, responder, invite)
}

// GET /api/invites/:id/review — resolve the meetup behind a review
// request
func OpenReviewRequest(c *gin.Context) {
	userID := utils.GetCurrentUserID(c)
	inviteID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid invite ID")
		return
	}

	session, err := services.GetSessionManager().ForUser(userID)
	if err != nil {
		utils.InternalError(c, "Failed to load session")
		return
	}

	meetup, err := session.Coordinator.OpenReviewRequest(inviteID)
	if err != nil {
		respondCoordinatorError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", meetup)
}

// DELETE /api/session — tear down the live session; pending
// confirmations are cancelled, not committed
func DropSession(c *gin.Context) {
	userID := utils.GetCurrentUserID(c)
	services.GetSessionManager().Drop(userID)
	utils.SuccessResponse(c, http.StatusOK, "Session closed", nil)
}

func respondCoordinatorError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, invites.ErrNotFound):
		utils.NotFound(c, "Invite not found")
	case errors.Is(err, invites.ErrWrongCategory):
		utils.BadRequest(c, "Operation not allowed for this invite")
	case errors.Is(err, invites.ErrEmptyParticipants):
		utils.BadRequest(c, "An invite must keep at least one participant")
	case errors.Is(err, invites.ErrAlreadyConfirming):
		utils.Conflict(c, "A confirmation is already in flight")
	case errors.Is(err, invites.ErrMeetupNotFound):
		utils.NotFound(c, "Meetup not found")
	case errors.Is(err, invites.ErrClosed):
		utils.Conflict(c, "Session closed")
	default:
		utils.InternalError(c, err.Error())
	}
}
