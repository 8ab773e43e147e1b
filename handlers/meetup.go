package handlers

import (
	"fmt"
	"net/http"

	"hangout-backend/database"
	"hangout-backend/invites"
	"hangout-backend/models"
	"hangout-backend/services"
	"hangout-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// POST /api/meetups — record a completed hangout in the ledger and
// prompt attendees for reviews
func RecordMeetup(c *gin.Context) {
	userID := utils.GetCurrentUserID(c)

	var req models.RecordMeetupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	meetup := models.Meetup{
		ID:            uuid.New(),
		HostID:        userID,
		Title:         req.Title,
		Place:         req.Place,
		ImageCategory: invites.ClassifyPlace(req.Place),
		Date:          req.Date,
	}
	for _, input := range req.Attendees {
		attendeeID, err := uuid.Parse(input.UserID)
		if err != nil {
			utils.BadRequest(c, "Invalid attendee ID")
			return
		}
		meetup.Attendees = append(meetup.Attendees, models.MeetupAttendee{
			ID:        uuid.New(),
			MeetupID:  meetup.ID,
			UserID:    attendeeID,
			Name:      input.Name,
			AvatarRef: input.AvatarRef,
		})
	}

	if err := database.DB.Create(&meetup).Error; err != nil {
		utils.InternalError(c, "Failed to record meetup")
		return
	}

	// Fan out review prompts to everyone who was there.
	for _, attendee := range meetup.Attendees {
		meetupID := meetup.ID
		prompt := models.Invite{
			ID:             uuid.New(),
			UserID:         attendee.UserID,
			Category:       models.CategoryReviewRequest,
			Place:          meetup.Place,
			Date:           meetup.Date,
			Note:           fmt.Sprintf("How was \"%s\"?", meetup.Title),
			LinkedMeetupID: &meetupID,
			Participants: []models.Participant{{
				ID:          uuid.New(),
				FriendID:    meetup.HostID,
				DisplayName: meetup.Title,
				AvatarRef:   meetup.ImageCategory,
			}},
		}
		prompt.Participants[0].InviteID = prompt.ID
		if err := database.DB.Create(&prompt).Error; err != nil {
			continue
		}

		if live, ok := services.GetSessionManager().Peek(attendee.UserID); ok {
			live.Coordinator.AddInvite(prompt)
		}
		var user models.User
		if err := database.DB.First(&user, "id = ?", attendee.UserID).Error; err == nil {
			go services.GetNotificationService().NotifyReviewRequest(user, meetup)
		}
	}

	database.DB.Create(&models.Activity{
		UserID:      userID,
		ActorID:     userID,
		Type:        "meetup_recorded",
		ReferenceID: meetup.ID,
		Description: fmt.Sprintf("Recorded \"%s\" at %s", meetup.Title, meetup.Place),
	})

	utils.SuccessResponse(c, http.StatusCreated, "Meetup recorded", meetup)
}

// GET /api/meetups/:id
func GetMeetup(c *gin.Context) {
	meetupID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid meetup ID")
		return
	}

	var meetup models.Meetup
	if err := database.DB.Preload("Attendees").First(&meetup, "id = ?", meetupID).Error; err != nil {
		utils.NotFound(c, "Meetup not found")
		return
	}

	var review models.Review
	reviewErr := database.DB.First(&review, "meetup_id = ?", meetupID).Error

	response := gin.H{"meetup": meetup}
	if reviewErr == nil {
		response["review"] = review
	}
	utils.SuccessResponse(c, http.StatusOK, "", response)
}

// POST /api/meetups/:id/review
func SubmitReview(c *gin.Context) {
	userID := utils.GetCurrentUserID(c)
	meetupID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid meetup ID")
		return
	}

	var req models.SubmitReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	session, err := services.GetSessionManager().ForUser(userID)
	if err != nil {
		utils.InternalError(c, "Failed to load session")
		return
	}

	review := models.Review{
		Mood:        req.Mood,
		CommentText: req.CommentText,
		PhotoRefs:   req.PhotoRefs,
	}
	if err := session.Coordinator.SubmitReview(meetupID, review); err != nil {
		respondCoordinatorError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusCreated, "Review submitted", nil)
}
