package handlers

import (
	"net/http"

	"hangout-backend/database"
	"hangout-backend/models"
	"hangout-backend/utils"

	"github.com/gin-gonic/gin"
)

// GET /api/events — upcoming events, newest first
func GetUpcomingEvents(c *gin.Context) {
	userID := utils.GetCurrentUserID(c)

	var pagination utils.PaginationQuery
	c.ShouldBindQuery(&pagination)

	var events []models.UpcomingEvent
	database.DB.Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset(pagination.Offset()).
		Limit(pagination.Limit).
		Find(&events)

	utils.SuccessResponse(c, http.StatusOK, "", events)
}
