package handlers

import (
	"net/http"

	"hangout-backend/database"
	"hangout-backend/models"
	"hangout-backend/utils"

	"github.com/gin-gonic/gin"
)

// GET /api/activity — activity feed for current user
func GetActivity(c *gin.Context) {
	userID := utils.GetCurrentUserID(c)

	var pagination utils.PaginationQuery
	c.ShouldBindQuery(&pagination)

	var activities []models.Activity
	database.DB.Where("user_id = ?", userID).
		Preload("Actor").
		Order("created_at DESC").
		Offset(pagination.Offset()).
		Limit(pagination.Limit).
		Find(&activities)

	utils.SuccessResponse(c, http.StatusOK, "", activities)
}
