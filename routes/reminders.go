package routes

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"safebill-backend/internal/logger"
	"safebill-backend/middleware"
	"safebill-backend/models"
	"safebill-backend/services"
	"safebill-backend/utils"
)

// ScheduleReminderRequest schedules reminders for a document. For expiry
// reminders warrantyEnd takes precedence over triggerAt; for one-off types
// triggerAt is required.
type ScheduleReminderRequest struct {
	DocID       string  `json:"docId" binding:"required"`
	ItemID      *string `json:"itemId"`
	TriggerType string  `json:"triggerType" binding:"omitempty,oneof=expiry followup custom"`
	TriggerAt   *string `json:"triggerAt"`
	WarrantyEnd *string `json:"warrantyEnd"`
}

func SetupReminderRoutes(
	router *gin.Engine,
	reminders *services.ReminderService,
	authMiddleware *middleware.AuthMiddleware,
) {
	group := router.Group("/reminders")
	group.Use(authMiddleware.RequireAuth())

	group.POST("/schedule", func(c *gin.Context) {
		var req ScheduleReminderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "Invalid request data", gin.H{"error": err.Error()})
			return
		}

		userID := middleware.GetUserID(c)
		triggerType := req.TriggerType
		if triggerType == "" {
			triggerType = models.TriggerExpiry
		}

		if triggerType == models.TriggerExpiry {
			end := req.WarrantyEnd
			if end == nil {
				end = req.TriggerAt
			}
			scheduled, err := reminders.ScheduleExpiryReminders(c.Request.Context(), userID, req.DocID, req.ItemID, end)
			if err != nil {
				utils.RespondWithBadRequest(c, "Failed to schedule expiry reminders", gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusOK, gin.H{"ok": true, "reminders": scheduled})
			return
		}

		triggerAt := time.Now()
		if req.TriggerAt != nil {
			parsed, err := time.Parse(time.RFC3339, *req.TriggerAt)
			if err != nil {
				utils.RespondWithBadRequest(c, "triggerAt must be RFC 3339", gin.H{"error": err.Error()})
				return
			}
			triggerAt = parsed
		}

		reminder, err := reminders.ScheduleOneOff(c.Request.Context(), userID, req.DocID, req.ItemID, triggerType, triggerAt)
		if err != nil {
			logger.Error("Failed to schedule reminder", "doc_id", req.DocID, "error", err)
			utils.RespondWithInternalError(c, "Failed to schedule reminder", nil)
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true, "reminders": []models.ReminderConfig{*reminder}})
	})

	group.GET("", func(c *gin.Context) {
		userID := middleware.GetUserID(c)
		list, err := reminders.ListReminders(c.Request.Context(), userID)
		if err != nil {
			logger.Error("Failed to list reminders", "user_id", userID, "error", err)
			utils.RespondWithInternalError(c, "Failed to list reminders", nil)
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true, "reminders": list})
	})
}
