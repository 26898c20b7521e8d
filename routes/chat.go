package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"safebill-backend/internal/logger"
	"safebill-backend/internal/telemetry"
	"safebill-backend/middleware"
	"safebill-backend/models"
	"safebill-backend/services"
	"safebill-backend/utils"
)

func SetupChatRoutes(
	router *gin.Engine,
	chat *services.ChatService,
	metrics *telemetry.Metrics,
	authMiddleware *middleware.AuthMiddleware,
) {
	group := router.Group("/chat")
	group.Use(authMiddleware.RequireAuth())

	group.POST("/query", func(c *gin.Context) {
		var req models.ChatRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "Invalid request data", gin.H{"error": err.Error()})
			return
		}

		userID := middleware.GetUserID(c)
		response, err := chat.AnswerQuestion(c.Request.Context(), userID, req.Question)
		if err != nil {
			logger.Error("Chat answering failed", "user_id", userID, "error", err)
			utils.RespondWithInternalError(c, "Failed to answer question", nil)
			return
		}

		if metrics != nil {
			metrics.RecordQuestionAnswered(len(response.Sources) > 0)
		}
		c.JSON(http.StatusOK, gin.H{"ok": true, "answer": response.Answer, "sources": response.Sources})
	})
}
