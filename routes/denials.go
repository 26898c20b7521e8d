package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"safebill-backend/internal/logger"
	"safebill-backend/middleware"
	"safebill-backend/services"
	"safebill-backend/utils"
)

type AnalyzeDenialRequest struct {
	ClaimID string `json:"claimId" binding:"required"`
	RawText string `json:"rawText" binding:"required,min=20"`
}

func SetupDenialRoutes(
	router *gin.Engine,
	denials *services.DenialService,
	authMiddleware *middleware.AuthMiddleware,
) {
	group := router.Group("/denials")
	group.Use(authMiddleware.RequireAuth())

	group.POST("/analyze", func(c *gin.Context) {
		var req AnalyzeDenialRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "Invalid request data", gin.H{"error": err.Error()})
			return
		}

		denial, err := denials.AnalyzeDenial(c.Request.Context(), req.ClaimID, req.RawText)
		if err != nil {
			logger.Error("Failed to analyze denial", "claim_id", req.ClaimID, "error", err)
			utils.RespondWithInternalError(c, "Failed to analyze denial", nil)
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true, "denial": denial})
	})
}
