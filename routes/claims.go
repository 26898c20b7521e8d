package routes

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"safebill-backend/internal/logger"
	"safebill-backend/internal/store"
	"safebill-backend/middleware"
	"safebill-backend/models"
	"safebill-backend/services"
	"safebill-backend/utils"
)

type GenerateClaimRequest struct {
	DocID            string `json:"docId" binding:"required"`
	ItemID           string `json:"itemId" binding:"required"`
	IssueDescription string `json:"issueDescription" binding:"required,min=10"`
}

func SetupClaimRoutes(
	router *gin.Engine,
	claims *services.ClaimService,
	st store.Store,
	authMiddleware *middleware.AuthMiddleware,
) {
	group := router.Group("/claims")
	group.Use(authMiddleware.RequireAuth())

	group.POST("/generate", func(c *gin.Context) {
		var req GenerateClaimRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "Invalid request data", gin.H{"error": err.Error()})
			return
		}

		userID := middleware.GetUserID(c)
		doc, err := st.GetDocument(c.Request.Context(), req.DocID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				utils.RespondWithNotFound(c, "Document not found")
				return
			}
			utils.RespondWithInternalError(c, "Failed to load document", nil)
			return
		}
		if doc.UserID != userID {
			utils.RespondWithNotFound(c, "Document not found")
			return
		}

		var item *models.WarrantyItem
		for i := range doc.Items {
			if doc.Items[i].ItemID == req.ItemID {
				item = &doc.Items[i]
				break
			}
		}
		if item == nil {
			utils.RespondWithNotFound(c, "Warranty item not found")
			return
		}

		claim, err := claims.CreateClaim(c.Request.Context(), userID, doc, item, req.IssueDescription)
		if err != nil {
			logger.Error("Failed to create claim", "doc_id", req.DocID, "error", err)
			utils.RespondWithInternalError(c, "Failed to create claim", nil)
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true, "claim": claim})
	})
}
