package routes

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"safebill-backend/internal/logger"
	"safebill-backend/middleware"
	"safebill-backend/services"
	"safebill-backend/utils"
)

type ExportDataRequest struct {
	Format string `json:"format" binding:"omitempty,oneof=json excel"`
}

type DeleteDataRequest struct {
	Confirm bool `json:"confirm" binding:"required"`
}

func SetupDataRoutes(
	router *gin.Engine,
	export *services.ExportService,
	authMiddleware *middleware.AuthMiddleware,
) {
	group := router.Group("/data")
	group.Use(authMiddleware.RequireAuth())

	group.POST("/export", func(c *gin.Context) {
		var req ExportDataRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "Invalid request data", gin.H{"error": err.Error()})
			return
		}
		if req.Format == "" {
			req.Format = "json"
		}

		userID := middleware.GetUserID(c)
		filename := fmt.Sprintf("safebill-export-%s-%d", userID, time.Now().Unix())

		switch req.Format {
		case "excel":
			raw, err := export.ExportExcel(c.Request.Context(), userID)
			if err != nil {
				logger.Error("Excel export failed", "user_id", userID, "error", err)
				utils.RespondWithInternalError(c, "Failed to export data", nil)
				return
			}
			c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename+".xlsx"))
			c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", raw)
		default:
			raw, err := export.ExportJSON(c.Request.Context(), userID)
			if err != nil {
				logger.Error("JSON export failed", "user_id", userID, "error", err)
				utils.RespondWithInternalError(c, "Failed to export data", nil)
				return
			}
			c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename+".json"))
			c.Data(http.StatusOK, "application/json", raw)
		}
	})

	group.POST("/delete", func(c *gin.Context) {
		var req DeleteDataRequest
		if err := c.ShouldBindJSON(&req); err != nil || !req.Confirm {
			utils.RespondWithBadRequest(c, "Deletion must be confirmed", nil)
			return
		}

		userID := middleware.GetUserID(c)
		report, err := export.DeleteUserData(c.Request.Context(), userID)
		if err != nil {
			logger.Error("User data deletion failed", "user_id", userID, "error", err)
			utils.RespondWithInternalError(c, "Failed to delete data", nil)
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true, "deleted": report})
	})
}
