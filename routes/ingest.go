package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"

	"safebill-backend/middleware"
	"safebill-backend/services"
	"safebill-backend/utils"
)

// IngestRequest feeds document text straight into the retrieval index
// without re-running extraction.
type IngestRequest struct {
	DocID string `json:"docId" binding:"required"`
	Text  string `json:"text" binding:"required,min=20"`
}

func SetupIngestRoutes(
	router *gin.Engine,
	chunker *services.ChunkerService,
	asynqClient *asynq.Client,
	authMiddleware *middleware.AuthMiddleware,
) {
	group := router.Group("/ingest")
	group.Use(authMiddleware.RequireAuth())

	// Chunk counts are computed inline so the caller gets immediate
	// feedback; embedding happens on the worker.
	group.POST("", func(c *gin.Context) {
		var req IngestRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "Invalid request data", gin.H{"error": err.Error()})
			return
		}

		userID := middleware.GetUserID(c)
		chunks := chunker.ChunkText(req.DocID, req.Text)

		if len(chunks) > 0 {
			enqueueIngest(asynqClient, req.DocID, userID, req.Text)
		}

		c.JSON(http.StatusOK, gin.H{
			"ok":      true,
			"chunks":  len(chunks),
			"message": "Document ingestion accepted. Embeddings will be processed asynchronously.",
		})
	})
}
