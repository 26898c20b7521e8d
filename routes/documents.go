package routes

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"

	"safebill-backend/internal/logger"
	"safebill-backend/internal/queue"
	"safebill-backend/internal/store"
	"safebill-backend/internal/telemetry"
	"safebill-backend/middleware"
	"safebill-backend/models"
	"safebill-backend/services"
	"safebill-backend/utils"
)

// ExtractRequest is the inbound invoice payload. DocID is optional; one is
// generated when absent so re-submission of the same text stays idempotent
// per document.
type ExtractRequest struct {
	DocID   string `json:"docId"`
	RawText string `json:"rawText" binding:"required,min=10"`
}

func SetupDocumentRoutes(
	router *gin.Engine,
	extraction *services.ExtractionService,
	reminders *services.ReminderService,
	st store.Store,
	asynqClient *asynq.Client,
	metrics *telemetry.Metrics,
	authMiddleware *middleware.AuthMiddleware,
) {
	documents := router.Group("/documents")
	documents.Use(authMiddleware.RequireAuth())

	documents.POST("/extract", func(c *gin.Context) {
		var req ExtractRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "Invalid request data", gin.H{"error": err.Error()})
			return
		}

		userID := middleware.GetUserID(c)
		docID := req.DocID
		if docID == "" {
			docID = utils.GenerateID("doc")
		}

		doc, err := extraction.ExtractDocument(c.Request.Context(), userID, docID, req.RawText)
		if err != nil {
			if errors.Is(err, services.ErrNoItems) {
				if metrics != nil {
					metrics.RecordDocumentParsed("no_items")
				}
				utils.RespondWithExtractionFailure(c)
				return
			}
			logger.Error("Document extraction failed", "doc_id", docID, "error", err)
			if metrics != nil {
				metrics.RecordDocumentParsed("error")
			}
			utils.RespondWithInternalError(c, "Failed to extract document", nil)
			return
		}
		if metrics != nil {
			metrics.RecordDocumentParsed(doc.Status)
		}

		scheduled := []models.ReminderConfig{}
		for _, item := range doc.Items {
			itemID := item.ItemID
			batch, err := reminders.ScheduleExpiryReminders(c.Request.Context(), userID, doc.DocID, &itemID, item.WarrantyEnd)
			if err != nil {
				logger.Warn("Failed to schedule expiry reminders", "doc_id", doc.DocID, "error", err)
				continue
			}
			scheduled = append(scheduled, batch...)
		}

		enqueueIngest(asynqClient, doc.DocID, userID, req.RawText)

		c.JSON(http.StatusOK, gin.H{
			"ok":        true,
			"document":  doc,
			"reminders": scheduled,
		})
	})

	documents.GET("", func(c *gin.Context) {
		userID := middleware.GetUserID(c)
		docs, err := st.ListDocuments(c.Request.Context(), userID)
		if err != nil {
			logger.Error("Failed to list documents", "user_id", userID, "error", err)
			utils.RespondWithInternalError(c, "Failed to list documents", nil)
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true, "documents": docs})
	})

	documents.GET("/:docId", func(c *gin.Context) {
		userID := middleware.GetUserID(c)
		doc, err := st.GetDocument(c.Request.Context(), c.Param("docId"))
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
		c.JSON(http.StatusOK, gin.H{"ok": true, "document": doc})
	})
}

// enqueueIngest hands the raw text to the background embedding pipeline.
// Queue trouble never fails the extract response; retrieval simply lags.
func enqueueIngest(client *asynq.Client, docID, userID, text string) {
	if client == nil {
		logger.Warn("Task queue not configured; skipping ingest", "doc_id", docID)
		return
	}
	task, err := queue.NewIngestEmbedTask(docID, userID, text)
	if err != nil {
		logger.Error("Failed to build ingest task", "doc_id", docID, "error", err)
		return
	}
	if _, err := client.Enqueue(task); err != nil {
		logger.Error("Failed to enqueue ingest task", "doc_id", docID, "error", err)
	}
}
