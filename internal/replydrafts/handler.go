package replydrafts

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dustinwells/sprinter-leads/pkg/common"
	"github.com/dustinwells/sprinter-leads/pkg/logger"
	"github.com/dustinwells/sprinter-leads/pkg/validation"
)

// RecordRequest is the payload posted by the mailbox automation whenever it
// drops a reply draft for a lead.
type RecordRequest struct {
	ReplyType    string `json:"reply_type" binding:"required,oneof=first follow-up"`
	FromName     string `json:"from_name" binding:"omitempty,max=200"`
	FromEmail    string `json:"from_email" binding:"required,email"`
	ReplySnippet string `json:"reply_snippet" binding:"omitempty,max=500"`
}

// Handler records reply drafts reported by the mailbox automation
type Handler struct {
	repo   RepositoryInterface
	siteID string
}

// NewHandler creates a new reply-draft handler
func NewHandler(repo RepositoryInterface, siteID string) *Handler {
	return &Handler{repo: repo, siteID: siteID}
}

// Record stores one reply draft for the digest to pick up.
func (h *Handler) Record(c *gin.Context) {
	var req RecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			common.ValidationErrorResponse(c, validation.NewValidationError(verrs).Errors)
			return
		}
		common.ErrorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}

	draft := &Draft{
		ID:           uuid.New(),
		SiteID:       h.siteID,
		ReplyType:    req.ReplyType,
		FromName:     req.FromName,
		FromEmail:    req.FromEmail,
		ReplySnippet: req.ReplySnippet,
	}

	if err := h.repo.Create(c.Request.Context(), draft); err != nil {
		logger.WithContext(c.Request.Context()).Error("failed to record reply draft", zap.Error(err))
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to record reply draft")
		return
	}

	common.CreatedResponse(c, gin.H{"draft_id": draft.ID})
}
