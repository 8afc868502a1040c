package intake

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/dustinwells/sprinter-leads/pkg/common"
	"github.com/dustinwells/sprinter-leads/pkg/validation"
)

// Handler handles HTTP requests for contact form intake
type Handler struct {
	service *Service
}

// NewHandler creates a new intake handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Submit handles a contact form submission
func (h *Handler) Submit(c *gin.Context) {
	var req SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			common.ValidationErrorResponse(c, validation.NewValidationError(verrs).Errors)
			return
		}
		common.ErrorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}

	ip := c.ClientIP()
	if ip == "" {
		ip = "unknown"
	}

	submission, err := h.service.Submit(c.Request.Context(), &req, ip)
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "something went wrong")
		return
	}

	common.CreatedResponse(c, gin.H{"submission_id": submission.ID})
}
