package admin

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/dustinwells/sprinter-leads/internal/fraud"
	"github.com/dustinwells/sprinter-leads/internal/review"
	"github.com/dustinwells/sprinter-leads/pkg/common"
	"github.com/dustinwells/sprinter-leads/pkg/middleware"
	"github.com/dustinwells/sprinter-leads/pkg/pagination"
	"github.com/dustinwells/sprinter-leads/pkg/validation"
)

// Handler handles HTTP requests for the admin dashboard
type Handler struct {
	service *Service
	secure  bool
}

// NewHandler creates a new admin handler. secure controls the session
// cookie's Secure attribute and should be true everywhere except local
// development.
func NewHandler(service *Service, secure bool) *Handler {
	return &Handler{service: service, secure: secure}
}

// Login verifies the password and sets the session cookie
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "password required")
		return
	}

	token, expiresAt, err := h.service.Login(req.Password)
	if err != nil {
		var appErr *common.AppError
		if errors.As(err, &appErr) {
			common.AppErrorResponse(c, appErr)
			return
		}
		common.ErrorResponse(c, http.StatusInternalServerError, "login failed")
		return
	}

	maxAge := int(time.Until(expiresAt).Seconds())
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(middleware.SessionCookieName, token, maxAge, "/", "", h.secure, true)

	common.SuccessResponse(c, gin.H{"expires_at": expiresAt})
}

// Logout clears the session cookie
func (h *Handler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(middleware.SessionCookieName, "", -1, "/", "", h.secure, true)
	common.SuccessResponse(c, gin.H{"logged_out": true})
}

// List returns the filtered, paginated lead list
func (h *Handler) List(c *gin.Context) {
	filter := ListFilter{
		Status: c.Query("status"),
		Risk:   c.Query("risk"),
	}
	if filter.Status != "" && !review.ValidStatus(filter.Status) {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid status filter")
		return
	}
	if filter.Risk != "" && !fraud.ValidFlag(filter.Risk) {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid risk filter")
		return
	}

	params := pagination.ParseParams(c)

	leads, meta, err := h.service.List(c.Request.Context(), filter, params)
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to list submissions")
		return
	}

	common.SuccessResponseWithMeta(c, leads, meta)
}

// Get returns a single lead
func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid submission ID")
		return
	}

	lead, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		h.renderError(c, err, "failed to get submission")
		return
	}

	common.SuccessResponse(c, lead)
}

// Update applies a partial review-state change
func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid submission ID")
		return
	}

	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			common.ValidationErrorResponse(c, validation.NewValidationError(verrs).Errors)
			return
		}
		common.ErrorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}

	state, err := h.service.Update(c.Request.Context(), id, &req)
	if err != nil {
		h.renderError(c, err, "failed to update submission")
		return
	}

	common.SuccessResponse(c, state)
}

// Delete removes a submission
func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid submission ID")
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		h.renderError(c, err, "failed to delete submission")
		return
	}

	common.SuccessResponse(c, gin.H{"deleted": true})
}

func (h *Handler) renderError(c *gin.Context, err error, fallback string) {
	var appErr *common.AppError
	if errors.As(err, &appErr) {
		common.AppErrorResponse(c, appErr)
		return
	}
	common.ErrorResponse(c, http.StatusInternalServerError, fallback)
}
