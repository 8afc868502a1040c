package digest

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dustinwells/sprinter-leads/pkg/common"
)

// Handler handles the scheduled digest trigger
type Handler struct {
	service *Service
}

// NewHandler creates a new digest handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Run triggers a digest run. ?force=true bypasses the once-per-day guard.
func (h *Handler) Run(c *gin.Context) {
	force := c.Query("force") == "true"

	result, err := h.service.Run(c.Request.Context(), force)
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "digest run failed")
		return
	}

	common.SuccessResponse(c, result)
}
