package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-timetable-api/internal/models"
	"github.com/noah-isme/campus-timetable-api/pkg/response"
)

// TimeGridHandler lists the configured time grid catalogs.
type TimeGridHandler struct {
	catalogs *models.CatalogRegistry
}

// NewTimeGridHandler constructs the handler.
func NewTimeGridHandler(catalogs *models.CatalogRegistry) *TimeGridHandler {
	return &TimeGridHandler{catalogs: catalogs}
}

// List godoc
// @Summary List time grid catalogs
// @Tags Occupancy
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /time-grid [get]
func (h *TimeGridHandler) List(c *gin.Context) {
	response.OK(c, h.catalogs.Views(), nil)
}
