package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-timetable-api/internal/dto"
	"github.com/noah-isme/campus-timetable-api/internal/middleware"
	"github.com/noah-isme/campus-timetable-api/internal/models"
	"github.com/noah-isme/campus-timetable-api/internal/service"
	appErrors "github.com/noah-isme/campus-timetable-api/pkg/errors"
	"github.com/noah-isme/campus-timetable-api/pkg/response"
)

type occupancyReader interface {
	GetOccupancy(ctx context.Context, query dto.OccupancyQuery) (*models.OccupancyResult, bool, error)
}

type occupancyExporter interface {
	ExportOccupancy(ctx context.Context, query dto.ExportOccupancyQuery) (*service.ExportFile, error)
}

// OccupancyHandler serves weekly occupancy grids.
type OccupancyHandler struct {
	occupancy occupancyReader
	exporter  occupancyExporter
}

// NewOccupancyHandler constructs the handler.
func NewOccupancyHandler(occupancy occupancyReader, exporter occupancyExporter) *OccupancyHandler {
	return &OccupancyHandler{occupancy: occupancy, exporter: exporter}
}

// Get godoc
// @Summary Weekly occupancy grid
// @Description Without roomId, teacherId or groupId every room matching building and roomType is returned. Sessions that do not fit the grid appear in warnings.
// @Tags Occupancy
// @Produce json
// @Security BearerAuth
// @Param roomId query string false "Room"
// @Param teacherId query string false "Teacher"
// @Param groupId query string false "Student group"
// @Param weekOffset query int false "Weeks relative to the current week"
// @Param catalog query string false "Time grid catalog"
// @Param building query string false "Building filter for all-rooms mode"
// @Param roomType query string false "Room type filter for all-rooms mode"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /occupancy [get]
func (h *OccupancyHandler) Get(c *gin.Context) {
	var query dto.OccupancyQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid query parameters"))
		return
	}
	result, hit, err := h.occupancy.GetOccupancy(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, hit)
	response.OK(c, result, middleware.ExtractMeta(c))
}

// Export godoc
// @Summary Download the weekly occupancy grid
// @Tags Occupancy
// @Produce text/csv
// @Produce application/pdf
// @Security BearerAuth
// @Param roomId query string false "Room"
// @Param teacherId query string false "Teacher"
// @Param groupId query string false "Student group"
// @Param weekOffset query int false "Weeks relative to the current week"
// @Param catalog query string false "Time grid catalog"
// @Param building query string false "Building filter for all-rooms mode"
// @Param roomType query string false "Room type filter for all-rooms mode"
// @Param format query string false "csv (default) or pdf"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /occupancy/export [get]
func (h *OccupancyHandler) Export(c *gin.Context) {
	var query dto.ExportOccupancyQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid query parameters"))
		return
	}
	file, err := h.exporter.ExportOccupancy(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Data)
}
