package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-timetable-api/internal/dto"
	appErrors "github.com/noah-isme/campus-timetable-api/pkg/errors"
	"github.com/noah-isme/campus-timetable-api/pkg/response"
)

type semesterScheduler interface {
	CreateSemesterSchedule(ctx context.Context, req dto.CreateSemesterScheduleRequest) (*dto.ScheduleCreationResult, error)
	PreviewSemesterSchedule(ctx context.Context, req dto.CreateSemesterScheduleRequest) (*dto.SchedulePreviewResult, error)
}

// SemesterScheduleHandler exposes semester schedule creation.
type SemesterScheduleHandler struct {
	service semesterScheduler
	logger  *zap.Logger
}

// NewSemesterScheduleHandler constructs the handler.
func NewSemesterScheduleHandler(svc semesterScheduler, logger *zap.Logger) *SemesterScheduleHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SemesterScheduleHandler{service: svc, logger: logger}
}

// Create godoc
// @Summary Create a recurring course across a semester
// @Description Expands the weekly or biweekly pattern and persists every conflict-free date. Conflicting dates are reported in the result; 201 when at least one session was created.
// @Tags Scheduling
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.CreateSemesterScheduleRequest true "Semester schedule payload"
// @Success 201 {object} response.Envelope
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /semester-schedules [post]
func (h *SemesterScheduleHandler) Create(c *gin.Context) {
	var req dto.CreateSemesterScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid semester schedule payload"))
		return
	}
	result, err := h.service.CreateSemesterSchedule(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.logger.Info("semester schedule requested", append(actorFields(c),
		zap.Int("created", result.CreatedCount),
		zap.Int("conflicts", result.ConflictsCount),
	)...)

	status := http.StatusOK
	if result.CreatedCount > 0 {
		status = http.StatusCreated
	}
	response.JSON(c, status, result, nil, nil)
}

// Preview godoc
// @Summary Preview a semester schedule without writing
// @Tags Scheduling
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.CreateSemesterScheduleRequest true "Semester schedule payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /semester-schedules/preview [post]
func (h *SemesterScheduleHandler) Preview(c *gin.Context) {
	var req dto.CreateSemesterScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid semester schedule payload"))
		return
	}
	result, err := h.service.PreviewSemesterSchedule(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, result, nil)
}
