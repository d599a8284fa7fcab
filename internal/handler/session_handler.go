package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-timetable-api/internal/dto"
	"github.com/noah-isme/campus-timetable-api/internal/models"
	appErrors "github.com/noah-isme/campus-timetable-api/pkg/errors"
	"github.com/noah-isme/campus-timetable-api/pkg/response"
)

type sessionManager interface {
	Get(ctx context.Context, id string) (*models.Session, error)
	List(ctx context.Context, query dto.SessionListQuery) ([]models.Session, *models.Pagination, error)
	ListRecurrenceGroup(ctx context.Context, groupID string) ([]models.Session, error)
	Cancel(ctx context.Context, id string, req dto.CancelSessionRequest) (*models.Session, error)
	Complete(ctx context.Context, id string) (*models.Session, error)
	CancelRecurrenceGroup(ctx context.Context, groupID string, req dto.CancelRecurrenceGroupRequest) (*dto.CancelRecurrenceGroupResult, error)
	CreateMakeup(ctx context.Context, req dto.CreateMakeupRequest) (*dto.MakeupResult, error)
}

// SessionHandler exposes individual session endpoints.
type SessionHandler struct {
	service sessionManager
	logger  *zap.Logger
}

// NewSessionHandler constructs the handler.
func NewSessionHandler(svc sessionManager, logger *zap.Logger) *SessionHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionHandler{service: svc, logger: logger}
}

// bindOptionalJSON accepts an empty body as the zero value.
func bindOptionalJSON(c *gin.Context, dest interface{}) error {
	if err := c.ShouldBindJSON(dest); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// List godoc
// @Summary List class sessions
// @Tags Sessions
// @Produce json
// @Security BearerAuth
// @Param from query string false "First date (YYYY-MM-DD)"
// @Param to query string false "Last date (YYYY-MM-DD)"
// @Param roomId query string false "Room"
// @Param teacherId query string false "Teacher"
// @Param groupId query string false "Student group"
// @Param status query string false "PLANNED, CANCELED, MAKEUP or COMPLETED"
// @Param recurrenceGroupId query string false "Recurrence group"
// @Param page query int false "Page"
// @Param pageSize query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /sessions [get]
func (h *SessionHandler) List(c *gin.Context) {
	var query dto.SessionListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid query parameters"))
		return
	}
	sessions, pagination, err := h.service.List(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sessions, pagination, nil)
}

// Get godoc
// @Summary Get a class session
// @Tags Sessions
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /sessions/{id} [get]
func (h *SessionHandler) Get(c *gin.Context) {
	session, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, session, nil)
}

// Cancel godoc
// @Summary Cancel a planned or makeup session
// @Tags Sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Param payload body dto.CancelSessionRequest false "Cancellation reason"
// @Success 200 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /sessions/{id}/cancel [post]
func (h *SessionHandler) Cancel(c *gin.Context) {
	var req dto.CancelSessionRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid cancel payload"))
		return
	}
	session, err := h.service.Cancel(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.logger.Info("session canceled", append(actorFields(c), zap.String("session_id", session.ID))...)
	response.OK(c, session, nil)
}

// Complete godoc
// @Summary Mark a session as held
// @Tags Sessions
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Success 200 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /sessions/{id}/complete [post]
func (h *SessionHandler) Complete(c *gin.Context) {
	session, err := h.service.Complete(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, session, nil)
}

// CreateMakeup godoc
// @Summary Schedule a single makeup session
// @Description Returns 201 with the session, or 200 with the conflicts that prevented it.
// @Tags Sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.CreateMakeupRequest true "Makeup payload"
// @Success 201 {object} response.Envelope
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /sessions/makeup [post]
func (h *SessionHandler) CreateMakeup(c *gin.Context) {
	var req dto.CreateMakeupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid makeup payload"))
		return
	}
	result, err := h.service.CreateMakeup(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	if !result.Success {
		response.OK(c, result, nil)
		return
	}
	h.logger.Info("makeup session created", append(actorFields(c), zap.String("session_id", result.Session.ID))...)
	response.Created(c, result)
}

// ListRecurrenceGroup godoc
// @Summary List the sessions of a recurrence group
// @Tags Sessions
// @Produce json
// @Security BearerAuth
// @Param id path string true "Recurrence group ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /recurrence-groups/{id}/sessions [get]
func (h *SessionHandler) ListRecurrenceGroup(c *gin.Context) {
	sessions, err := h.service.ListRecurrenceGroup(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, sessions, nil)
}

// CancelRecurrenceGroup godoc
// @Summary Cancel the remaining sessions of a recurrence group
// @Tags Sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Recurrence group ID"
// @Param payload body dto.CancelRecurrenceGroupRequest false "Cancellation options"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /recurrence-groups/{id}/cancel [post]
func (h *SessionHandler) CancelRecurrenceGroup(c *gin.Context) {
	var req dto.CancelRecurrenceGroupRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid cancel payload"))
		return
	}
	result, err := h.service.CancelRecurrenceGroup(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.logger.Info("recurrence group canceled", append(actorFields(c),
		zap.String("recurrence_group_id", result.RecurrenceGroupID),
		zap.Int("canceled", result.CanceledCount),
	)...)
	response.OK(c, result, nil)
}
