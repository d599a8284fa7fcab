package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-timetable-api/internal/dto"
	"github.com/noah-isme/campus-timetable-api/internal/models"
	appErrors "github.com/noah-isme/campus-timetable-api/pkg/errors"
)

type sessionRepository interface {
	sessionStore
	FindByID(ctx context.Context, id string) (*models.Session, error)
	List(ctx context.Context, filter models.SessionFilter) ([]models.Session, int, error)
	ListByRecurrenceGroup(ctx context.Context, groupID string) ([]models.Session, error)
	UpdateStatus(ctx context.Context, exec sqlx.ExtContext, id string, from []models.SessionStatus, to models.SessionStatus, reason *string) (*models.Session, error)
	CancelRecurrenceGroup(ctx context.Context, groupID string, from *models.Date, reason *string) ([]models.Session, error)
}

var transitionSources = []models.SessionStatus{models.SessionStatusPlanned, models.SessionStatusMakeup}

// SessionService manages the lifecycle of individual sessions.
type SessionService struct {
	repo        sessionRepository
	scheduler   *SemesterScheduleService
	invalidator occupancyInvalidator
	metrics     *MetricsService
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewSessionService constructs the service. scheduler supplies assignment validation and locked inserts for makeups.
func NewSessionService(repo sessionRepository, scheduler *SemesterScheduleService, invalidator occupancyInvalidator, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *SessionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionService{repo: repo, scheduler: scheduler, invalidator: invalidator, metrics: metrics, validator: validate, logger: logger}
}

// Get returns a session by ID.
func (s *SessionService) Get(ctx context.Context, id string) (*models.Session, error) {
	session, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "session not found")
		}
		return nil, appErrors.Storage(err, "failed to load session")
	}
	return session, nil
}

// List returns sessions matching the query, canceled ones included.
func (s *SessionService) List(ctx context.Context, query dto.SessionListQuery) ([]models.Session, *models.Pagination, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, nil, appErrors.Validation(err, "invalid session filters")
	}
	filter := models.SessionFilter{
		RoomID:            query.RoomID,
		TeacherID:         query.TeacherID,
		GroupID:           query.GroupID,
		Status:            models.SessionStatus(query.Status),
		RecurrenceGroupID: query.RecurrenceGroupID,
		Page:              query.Page,
		PageSize:          query.PageSize,
	}
	if query.From != "" {
		from, err := models.ParseDate(query.From)
		if err != nil {
			return nil, nil, appErrors.Validation(err, "invalid from date")
		}
		filter.From = &from
	}
	if query.To != "" {
		to, err := models.ParseDate(query.To)
		if err != nil {
			return nil, nil, appErrors.Validation(err, "invalid to date")
		}
		filter.To = &to
	}
	if filter.From != nil && filter.To != nil && filter.From.After(*filter.To) {
		return nil, nil, appErrors.Clone(appErrors.ErrInvalidRange, "from must not be after to")
	}

	started := time.Now()
	sessions, total, err := s.repo.List(ctx, filter)
	s.metrics.ObserveDBQuery("session_list", time.Since(started))
	if err != nil {
		return nil, nil, appErrors.Storage(err, "failed to list sessions")
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 50
	}
	return sessions, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}, nil
}

// ListRecurrenceGroup returns every session generated together.
func (s *SessionService) ListRecurrenceGroup(ctx context.Context, groupID string) ([]models.Session, error) {
	sessions, err := s.repo.ListByRecurrenceGroup(ctx, groupID)
	if err != nil {
		return nil, appErrors.Storage(err, "failed to list recurrence group")
	}
	if len(sessions) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "recurrence group not found")
	}
	return sessions, nil
}

// Cancel marks a PLANNED or MAKEUP session as CANCELED.
func (s *SessionService) Cancel(ctx context.Context, id string, req dto.CancelSessionRequest) (*models.Session, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid cancel payload")
	}
	return s.transition(ctx, id, models.SessionStatusCanceled, optionalString(req.Reason))
}

// Complete marks a PLANNED or MAKEUP session as COMPLETED.
func (s *SessionService) Complete(ctx context.Context, id string) (*models.Session, error) {
	return s.transition(ctx, id, models.SessionStatusCompleted, nil)
}

func (s *SessionService) transition(ctx context.Context, id string, to models.SessionStatus, reason *string) (*models.Session, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status != models.SessionStatusPlanned && current.Status != models.SessionStatusMakeup {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed,
			fmt.Sprintf("session is %s and cannot become %s", current.Status, to))
	}

	updated, err := s.repo.UpdateStatus(ctx, nil, id, transitionSources, to, reason)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "session status changed concurrently")
		}
		return nil, appErrors.Storage(err, "failed to update session status")
	}
	if s.invalidator != nil {
		s.invalidator.InvalidateDates([]models.Date{updated.Date})
	}
	s.logger.Info("session status changed",
		zap.String("session_id", id), zap.String("from", string(current.Status)), zap.String("to", string(to)))
	return updated, nil
}

// CancelRecurrenceGroup cancels the remaining PLANNED sessions of a recurrence group.
func (s *SessionService) CancelRecurrenceGroup(ctx context.Context, groupID string, req dto.CancelRecurrenceGroupRequest) (*dto.CancelRecurrenceGroupResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid cancel payload")
	}
	var from *models.Date
	if req.FromDate != "" {
		parsed, err := models.ParseDate(req.FromDate)
		if err != nil {
			return nil, appErrors.Validation(err, "invalid fromDate")
		}
		from = &parsed
	}
	if _, err := s.ListRecurrenceGroup(ctx, groupID); err != nil {
		return nil, err
	}

	canceled, err := s.repo.CancelRecurrenceGroup(ctx, groupID, from, optionalString(req.Reason))
	if err != nil {
		return nil, appErrors.Storage(err, "failed to cancel recurrence group")
	}
	if canceled == nil {
		canceled = []models.Session{}
	}
	if len(canceled) > 0 && s.invalidator != nil {
		dates := make([]models.Date, len(canceled))
		for i, session := range canceled {
			dates[i] = session.Date
		}
		s.invalidator.InvalidateDates(dates)
	}
	return &dto.CancelRecurrenceGroupResult{RecurrenceGroupID: groupID, CanceledCount: len(canceled), Sessions: canceled}, nil
}

// CreateMakeup schedules a single MAKEUP session after the same checks as recurring sessions.
func (s *SessionService) CreateMakeup(ctx context.Context, req dto.CreateMakeupRequest) (*dto.MakeupResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid makeup payload")
	}
	date, err := models.ParseDate(req.Date)
	if err != nil {
		return nil, appErrors.Validation(err, "invalid date")
	}
	assignment, catalog, err := s.scheduler.resolveAssignment(ctx, req.SubjectID, req.GroupID, req.TeacherID, req.RoomID, req.StartTime, req.EndTime, req.Catalog)
	if err != nil {
		return nil, err
	}
	day, ok := models.WeekdayOf(date)
	if !ok || !catalog.Schedulable(day) {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("%s is not a teaching day", date))
	}

	var groupID *string
	if req.RecurrenceGroupID != "" {
		if _, err := s.ListRecurrenceGroup(ctx, req.RecurrenceGroupID); err != nil {
			if appErrors.IsCode(err, appErrors.ErrNotFound.Code) {
				return nil, appErrors.Clone(appErrors.ErrValidation, "recurrenceGroupId does not refer to existing sessions")
			}
			return nil, err
		}
		groupID = &req.RecurrenceGroupID
	}

	created, report, err := s.scheduler.persistIfFree(ctx, assignment, date, models.SessionStatusMakeup, groupID)
	switch {
	case err == nil && created != nil:
		s.metrics.RecordSessionCreated(created.Status)
		if s.invalidator != nil {
			s.invalidator.InvalidateDates([]models.Date{date})
		}
		return &dto.MakeupResult{Success: true, Session: created, Conflicts: []dto.ScheduleConflictEntry{}}, nil
	case err == nil:
		s.metrics.RecordConflict(report.Resources())
		return &dto.MakeupResult{Conflicts: []dto.ScheduleConflictEntry{conflictEntry(date, report)}}, nil
	case errors.Is(err, errOverlapUnresolved):
		return &dto.MakeupResult{Conflicts: []dto.ScheduleConflictEntry{{Date: date, Reason: reasonConcurrentOverlap}}}, nil
	default:
		s.metrics.RecordStorageError("create_makeup")
		if appErrors.IsCode(err, appErrors.ErrStorage.Code) {
			return nil, err
		}
		return nil, appErrors.Storage(err, "failed to create makeup session")
	}
}

func optionalString(raw string) *string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	return &raw
}
