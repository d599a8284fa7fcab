package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/campus-timetable-api/internal/dto"
	"github.com/noah-isme/campus-timetable-api/internal/models"
	"github.com/noah-isme/campus-timetable-api/internal/repository"
	appErrors "github.com/noah-isme/campus-timetable-api/pkg/errors"
	"github.com/noah-isme/campus-timetable-api/pkg/logger"
)

const (
	reasonStorageError      = "storage error"
	reasonConcurrentOverlap = "overlaps a session created concurrently"
)

var errOverlapUnresolved = errors.New("exclusion constraint still violated after retries")

type sessionStore interface {
	activeSessionReader
	RunLocked(ctx context.Context, keys []string, fn func(exec sqlx.ExtContext) error) error
	Create(ctx context.Context, exec sqlx.ExtContext, session *models.Session) error
}

type referenceReader interface {
	FindRoom(ctx context.Context, id string) (*models.Room, error)
	FindTeacher(ctx context.Context, id string) (*models.Teacher, error)
	FindGroup(ctx context.Context, id string) (*models.Group, error)
	FindSubject(ctx context.Context, id string) (*models.Subject, error)
}

type occupancyInvalidator interface {
	InvalidateDates(dates []models.Date)
}

// SchedulingConfig governs creation behaviour.
type SchedulingConfig struct {
	RequireSlotAlignment bool
	MaxDatesPerBatch     int
	OverlapRetries       int
}

// SemesterScheduleService expands recurring assignments into dated sessions.
type SemesterScheduleService struct {
	store       sessionStore
	refs        referenceReader
	detector    *ConflictDetector
	catalogs    *models.CatalogRegistry
	invalidator occupancyInvalidator
	metrics     *MetricsService
	validator   *validator.Validate
	logger      *zap.Logger
	cfg         SchedulingConfig
}

// NewSemesterScheduleService wires the orchestrator.
func NewSemesterScheduleService(
	store sessionStore,
	refs referenceReader,
	catalogs *models.CatalogRegistry,
	invalidator occupancyInvalidator,
	metrics *MetricsService,
	validate *validator.Validate,
	logger *zap.Logger,
	cfg SchedulingConfig,
) *SemesterScheduleService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxDatesPerBatch <= 0 {
		cfg.MaxDatesPerBatch = 60
	}
	if cfg.OverlapRetries < 0 {
		cfg.OverlapRetries = 0
	}
	return &SemesterScheduleService{
		store:       store,
		refs:        refs,
		detector:    NewConflictDetector(store, logger),
		catalogs:    catalogs,
		invalidator: invalidator,
		metrics:     metrics,
		validator:   validate,
		logger:      logger,
		cfg:         cfg,
	}
}

// resolveAssignment parses the time window, resolves the catalog and checks the referenced entities.
func (s *SemesterScheduleService) resolveAssignment(ctx context.Context, subjectID, groupID, teacherID, roomID, startRaw, endRaw, catalogName string) (models.RecurringAssignment, *models.TimeGridCatalog, error) {
	var a models.RecurringAssignment
	start, err := models.ParseClockTime(startRaw)
	if err != nil {
		return a, nil, appErrors.Validation(err, "invalid startTime")
	}
	end, err := models.ParseClockTime(endRaw)
	if err != nil {
		return a, nil, appErrors.Validation(err, "invalid endTime")
	}
	if start >= end {
		return a, nil, appErrors.Clone(appErrors.ErrValidation, "startTime must be before endTime")
	}
	catalog, ok := s.catalogs.Resolve(catalogName)
	if !ok {
		return a, nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown time grid catalog %q", catalogName))
	}
	if s.cfg.RequireSlotAlignment {
		if _, ok := catalog.SlotFor(start, end); !ok {
			return a, nil, appErrors.Clone(appErrors.ErrValidation,
				fmt.Sprintf("%s-%s does not match a time slot of catalog %s", start, end, catalog.Name()))
		}
	}
	if err := s.ensureReferences(ctx, subjectID, groupID, teacherID, roomID); err != nil {
		return a, nil, err
	}
	a = models.RecurringAssignment{
		SubjectID: subjectID, GroupID: groupID, TeacherID: teacherID, RoomID: roomID,
		StartTime: start, EndTime: end,
	}
	return a, catalog, nil
}

func (s *SemesterScheduleService) ensureReferences(ctx context.Context, subjectID, groupID, teacherID, roomID string) error {
	g, gctx := errgroup.WithContext(ctx)
	lookup := func(kind, id string, find func(context.Context, string) error) {
		g.Go(func() error {
			err := find(gctx, id)
			switch {
			case err == nil:
				return nil
			case errors.Is(err, sql.ErrNoRows):
				return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("%s %s does not exist", kind, id))
			default:
				return appErrors.Storage(err, fmt.Sprintf("failed to load %s", kind))
			}
		})
	}
	lookup("subject", subjectID, func(ctx context.Context, id string) error { _, err := s.refs.FindSubject(ctx, id); return err })
	lookup("group", groupID, func(ctx context.Context, id string) error { _, err := s.refs.FindGroup(ctx, id); return err })
	lookup("teacher", teacherID, func(ctx context.Context, id string) error { _, err := s.refs.FindTeacher(ctx, id); return err })
	lookup("room", roomID, func(ctx context.Context, id string) error { _, err := s.refs.FindRoom(ctx, id); return err })
	return g.Wait()
}

func (s *SemesterScheduleService) prepare(ctx context.Context, req dto.CreateSemesterScheduleRequest) (models.RecurringAssignment, []models.Date, error) {
	var a models.RecurringAssignment
	if err := s.validator.Struct(req); err != nil {
		return a, nil, appErrors.Validation(err, "invalid semester schedule payload")
	}
	semesterStart, err := models.ParseDate(req.SemesterStart)
	if err != nil {
		return a, nil, appErrors.Validation(err, "invalid semesterStart")
	}
	semesterEnd, err := models.ParseDate(req.SemesterEnd)
	if err != nil {
		return a, nil, appErrors.Validation(err, "invalid semesterEnd")
	}
	if semesterStart.After(semesterEnd) {
		return a, nil, appErrors.Clone(appErrors.ErrInvalidRange,
			fmt.Sprintf("semesterStart %s is after semesterEnd %s", semesterStart, semesterEnd))
	}

	a, catalog, err := s.resolveAssignment(ctx, req.SubjectID, req.GroupID, req.TeacherID, req.RoomID, req.StartTime, req.EndTime, req.Catalog)
	if err != nil {
		return a, nil, err
	}
	if !catalog.Schedulable(req.DayOfWeek) {
		return a, nil, appErrors.Clone(appErrors.ErrValidation,
			fmt.Sprintf("%s is not a teaching day of catalog %s", req.DayOfWeek, catalog.Name()))
	}
	a.DayOfWeek = req.DayOfWeek
	a.RecurrenceType = req.RecurrenceType
	a.SemesterStart = semesterStart
	a.SemesterEnd = semesterEnd

	dates, err := ExpandRecurrence(a.DayOfWeek, a.RecurrenceType, a.SemesterStart, a.SemesterEnd)
	if err != nil {
		return a, nil, err
	}
	if len(dates) > s.cfg.MaxDatesPerBatch {
		return a, nil, appErrors.Clone(appErrors.ErrValidation,
			fmt.Sprintf("assignment expands to %d dates, more than the limit of %d", len(dates), s.cfg.MaxDatesPerBatch))
	}
	return a, dates, nil
}

// CreateSemesterSchedule validates the request, expands its dates and persists every
// conflict-free date as a PLANNED session sharing one recurrence group.
func (s *SemesterScheduleService) CreateSemesterSchedule(ctx context.Context, req dto.CreateSemesterScheduleRequest) (*dto.ScheduleCreationResult, error) {
	assignment, dates, err := s.prepare(ctx, req)
	if err != nil {
		return nil, err
	}

	result := &dto.ScheduleCreationResult{
		Conflicts: []dto.ScheduleConflictEntry{},
		Sessions:  []models.Session{},
	}
	if len(dates) == 0 {
		result.Success = true
		return result, nil
	}

	groupID := uuid.NewString()
	result.RecurrenceGroupID = groupID
	logr := logger.WithContext(ctx, s.logger).With(zap.String("recurrence_group_id", groupID))

	var createdDates []models.Date
	for _, date := range dates {
		created, report, err := s.persistIfFree(ctx, assignment, date, models.SessionStatusPlanned, &groupID)
		switch {
		case err == nil && created != nil:
			result.Sessions = append(result.Sessions, *created)
			createdDates = append(createdDates, date)
			s.metrics.RecordSessionCreated(created.Status)
		case err == nil:
			result.Conflicts = append(result.Conflicts, conflictEntry(date, report))
			s.metrics.RecordConflict(report.Resources())
		case errors.Is(err, errOverlapUnresolved):
			result.Conflicts = append(result.Conflicts, dto.ScheduleConflictEntry{Date: date, Reason: reasonConcurrentOverlap})
		default:
			logr.Error("failed to persist session", zap.String("date", date.String()), zap.Error(err))
			s.metrics.RecordStorageError("create_session")
			result.StorageErrorCount++
			result.Conflicts = append(result.Conflicts, dto.ScheduleConflictEntry{Date: date, Reason: reasonStorageError})
		}
	}

	result.CreatedCount = len(result.Sessions)
	result.ConflictsCount = len(result.Conflicts)
	result.Success = result.ConflictsCount == 0
	if len(createdDates) > 0 && s.invalidator != nil {
		s.invalidator.InvalidateDates(createdDates)
	}

	logr.Info("semester schedule processed",
		zap.Int("dates", len(dates)),
		zap.Int("created", result.CreatedCount),
		zap.Int("conflicts", result.ConflictsCount),
		zap.Int("storage_errors", result.StorageErrorCount),
	)
	return result, nil
}

// PreviewSemesterSchedule runs validation, expansion and detection without writing.
func (s *SemesterScheduleService) PreviewSemesterSchedule(ctx context.Context, req dto.CreateSemesterScheduleRequest) (*dto.SchedulePreviewResult, error) {
	assignment, dates, err := s.prepare(ctx, req)
	if err != nil {
		return nil, err
	}
	preview := &dto.SchedulePreviewResult{
		Dates:          dates,
		AvailableDates: []models.Date{},
		Conflicts:      []dto.ScheduleConflictEntry{},
	}
	for _, date := range dates {
		report, err := s.detector.Check(ctx, nil, assignment.Candidate(date))
		if err != nil {
			return nil, err
		}
		if report.HasConflict {
			preview.Conflicts = append(preview.Conflicts, conflictEntry(date, report))
			continue
		}
		preview.AvailableDates = append(preview.AvailableDates, date)
	}
	preview.ConflictsCount = len(preview.Conflicts)
	return preview, nil
}

// persistIfFree checks and inserts the session of assignment on date under the resource locks of that date.
// A nil session with a nil error means the report carries the conflicts that blocked it.
func (s *SemesterScheduleService) persistIfFree(ctx context.Context, assignment models.RecurringAssignment, date models.Date, status models.SessionStatus, recurrenceGroupID *string) (*models.Session, models.ConflictReport, error) {
	candidate := assignment.Candidate(date)
	session := assignment.Session(date, status, recurrenceGroupID)
	keys := []string{
		repository.RoomDayLockKey(candidate.RoomID, candidate.Date),
		repository.TeacherDayLockKey(candidate.TeacherID, candidate.Date),
		repository.GroupDayLockKey(candidate.GroupID, candidate.Date),
	}
	for attempt := 0; ; attempt++ {
		var report models.ConflictReport
		created := session
		err := s.store.RunLocked(ctx, keys, func(exec sqlx.ExtContext) error {
			var err error
			report, err = s.detector.Check(ctx, exec, candidate)
			if err != nil || report.HasConflict {
				return err
			}
			return s.store.Create(ctx, exec, &created)
		})
		switch {
		case err == nil && report.HasConflict:
			return nil, report, nil
		case err == nil:
			return &created, report, nil
		case errors.Is(err, repository.ErrSessionOverlap) && attempt < s.cfg.OverlapRetries:
			s.metrics.RecordOverlapRetry()
			s.logger.Warn("exclusion constraint rejected insert, retrying", zap.String("date", candidate.Date.String()), zap.Int("attempt", attempt+1))
		case errors.Is(err, repository.ErrSessionOverlap):
			return nil, report, errOverlapUnresolved
		default:
			return nil, report, err
		}
	}
}

func conflictEntry(date models.Date, report models.ConflictReport) dto.ScheduleConflictEntry {
	ids := make([]string, 0, len(report.Conflicts))
	for _, c := range report.Conflicts {
		ids = append(ids, c.Session.ID)
	}
	return dto.ScheduleConflictEntry{
		Date:                  date,
		Reason:                describeConflict(report),
		Resources:             report.Resources(),
		ConflictingSessionIDs: ids,
	}
}
