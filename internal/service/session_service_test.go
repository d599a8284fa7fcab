package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-timetable-api/internal/dto"
	"github.com/noah-isme/campus-timetable-api/internal/models"
	appErrors "github.com/noah-isme/campus-timetable-api/pkg/errors"
)

func (m *memorySessionStore) FindByID(ctx context.Context, id string) (*models.Session, error) {
	m.data.Lock()
	defer m.data.Unlock()
	for _, s := range m.sessions {
		if s.ID == id {
			found := s
			return &found, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *memorySessionStore) List(ctx context.Context, filter models.SessionFilter) ([]models.Session, int, error) {
	m.data.Lock()
	defer m.data.Unlock()
	var out []models.Session
	for _, s := range m.sessions {
		if filter.TeacherID != "" && s.TeacherID != filter.TeacherID {
			continue
		}
		if filter.Status != "" && s.Status != filter.Status {
			continue
		}
		out = append(out, s)
	}
	return out, len(out), nil
}

func (m *memorySessionStore) ListByRecurrenceGroup(ctx context.Context, groupID string) ([]models.Session, error) {
	m.data.Lock()
	defer m.data.Unlock()
	var out []models.Session
	for _, s := range m.sessions {
		if s.RecurrenceGroupID != nil && *s.RecurrenceGroupID == groupID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *memorySessionStore) UpdateStatus(ctx context.Context, exec sqlx.ExtContext, id string, from []models.SessionStatus, to models.SessionStatus, reason *string) (*models.Session, error) {
	m.data.Lock()
	defer m.data.Unlock()
	for i := range m.sessions {
		if m.sessions[i].ID != id {
			continue
		}
		for _, allowed := range from {
			if m.sessions[i].Status == allowed {
				m.sessions[i].Status = to
				if reason != nil {
					m.sessions[i].CancelReason = reason
				}
				updated := m.sessions[i]
				return &updated, nil
			}
		}
	}
	return nil, sql.ErrNoRows
}

func (m *memorySessionStore) CancelRecurrenceGroup(ctx context.Context, groupID string, from *models.Date, reason *string) ([]models.Session, error) {
	m.data.Lock()
	defer m.data.Unlock()
	var out []models.Session
	for i := range m.sessions {
		s := &m.sessions[i]
		if s.RecurrenceGroupID == nil || *s.RecurrenceGroupID != groupID || s.Status != models.SessionStatusPlanned {
			continue
		}
		if from != nil && s.Date.Before(*from) {
			continue
		}
		s.Status = models.SessionStatusCanceled
		s.CancelReason = reason
		out = append(out, *s)
	}
	return out, nil
}

func newSessionServiceForTest(t *testing.T, store *memorySessionStore) (*SessionService, *SemesterScheduleService, *invalidatorStub) {
	scheduler, _ := newScheduleServiceForTest(t, store, SchedulingConfig{RequireSlotAlignment: true})
	inv := &invalidatorStub{}
	return NewSessionService(store, scheduler, inv, nil, nil, nil), scheduler, inv
}

func seededSchedule(t *testing.T) (*memorySessionStore, *SessionService, *dto.ScheduleCreationResult, *invalidatorStub) {
	store := newMemorySessionStore()
	svc, scheduler, inv := newSessionServiceForTest(t, store)
	result, err := scheduler.CreateSemesterSchedule(context.Background(), mondayRequest())
	require.NoError(t, err)
	require.Equal(t, 4, result.CreatedCount)
	return store, svc, result, inv
}

func TestSessionServiceGetNotFound(t *testing.T) {
	svc, _, _ := newSessionServiceForTest(t, newMemorySessionStore())
	_, err := svc.Get(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, appErrors.IsCode(err, appErrors.ErrNotFound.Code))
}

func TestSessionServiceCancelAndComplete(t *testing.T) {
	_, svc, created, inv := seededSchedule(t)
	ctx := context.Background()

	canceled, err := svc.Cancel(ctx, created.Sessions[0].ID, dto.CancelSessionRequest{Reason: "public holiday"})
	require.NoError(t, err)
	assert.Equal(t, models.SessionStatusCanceled, canceled.Status)
	require.NotNil(t, canceled.CancelReason)
	assert.Equal(t, "public holiday", *canceled.CancelReason)
	assert.Len(t, inv.dates, 1)

	_, err = svc.Complete(ctx, created.Sessions[0].ID)
	require.Error(t, err)
	assert.True(t, appErrors.IsCode(err, appErrors.ErrPreconditionFailed.Code))

	completed, err := svc.Complete(ctx, created.Sessions[1].ID)
	require.NoError(t, err)
	assert.Equal(t, models.SessionStatusCompleted, completed.Status)

	_, err = svc.Cancel(ctx, created.Sessions[1].ID, dto.CancelSessionRequest{})
	require.Error(t, err)
	assert.True(t, appErrors.IsCode(err, appErrors.ErrPreconditionFailed.Code))
}

func TestSessionServiceCanceledSlotCanBeRebooked(t *testing.T) {
	_, svc, created, _ := seededSchedule(t)
	ctx := context.Background()

	_, err := svc.Cancel(ctx, created.Sessions[1].ID, dto.CancelSessionRequest{})
	require.NoError(t, err)

	result, err := svc.CreateMakeup(ctx, dto.CreateMakeupRequest{
		SubjectID: "sub-2", GroupID: "grp-2", TeacherID: "tch-2", RoomID: "room-1",
		Date: "2025-09-08", StartTime: "10:10", EndTime: "11:40",
	})
	require.NoError(t, err)
	assert.True(t, result.Success)
	require.NotNil(t, result.Session)
	assert.Equal(t, models.SessionStatusMakeup, result.Session.Status)
	assert.Nil(t, result.Session.RecurrenceGroupID)
}

func TestSessionServiceMakeupConflictIsAResult(t *testing.T) {
	_, svc, created, _ := seededSchedule(t)

	result, err := svc.CreateMakeup(context.Background(), dto.CreateMakeupRequest{
		SubjectID: "sub-1", GroupID: "grp-3", TeacherID: "tch-1", RoomID: "room-3",
		Date: "2025-09-15", StartTime: "10:10", EndTime: "11:40",
		RecurrenceGroupID: created.RecurrenceGroupID,
	})
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Nil(t, result.Session)
	require.Len(t, result.Conflicts, 1)
	assert.Equal(t, []models.ResourceKind{models.ResourceTeacher}, result.Conflicts[0].Resources)
	assert.Equal(t, []string{created.Sessions[2].ID}, result.Conflicts[0].ConflictingSessionIDs)
}

func TestSessionServiceMakeupValidation(t *testing.T) {
	_, svc, _, _ := seededSchedule(t)
	ctx := context.Background()
	base := dto.CreateMakeupRequest{
		SubjectID: "sub-1", GroupID: "grp-1", TeacherID: "tch-1", RoomID: "room-1",
		Date: "2025-09-07", StartTime: "08:30", EndTime: "10:00",
	}

	_, err := svc.CreateMakeup(ctx, base)
	require.Error(t, err, "sunday is not schedulable")
	assert.True(t, appErrors.IsCode(err, appErrors.ErrValidation.Code))

	unknownGroup := base
	unknownGroup.Date = "2025-09-06"
	unknownGroup.RecurrenceGroupID = "8f7d4c1e-9a51-4c39-9f3b-1b2d3e4f5a6b"
	_, err = svc.CreateMakeup(ctx, unknownGroup)
	require.Error(t, err)
	assert.True(t, appErrors.IsCode(err, appErrors.ErrValidation.Code))
}

func TestSessionServiceCancelRecurrenceGroupFromDate(t *testing.T) {
	store, svc, created, inv := seededSchedule(t)

	result, err := svc.CancelRecurrenceGroup(context.Background(), created.RecurrenceGroupID, dto.CancelRecurrenceGroupRequest{FromDate: "2025-09-15"})
	require.NoError(t, err)
	assert.Equal(t, 2, result.CanceledCount)
	assert.Len(t, inv.dates, 2)

	statuses := map[string]models.SessionStatus{}
	for _, s := range store.snapshot() {
		statuses[s.Date.String()] = s.Status
	}
	assert.Equal(t, models.SessionStatusPlanned, statuses["2025-09-01"])
	assert.Equal(t, models.SessionStatusPlanned, statuses["2025-09-08"])
	assert.Equal(t, models.SessionStatusCanceled, statuses["2025-09-15"])
	assert.Equal(t, models.SessionStatusCanceled, statuses["2025-09-22"])
}

func TestSessionServiceCancelRecurrenceGroupUnknown(t *testing.T) {
	svc, _, _ := newSessionServiceForTest(t, newMemorySessionStore())
	_, err := svc.CancelRecurrenceGroup(context.Background(), "nope", dto.CancelRecurrenceGroupRequest{})
	require.Error(t, err)
	assert.True(t, appErrors.IsCode(err, appErrors.ErrNotFound.Code))
}

func TestSessionServiceListRejectsInvertedRange(t *testing.T) {
	svc, _, _ := newSessionServiceForTest(t, newMemorySessionStore())
	_, _, err := svc.List(context.Background(), dto.SessionListQuery{From: "2025-09-30", To: "2025-09-01"})
	require.Error(t, err)
	assert.True(t, appErrors.IsCode(err, appErrors.ErrValidation.Code))
}

func TestSessionServiceListPagination(t *testing.T) {
	_, svc, _, _ := seededSchedule(t)
	sessions, page, err := svc.List(context.Background(), dto.SessionListQuery{TeacherID: "tch-1"})
	require.NoError(t, err)
	assert.Len(t, sessions, 4)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 50, page.PageSize)
	assert.Equal(t, 4, page.TotalCount)
}
