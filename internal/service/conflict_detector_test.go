package service

import (
	"context"
	"errors"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-timetable-api/internal/models"
	appErrors "github.com/noah-isme/campus-timetable-api/pkg/errors"
)

type activeSessionReaderStub struct {
	sessions []models.Session
	err      error
}

func (s activeSessionReaderStub) ListActiveForResources(ctx context.Context, exec sqlx.ExtContext, date models.Date, roomID, teacherID, groupID string) ([]models.Session, error) {
	return s.sessions, s.err
}

func clock(t *testing.T, raw string) models.ClockTime {
	t.Helper()
	c, err := models.ParseClockTime(raw)
	require.NoError(t, err)
	return c
}

func existingSession(t *testing.T, id, day, start, end, room, teacher, group string, status models.SessionStatus) models.Session {
	return models.Session{
		ID: id, Date: mustDate(t, day), StartTime: clock(t, start), EndTime: clock(t, end),
		RoomID: room, TeacherID: teacher, GroupID: group, SubjectID: "sub-x", Status: status,
	}
}

func baseCandidate(t *testing.T) models.SessionCandidate {
	return models.SessionCandidate{
		Date: mustDate(t, "2025-09-01"), StartTime: clock(t, "10:10"), EndTime: clock(t, "11:40"),
		RoomID: "room-1", TeacherID: "tch-1", GroupID: "grp-1",
	}
}

func TestDetectConflictsReportsEveryResource(t *testing.T) {
	working := []models.Session{
		existingSession(t, "s-room", "2025-09-01", "10:10", "11:40", "room-1", "tch-9", "grp-9", models.SessionStatusPlanned),
		existingSession(t, "s-all", "2025-09-01", "11:00", "12:00", "room-1", "tch-1", "grp-1", models.SessionStatusMakeup),
		existingSession(t, "s-free", "2025-09-01", "10:10", "11:40", "room-2", "tch-2", "grp-2", models.SessionStatusPlanned),
	}

	report, err := DetectConflicts(baseCandidate(t), working)
	require.NoError(t, err)
	require.True(t, report.HasConflict)
	require.Len(t, report.Conflicts, 2)
	assert.Equal(t, "s-room", report.Conflicts[0].Session.ID)
	assert.Equal(t, []models.ResourceKind{models.ResourceRoom}, report.Conflicts[0].Resources)
	assert.Equal(t, []models.ResourceKind{models.ResourceRoom, models.ResourceTeacher, models.ResourceGroup}, report.Conflicts[1].Resources)
	assert.Equal(t,
		"room, teacher, group conflict with 2 session(s): s-room [room] sub-x for grp-9 at 10:10-11:40; "+
			"s-all [room, teacher, group] sub-x for grp-1 at 11:00-12:00",
		describeConflict(report))
}

func TestDetectConflictsIgnoresCanceledOtherDatesAndAdjacentWindows(t *testing.T) {
	working := []models.Session{
		existingSession(t, "canceled", "2025-09-01", "10:10", "11:40", "room-1", "tch-1", "grp-1", models.SessionStatusCanceled),
		existingSession(t, "other-day", "2025-09-08", "10:10", "11:40", "room-1", "tch-1", "grp-1", models.SessionStatusPlanned),
		existingSession(t, "before", "2025-09-01", "08:30", "10:10", "room-1", "tch-1", "grp-1", models.SessionStatusPlanned),
		existingSession(t, "after", "2025-09-01", "11:40", "13:20", "room-1", "tch-1", "grp-1", models.SessionStatusCompleted),
	}

	report, err := DetectConflicts(baseCandidate(t), working)
	require.NoError(t, err)
	assert.False(t, report.HasConflict)
	assert.Empty(t, report.Conflicts)
}

func TestDetectConflictsHonoursIgnoredSession(t *testing.T) {
	candidate := baseCandidate(t)
	candidate.IgnoreSessionID = "self"
	working := []models.Session{
		existingSession(t, "self", "2025-09-01", "10:10", "11:40", "room-1", "tch-1", "grp-1", models.SessionStatusPlanned),
	}

	report, err := DetectConflicts(candidate, working)
	require.NoError(t, err)
	assert.False(t, report.HasConflict)
}

func TestDetectConflictsRejectsMalformedCandidate(t *testing.T) {
	candidate := baseCandidate(t)
	candidate.RoomID = ""
	_, err := DetectConflicts(candidate, nil)
	require.Error(t, err)
	assert.True(t, appErrors.IsCode(err, appErrors.ErrValidation.Code))

	candidate = baseCandidate(t)
	candidate.EndTime = candidate.StartTime
	_, err = DetectConflicts(candidate, nil)
	require.Error(t, err)
	assert.True(t, appErrors.IsCode(err, appErrors.ErrValidation.Code))
}

func TestConflictDetectorCheckWrapsStorageErrors(t *testing.T) {
	detector := NewConflictDetector(activeSessionReaderStub{err: errors.New("connection reset")}, nil)
	_, err := detector.Check(context.Background(), nil, baseCandidate(t))
	require.Error(t, err)
	assert.True(t, appErrors.IsCode(err, appErrors.ErrStorage.Code))
}

func TestConflictDetectorCheckUsesStore(t *testing.T) {
	detector := NewConflictDetector(activeSessionReaderStub{sessions: []models.Session{
		existingSession(t, "s-1", "2025-09-01", "09:00", "10:30", "room-7", "tch-1", "grp-7", models.SessionStatusPlanned),
	}}, nil)
	report, err := detector.Check(context.Background(), nil, baseCandidate(t))
	require.NoError(t, err)
	require.True(t, report.HasConflict)
	assert.Equal(t, []models.ResourceKind{models.ResourceTeacher}, report.Resources())
}
