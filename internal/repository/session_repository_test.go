package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-timetable-api/internal/models"
)

func newSessionRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

var sessionRowColumns = []string{"id", "subject_id", "group_id", "teacher_id", "room_id", "session_date", "start_time", "end_time", "status",
	"recurrence_group_id", "cancel_reason", "created_at", "updated_at"}

func sessionRow(rows *sqlmock.Rows, id, status string, date time.Time, start, end string) *sqlmock.Rows {
	now := time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)
	return rows.AddRow(id, "sub-1", "grp-1", "tch-1", "room-1", date, start, end, status, "rg-1", nil, now, now)
}

func TestSessionRepositoryRunLockedSortsKeysAndCommits(t *testing.T) {
	db, mock, cleanup := newSessionRepoMock(t)
	defer cleanup()
	repo := NewSessionRepository(db, 2*time.Second)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("SET LOCAL lock_timeout = '2000ms'")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("SELECT pg_advisory_xact_lock(hashtext($1))")).WithArgs("group:g:2025-09-01").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("SELECT pg_advisory_xact_lock(hashtext($1))")).WithArgs("room:r:2025-09-01").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("SELECT pg_advisory_xact_lock(hashtext($1))")).WithArgs("teacher:t:2025-09-01").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	date := models.NewDate(2025, time.September, 1)
	called := false
	err := repo.RunLocked(context.Background(), []string{
		TeacherDayLockKey("t", date),
		RoomDayLockKey("r", date),
		GroupDayLockKey("g", date),
		RoomDayLockKey("r", date),
	}, func(exec sqlx.ExtContext) error {
		called = true
		assert.NotNil(t, exec)
		return nil
	})
	require.NoError(t, err)
	assert.True(t, called)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepositoryRunLockedRollsBackOnError(t *testing.T) {
	db, mock, cleanup := newSessionRepoMock(t)
	defer cleanup()
	repo := NewSessionRepository(db, 0)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("SELECT pg_advisory_xact_lock")).WithArgs("room:r:2025-09-01").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	boom := errors.New("boom")
	err := repo.RunLocked(context.Background(), []string{"room:r:2025-09-01"}, func(exec sqlx.ExtContext) error {
		return boom
	})
	require.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepositoryListActiveForResources(t *testing.T) {
	db, mock, cleanup := newSessionRepoMock(t)
	defer cleanup()
	repo := NewSessionRepository(db, 0)

	date := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
	rows := sessionRow(sqlmock.NewRows(sessionRowColumns), "s-1", "PLANNED", date, "10:10:00", "11:40:00")
	mock.ExpectQuery(regexp.QuoteMeta("FROM class_sessions\nWHERE session_date = $1 AND status <> $2")).
		WithArgs(sqlmock.AnyArg(), "CANCELED", "room-1", "tch-1", "grp-1").
		WillReturnRows(rows)

	sessions, err := repo.ListActiveForResources(context.Background(), nil, models.DateOf(date), "room-1", "tch-1", "grp-1")
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, "s-1", sessions[0].ID)
	assert.Equal(t, models.NewClockTime(10, 10), sessions[0].StartTime)
	assert.Equal(t, models.NewClockTime(11, 40), sessions[0].EndTime)
	assert.Equal(t, models.SessionStatusPlanned, sessions[0].Status)
	require.NotNil(t, sessions[0].RecurrenceGroupID)
	assert.Equal(t, "rg-1", *sessions[0].RecurrenceGroupID)
	assert.Equal(t, "2025-09-01", sessions[0].Date.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepositoryCreateMapsExclusionViolation(t *testing.T) {
	db, mock, cleanup := newSessionRepoMock(t)
	defer cleanup()
	repo := NewSessionRepository(db, 0)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO class_sessions")).
		WillReturnError(&pq.Error{Code: "23P01", Constraint: "class_sessions_room_overlap"})

	session := &models.Session{
		SubjectID: "sub-1", GroupID: "grp-1", TeacherID: "tch-1", RoomID: "room-1",
		Date:      models.NewDate(2025, time.September, 1),
		StartTime: models.NewClockTime(10, 10), EndTime: models.NewClockTime(11, 40),
		Status: models.SessionStatusPlanned,
	}
	err := repo.Create(context.Background(), nil, session)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSessionOverlap))
	assert.NotEmpty(t, session.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newSessionRepoMock(t)
	defer cleanup()
	repo := NewSessionRepository(db, 0)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO class_sessions")).
		WithArgs(sqlmock.AnyArg(), "sub-1", "grp-1", "tch-1", "room-1", sqlmock.AnyArg(), "10:10:00", "11:40:00", "PLANNED",
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	session := &models.Session{
		SubjectID: "sub-1", GroupID: "grp-1", TeacherID: "tch-1", RoomID: "room-1",
		Date:      models.NewDate(2025, time.September, 1),
		StartTime: models.NewClockTime(10, 10), EndTime: models.NewClockTime(11, 40),
		Status: models.SessionStatusPlanned,
	}
	require.NoError(t, repo.Create(context.Background(), nil, session))
	assert.False(t, session.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepositoryFindByIDNotFound(t *testing.T) {
	db, mock, cleanup := newSessionRepoMock(t)
	defer cleanup()
	repo := NewSessionRepository(db, 0)

	mock.ExpectQuery(regexp.QuoteMeta("FROM class_sessions WHERE id = $1")).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepositoryListAppliesFilters(t *testing.T) {
	db, mock, cleanup := newSessionRepoMock(t)
	defer cleanup()
	repo := NewSessionRepository(db, 0)

	from := models.NewDate(2025, time.September, 1)
	to := models.NewDate(2025, time.September, 7)
	date := time.Date(2025, 9, 2, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE 1=1 AND session_date >= $1 AND session_date <= $2 AND teacher_id = $3 AND status = $4 ORDER BY session_date ASC, start_time ASC, id ASC LIMIT 10 OFFSET 10")).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), "tch-1", "PLANNED").
		WillReturnRows(sessionRow(sqlmock.NewRows(sessionRowColumns), "s-9", "PLANNED", date, "08:30", "10:00"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM class_sessions WHERE 1=1")).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), "tch-1", "PLANNED").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(11))

	sessions, total, err := repo.List(context.Background(), models.SessionFilter{
		From: &from, To: &to, TeacherID: "tch-1", Status: models.SessionStatusPlanned, Page: 2, PageSize: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, 11, total)
	require.Len(t, sessions, 1)
	assert.Equal(t, "s-9", sessions[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepositoryUpdateStatusNoMatch(t *testing.T) {
	db, mock, cleanup := newSessionRepoMock(t)
	defer cleanup()
	repo := NewSessionRepository(db, 0)

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE class_sessions SET status = $1")).
		WithArgs("CANCELED", sqlmock.AnyArg(), sqlmock.AnyArg(), "s-1", sqlmock.AnyArg()).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.UpdateStatus(context.Background(), nil, "s-1",
		[]models.SessionStatus{models.SessionStatusPlanned, models.SessionStatusMakeup}, models.SessionStatusCanceled, nil)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepositoryCancelRecurrenceGroupFromDate(t *testing.T) {
	db, mock, cleanup := newSessionRepoMock(t)
	defer cleanup()
	repo := NewSessionRepository(db, 0)

	date := time.Date(2025, 9, 15, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE recurrence_group_id = $4 AND status = $5 AND session_date >= $6 RETURNING")).
		WithArgs("CANCELED", sqlmock.AnyArg(), sqlmock.AnyArg(), "rg-1", "PLANNED", sqlmock.AnyArg()).
		WillReturnRows(sessionRow(sqlmock.NewRows(sessionRowColumns), "s-3", "CANCELED", date, "10:10:00", "11:40:00"))

	from := models.DateOf(date)
	reason := "term ended"
	sessions, err := repo.CancelRecurrenceGroup(context.Background(), "rg-1", &from, &reason)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, models.SessionStatusCanceled, sessions[0].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}
