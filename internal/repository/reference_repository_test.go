package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-timetable-api/internal/models"
)

func TestReferenceRepositoryFindRoom(t *testing.T) {
	db, mock, cleanup := newSessionRepoMock(t)
	defer cleanup()
	repo := NewReferenceRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, code, type, capacity, building FROM rooms WHERE id = $1")).
		WithArgs("room-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "code", "type", "capacity", "building"}).AddRow("room-1", "A-101", "LAB", 30, "A"))

	room, err := repo.FindRoom(context.Background(), "room-1")
	require.NoError(t, err)
	assert.Equal(t, "A-101", room.Code)
	assert.Equal(t, models.RoomTypeLab, room.Type)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReferenceRepositoryFindTeacherNotFound(t *testing.T) {
	db, mock, cleanup := newSessionRepoMock(t)
	defer cleanup()
	repo := NewReferenceRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM teachers WHERE id = $1")).
		WithArgs("nope").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindTeacher(context.Background(), "nope")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReferenceRepositoryListRoomsFilters(t *testing.T) {
	db, mock, cleanup := newSessionRepoMock(t)
	defer cleanup()
	repo := NewReferenceRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM rooms WHERE 1=1 AND building = $1 AND type = $2 ORDER BY code ASC")).
		WithArgs("B", "LECTURE").
		WillReturnRows(sqlmock.NewRows([]string{"id", "code", "type", "capacity", "building"}).
			AddRow("room-2", "B-201", "LECTURE", 80, "B").
			AddRow("room-3", "B-202", "LECTURE", 60, "B"))

	rooms, err := repo.ListRooms(context.Background(), models.RoomFilter{Building: "B", Type: models.RoomTypeLecture})
	require.NoError(t, err)
	require.Len(t, rooms, 2)
	assert.Equal(t, "B-202", rooms[1].Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReferenceRepositoryTeachersByIDs(t *testing.T) {
	db, mock, cleanup := newSessionRepoMock(t)
	defer cleanup()
	repo := NewReferenceRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM teachers WHERE id = ANY($1)")).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "first_name", "last_name", "department_id"}).AddRow("tch-1", "Ada", "Lovelace", "math"))

	teachers, err := repo.TeachersByIDs(context.Background(), []string{"tch-1", "tch-2"})
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", teachers["tch-1"].FullName())
	_, ok := teachers["tch-2"]
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReferenceRepositoryByIDsSkipsEmptyInput(t *testing.T) {
	db, mock, cleanup := newSessionRepoMock(t)
	defer cleanup()
	repo := NewReferenceRepository(db)

	groups, err := repo.GroupsByIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, groups)
	assert.NoError(t, mock.ExpectationsWereMet())
}
