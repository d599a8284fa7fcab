package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecurrenceStepDays(t *testing.T) {
	step, err := RecurrenceWeekly.StepDays()
	require.NoError(t, err)
	assert.Equal(t, 7, step)
	step, err = RecurrenceBiweekly.StepDays()
	require.NoError(t, err)
	assert.Equal(t, 14, step)
	_, err = RecurrenceType("MONTHLY").StepDays()
	assert.Error(t, err)
}

func TestRecurringAssignmentBuildsCandidateAndSession(t *testing.T) {
	a := RecurringAssignment{
		SubjectID: "sub-1", GroupID: "grp-1", TeacherID: "tch-1", RoomID: "room-1",
		DayOfWeek: Monday, StartTime: NewClockTime(10, 10), EndTime: NewClockTime(11, 40),
		RecurrenceType: RecurrenceWeekly,
	}
	date := NewDate(2025, time.September, 8)
	group := "rg-1"

	assert.Equal(t, SessionCandidate{
		Date: date, StartTime: a.StartTime, EndTime: a.EndTime, RoomID: "room-1", TeacherID: "tch-1", GroupID: "grp-1",
	}, a.Candidate(date))

	session := a.Session(date, SessionStatusMakeup, &group)
	assert.Equal(t, "sub-1", session.SubjectID)
	assert.Equal(t, date, session.Date)
	assert.Equal(t, SessionStatusMakeup, session.Status)
	require.NotNil(t, session.RecurrenceGroupID)
	assert.Equal(t, "rg-1", *session.RecurrenceGroupID)
	assert.Empty(t, session.ID)
}
