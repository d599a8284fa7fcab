package models

import "fmt"

// RecurrenceType is the cadence of a recurring assignment.
type RecurrenceType string

const (
	RecurrenceWeekly   RecurrenceType = "WEEKLY"
	RecurrenceBiweekly RecurrenceType = "BIWEEKLY"
)

// StepDays returns the number of days between occurrences.
func (r RecurrenceType) StepDays() (int, error) {
	switch r {
	case RecurrenceWeekly:
		return 7, nil
	case RecurrenceBiweekly:
		return 14, nil
	}
	return 0, fmt.Errorf("unknown recurrence type %q", r)
}

// RecurringAssignment is the parsed form of a course meeting across a semester. Makeups use it
// with only the resource and time fields set.
type RecurringAssignment struct {
	SubjectID      string
	GroupID        string
	TeacherID      string
	RoomID         string
	DayOfWeek      Weekday
	StartTime      ClockTime
	EndTime        ClockTime
	RecurrenceType RecurrenceType
	SemesterStart  Date
	SemesterEnd    Date
}

// Candidate builds the conflict-check candidate for one generated date.
func (a RecurringAssignment) Candidate(date Date) SessionCandidate {
	return SessionCandidate{
		Date:      date,
		StartTime: a.StartTime,
		EndTime:   a.EndTime,
		RoomID:    a.RoomID,
		TeacherID: a.TeacherID,
		GroupID:   a.GroupID,
	}
}

// Session builds the session stored for one generated date.
func (a RecurringAssignment) Session(date Date, status SessionStatus, recurrenceGroupID *string) Session {
	return Session{
		SubjectID:         a.SubjectID,
		GroupID:           a.GroupID,
		TeacherID:         a.TeacherID,
		RoomID:            a.RoomID,
		Date:              date,
		StartTime:         a.StartTime,
		EndTime:           a.EndTime,
		Status:            status,
		RecurrenceGroupID: recurrenceGroupID,
	}
}
