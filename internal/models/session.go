package models

import (
	"fmt"
	"time"
)

// SessionStatus represents the lifecycle of a dated class session.
type SessionStatus string

const (
	SessionStatusPlanned   SessionStatus = "PLANNED"
	SessionStatusCanceled  SessionStatus = "CANCELED"
	SessionStatusMakeup    SessionStatus = "MAKEUP"
	SessionStatusCompleted SessionStatus = "COMPLETED"
)

// Valid reports whether the status is one of the four known values.
func (s SessionStatus) Valid() bool {
	switch s {
	case SessionStatusPlanned, SessionStatusCanceled, SessionStatusMakeup, SessionStatusCompleted:
		return true
	}
	return false
}

// Blocking reports whether a session with this status occupies its resources.
func (s SessionStatus) Blocking() bool {
	return s.Valid() && s != SessionStatusCanceled
}

// ParseSessionStatus validates a raw status value.
func ParseSessionStatus(raw string) (SessionStatus, error) {
	status := SessionStatus(raw)
	if !status.Valid() {
		return "", fmt.Errorf("unknown session status %q", raw)
	}
	return status, nil
}

// Session is one concrete, dated occurrence of a course meeting.
type Session struct {
	ID                string        `db:"id" json:"id"`
	SubjectID         string        `db:"subject_id" json:"subjectId"`
	GroupID           string        `db:"group_id" json:"groupId"`
	TeacherID         string        `db:"teacher_id" json:"teacherId"`
	RoomID            string        `db:"room_id" json:"roomId"`
	Date              Date          `db:"session_date" json:"date"`
	StartTime         ClockTime     `db:"start_time" json:"startTime"`
	EndTime           ClockTime     `db:"end_time" json:"endTime"`
	Status            SessionStatus `db:"status" json:"status"`
	RecurrenceGroupID *string       `db:"recurrence_group_id" json:"recurrenceGroupId"`
	CancelReason      *string       `db:"cancel_reason" json:"cancelReason,omitempty"`
	CreatedAt         time.Time     `db:"created_at" json:"createdAt"`
	UpdatedAt         time.Time     `db:"updated_at" json:"updatedAt"`
}

// Overlaps reports whether the half-open windows [start, end) intersect.
func Overlaps(startA, endA, startB, endB ClockTime) bool {
	return startA < endB && startB < endA
}

// SessionFilter narrows session listings. Zero values are ignored.
type SessionFilter struct {
	From              *Date
	To                *Date
	RoomID            string
	RoomIDs           []string
	TeacherID         string
	GroupID           string
	Status            SessionStatus
	RecurrenceGroupID string
	Page              int
	PageSize          int
}

// ResourceKind names the resource two sessions collided on.
type ResourceKind string

const (
	ResourceRoom    ResourceKind = "ROOM"
	ResourceTeacher ResourceKind = "TEACHER"
	ResourceGroup   ResourceKind = "GROUP"
)

// SessionCandidate is a prospective session checked by the conflict detector.
type SessionCandidate struct {
	Date            Date      `json:"date"`
	StartTime       ClockTime `json:"startTime"`
	EndTime         ClockTime `json:"endTime"`
	RoomID          string    `json:"roomId"`
	TeacherID       string    `json:"teacherId"`
	GroupID         string    `json:"groupId"`
	IgnoreSessionID string    `json:"-"`
}

// SessionConflict describes one existing session colliding with a candidate.
type SessionConflict struct {
	Session   Session        `json:"session"`
	Resources []ResourceKind `json:"resources"`
}

// ConflictReport is the outcome of checking a candidate against existing sessions.
type ConflictReport struct {
	HasConflict bool              `json:"hasConflict"`
	Conflicts   []SessionConflict `json:"conflicts"`
}

// Resources returns the distinct resource kinds involved, in ROOM, TEACHER, GROUP order.
func (r ConflictReport) Resources() []ResourceKind {
	seen := map[ResourceKind]bool{}
	for _, c := range r.Conflicts {
		for _, kind := range c.Resources {
			seen[kind] = true
		}
	}
	var out []ResourceKind
	for _, kind := range []ResourceKind{ResourceRoom, ResourceTeacher, ResourceGroup} {
		if seen[kind] {
			out = append(out, kind)
		}
	}
	return out
}
