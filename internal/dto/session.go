package dto

import "github.com/noah-isme/campus-timetable-api/internal/models"

// SessionListQuery carries the filters accepted by the session listing.
type SessionListQuery struct {
	From              string `form:"from" validate:"omitempty,datetime=2006-01-02"`
	To                string `form:"to" validate:"omitempty,datetime=2006-01-02"`
	RoomID            string `form:"roomId"`
	TeacherID         string `form:"teacherId"`
	GroupID           string `form:"groupId"`
	Status            string `form:"status" validate:"omitempty,oneof=PLANNED CANCELED MAKEUP COMPLETED"`
	RecurrenceGroupID string `form:"recurrenceGroupId"`
	Page              int    `form:"page" validate:"omitempty,min=1"`
	PageSize          int    `form:"pageSize" validate:"omitempty,min=1,max=200"`
}

// CancelSessionRequest optionally explains a cancellation.
type CancelSessionRequest struct {
	Reason string `json:"reason" validate:"omitempty,max=255"`
}

// CancelRecurrenceGroupRequest cancels the remaining planned sessions of a group.
type CancelRecurrenceGroupRequest struct {
	FromDate string `json:"fromDate" validate:"omitempty,datetime=2006-01-02"`
	Reason   string `json:"reason" validate:"omitempty,max=255"`
}

// CancelRecurrenceGroupResult reports the sessions that were canceled.
type CancelRecurrenceGroupResult struct {
	RecurrenceGroupID string           `json:"recurrenceGroupId"`
	CanceledCount     int              `json:"canceledCount"`
	Sessions          []models.Session `json:"sessions"`
}

// CreateMakeupRequest schedules a single replacement session.
type CreateMakeupRequest struct {
	SubjectID         string `json:"subjectId" validate:"required"`
	GroupID           string `json:"groupId" validate:"required"`
	TeacherID         string `json:"teacherId" validate:"required"`
	RoomID            string `json:"roomId" validate:"required"`
	Date              string `json:"date" validate:"required,datetime=2006-01-02"`
	StartTime         string `json:"startTime" validate:"required"`
	EndTime           string `json:"endTime" validate:"required"`
	RecurrenceGroupID string `json:"recurrenceGroupId" validate:"omitempty,uuid"`
	Catalog           string `json:"catalog" validate:"omitempty,max=64"`
}

// MakeupResult reports the created makeup session or the conflicts that blocked it.
type MakeupResult struct {
	Success   bool                    `json:"success"`
	Session   *models.Session         `json:"session,omitempty"`
	Conflicts []ScheduleConflictEntry `json:"conflicts"`
}
