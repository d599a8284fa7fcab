package dto

import "github.com/noah-isme/campus-timetable-api/internal/models"

// CreateSemesterScheduleRequest describes one course meeting repeated across a semester.
type CreateSemesterScheduleRequest struct {
	SubjectID      string                `json:"subjectId" validate:"required"`
	GroupID        string                `json:"groupId" validate:"required"`
	TeacherID      string                `json:"teacherId" validate:"required"`
	RoomID         string                `json:"roomId" validate:"required"`
	DayOfWeek      models.Weekday        `json:"dayOfWeek" validate:"required,min=1,max=6"`
	StartTime      string                `json:"startTime" validate:"required"`
	EndTime        string                `json:"endTime" validate:"required"`
	RecurrenceType models.RecurrenceType `json:"recurrenceType" validate:"required,oneof=WEEKLY BIWEEKLY"`
	SemesterStart  string                `json:"semesterStart" validate:"required,datetime=2006-01-02"`
	SemesterEnd    string                `json:"semesterEnd" validate:"required,datetime=2006-01-02"`
	Catalog        string                `json:"catalog" validate:"omitempty,max=64"`
}

// ScheduleConflictEntry explains why a generated date was not persisted.
type ScheduleConflictEntry struct {
	Date                  models.Date           `json:"date"`
	Reason                string                `json:"reason"`
	Resources             []models.ResourceKind `json:"resources,omitempty"`
	ConflictingSessionIDs []string              `json:"conflictingSessionIds,omitempty"`
}

// ScheduleCreationResult summarises a semester schedule creation.
type ScheduleCreationResult struct {
	Success           bool                    `json:"success"`
	RecurrenceGroupID string                  `json:"recurrenceGroupId,omitempty"`
	CreatedCount      int                     `json:"createdCount"`
	ConflictsCount    int                     `json:"conflictsCount"`
	StorageErrorCount int                     `json:"storageErrorCount"`
	Conflicts         []ScheduleConflictEntry `json:"conflicts"`
	Sessions          []models.Session        `json:"sessions"`
}

// SchedulePreviewResult lists what a creation would do without writing anything.
type SchedulePreviewResult struct {
	Dates          []models.Date           `json:"dates"`
	AvailableDates []models.Date           `json:"availableDates"`
	ConflictsCount int                     `json:"conflictsCount"`
	Conflicts      []ScheduleConflictEntry `json:"conflicts"`
}
