package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-timetable-api/internal/models"
	appErrors "github.com/noah-isme/campus-timetable-api/pkg/errors"
)

// activeSessionReader is the slice of the session store used for conflict detection.
type activeSessionReader interface {
	ListActiveForResources(ctx context.Context, exec sqlx.ExtContext, date models.Date, roomID, teacherID, groupID string) ([]models.Session, error)
}

// ConflictDetector checks candidates against the sessions currently stored.
type ConflictDetector struct {
	sessions activeSessionReader
	logger   *zap.Logger
}

// NewConflictDetector constructs a detector.
func NewConflictDetector(sessions activeSessionReader, logger *zap.Logger) *ConflictDetector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConflictDetector{sessions: sessions, logger: logger}
}

// Check reads the sessions sharing a resource on the candidate's date and reports collisions.
// exec may be a transaction holding the resource locks; nil reads outside any transaction.
func (d *ConflictDetector) Check(ctx context.Context, exec sqlx.ExtContext, candidate models.SessionCandidate) (models.ConflictReport, error) {
	if err := validateCandidate(candidate); err != nil {
		return models.ConflictReport{}, err
	}
	existing, err := d.sessions.ListActiveForResources(ctx, exec, candidate.Date, candidate.RoomID, candidate.TeacherID, candidate.GroupID)
	if err != nil {
		d.logger.Warn("conflict lookup failed", zap.String("date", candidate.Date.String()), zap.Error(err))
		return models.ConflictReport{}, appErrors.Storage(err, "failed to load sessions for conflict check")
	}
	return DetectConflicts(candidate, existing)
}

// DetectConflicts compares a candidate with a working set of sessions. Canceled sessions,
// sessions on other dates and the ignored session never conflict; windows are half-open.
func DetectConflicts(candidate models.SessionCandidate, workingSet []models.Session) (models.ConflictReport, error) {
	if err := validateCandidate(candidate); err != nil {
		return models.ConflictReport{}, err
	}
	report := models.ConflictReport{Conflicts: []models.SessionConflict{}}
	for _, existing := range workingSet {
		if existing.Status == models.SessionStatusCanceled {
			continue
		}
		if candidate.IgnoreSessionID != "" && existing.ID == candidate.IgnoreSessionID {
			continue
		}
		if !existing.Date.Equal(candidate.Date) {
			continue
		}
		if !models.Overlaps(candidate.StartTime, candidate.EndTime, existing.StartTime, existing.EndTime) {
			continue
		}
		var kinds []models.ResourceKind
		if existing.RoomID == candidate.RoomID {
			kinds = append(kinds, models.ResourceRoom)
		}
		if existing.TeacherID == candidate.TeacherID {
			kinds = append(kinds, models.ResourceTeacher)
		}
		if existing.GroupID == candidate.GroupID {
			kinds = append(kinds, models.ResourceGroup)
		}
		if len(kinds) == 0 {
			continue
		}
		report.Conflicts = append(report.Conflicts, models.SessionConflict{Session: existing, Resources: kinds})
	}
	report.HasConflict = len(report.Conflicts) > 0
	return report, nil
}

func validateCandidate(c models.SessionCandidate) error {
	var missing []string
	if strings.TrimSpace(c.RoomID) == "" {
		missing = append(missing, "roomId")
	}
	if strings.TrimSpace(c.TeacherID) == "" {
		missing = append(missing, "teacherId")
	}
	if strings.TrimSpace(c.GroupID) == "" {
		missing = append(missing, "groupId")
	}
	if c.Date.IsZero() {
		missing = append(missing, "date")
	}
	if len(missing) > 0 {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("candidate is missing %s", strings.Join(missing, ", ")))
	}
	if c.StartTime >= c.EndTime {
		return appErrors.Clone(appErrors.ErrValidation, "candidate start time must be before end time")
	}
	return nil
}

// describeConflict renders a human readable reason naming the clashing resources and sessions, e.g.
// "room conflict with 1 session(s): s-1 [room] sub-1 for grp-1 at 10:10-11:40".
func describeConflict(report models.ConflictReport) string {
	kinds := report.Resources()
	names := make([]string, len(kinds))
	for i, kind := range kinds {
		names[i] = strings.ToLower(string(kind))
	}
	with := make([]string, len(report.Conflicts))
	for i, c := range report.Conflicts {
		resources := make([]string, len(c.Resources))
		for j, kind := range c.Resources {
			resources[j] = strings.ToLower(string(kind))
		}
		with[i] = fmt.Sprintf("%s [%s] %s for %s at %s-%s", c.Session.ID, strings.Join(resources, ", "),
			c.Session.SubjectID, c.Session.GroupID, c.Session.StartTime, c.Session.EndTime)
	}
	return fmt.Sprintf("%s conflict with %d session(s): %s", strings.Join(names, ", "), len(report.Conflicts), strings.Join(with, "; "))
}
