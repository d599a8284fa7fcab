package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/campus-timetable-api/internal/models"
)

// ErrSessionOverlap is returned when the database exclusion constraints reject an insert.
var ErrSessionOverlap = errors.New("session overlaps an existing session")

const exclusionViolation = "23P01"

const sessionColumns = `id, subject_id, group_id, teacher_id, room_id, session_date, start_time, end_time, status,
recurrence_group_id, cancel_reason, created_at, updated_at`

// SessionRepository persists dated class sessions.
type SessionRepository struct {
	db          *sqlx.DB
	lockTimeout time.Duration
}

// NewSessionRepository constructs the repository. lockTimeout bounds advisory lock waits; zero disables it.
func NewSessionRepository(db *sqlx.DB, lockTimeout time.Duration) *SessionRepository {
	return &SessionRepository{db: db, lockTimeout: lockTimeout}
}

func (r *SessionRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// RoomDayLockKey identifies the advisory lock guarding a room on a date.
func RoomDayLockKey(roomID string, date models.Date) string {
	return "room:" + roomID + ":" + date.String()
}

// TeacherDayLockKey identifies the advisory lock guarding a teacher on a date.
func TeacherDayLockKey(teacherID string, date models.Date) string {
	return "teacher:" + teacherID + ":" + date.String()
}

// GroupDayLockKey identifies the advisory lock guarding a group on a date.
func GroupDayLockKey(groupID string, date models.Date) string {
	return "group:" + groupID + ":" + date.String()
}

// RunLocked opens a transaction, takes a transaction-scoped advisory lock per key and runs fn.
// Keys are sorted before locking so concurrent callers acquire them in the same order.
func (r *SessionRepository) RunLocked(ctx context.Context, keys []string, fn func(exec sqlx.ExtContext) error) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin locked session tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if r.lockTimeout > 0 {
		stmt := fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", r.lockTimeout.Milliseconds())
		if _, err = tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("set lock timeout: %w", err)
		}
	}

	for _, key := range normalizeLockKeys(keys) {
		if _, err = tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, key); err != nil {
			return fmt.Errorf("acquire session lock %s: %w", key, err)
		}
	}

	if err = fn(tx); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit locked session tx: %w", err)
	}
	return nil
}

func normalizeLockKeys(keys []string) []string {
	seen := make(map[string]struct{}, len(keys))
	out := make([]string, 0, len(keys))
	for _, key := range keys {
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, key)
	}
	sort.Strings(out)
	return out
}

// ListActiveForResources returns non-canceled sessions on date sharing the room, teacher or group.
func (r *SessionRepository) ListActiveForResources(ctx context.Context, exec sqlx.ExtContext, date models.Date, roomID, teacherID, groupID string) ([]models.Session, error) {
	query := `SELECT ` + sessionColumns + `
FROM class_sessions
WHERE session_date = $1 AND status <> $2 AND (room_id = $3 OR teacher_id = $4 OR group_id = $5)
ORDER BY start_time ASC, id ASC`
	var sessions []models.Session
	if err := sqlx.SelectContext(ctx, r.exec(exec), &sessions, query, date, models.SessionStatusCanceled, roomID, teacherID, groupID); err != nil {
		return nil, fmt.Errorf("list active sessions for resources: %w", err)
	}
	return sessions, nil
}

// Create inserts a session. Exclusion constraint violations surface as ErrSessionOverlap.
func (r *SessionRepository) Create(ctx context.Context, exec sqlx.ExtContext, session *models.Session) error {
	if session == nil {
		return fmt.Errorf("session payload is nil")
	}
	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if session.CreatedAt.IsZero() {
		session.CreatedAt = now
	}
	session.UpdatedAt = now

	const query = `INSERT INTO class_sessions (id, subject_id, group_id, teacher_id, room_id, session_date, start_time, end_time, status,
recurrence_group_id, cancel_reason, created_at, updated_at)
VALUES (:id, :subject_id, :group_id, :teacher_id, :room_id, :session_date, :start_time, :end_time, :status,
:recurrence_group_id, :cancel_reason, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, r.exec(exec), query, session); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == exclusionViolation {
			return fmt.Errorf("%w (%s)", ErrSessionOverlap, pqErr.Constraint)
		}
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

// FindByID fetches a single session.
func (r *SessionRepository) FindByID(ctx context.Context, id string) (*models.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM class_sessions WHERE id = $1`
	var session models.Session
	if err := r.db.GetContext(ctx, &session, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find session: %w", err)
	}
	return &session, nil
}

func buildSessionWhere(filter models.SessionFilter) (string, []interface{}) {
	conditions := []string{"1=1"}
	args := []interface{}{}

	if filter.From != nil {
		conditions = append(conditions, fmt.Sprintf("session_date >= $%d", len(args)+1))
		args = append(args, *filter.From)
	}
	if filter.To != nil {
		conditions = append(conditions, fmt.Sprintf("session_date <= $%d", len(args)+1))
		args = append(args, *filter.To)
	}
	if filter.RoomID != "" {
		conditions = append(conditions, fmt.Sprintf("room_id = $%d", len(args)+1))
		args = append(args, filter.RoomID)
	}
	if len(filter.RoomIDs) > 0 {
		conditions = append(conditions, fmt.Sprintf("room_id = ANY($%d)", len(args)+1))
		args = append(args, pq.Array(filter.RoomIDs))
	}
	if filter.TeacherID != "" {
		conditions = append(conditions, fmt.Sprintf("teacher_id = $%d", len(args)+1))
		args = append(args, filter.TeacherID)
	}
	if filter.GroupID != "" {
		conditions = append(conditions, fmt.Sprintf("group_id = $%d", len(args)+1))
		args = append(args, filter.GroupID)
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}
	if filter.RecurrenceGroupID != "" {
		conditions = append(conditions, fmt.Sprintf("recurrence_group_id = $%d", len(args)+1))
		args = append(args, filter.RecurrenceGroupID)
	}
	return "WHERE " + strings.Join(conditions, " AND "), args
}

// List returns a page of sessions ordered chronologically with the total count.
func (r *SessionRepository) List(ctx context.Context, filter models.SessionFilter) ([]models.Session, int, error) {
	where, args := buildSessionWhere(filter)

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 200 {
		size = 50
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT %s FROM class_sessions %s ORDER BY session_date ASC, start_time ASC, id ASC LIMIT %d OFFSET %d`,
		sessionColumns, where, size, offset)
	var sessions []models.Session
	if err := r.db.SelectContext(ctx, &sessions, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list sessions: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM class_sessions "+where, args...); err != nil {
		return nil, 0, fmt.Errorf("count sessions: %w", err)
	}
	return sessions, total, nil
}

// ListAll returns every session matching filter without pagination.
func (r *SessionRepository) ListAll(ctx context.Context, filter models.SessionFilter) ([]models.Session, error) {
	where, args := buildSessionWhere(filter)
	query := fmt.Sprintf(`SELECT %s FROM class_sessions %s ORDER BY session_date ASC, start_time ASC, id ASC`, sessionColumns, where)
	var sessions []models.Session
	if err := r.db.SelectContext(ctx, &sessions, query, args...); err != nil {
		return nil, fmt.Errorf("list sessions in window: %w", err)
	}
	return sessions, nil
}

// ListByRecurrenceGroup returns every session sharing a recurrence group.
func (r *SessionRepository) ListByRecurrenceGroup(ctx context.Context, groupID string) ([]models.Session, error) {
	return r.ListAll(ctx, models.SessionFilter{RecurrenceGroupID: groupID})
}

// UpdateStatus moves a session to status `to` when its current status is one of `from`.
// sql.ErrNoRows is returned when no row matched.
func (r *SessionRepository) UpdateStatus(ctx context.Context, exec sqlx.ExtContext, id string, from []models.SessionStatus, to models.SessionStatus, reason *string) (*models.Session, error) {
	allowed := make([]string, len(from))
	for i, status := range from {
		allowed[i] = string(status)
	}
	query := `UPDATE class_sessions SET status = $1, cancel_reason = COALESCE($2, cancel_reason), updated_at = $3
WHERE id = $4 AND status = ANY($5)
RETURNING ` + sessionColumns
	var session models.Session
	if err := sqlx.GetContext(ctx, r.exec(exec), &session, query, to, reason, time.Now().UTC(), id, pq.Array(allowed)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("update session status: %w", err)
	}
	return &session, nil
}

// CancelRecurrenceGroup cancels the planned sessions of a group, optionally from a date onwards.
func (r *SessionRepository) CancelRecurrenceGroup(ctx context.Context, groupID string, from *models.Date, reason *string) ([]models.Session, error) {
	args := []interface{}{models.SessionStatusCanceled, reason, time.Now().UTC(), groupID, models.SessionStatusPlanned}
	query := `UPDATE class_sessions SET status = $1, cancel_reason = COALESCE($2, cancel_reason), updated_at = $3
WHERE recurrence_group_id = $4 AND status = $5`
	if from != nil {
		query += " AND session_date >= $6"
		args = append(args, *from)
	}
	query += " RETURNING " + sessionColumns

	var sessions []models.Session
	if err := r.db.SelectContext(ctx, &sessions, query, args...); err != nil {
		return nil, fmt.Errorf("cancel recurrence group: %w", err)
	}
	return sessions, nil
}
