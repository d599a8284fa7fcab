package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/campus-timetable-api/internal/models"
)

// ReferenceRepository reads rooms, teachers, groups and subjects owned by the CRUD layer.
type ReferenceRepository struct {
	db *sqlx.DB
}

// NewReferenceRepository constructs the repository.
func NewReferenceRepository(db *sqlx.DB) *ReferenceRepository {
	return &ReferenceRepository{db: db}
}

func (r *ReferenceRepository) get(ctx context.Context, dest interface{}, label, query, id string) error {
	if err := r.db.GetContext(ctx, dest, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return err
		}
		return fmt.Errorf("find %s: %w", label, err)
	}
	return nil
}

// FindRoom fetches a room by ID.
func (r *ReferenceRepository) FindRoom(ctx context.Context, id string) (*models.Room, error) {
	var room models.Room
	if err := r.get(ctx, &room, "room", `SELECT id, code, type, capacity, building FROM rooms WHERE id = $1`, id); err != nil {
		return nil, err
	}
	return &room, nil
}

// FindTeacher fetches a teacher by ID.
func (r *ReferenceRepository) FindTeacher(ctx context.Context, id string) (*models.Teacher, error) {
	var teacher models.Teacher
	if err := r.get(ctx, &teacher, "teacher", `SELECT id, first_name, last_name, department_id FROM teachers WHERE id = $1`, id); err != nil {
		return nil, err
	}
	return &teacher, nil
}

// FindGroup fetches a student group by ID.
func (r *ReferenceRepository) FindGroup(ctx context.Context, id string) (*models.Group, error) {
	var group models.Group
	if err := r.get(ctx, &group, "group", `SELECT id, name, level_id FROM student_groups WHERE id = $1`, id); err != nil {
		return nil, err
	}
	return &group, nil
}

// FindSubject fetches a subject by ID.
func (r *ReferenceRepository) FindSubject(ctx context.Context, id string) (*models.Subject, error) {
	var subject models.Subject
	if err := r.get(ctx, &subject, "subject", `SELECT id, name, code FROM subjects WHERE id = $1`, id); err != nil {
		return nil, err
	}
	return &subject, nil
}

// ListRooms returns rooms ordered by code, optionally narrowed by building and type.
func (r *ReferenceRepository) ListRooms(ctx context.Context, filter models.RoomFilter) ([]models.Room, error) {
	conditions := []string{"1=1"}
	args := []interface{}{}
	if filter.Building != "" {
		conditions = append(conditions, fmt.Sprintf("building = $%d", len(args)+1))
		args = append(args, filter.Building)
	}
	if filter.Type != "" {
		conditions = append(conditions, fmt.Sprintf("type = $%d", len(args)+1))
		args = append(args, filter.Type)
	}
	query := fmt.Sprintf(`SELECT id, code, type, capacity, building FROM rooms WHERE %s ORDER BY code ASC, id ASC`, strings.Join(conditions, " AND "))
	var rooms []models.Room
	if err := r.db.SelectContext(ctx, &rooms, query, args...); err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	return rooms, nil
}

// TeachersByIDs resolves teachers keyed by ID. Unknown IDs are absent from the map.
func (r *ReferenceRepository) TeachersByIDs(ctx context.Context, ids []string) (map[string]models.Teacher, error) {
	out := make(map[string]models.Teacher, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var teachers []models.Teacher
	if err := r.db.SelectContext(ctx, &teachers, `SELECT id, first_name, last_name, department_id FROM teachers WHERE id = ANY($1)`, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("list teachers by ids: %w", err)
	}
	for _, t := range teachers {
		out[t.ID] = t
	}
	return out, nil
}

// GroupsByIDs resolves student groups keyed by ID.
func (r *ReferenceRepository) GroupsByIDs(ctx context.Context, ids []string) (map[string]models.Group, error) {
	out := make(map[string]models.Group, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var groups []models.Group
	if err := r.db.SelectContext(ctx, &groups, `SELECT id, name, level_id FROM student_groups WHERE id = ANY($1)`, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("list groups by ids: %w", err)
	}
	for _, g := range groups {
		out[g.ID] = g
	}
	return out, nil
}

// SubjectsByIDs resolves subjects keyed by ID.
func (r *ReferenceRepository) SubjectsByIDs(ctx context.Context, ids []string) (map[string]models.Subject, error) {
	out := make(map[string]models.Subject, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var subjects []models.Subject
	if err := r.db.SelectContext(ctx, &subjects, `SELECT id, name, code FROM subjects WHERE id = ANY($1)`, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("list subjects by ids: %w", err)
	}
	for _, s := range subjects {
		out[s.ID] = s
	}
	return out, nil
}

// RoomsByIDs resolves rooms keyed by ID.
func (r *ReferenceRepository) RoomsByIDs(ctx context.Context, ids []string) (map[string]models.Room, error) {
	out := make(map[string]models.Room, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rooms []models.Room
	if err := r.db.SelectContext(ctx, &rooms, `SELECT id, code, type, capacity, building FROM rooms WHERE id = ANY($1)`, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("list rooms by ids: %w", err)
	}
	for _, room := range rooms {
		out[room.ID] = room
	}
	return out, nil
}
