package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/campus-timetable-api/internal/dto"
	"github.com/noah-isme/campus-timetable-api/internal/models"
	appErrors "github.com/noah-isme/campus-timetable-api/pkg/errors"
)

type occupancySessionReader interface {
	ListAll(ctx context.Context, filter models.SessionFilter) ([]models.Session, error)
}

type occupancyReferenceReader interface {
	FindRoom(ctx context.Context, id string) (*models.Room, error)
	FindTeacher(ctx context.Context, id string) (*models.Teacher, error)
	FindGroup(ctx context.Context, id string) (*models.Group, error)
	ListRooms(ctx context.Context, filter models.RoomFilter) ([]models.Room, error)
	TeachersByIDs(ctx context.Context, ids []string) (map[string]models.Teacher, error)
	GroupsByIDs(ctx context.Context, ids []string) (map[string]models.Group, error)
	SubjectsByIDs(ctx context.Context, ids []string) (map[string]models.Subject, error)
	RoomsByIDs(ctx context.Context, ids []string) (map[string]models.Room, error)
}

// OccupancyConfig tunes week resolution.
type OccupancyConfig struct {
	Location *time.Location
	Now      func() time.Time
}

// OccupancyService builds weekly occupancy grids.
type OccupancyService struct {
	sessions  occupancySessionReader
	refs      occupancyReferenceReader
	catalogs  *models.CatalogRegistry
	cache     *CacheService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	location  *time.Location
	now       func() time.Time
}

// NewOccupancyService constructs the service.
func NewOccupancyService(
	sessions occupancySessionReader,
	refs occupancyReferenceReader,
	catalogs *models.CatalogRegistry,
	cache *CacheService,
	metrics *MetricsService,
	validate *validator.Validate,
	logger *zap.Logger,
	cfg OccupancyConfig,
) *OccupancyService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &OccupancyService{
		sessions:  sessions,
		refs:      refs,
		catalogs:  catalogs,
		cache:     cache,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		location:  cfg.Location,
		now:       cfg.Now,
	}
}

// WeekContaining returns the Monday..Sunday week holding t shifted by offset weeks.
func WeekContaining(t time.Time, offset int) models.WeekInfo {
	today := models.DateOf(t)
	sinceMonday := (int(today.Weekday()) + 6) % 7
	start := today.AddDays(-sinceMonday + 7*offset)
	return models.WeekInfo{WeekOffset: offset, StartDate: start, EndDate: start.AddDays(6)}
}

// OccupancyCacheKey identifies a cached result. Invalidation matches on the week prefix.
func OccupancyCacheKey(weekStart models.Date, catalog, scope string) string {
	return fmt.Sprintf("%s%s:%s:%s", occupancyCachePrefix, weekStart, catalog, scope)
}

const occupancyCachePrefix = "occupancy:"

type occupancyScope struct {
	kind   models.OccupancyTargetKind
	id     string
	filter models.RoomFilter
	all    bool
}

func (s occupancyScope) key() string {
	if s.all {
		return fmt.Sprintf("rooms:%s:%s", s.filter.Building, s.filter.Type)
	}
	return fmt.Sprintf("%s:%s", s.kind, s.id)
}

func (s *OccupancyService) parseScope(query dto.OccupancyQuery) (occupancyScope, error) {
	set := 0
	scope := occupancyScope{}
	if query.RoomID != "" {
		set++
		scope.kind, scope.id = models.TargetRoom, query.RoomID
	}
	if query.TeacherID != "" {
		set++
		scope.kind, scope.id = models.TargetTeacher, query.TeacherID
	}
	if query.GroupID != "" {
		set++
		scope.kind, scope.id = models.TargetGroup, query.GroupID
	}
	if set > 1 {
		return scope, appErrors.Clone(appErrors.ErrValidation, "only one of roomId, teacherId and groupId may be given")
	}
	if set == 0 {
		scope.kind = models.TargetRoom
		scope.all = true
		scope.filter = models.RoomFilter{Building: query.Building, Type: models.RoomType(query.RoomType)}
	}
	return scope, nil
}

// GetOccupancy returns the grids for the requested week. The boolean reports a cache hit.
func (s *OccupancyService) GetOccupancy(ctx context.Context, query dto.OccupancyQuery) (*models.OccupancyResult, bool, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, false, appErrors.Validation(err, "invalid occupancy query")
	}
	scope, err := s.parseScope(query)
	if err != nil {
		return nil, false, err
	}
	catalog, ok := s.catalogs.Resolve(query.Catalog)
	if !ok {
		return nil, false, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown time grid catalog %q", query.Catalog))
	}
	week := WeekContaining(s.now().In(s.location), query.WeekOffset)
	key := OccupancyCacheKey(week.StartDate, catalog.Name(), scope.key())

	var cached models.OccupancyResult
	if s.cache.Get(ctx, key, &cached) {
		return &cached, true, nil
	}

	value, err := s.cache.Do(key, func() (interface{}, error) {
		started := time.Now()
		result, err := s.build(ctx, scope, catalog, week)
		if err != nil {
			return nil, err
		}
		s.metrics.ObserveOccupancyBuild(time.Since(started))
		s.cache.Set(ctx, key, result)
		return result, nil
	})
	if err != nil {
		return nil, false, err
	}
	return value.(*models.OccupancyResult), false, nil
}

func (s *OccupancyService) resolveTargets(ctx context.Context, scope occupancyScope) ([]models.OccupancyTarget, models.SessionFilter, error) {
	notFound := func(err error, kind string) error {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("%s %s not found", kind, scope.id))
		}
		return appErrors.Storage(err, fmt.Sprintf("failed to load %s", kind))
	}

	switch {
	case scope.all:
		rooms, err := s.refs.ListRooms(ctx, scope.filter)
		if err != nil {
			return nil, models.SessionFilter{}, appErrors.Storage(err, "failed to list rooms")
		}
		targets := make([]models.OccupancyTarget, len(rooms))
		ids := make([]string, len(rooms))
		for i, room := range rooms {
			targets[i] = models.OccupancyTarget{Kind: models.TargetRoom, ID: room.ID, Label: room.Code}
			ids[i] = room.ID
		}
		return targets, models.SessionFilter{RoomIDs: ids}, nil
	case scope.kind == models.TargetRoom:
		room, err := s.refs.FindRoom(ctx, scope.id)
		if err != nil {
			return nil, models.SessionFilter{}, notFound(err, "room")
		}
		return []models.OccupancyTarget{{Kind: models.TargetRoom, ID: room.ID, Label: room.Code}}, models.SessionFilter{RoomID: room.ID}, nil
	case scope.kind == models.TargetTeacher:
		teacher, err := s.refs.FindTeacher(ctx, scope.id)
		if err != nil {
			return nil, models.SessionFilter{}, notFound(err, "teacher")
		}
		return []models.OccupancyTarget{{Kind: models.TargetTeacher, ID: teacher.ID, Label: teacher.FullName()}}, models.SessionFilter{TeacherID: teacher.ID}, nil
	default:
		group, err := s.refs.FindGroup(ctx, scope.id)
		if err != nil {
			return nil, models.SessionFilter{}, notFound(err, "group")
		}
		return []models.OccupancyTarget{{Kind: models.TargetGroup, ID: group.ID, Label: group.Name}}, models.SessionFilter{GroupID: group.ID}, nil
	}
}

type displayNames struct {
	subjects map[string]models.Subject
	teachers map[string]models.Teacher
	groups   map[string]models.Group
	rooms    map[string]models.Room
}

func (n displayNames) course(session models.Session) models.CellCourse {
	course := models.CellCourse{
		SessionID: session.ID,
		Subject:   session.SubjectID,
		Teacher:   session.TeacherID,
		Group:     session.GroupID,
		Room:      session.RoomID,
		Status:    session.Status,
	}
	if v, ok := n.subjects[session.SubjectID]; ok && v.Name != "" {
		course.Subject = v.Name
	}
	if v, ok := n.teachers[session.TeacherID]; ok && v.FullName() != "" {
		course.Teacher = v.FullName()
	}
	if v, ok := n.groups[session.GroupID]; ok && v.Name != "" {
		course.Group = v.Name
	}
	if v, ok := n.rooms[session.RoomID]; ok && v.Code != "" {
		course.Room = v.Code
	}
	return course
}

func (s *OccupancyService) resolveNames(ctx context.Context, sessions []models.Session) (displayNames, error) {
	subjectIDs, teacherIDs, groupIDs, roomIDs := map[string]struct{}{}, map[string]struct{}{}, map[string]struct{}{}, map[string]struct{}{}
	for _, session := range sessions {
		subjectIDs[session.SubjectID] = struct{}{}
		teacherIDs[session.TeacherID] = struct{}{}
		groupIDs[session.GroupID] = struct{}{}
		roomIDs[session.RoomID] = struct{}{}
	}

	var names displayNames
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		names.subjects, err = s.refs.SubjectsByIDs(gctx, sortedKeys(subjectIDs))
		return err
	})
	g.Go(func() (err error) {
		names.teachers, err = s.refs.TeachersByIDs(gctx, sortedKeys(teacherIDs))
		return err
	})
	g.Go(func() (err error) {
		names.groups, err = s.refs.GroupsByIDs(gctx, sortedKeys(groupIDs))
		return err
	})
	g.Go(func() (err error) {
		names.rooms, err = s.refs.RoomsByIDs(gctx, sortedKeys(roomIDs))
		return err
	})
	if err := g.Wait(); err != nil {
		return displayNames{}, appErrors.Storage(err, "failed to resolve display names")
	}
	return names, nil
}

func (s *OccupancyService) build(ctx context.Context, scope occupancyScope, catalog *models.TimeGridCatalog, week models.WeekInfo) (*models.OccupancyResult, error) {
	targets, filter, err := s.resolveTargets(ctx, scope)
	if err != nil {
		return nil, err
	}

	var sessions []models.Session
	if !scope.all || len(filter.RoomIDs) > 0 {
		filter.From, filter.To = &week.StartDate, &week.EndDate
		queryStart := time.Now()
		sessions, err = s.sessions.ListAll(ctx, filter)
		s.metrics.ObserveDBQuery("occupancy_sessions", time.Since(queryStart))
		if err != nil {
			s.logger.Error("occupancy session query failed", zap.Error(err))
			return nil, appErrors.Storage(err, "failed to load sessions")
		}
	}
	names, err := s.resolveNames(ctx, sessions)
	if err != nil {
		return nil, err
	}

	result := &models.OccupancyResult{
		WeekInfo:  week,
		Catalog:   catalog.Name(),
		TimeSlots: catalog.Slots(),
		Days:      catalog.Days(),
		Grids:     make([]models.OccupancyGrid, len(targets)),
		Warnings:  []models.UnalignedSessionWarning{},
	}
	gridIndex := make(map[string]int, len(targets))
	for i, target := range targets {
		result.Grids[i] = newGrid(target, catalog, week)
		gridIndex[target.ID] = i
	}

	for _, session := range sessions {
		idx, ok := gridIndex[targetIDFor(scope, session)]
		if !ok {
			continue
		}
		dayIdx, slotIdx, reason := placeSession(catalog, session)
		if reason != "" {
			result.Warnings = append(result.Warnings, models.UnalignedSessionWarning{
				SessionID: session.ID, Date: session.Date, StartTime: session.StartTime, EndTime: session.EndTime, Reason: reason,
			})
			continue
		}
		cell := &result.Grids[idx].Cells[dayIdx][slotIdx]
		cell.Courses = append(cell.Courses, names.course(session))
		active := 0
		for _, course := range cell.Courses {
			if course.Status.Blocking() {
				active++
			}
		}
		cell.IsOccupied = active > 0
		cell.Overbooked = active > 1
	}
	sort.SliceStable(result.Warnings, func(i, j int) bool {
		a, b := result.Warnings[i], result.Warnings[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		return a.StartTime < b.StartTime
	})

	result.Statistics = statistics(result.Grids, catalog, scope.all)
	if len(result.Warnings) > 0 {
		s.logger.Warn("occupancy contains unaligned sessions", zap.Int("count", len(result.Warnings)), zap.String("week", week.StartDate.String()))
	}
	return result, nil
}

func newGrid(target models.OccupancyTarget, catalog *models.TimeGridCatalog, week models.WeekInfo) models.OccupancyGrid {
	days := catalog.Days()
	cells := make([][]models.OccupancyCell, len(days))
	for d, day := range days {
		cells[d] = make([]models.OccupancyCell, catalog.SlotCount())
		for slot := range cells[d] {
			cells[d][slot] = models.OccupancyCell{Day: day, Date: week.StartDate.AddDays(int(day) - 1), SlotIndex: slot}
		}
	}
	return models.OccupancyGrid{Target: target, Cells: cells}
}

func targetIDFor(scope occupancyScope, session models.Session) string {
	switch scope.kind {
	case models.TargetTeacher:
		return session.TeacherID
	case models.TargetGroup:
		return session.GroupID
	default:
		return session.RoomID
	}
}

// placeSession locates the cell of a session by its start time, or explains why it has none.
func placeSession(catalog *models.TimeGridCatalog, session models.Session) (int, int, string) {
	day, ok := models.WeekdayOf(session.Date)
	if !ok {
		return 0, 0, "session falls on a non-teaching day"
	}
	dayIdx, ok := catalog.DayIndex(day)
	if !ok {
		return 0, 0, fmt.Sprintf("%s is not a day of catalog %s", day, catalog.Name())
	}
	slotIdx, ok := catalog.SlotIndexForStart(session.StartTime)
	if !ok {
		return 0, 0, fmt.Sprintf("start %s does not match a slot of catalog %s", session.StartTime, catalog.Name())
	}
	return dayIdx, slotIdx, ""
}

func statistics(grids []models.OccupancyGrid, catalog *models.TimeGridCatalog, allRooms bool) models.OccupancyStatistics {
	stats := models.OccupancyStatistics{TotalSlots: len(grids) * catalog.CellCount()}
	for _, grid := range grids {
		stats.OccupiedSlots += grid.OccupiedCount()
	}
	stats.AvailableSlots = stats.TotalSlots - stats.OccupiedSlots
	if stats.TotalSlots > 0 {
		stats.OccupancyRate = float64(stats.OccupiedSlots) / float64(stats.TotalSlots)
	}
	if allRooms {
		total := len(grids)
		stats.TotalRooms = &total
	}
	return stats
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
