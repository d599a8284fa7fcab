package models

// OccupancyTargetKind identifies what a grid describes.
type OccupancyTargetKind string

const (
	TargetRoom    OccupancyTargetKind = "ROOM"
	TargetTeacher OccupancyTargetKind = "TEACHER"
	TargetGroup   OccupancyTargetKind = "GROUP"
)

// OccupancyTarget is the entity a grid belongs to.
type OccupancyTarget struct {
	Kind  OccupancyTargetKind `json:"kind"`
	ID    string              `json:"id"`
	Label string              `json:"label"`
}

// WeekInfo bounds the requested ISO week.
type WeekInfo struct {
	WeekOffset int  `json:"weekOffset"`
	StartDate  Date `json:"startDate"`
	EndDate    Date `json:"endDate"`
}

// CellCourse is the display payload of a session placed in a grid cell.
type CellCourse struct {
	SessionID string        `json:"sessionId"`
	Subject   string        `json:"subject"`
	Teacher   string        `json:"teacher"`
	Group     string        `json:"group"`
	Room      string        `json:"room"`
	Status    SessionStatus `json:"status"`
}

// OccupancyCell is one [day][slot] position.
type OccupancyCell struct {
	Day        Weekday      `json:"day"`
	Date       Date         `json:"date"`
	SlotIndex  int          `json:"slotIndex"`
	IsOccupied bool         `json:"isOccupied"`
	Overbooked bool         `json:"overbooked,omitempty"`
	Courses    []CellCourse `json:"courses,omitempty"`
}

// OccupancyGrid holds cells indexed by [day][slot].
type OccupancyGrid struct {
	Target OccupancyTarget   `json:"target"`
	Cells  [][]OccupancyCell `json:"cells"`
}

// OccupiedCount counts cells with at least one non-canceled course.
func (g OccupancyGrid) OccupiedCount() int {
	total := 0
	for _, row := range g.Cells {
		for _, cell := range row {
			if cell.IsOccupied {
				total++
			}
		}
	}
	return total
}

// OccupancyStatistics aggregates counts across every grid of a result.
type OccupancyStatistics struct {
	TotalRooms     *int    `json:"totalRooms,omitempty"`
	TotalSlots     int     `json:"totalSlots"`
	OccupiedSlots  int     `json:"occupiedSlots"`
	AvailableSlots int     `json:"availableSlots"`
	OccupancyRate  float64 `json:"occupancyRate"`
}

// UnalignedSessionWarning flags a session that cannot be placed in the grid.
type UnalignedSessionWarning struct {
	SessionID string    `json:"sessionId"`
	Date      Date      `json:"date"`
	StartTime ClockTime `json:"startTime"`
	EndTime   ClockTime `json:"endTime"`
	Reason    string    `json:"reason"`
}

// OccupancyResult is the full response of an occupancy query.
type OccupancyResult struct {
	WeekInfo   WeekInfo                  `json:"weekInfo"`
	Catalog    string                    `json:"catalog"`
	TimeSlots  []TimeSlot                `json:"timeSlots"`
	Days       []Weekday                 `json:"days"`
	Grids      []OccupancyGrid           `json:"grid"`
	Statistics OccupancyStatistics       `json:"statistics"`
	Warnings   []UnalignedSessionWarning `json:"warnings"`
}
