package dto

// OccupancyQuery selects the grids to build. At most one of RoomID, TeacherID and GroupID may be set.
type OccupancyQuery struct {
	RoomID     string `form:"roomId"`
	TeacherID  string `form:"teacherId"`
	GroupID    string `form:"groupId"`
	WeekOffset int    `form:"weekOffset" validate:"min=-104,max=104"`
	Catalog    string `form:"catalog" validate:"omitempty,max=64"`
	Building   string `form:"building"`
	RoomType   string `form:"roomType" validate:"omitempty,oneof=LECTURE LAB EXAM OTHER"`
}

// ExportOccupancyQuery adds the rendering format to an occupancy query.
type ExportOccupancyQuery struct {
	OccupancyQuery
	Format string `form:"format" validate:"omitempty,oneof=csv pdf"`
}
