package models

import "fmt"

// RoomType classifies rooms.
type RoomType string

const (
	RoomTypeLecture RoomType = "LECTURE"
	RoomTypeLab     RoomType = "LAB"
	RoomTypeExam    RoomType = "EXAM"
	RoomTypeOther   RoomType = "OTHER"
)

// ParseRoomType validates a raw room type.
func ParseRoomType(raw string) (RoomType, error) {
	switch t := RoomType(raw); t {
	case RoomTypeLecture, RoomTypeLab, RoomTypeExam, RoomTypeOther:
		return t, nil
	}
	return "", fmt.Errorf("unknown room type %q", raw)
}

// Room is owned by the CRUD layer and read-only here.
type Room struct {
	ID       string   `db:"id" json:"id"`
	Code     string   `db:"code" json:"code"`
	Type     RoomType `db:"type" json:"type"`
	Capacity int      `db:"capacity" json:"capacity"`
	Building string   `db:"building" json:"building"`
}

// Teacher is owned by the CRUD layer and read-only here.
type Teacher struct {
	ID           string `db:"id" json:"id"`
	FirstName    string `db:"first_name" json:"firstName"`
	LastName     string `db:"last_name" json:"lastName"`
	DepartmentID string `db:"department_id" json:"departmentId"`
}

// FullName joins first and last name.
func (t Teacher) FullName() string {
	switch {
	case t.FirstName == "":
		return t.LastName
	case t.LastName == "":
		return t.FirstName
	}
	return t.FirstName + " " + t.LastName
}

// Group is a student group owned by the CRUD layer.
type Group struct {
	ID      string `db:"id" json:"id"`
	Name    string `db:"name" json:"name"`
	LevelID string `db:"level_id" json:"levelId"`
}

// Subject is owned by the CRUD layer.
type Subject struct {
	ID   string `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
	Code string `db:"code" json:"code"`
}

// RoomFilter narrows room listings.
type RoomFilter struct {
	Building string
	Type     RoomType
}
