package models

import (
	"fmt"
	"sort"
	"strings"
)

// Built-in catalog names.
const (
	CatalogStandard = "standard"
	CatalogExtended = "extended"
)

// TimeSlot is one teaching period of the weekly grid.
type TimeSlot struct {
	Index int       `json:"index"`
	Start ClockTime `json:"start"`
	End   ClockTime `json:"end"`
}

// Label renders "HH:MM-HH:MM".
func (s TimeSlot) Label() string {
	return s.Start.String() + "-" + s.End.String()
}

// TimeGridCatalog is an immutable set of time slots and schedulable days.
type TimeGridCatalog struct {
	name  string
	slots []TimeSlot
	days  []Weekday
}

// NewTimeGridCatalog validates and builds a catalog. Slots must be ordered and must not overlap.
func NewTimeGridCatalog(name string, slots []TimeSlot, days []Weekday) (*TimeGridCatalog, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("catalog name is required")
	}
	if len(slots) == 0 {
		return nil, fmt.Errorf("catalog %s: at least one slot is required", name)
	}
	if len(days) == 0 {
		return nil, fmt.Errorf("catalog %s: at least one schedulable day is required", name)
	}

	normalized := make([]TimeSlot, len(slots))
	for i, slot := range slots {
		if slot.Start >= slot.End {
			return nil, fmt.Errorf("catalog %s: slot %s has start not before end", name, slot.Label())
		}
		if i > 0 && slot.Start < normalized[i-1].End {
			return nil, fmt.Errorf("catalog %s: slot %s overlaps or precedes %s", name, slot.Label(), normalized[i-1].Label())
		}
		normalized[i] = TimeSlot{Index: i, Start: slot.Start, End: slot.End}
	}

	seen := make(map[Weekday]struct{}, len(days))
	orderedDays := make([]Weekday, 0, len(days))
	for _, day := range days {
		if !day.Valid() {
			return nil, fmt.Errorf("catalog %s: day %d is not schedulable", name, int(day))
		}
		if _, dup := seen[day]; dup {
			continue
		}
		seen[day] = struct{}{}
		orderedDays = append(orderedDays, day)
	}
	sort.Slice(orderedDays, func(i, j int) bool { return orderedDays[i] < orderedDays[j] })

	return &TimeGridCatalog{name: name, slots: normalized, days: orderedDays}, nil
}

// ParseSlotList parses "08:30-10:00|10:10-11:40" into time slots.
func ParseSlotList(raw string) ([]TimeSlot, error) {
	var slots []TimeSlot
	for _, part := range strings.Split(raw, "|") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		bounds := strings.Split(part, "-")
		if len(bounds) != 2 {
			return nil, fmt.Errorf("invalid slot %q: expected HH:MM-HH:MM", part)
		}
		start, err := ParseClockTime(bounds[0])
		if err != nil {
			return nil, err
		}
		end, err := ParseClockTime(bounds[1])
		if err != nil {
			return nil, err
		}
		slots = append(slots, TimeSlot{Index: len(slots), Start: start, End: end})
	}
	return slots, nil
}

// Name returns the catalog name.
func (c *TimeGridCatalog) Name() string { return c.name }

// Slots returns a copy of the ordered slots.
func (c *TimeGridCatalog) Slots() []TimeSlot {
	out := make([]TimeSlot, len(c.slots))
	copy(out, c.slots)
	return out
}

// Days returns a copy of the schedulable days.
func (c *TimeGridCatalog) Days() []Weekday {
	out := make([]Weekday, len(c.days))
	copy(out, c.days)
	return out
}

// SlotCount is the number of slots per day.
func (c *TimeGridCatalog) SlotCount() int { return len(c.slots) }

// DayCount is the number of schedulable days.
func (c *TimeGridCatalog) DayCount() int { return len(c.days) }

// CellCount is days × slots for a single grid.
func (c *TimeGridCatalog) CellCount() int { return c.SlotCount() * c.DayCount() }

// SlotIndexForStart finds the slot whose start equals start exactly.
func (c *TimeGridCatalog) SlotIndexForStart(start ClockTime) (int, bool) {
	for _, slot := range c.slots {
		if slot.Start == start {
			return slot.Index, true
		}
	}
	return -1, false
}

// SlotFor returns the slot whose boundaries match start and end exactly.
func (c *TimeGridCatalog) SlotFor(start, end ClockTime) (TimeSlot, bool) {
	idx, ok := c.SlotIndexForStart(start)
	if !ok || c.slots[idx].End != end {
		return TimeSlot{}, false
	}
	return c.slots[idx], true
}

// DayIndex returns the column of day in the grid.
func (c *TimeGridCatalog) DayIndex(day Weekday) (int, bool) {
	for i, d := range c.days {
		if d == day {
			return i, true
		}
	}
	return -1, false
}

// Schedulable reports whether the catalog offers day.
func (c *TimeGridCatalog) Schedulable(day Weekday) bool {
	_, ok := c.DayIndex(day)
	return ok
}

// CatalogView is the serialisable form of a catalog.
type CatalogView struct {
	Name      string     `json:"name"`
	Default   bool       `json:"default"`
	TimeSlots []TimeSlot `json:"timeSlots"`
	Days      []Weekday  `json:"days"`
}

// View returns the serialisable representation.
func (c *TimeGridCatalog) View() CatalogView {
	return CatalogView{Name: c.name, TimeSlots: c.Slots(), Days: c.Days()}
}

// CatalogRegistry holds the catalogs configured for a deployment.
type CatalogRegistry struct {
	catalogs    map[string]*TimeGridCatalog
	defaultName string
}

// NewCatalogRegistry builds a registry; defaultName must refer to one of catalogs.
func NewCatalogRegistry(defaultName string, catalogs ...*TimeGridCatalog) (*CatalogRegistry, error) {
	reg := &CatalogRegistry{catalogs: make(map[string]*TimeGridCatalog, len(catalogs)), defaultName: defaultName}
	for _, c := range catalogs {
		if c == nil {
			continue
		}
		reg.catalogs[c.Name()] = c
	}
	if _, ok := reg.catalogs[defaultName]; !ok {
		return nil, fmt.Errorf("default catalog %q is not defined", defaultName)
	}
	return reg, nil
}

// Resolve returns the named catalog, or the default when name is empty.
func (r *CatalogRegistry) Resolve(name string) (*TimeGridCatalog, bool) {
	if strings.TrimSpace(name) == "" {
		name = r.defaultName
	}
	c, ok := r.catalogs[name]
	return c, ok
}

// Default returns the default catalog.
func (r *CatalogRegistry) Default() *TimeGridCatalog {
	return r.catalogs[r.defaultName]
}

// Views lists every catalog sorted by name.
func (r *CatalogRegistry) Views() []CatalogView {
	views := make([]CatalogView, 0, len(r.catalogs))
	for name, c := range r.catalogs {
		view := c.View()
		view.Default = name == r.defaultName
		views = append(views, view)
	}
	sort.Slice(views, func(i, j int) bool { return views[i].Name < views[j].Name })
	return views
}

// StandardCatalog is the 08:30–17:40 five-slot grid.
func StandardCatalog(days []Weekday) *TimeGridCatalog {
	return mustCatalog(CatalogStandard, "08:30-10:00|10:10-11:40|11:50-13:20|14:30-16:00|16:10-17:40", days)
}

// ExtendedCatalog is the 08:10–17:50 five-slot grid.
func ExtendedCatalog(days []Weekday) *TimeGridCatalog {
	return mustCatalog(CatalogExtended, "08:10-09:40|09:50-11:20|11:30-13:00|14:20-15:50|16:20-17:50", days)
}

func mustCatalog(name, raw string, days []Weekday) *TimeGridCatalog {
	if len(days) == 0 {
		days = AllWeekdays()
	}
	slots, err := ParseSlotList(raw)
	if err != nil {
		panic(err)
	}
	c, err := NewTimeGridCatalog(name, slots, days)
	if err != nil {
		panic(err)
	}
	return c
}

// BuildCatalogRegistry combines built-in catalogs with definitions of the form
// "name=HH:MM-HH:MM|...;other=...". Custom definitions replace built-ins of the same name.
func BuildCatalogRegistry(defaultName, definitions string, dayNames []string) (*CatalogRegistry, error) {
	days := make([]Weekday, 0, len(dayNames))
	for _, raw := range dayNames {
		day, err := ParseWeekday(raw)
		if err != nil {
			return nil, err
		}
		days = append(days, day)
	}
	if len(days) == 0 {
		days = AllWeekdays()
	}

	catalogs := map[string]*TimeGridCatalog{
		CatalogStandard: StandardCatalog(days),
		CatalogExtended: ExtendedCatalog(days),
	}
	for _, def := range strings.Split(definitions, ";") {
		def = strings.TrimSpace(def)
		if def == "" {
			continue
		}
		pieces := strings.SplitN(def, "=", 2)
		if len(pieces) != 2 {
			return nil, fmt.Errorf("invalid catalog definition %q", def)
		}
		slots, err := ParseSlotList(pieces[1])
		if err != nil {
			return nil, fmt.Errorf("catalog %s: %w", pieces[0], err)
		}
		c, err := NewTimeGridCatalog(pieces[0], slots, days)
		if err != nil {
			return nil, err
		}
		catalogs[c.Name()] = c
	}

	list := make([]*TimeGridCatalog, 0, len(catalogs))
	for _, c := range catalogs {
		list = append(list, c)
	}
	if defaultName == "" {
		defaultName = CatalogStandard
	}
	return NewCatalogRegistry(defaultName, list...)
}
