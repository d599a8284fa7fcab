package service

import (
	"fmt"

	"github.com/noah-isme/campus-timetable-api/internal/models"
	appErrors "github.com/noah-isme/campus-timetable-api/pkg/errors"
)

// ExpandRecurrence lists every date falling on day between start and end inclusive,
// stepping one or two weeks from the first match on or after start.
func ExpandRecurrence(day models.Weekday, recurrence models.RecurrenceType, start, end models.Date) ([]models.Date, error) {
	if start.After(end) {
		return nil, appErrors.Clone(appErrors.ErrInvalidRange, fmt.Sprintf("semester start %s is after semester end %s", start, end))
	}
	if !day.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("day %d is not schedulable", int(day)))
	}
	step, err := recurrence.StepDays()
	if err != nil {
		return nil, appErrors.Validation(err, "invalid recurrence type")
	}

	offset := (int(day.TimeWeekday()) - int(start.Weekday()) + 7) % 7
	first := start.AddDays(offset)
	if first.After(end) {
		return []models.Date{}, nil
	}

	dates := make([]models.Date, 0, first.DaysUntil(end)/step+1)
	for current := first; !current.After(end); current = current.AddDays(step) {
		dates = append(dates, current)
	}
	return dates, nil
}
