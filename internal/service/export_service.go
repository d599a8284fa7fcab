package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-timetable-api/internal/dto"
	"github.com/noah-isme/campus-timetable-api/internal/models"
	appErrors "github.com/noah-isme/campus-timetable-api/pkg/errors"
	"github.com/noah-isme/campus-timetable-api/pkg/export"
)

// Export formats.
const (
	FormatCSV = "csv"
	FormatPDF = "pdf"
)

var occupancyCSVHeaders = []string{"target", "day", "date", "slot", "start", "end", "status", "subject", "teacher", "group", "room", "session_id"}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type gridRenderer interface {
	RenderGrids(title string, grids []export.Grid) ([]byte, error)
}

type occupancyProvider interface {
	GetOccupancy(ctx context.Context, query dto.OccupancyQuery) (*models.OccupancyResult, bool, error)
}

// ExportFile is a rendered document ready to stream.
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ExportService renders occupancy results as downloadable files.
type ExportService struct {
	occupancy occupancyProvider
	csv       csvRenderer
	pdf       gridRenderer
	validator *validator.Validate
	logger    *zap.Logger
}

// NewExportService constructs an ExportService. Nil renderers fall back to pkg/export.
func NewExportService(occupancy occupancyProvider, csv csvRenderer, pdf gridRenderer, validate *validator.Validate, logger *zap.Logger) *ExportService {
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{occupancy: occupancy, csv: csv, pdf: pdf, validator: validate, logger: logger}
}

// ExportOccupancy renders the occupancy grids of a week as CSV (default) or PDF.
func (s *ExportService) ExportOccupancy(ctx context.Context, query dto.ExportOccupancyQuery) (*ExportFile, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, appErrors.Validation(err, "invalid export query")
	}
	result, _, err := s.occupancy.GetOccupancy(ctx, query.OccupancyQuery)
	if err != nil {
		return nil, err
	}

	format := strings.ToLower(query.Format)
	if format == "" {
		format = FormatCSV
	}
	base := fmt.Sprintf("occupancy_%s_%s", result.Catalog, result.WeekInfo.StartDate)

	switch format {
	case FormatPDF:
		data, err := s.pdf.RenderGrids(fmt.Sprintf("Occupancy %s to %s", result.WeekInfo.StartDate, result.WeekInfo.EndDate), occupancyGrids(result))
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return &ExportFile{Filename: base + ".pdf", ContentType: "application/pdf", Data: data}, nil
	default:
		data, err := s.csv.Render(occupancyDataset(result))
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return &ExportFile{Filename: base + ".csv", ContentType: "text/csv", Data: data}, nil
	}
}

// occupancyDataset emits one row per free cell and one row per course in occupied cells.
// Column order follows occupancyCSVHeaders.
func occupancyDataset(result *models.OccupancyResult) export.Dataset {
	data := export.Dataset{Headers: occupancyCSVHeaders}
	for _, grid := range result.Grids {
		for _, row := range grid.Cells {
			for _, cell := range row {
				slot := result.TimeSlots[cell.SlotIndex]
				prefix := []string{
					grid.Target.Label,
					cell.Day.String(),
					cell.Date.String(),
					strconv.Itoa(cell.SlotIndex + 1),
					slot.Start.String(),
					slot.End.String(),
				}
				if len(cell.Courses) == 0 {
					data.Append(append(prefix, "FREE")...)
					continue
				}
				for _, course := range cell.Courses {
					record := append(append([]string{}, prefix...),
						string(course.Status), course.Subject, course.Teacher, course.Group, course.Room, course.SessionID)
					data.Append(record...)
				}
			}
		}
	}
	return data
}

// occupancyGrids lays out each target with slots as rows and days as columns.
func occupancyGrids(result *models.OccupancyResult) []export.Grid {
	columns := make([]string, len(result.Days))
	for i, day := range result.Days {
		columns[i] = day.String()
	}
	rows := make([]string, len(result.TimeSlots))
	for i, slot := range result.TimeSlots {
		rows[i] = slot.Label()
	}

	grids := make([]export.Grid, 0, len(result.Grids))
	for _, g := range result.Grids {
		cells := make([][]string, len(result.TimeSlots))
		for slot := range cells {
			cells[slot] = make([]string, len(result.Days))
			for day := range result.Days {
				cells[slot][day] = renderCell(g.Cells[day][slot])
			}
		}
		grids = append(grids, export.Grid{
			Title:         fmt.Sprintf("%s %s", strings.ToLower(string(g.Target.Kind)), g.Target.Label),
			CornerLabel:   "Slot",
			ColumnHeaders: columns,
			RowHeaders:    rows,
			Cells:         cells,
		})
	}
	if len(grids) > 0 && len(result.Warnings) > 0 {
		notes := make([]string, 0, len(result.Warnings))
		for _, w := range result.Warnings {
			notes = append(notes, fmt.Sprintf("%s %s-%s: %s", w.Date, w.StartTime, w.EndTime, w.Reason))
		}
		grids[len(grids)-1].Notes = notes
	}
	return grids
}

func renderCell(cell models.OccupancyCell) string {
	parts := make([]string, 0, len(cell.Courses))
	for _, course := range cell.Courses {
		text := fmt.Sprintf("%s\n%s / %s / %s", course.Subject, course.Teacher, course.Group, course.Room)
		if course.Status != models.SessionStatusPlanned {
			text += " (" + string(course.Status) + ")"
		}
		parts = append(parts, text)
	}
	return strings.Join(parts, "\n")
}
