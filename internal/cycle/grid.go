package cycle

import (
	"time"

	"github.com/tartampluch/go-cycle/internal/config"
)

// Cell is one slot of the month grid. Leading placeholders have Empty set and nothing else.
type Cell struct {
	Empty bool
	Day   int
	Date  string
	Class Classification

	// Sticker flags. Fertile is suppressed on ovulation days so the two icons never co-render.
	ShowPeriod    bool
	ShowPredicted bool
	ShowOvulation bool
	ShowFertile   bool
	ShowNotes     bool
	Intensity     FlowIntensity
}

// DaySelection is emitted when a real day cell is activated.
type DaySelection struct {
	Year  int
	Month time.Month
	Day   int
}

// Date returns the YYYY-MM-DD key of the selection.
func (s DaySelection) Date() string {
	return FormatDate(s.Year, s.Month, s.Day)
}

// Grid is a month laid out for a 7-column, Sunday-first week header.
type Grid struct {
	Year   int
	Month  time.Month
	Offset int // Number of leading placeholders.
	Days   int
	Cells  []Cell
}

// RenderMonth lays out the month and classifies every day.
// today is a YYYY-MM-DD date; pass "" to disable the overlay.
func RenderMonth(year int, month time.Month, annotations Annotations, today string) Grid {
	offset := FirstWeekday(year, month)
	days := DaysInMonth(year, month)

	g := Grid{
		Year:   year,
		Month:  month,
		Offset: offset,
		Days:   days,
		Cells:  make([]Cell, 0, offset+days),
	}

	for i := 0; i < offset; i++ {
		g.Cells = append(g.Cells, Cell{Empty: true})
	}

	for day := 1; day <= days; day++ {
		date := FormatDate(year, month, day)
		a := annotations.Lookup(date)
		cell := Cell{
			Day:   day,
			Date:  date,
			Class: Classify(a, date == today),
		}
		if a != nil {
			cell.ShowPeriod = a.IsPeriod
			cell.ShowPredicted = a.IsPredictedPeriod
			cell.ShowOvulation = a.IsOvulation
			cell.ShowFertile = a.IsFertile && !a.IsOvulation
			cell.ShowNotes = a.Notes != ""
			if a.IsPeriod {
				cell.Intensity = a.FlowIntensity.OrDefault()
			}
		}
		g.Cells = append(g.Cells, cell)
	}
	return g
}

// Select returns the selection for the cell at index, or false for a placeholder.
func (g Grid) Select(index int) (DaySelection, bool) {
	if index < 0 || index >= len(g.Cells) || g.Cells[index].Empty {
		return DaySelection{}, false
	}
	return DaySelection{Year: g.Year, Month: g.Month, Day: g.Cells[index].Day}, true
}

// Weeks splits the cells into rows of seven, padding the last row with placeholders.
func (g Grid) Weeks() [][]Cell {
	var weeks [][]Cell
	for i := 0; i < len(g.Cells); i += config.CalendarColumns {
		end := min(i+config.CalendarColumns, len(g.Cells))
		row := make([]Cell, config.CalendarColumns)
		copy(row, g.Cells[i:end])
		for j := end - i; j < config.CalendarColumns; j++ {
			row[j] = Cell{Empty: true}
		}
		weeks = append(weeks, row)
	}
	return weeks
}

// WeekdayHeaders are the default week header labels, Sunday first.
var WeekdayHeaders = [config.CalendarColumns]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}
