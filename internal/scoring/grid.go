package scoring

import (
	"time"

	"habithold/internal/model"
)

// GridCell is one day of a history grid. Recorded distinguishes a day
// with an entry (even a net-zero one) from a day with no record.
type GridCell struct {
	Net      int  `json:"net"`
	Recorded bool `json:"recorded"`
}

// DayKey formats a date the way habitHistory is keyed.
func DayKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// WeekGrid derives the 7-cell series for the week starting at start
// (expected to be a Sunday): good minus bad per day, unrecorded days
// left as the empty sentinel.
func WeekGrid(history map[string]model.DayTally, start time.Time) [model.DaysPerWeek]GridCell {
	var cells [model.DaysPerWeek]GridCell
	for i := 0; i < model.DaysPerWeek; i++ {
		day := start.AddDate(0, 0, i)
		if tally, ok := history[DayKey(day)]; ok {
			cells[i] = GridCell{Net: tally.Net(), Recorded: true}
		}
	}
	return cells
}

// RangeGrid derives weeks*7 cells starting at start, one row per week.
func RangeGrid(history map[string]model.DayTally, start time.Time, weeks int) []GridCell {
	cells := make([]GridCell, 0, weeks*model.DaysPerWeek)
	for w := 0; w < weeks; w++ {
		row := WeekGrid(history, start.AddDate(0, 0, w*model.DaysPerWeek))
		cells = append(cells, row[:]...)
	}
	return cells
}

// WindowTotals sums good and bad completions over days consecutive
// days starting at start. Days without a record contribute nothing.
func WindowTotals(history map[string]model.DayTally, start time.Time, days int) (good, bad int) {
	for i := 0; i < days; i++ {
		if tally, ok := history[DayKey(start.AddDate(0, 0, i))]; ok {
			good += tally.Good
			bad += tally.Bad
		}
	}
	return good, bad
}

// WeekNets flattens a member's week window into the plain int series
// persisted in the weekly ledger's grid data, where unrecorded days
// collapse to zero.
func WeekNets(history map[string]model.DayTally, start time.Time) []int {
	nets := make([]int, model.DaysPerWeek)
	for i, cell := range WeekGrid(history, start) {
		nets[i] = cell.Net
	}
	return nets
}
