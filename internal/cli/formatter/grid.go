package formatter

import (
	"sort"
	"strings"
	"time"
)

// GridCell is one (task, day) total of a weekly timesheet.
type GridCell struct {
	TaskID    string
	ProjectID string
	DayIndex  int
	Hours     float64
}

// RenderWeekGrid renders tasks as rows and Monday..Sunday as columns, with
// per-task and per-day totals. Empty cells show a dim dot.
func RenderWeekGrid(weekStart time.Time, cells []GridCell) string {
	type row struct {
		task, project string
		days          [7]float64
	}
	byTask := make(map[string]*row)
	for _, c := range cells {
		if c.DayIndex < 0 || c.DayIndex > 6 {
			continue
		}
		r, ok := byTask[c.TaskID]
		if !ok {
			r = &row{task: c.TaskID, project: c.ProjectID}
			byTask[c.TaskID] = r
		}
		r.days[c.DayIndex] += c.Hours
	}
	ids := make([]string, 0, len(byTask))
	for id := range byTask {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	headers := []string{"TASK", "PROJECT"}
	for i := 0; i < 7; i++ {
		headers = append(headers, strings.ToUpper(weekStart.AddDate(0, 0, i).Format("Mon 02")))
	}
	headers = append(headers, "TOTAL")

	var dayTotals [7]float64
	var grand float64
	rows := make([][]string, 0, len(ids)+1)
	for _, id := range ids {
		r := byTask[id]
		line := []string{r.task, Dim(r.project)}
		var sum float64
		for i, h := range r.days {
			line = append(line, gridValue(h))
			sum += h
			dayTotals[i] += h
		}
		grand += sum
		rows = append(rows, append(line, Bold(FormatHours(sum))))
	}

	footer := []string{Bold("Total"), ""}
	for _, h := range dayTotals {
		footer = append(footer, Bold(FormatHours(h)))
	}
	rows = append(rows, append(footer, StyleGreen.Render(FormatHours(grand))))

	return RenderTable(headers, rows)
}

func gridValue(h float64) string {
	if h == 0 {
		return Dim("·")
	}
	return FormatHours(h)
}
