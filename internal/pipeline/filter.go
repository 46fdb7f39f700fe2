package pipeline

import "stockcount/internal"

// FilterToday keeps the rows scheduled for today, in their original order.
func FilterToday(rows []internal.ScheduleRow, today internal.Date) []internal.ScheduleRow {
	out := make([]internal.ScheduleRow, 0, len(rows))
	for _, r := range rows {
		if r.Date == today {
			out = append(out, r)
		}
	}
	return out
}
