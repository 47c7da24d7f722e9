package wallet

import (
	"time"

	"github.com/ducduc1118-design/recash/internal/models"
)

// DayKeyLayout is the layout of calendar-day keys stored next to check-in entries.
const DayKeyLayout = "2006-01-02"

// DayKey returns the calendar day of t in loc, e.g. "2026-10-18".
func DayKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(DayKeyLayout)
}

// prevDay returns the calendar date before d. The arithmetic is done on the
// date itself so a midnight missing to a DST jump cannot shift the result.
func prevDay(d time.Time) time.Time {
	y, m, day := d.Date()
	return time.Date(y, m, day-1, 0, 0, 0, 0, time.UTC)
}

// calendarDate maps t onto its calendar date in loc, held at UTC midnight.
func calendarDate(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ComputeCheckinStatus derives the streak and today's state from check-in entries
// sorted newest first.
//
// The streak is the run of entries on consecutive calendar days that ends today or
// yesterday. Calendar days are taken in loc, so a check-in at 23:59 and one at 00:01
// the next morning are on consecutive days.
func ComputeCheckinStatus(entries []models.LedgerEntry, now time.Time, loc *time.Location) models.CheckinStatus {
	if len(entries) == 0 {
		return models.CheckinStatus{}
	}
	if loc == nil {
		loc = time.Local
	}

	today := calendarDate(now, loc)
	status := models.CheckinStatus{
		CheckedIn: calendarDate(entries[0].Date, loc).Equal(today),
	}

	cursor := today
	var last time.Time
	for i, entry := range entries {
		day := calendarDate(entry.Date, loc)

		// several entries on a day already counted
		if i > 0 && day.Equal(last) {
			continue
		}

		switch {
		case day.Equal(cursor):
		case status.Streak == 0 && day.Equal(prevDay(cursor)):
			// not checked in yet today, the run may still end yesterday
		default:
			return status
		}

		status.Streak++
		last = day
		cursor = prevDay(day)
	}

	return status
}
