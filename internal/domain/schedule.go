package domain

import "time"

// StartOfDay returns local midnight of the calendar day t falls on in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	lt := t.In(loc)
	return time.Date(lt.Year(), lt.Month(), lt.Day(), 0, 0, 0, 0, loc)
}

// DayBounds returns [start, end) of the calendar day containing t in loc.
// AddDate keeps the bounds correct on 23h and 25h DST days.
func DayBounds(t time.Time, loc *time.Location) (time.Time, time.Time) {
	start := StartOfDay(t, loc)
	return start, start.AddDate(0, 0, 1)
}

// DateKey formats the calendar date of t in loc as YYYY-MM-DD.
func DateKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(DateLayout)
}

// IsWeekend reports whether t falls on Saturday or Sunday in loc.
func IsWeekend(t time.Time, loc *time.Location) bool {
	wd := t.In(loc).Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// MinuteOfDay returns minutes since local midnight.
func MinuteOfDay(t time.Time, loc *time.Location) int {
	lt := t.In(loc)
	return lt.Hour()*60 + lt.Minute()
}

// Due reports whether a daily trigger at triggerM should fire at now:
// the local time has reached the trigger and it has not fired today.
// A missed minute is picked up by any later tick on the same day.
func Due(now time.Time, loc *time.Location, triggerM int, lastFired string) bool {
	if lastFired == DateKey(now, loc) {
		return false
	}
	return MinuteOfDay(now, loc) >= triggerM
}

// NextOccurrence returns the first time strictly after now at which a daily
// trigger at triggerM is scheduled, skipping weekends when weekdaysOnly is set.
// It ignores fire state: a trigger that passed today but has not fired yet
// is reported for the next scheduled day.
func NextOccurrence(now time.Time, loc *time.Location, triggerM int, weekdaysOnly bool) time.Time {
	day := StartOfDay(now, loc)
	for i := 0; i <= 7; i++ {
		d := day.AddDate(0, 0, i)
		at := time.Date(d.Year(), d.Month(), d.Day(), triggerM/60, triggerM%60, 0, 0, loc)
		if !at.After(now) {
			continue
		}
		if weekdaysOnly && IsWeekend(at, loc) {
			continue
		}
		return at
	}
	return time.Time{}
}
