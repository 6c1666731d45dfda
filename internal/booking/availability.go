package booking

// DayBookable reports whether date can still be booked. A day is
// blocked when it is already past, when a full-day blackout rule
// exists for it, or when time-ranged rules cover every departure slot
// the tour runs that day. Full-day rules win over time-ranged rules.
func DayBookable(date, today CalendarDate, slots []TimeOfDay, rules RuleSet) bool {
	if date.Before(today) {
		return false
	}
	if rules.HasFullDay(date) {
		return false
	}
	if len(slots) == 0 {
		return false
	}
	return len(BookableSlots(date, slots, rules)) > 0
}

// BookableSlots filters the tour's departure slots for date, removing
// any slot covered by a blackout rule declared for that date.
func BookableSlots(date CalendarDate, slots []TimeOfDay, rules RuleSet) []TimeOfDay {
	dayRules := rules.For(date)
	if len(dayRules) == 0 {
		return append([]TimeOfDay(nil), slots...)
	}

	open := make([]TimeOfDay, 0, len(slots))
	for _, slot := range slots {
		covered := false
		for _, rule := range dayRules {
			if rule.Covers(slot) {
				covered = true
				break
			}
		}
		if !covered {
			open = append(open, slot)
		}
	}
	return open
}

// DayStatus is one rendered calendar day.
type DayStatus struct {
	Date     CalendarDate `json:"date"`
	Bookable bool         `json:"bookable"`
}

// MonthView is a pure function of (month, today, slots, rules): the
// same inputs always render the same per-day states, so callers may
// re-render freely on any input change.
func MonthView(month CalendarMonth, today CalendarDate, slots []TimeOfDay, rules RuleSet) []DayStatus {
	days := make([]DayStatus, 0, month.Days())
	for day := 1; day <= month.Days(); day++ {
		date := month.Date(day)
		days = append(days, DayStatus{
			Date:     date,
			Bookable: DayBookable(date, today, slots, rules),
		})
	}
	return days
}

// ValidateSelection re-checks a date/time pair against the current rule
// set before the selection is accepted. The rule set may have changed
// since the calendar was rendered, so acceptance never trusts the
// render-time result.
func ValidateSelection(date CalendarDate, slot TimeOfDay, today CalendarDate, slots []TimeOfDay, rules RuleSet) error {
	if !DayBookable(date, today, slots, rules) {
		return ErrDateBlocked
	}
	for _, open := range BookableSlots(date, slots, rules) {
		if open == slot {
			return nil
		}
	}
	return ErrTimeBlocked
}
