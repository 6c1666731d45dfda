package booking

// BookingSelection is the session's current choices. Values are
// immutable once built: every With* method returns a new selection
// with its own copies of the maps, so no two holders ever share
// mutable state.
type BookingSelection struct {
	TourID            int64
	Date              *CalendarDate
	Slot              *TimeOfDay
	GuestQuantity     int
	DemographicCounts map[int64]int
	Addons            map[int64]AddonSelection
}

// NewSelection starts an empty selection for a tour.
func NewSelection(tourID int64) BookingSelection {
	return BookingSelection{TourID: tourID}
}

// WithDateTime returns a copy with the date and departure slot set.
func (s BookingSelection) WithDateTime(date CalendarDate, slot TimeOfDay) BookingSelection {
	next := s.clone()
	next.Date = &date
	next.Slot = &slot
	return next
}

// WithGuests returns a copy with the guest quantity and optional
// demographic split set. A nil counts map selects flat pricing.
func (s BookingSelection) WithGuests(quantity int, counts map[int64]int) BookingSelection {
	next := s.clone()
	next.GuestQuantity = quantity
	next.DemographicCounts = nil
	if len(counts) > 0 {
		next.DemographicCounts = make(map[int64]int, len(counts))
		for id, count := range counts {
			next.DemographicCounts[id] = count
		}
	}
	return next
}

// WithAddons returns a copy with the add-on selections replaced.
func (s BookingSelection) WithAddons(addons map[int64]AddonSelection) BookingSelection {
	next := s.clone()
	next.Addons = nil
	if len(addons) > 0 {
		next.Addons = make(map[int64]AddonSelection, len(addons))
		for id, selection := range addons {
			next.Addons[id] = selection
		}
	}
	return next
}

func (s BookingSelection) clone() BookingSelection {
	next := s
	if s.Date != nil {
		date := *s.Date
		next.Date = &date
	}
	if s.Slot != nil {
		slot := *s.Slot
		next.Slot = &slot
	}
	if len(s.DemographicCounts) > 0 {
		next.DemographicCounts = make(map[int64]int, len(s.DemographicCounts))
		for id, count := range s.DemographicCounts {
			next.DemographicCounts[id] = count
		}
	}
	if len(s.Addons) > 0 {
		next.Addons = make(map[int64]AddonSelection, len(s.Addons))
		for id, selection := range s.Addons {
			next.Addons[id] = selection
		}
	}
	return next
}
