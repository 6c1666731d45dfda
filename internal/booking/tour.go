package booking

// TourContext is the slice of tour data the resolver needs. It is
// fetched once per booking session and immutable for its duration.
type TourContext struct {
	TourID             int64
	CategoryID         int64
	Name               string
	MinGuestsPerEvent  int
	PricePerGuestCents int64
	Slots              []TimeOfDay
}
