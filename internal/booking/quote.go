package booking

// Quote is the fully resolved price breakdown for a booking selection.
// It is derived data: recomputed on every input change, never stored.
// GrandTotalCents always equals GuestTotalCents plus AddonsTotalCents.
type Quote struct {
	TierID           int64       `json:"tier_id"`
	PerGuestCents    int64       `json:"per_guest_cents"`
	GuestTotalCents  int64       `json:"guest_total_cents"`
	AddonsTotalCents int64       `json:"addons_total_cents"`
	GrandTotalCents  int64       `json:"grand_total_cents"`
	GuestLines       []GuestLine `json:"guest_lines,omitempty"`
	AddonLines       []AddonLine `json:"addon_lines,omitempty"`
	Clamped          bool        `json:"-"`
}

// BuildQuote composes resolved guest pricing and add-on pricing into a
// quote. Pure composition: no I/O, no side effects.
func BuildQuote(guests GuestPricing, addonLines []AddonLine, addonsTotalCents int64) Quote {
	return Quote{
		TierID:           guests.TierID,
		PerGuestCents:    guests.PerGuestCents,
		GuestTotalCents:  guests.GuestTotalCents,
		AddonsTotalCents: addonsTotalCents,
		GrandTotalCents:  guests.GuestTotalCents + addonsTotalCents,
		GuestLines:       guests.Lines,
		AddonLines:       addonLines,
		Clamped:          guests.Clamped,
	}
}

// QuoteSelection resolves a full quote for a selection against the
// tour's price table and add-on list.
func QuoteSelection(selection BookingSelection, table PriceTable, addons []Addon) (Quote, error) {
	guests, err := ResolveGuestPricing(table, selection.GuestQuantity, selection.DemographicCounts)
	if err != nil {
		return Quote{}, err
	}
	addonLines, addonsTotal, err := ResolveAddonPricing(addons, selection.Addons)
	if err != nil {
		return Quote{}, err
	}
	return BuildQuote(guests, addonLines, addonsTotal), nil
}
