package booking

import (
	"testing"
	"time"
)

func quoteTable() PriceTable {
	return PriceTable{TourID: 1, Tiers: []PriceTier{
		{ID: 1, GuestThreshold: 0, FlatRate: &TierRate{BaseCents: 16900}},
		{ID: 2, GuestThreshold: 10, FlatRate: &TierRate{BaseCents: 16900, Adjustment: adj("10", UnitPercent, OpMarkdown)}},
	}}
}

func TestQuoteSelectionGrandTotalInvariant(t *testing.T) {
	selection := NewSelection(1).
		WithGuests(12, nil).
		WithAddons(map[int64]AddonSelection{1: {Quantity: 2}, 2: {Checked: true}})

	quote, err := QuoteSelection(selection, quoteTable(), testAddons())
	if err != nil {
		t.Fatalf("QuoteSelection: %v", err)
	}
	if quote.GrandTotalCents != quote.GuestTotalCents+quote.AddonsTotalCents {
		t.Fatalf("grand total %d != guest %d + addons %d",
			quote.GrandTotalCents, quote.GuestTotalCents, quote.AddonsTotalCents)
	}
	if quote.GuestTotalCents != 182520 {
		t.Fatalf("GuestTotalCents = %d, want 182520", quote.GuestTotalCents)
	}
	if quote.AddonsTotalCents != 32500 {
		t.Fatalf("AddonsTotalCents = %d, want 32500", quote.AddonsTotalCents)
	}
	if quote.GrandTotalCents != 215020 {
		t.Fatalf("GrandTotalCents = %d, want 215020", quote.GrandTotalCents)
	}
}

func TestQuoteSelectionRecomputesOnChange(t *testing.T) {
	selection := NewSelection(1).WithGuests(2, nil)

	before, err := QuoteSelection(selection, quoteTable(), testAddons())
	if err != nil {
		t.Fatalf("QuoteSelection: %v", err)
	}

	updated := selection.WithAddons(map[int64]AddonSelection{2: {Checked: true}})
	after, err := QuoteSelection(updated, quoteTable(), testAddons())
	if err != nil {
		t.Fatalf("QuoteSelection: %v", err)
	}

	if after.GrandTotalCents != before.GrandTotalCents+2500 {
		t.Fatalf("grand total after addon = %d, want %d", after.GrandTotalCents, before.GrandTotalCents+2500)
	}
	// The original selection and its quote are unchanged.
	if selection.Addons != nil {
		t.Fatalf("WithAddons mutated the original selection")
	}
}

func TestSelectionUpdatesAreCopies(t *testing.T) {
	base := NewSelection(1).
		WithGuests(4, map[int64]int{1: 4}).
		WithAddons(map[int64]AddonSelection{1: {Quantity: 1}})

	updated := base.WithGuests(5, map[int64]int{1: 5})
	updated.Addons[1] = AddonSelection{Quantity: 9}
	updated.DemographicCounts[2] = 1

	if base.GuestQuantity != 4 {
		t.Fatalf("base guest quantity changed to %d", base.GuestQuantity)
	}
	if base.Addons[1].Quantity != 1 {
		t.Fatalf("base addon selection changed to %+v", base.Addons[1])
	}
	if _, ok := base.DemographicCounts[2]; ok {
		t.Fatalf("base demographic counts gained a key from the copy")
	}
}

func TestSelectionWithDateTime(t *testing.T) {
	date := CalendarDate{2025, time.July, 2}
	slot := MustTimeOfDay("09:00")

	base := NewSelection(1)
	picked := base.WithDateTime(date, slot)

	if base.Date != nil || base.Slot != nil {
		t.Fatalf("WithDateTime mutated the original selection")
	}
	if picked.Date == nil || *picked.Date != date {
		t.Fatalf("picked date = %v, want %v", picked.Date, date)
	}
	if picked.Slot == nil || *picked.Slot != slot {
		t.Fatalf("picked slot = %v, want %v", picked.Slot, slot)
	}
}

func TestBuildQuoteEmptyAddons(t *testing.T) {
	quote := BuildQuote(GuestPricing{TierID: 1, PerGuestCents: 16900, GuestTotalCents: 33800}, nil, 0)
	if quote.GrandTotalCents != 33800 {
		t.Fatalf("GrandTotalCents = %d, want 33800", quote.GrandTotalCents)
	}
	if quote.GrandTotalCents != quote.GuestTotalCents+quote.AddonsTotalCents {
		t.Fatalf("grand total invariant violated")
	}
}
