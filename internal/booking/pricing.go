package booking

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// AdjustmentUnit says how an adjustment amount is read: a fixed money
// amount or a percentage of the base price.
type AdjustmentUnit int

const (
	UnitAmount AdjustmentUnit = iota
	UnitPercent
)

// ParseAdjustmentUnit maps the stored "$" / "%" marker to a unit.
func ParseAdjustmentUnit(raw string) (AdjustmentUnit, error) {
	switch raw {
	case "$":
		return UnitAmount, nil
	case "%":
		return UnitPercent, nil
	}
	return 0, fmt.Errorf("invalid adjustment unit %q", raw)
}

// AdjustmentOp says which direction an adjustment moves the base price.
type AdjustmentOp int

const (
	OpMarkup AdjustmentOp = iota
	OpMarkdown
)

// ParseAdjustmentOp maps the stored operation name to an op.
func ParseAdjustmentOp(raw string) (AdjustmentOp, error) {
	switch raw {
	case "markup":
		return OpMarkup, nil
	case "markdown":
		return OpMarkdown, nil
	}
	return 0, fmt.Errorf("invalid adjustment operation %q", raw)
}

// Adjustment modifies a tier's base price. Amount is a money amount
// when Unit is UnitAmount and a percentage of the base when Unit is
// UnitPercent; Op picks the direction. The four combinations are
// evaluated by Apply alone.
type Adjustment struct {
	Amount decimal.Decimal
	Unit   AdjustmentUnit
	Op     AdjustmentOp
}

// Apply evaluates the adjustment against a base price in cents and
// returns the result rounded to the cent. A result below zero clamps
// to zero; the second return reports the clamp so callers can log it.
func (a Adjustment) Apply(baseCents int64) (int64, bool) {
	base := decimal.New(baseCents, -2)

	var delta decimal.Decimal
	switch a.Unit {
	case UnitPercent:
		delta = base.Mul(a.Amount).Div(decimal.NewFromInt(100))
	default:
		delta = a.Amount
	}

	var result decimal.Decimal
	switch a.Op {
	case OpMarkdown:
		result = base.Sub(delta)
	default:
		result = base.Add(delta)
	}

	cents := result.Round(2).Shift(2).IntPart()
	if cents < 0 {
		return 0, true
	}
	return cents, false
}

// TierRate is one demographic's pricing within a tier: a base price
// plus an optional adjustment relative to it.
type TierRate struct {
	BaseCents  int64
	Adjustment *Adjustment
}

// UnitCents evaluates the rate to a final per-guest price.
func (r TierRate) UnitCents() (int64, bool) {
	if r.Adjustment == nil {
		return r.BaseCents, false
	}
	return r.Adjustment.Apply(r.BaseCents)
}

// PriceTier applies from its guest-count threshold upward. The flat
// rate serves bookings without a demographic split; demographic rates
// serve split bookings.
type PriceTier struct {
	ID               int64
	GuestThreshold   int
	FlatRate         *TierRate
	DemographicRates map[int64]TierRate
}

// Demographic is a tenant-defined guest classification.
type Demographic struct {
	ID   int64
	Name string
}

// PriceTable holds a tour's ordered tier list.
type PriceTable struct {
	TourID int64
	Tiers  []PriceTier
}

// Validate checks tier ordering invariants: thresholds are unique and
// non-negative. The tier list is sorted ascending in place.
func (t *PriceTable) Validate() error {
	sort.Slice(t.Tiers, func(i, j int) bool {
		return t.Tiers[i].GuestThreshold < t.Tiers[j].GuestThreshold
	})
	seen := make(map[int]struct{}, len(t.Tiers))
	for _, tier := range t.Tiers {
		if tier.GuestThreshold < 0 {
			return fmt.Errorf("tier %d has negative guest threshold %d", tier.ID, tier.GuestThreshold)
		}
		if _, ok := seen[tier.GuestThreshold]; ok {
			return fmt.Errorf("duplicate guest threshold %d in tiers for tour %d", tier.GuestThreshold, t.TourID)
		}
		seen[tier.GuestThreshold] = struct{}{}
	}
	return nil
}

// SelectTier picks the tier with the largest threshold at or below
// guestQuantity. When every threshold is above the quantity the lowest
// tier serves as the base tier. An empty tier list is incomplete
// pricing data, never a free booking.
func (t PriceTable) SelectTier(guestQuantity int) (PriceTier, error) {
	if len(t.Tiers) == 0 {
		return PriceTier{}, fmt.Errorf("tour %d has no price tiers: %w", t.TourID, ErrIncompletePricingData)
	}
	selected := t.Tiers[0]
	for _, tier := range t.Tiers[1:] {
		if tier.GuestThreshold <= guestQuantity {
			selected = tier
		}
	}
	return selected, nil
}

// GuestLine is one demographic's share of a split booking.
type GuestLine struct {
	DemographicID int64 `json:"demographic_id"`
	Count         int   `json:"count"`
	UnitCents     int64 `json:"unit_cents"`
	TotalCents    int64 `json:"total_cents"`
}

// GuestPricing is the resolved guest portion of a quote.
type GuestPricing struct {
	TierID          int64
	PerGuestCents   int64
	GuestTotalCents int64
	Lines           []GuestLine
	Clamped         bool
}

// ResolveGuestPricing selects the applicable tier and prices the guest
// portion of a booking. A nil or empty demographicCounts prices the
// flat path (per-guest rate times quantity); otherwise each demographic
// present is priced at its own rate. Missing rate data fails with
// ErrIncompletePricingData rather than defaulting to zero.
func ResolveGuestPricing(table PriceTable, guestQuantity int, demographicCounts map[int64]int) (GuestPricing, error) {
	if guestQuantity <= 0 {
		return GuestPricing{}, fmt.Errorf("guest quantity %d: %w", guestQuantity, ErrInvalidQuantity)
	}

	tier, err := table.SelectTier(guestQuantity)
	if err != nil {
		return GuestPricing{}, err
	}

	if len(demographicCounts) == 0 {
		if tier.FlatRate == nil {
			return GuestPricing{}, fmt.Errorf("tier %d has no flat rate for tour %d: %w", tier.ID, table.TourID, ErrIncompletePricingData)
		}
		unit, clamped := tier.FlatRate.UnitCents()
		return GuestPricing{
			TierID:          tier.ID,
			PerGuestCents:   unit,
			GuestTotalCents: unit * int64(guestQuantity),
			Clamped:         clamped,
		}, nil
	}

	ids := make([]int64, 0, len(demographicCounts))
	counted := 0
	for id, count := range demographicCounts {
		if count < 0 {
			return GuestPricing{}, fmt.Errorf("demographic %d count %d: %w", id, count, ErrInvalidQuantity)
		}
		if count == 0 {
			continue
		}
		ids = append(ids, id)
		counted += count
	}
	if counted != guestQuantity {
		return GuestPricing{}, fmt.Errorf("demographic counts sum to %d, guest quantity is %d: %w", counted, guestQuantity, ErrInvalidQuantity)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	pricing := GuestPricing{TierID: tier.ID}
	for _, id := range ids {
		rate, ok := tier.DemographicRates[id]
		if !ok {
			return GuestPricing{}, fmt.Errorf("tier %d has no rate for demographic %d: %w", tier.ID, id, ErrIncompletePricingData)
		}
		unit, clamped := rate.UnitCents()
		count := demographicCounts[id]
		line := GuestLine{
			DemographicID: id,
			Count:         count,
			UnitCents:     unit,
			TotalCents:    unit * int64(count),
		}
		pricing.Lines = append(pricing.Lines, line)
		pricing.GuestTotalCents += line.TotalCents
		pricing.Clamped = pricing.Clamped || clamped
	}
	return pricing, nil
}
