package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/harborlight/tourbook/internal/booking"
	appdb "github.com/harborlight/tourbook/internal/db"
	"github.com/harborlight/tourbook/internal/testutil"
)

func seedCatalog(t *testing.T, database *appdb.DB) (categoryID, tourID int64) {
	t.Helper()
	ctx := context.Background()

	categoryResult, err := database.ExecContext(ctx,
		"INSERT INTO tour_categories (name) VALUES (?)", "Kayak Tours")
	if err != nil {
		t.Fatalf("insert category: %v", err)
	}
	categoryID, err = categoryResult.LastInsertId()
	if err != nil {
		t.Fatalf("category id: %v", err)
	}

	tourResult, err := database.ExecContext(ctx,
		"INSERT INTO tours (category_id, name, min_guests_per_event, price_per_guest_cents) VALUES (?, ?, ?, ?)",
		categoryID, "Sunset Paddle", 2, 16900)
	if err != nil {
		t.Fatalf("insert tour: %v", err)
	}
	tourID, err = tourResult.LastInsertId()
	if err != nil {
		t.Fatalf("tour id: %v", err)
	}

	for _, departsAt := range []string{"09:00", "13:00", "17:00"} {
		if _, err := database.ExecContext(ctx,
			"INSERT INTO tour_slots (tour_id, departs_at) VALUES (?, ?)", tourID, departsAt); err != nil {
			t.Fatalf("insert slot %s: %v", departsAt, err)
		}
	}
	return categoryID, tourID
}

func newTestService(t *testing.T) (*Service, *appdb.DB, int64, int64) {
	t.Helper()
	database := testutil.NewTestDB(t)
	categoryID, tourID := seedCatalog(t, database)

	svc, err := NewService(database)
	if err != nil {
		t.Fatalf("create service: %v", err)
	}
	return svc, database, categoryID, tourID
}

func TestCurrentBeforeRefreshIsNotReady(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	if _, err := svc.Current(); !errors.Is(err, booking.ErrNotReady) {
		t.Fatalf("Current before refresh = %v, want ErrNotReady", err)
	}
}

func TestRefreshLoadsTourContext(t *testing.T) {
	svc, _, categoryID, tourID := newTestService(t)

	if err := svc.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	snap, err := svc.Current()
	if err != nil {
		t.Fatalf("Current: %v", err)
	}

	tour, ok := snap.Tour(tourID)
	if !ok {
		t.Fatalf("Tour(%d) missing after refresh", tourID)
	}
	if tour.CategoryID != categoryID {
		t.Fatalf("tour category = %d, want %d", tour.CategoryID, categoryID)
	}
	if tour.MinGuestsPerEvent != 2 || tour.PricePerGuestCents != 16900 {
		t.Fatalf("tour context = %+v", tour)
	}
	if len(tour.Slots) != 3 || tour.Slots[0] != booking.MustTimeOfDay("09:00") {
		t.Fatalf("tour slots = %v", tour.Slots)
	}
}

func TestRulesForMergesGlobalAndScoped(t *testing.T) {
	svc, database, categoryID, _ := newTestService(t)
	ctx := context.Background()

	otherResult, err := database.ExecContext(ctx,
		"INSERT INTO tour_categories (name) VALUES (?)", "Bus Tours")
	if err != nil {
		t.Fatalf("insert second category: %v", err)
	}
	otherCategoryID, _ := otherResult.LastInsertId()

	inserts := []struct {
		date     string
		category any
		start    any
		end      any
	}{
		{date: "2025-07-04", category: nil, start: nil, end: nil},
		{date: "2025-07-10", category: categoryID, start: "13:00", end: "15:00"},
		// Exact duplicate of a global window, scoped: must collapse.
		{date: "2025-07-04", category: categoryID, start: nil, end: nil},
		// Different category: must not appear.
		{date: "2025-07-20", category: otherCategoryID, start: nil, end: nil},
	}
	for _, row := range inserts {
		if _, err := database.ExecContext(ctx,
			"INSERT INTO blackout_rules (rule_date, category_id, start_time, end_time) VALUES (?, ?, ?, ?)",
			row.date, row.category, row.start, row.end); err != nil {
			t.Fatalf("insert blackout rule: %v", err)
		}
	}

	if err := svc.Refresh(ctx); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	snap, err := svc.Current()
	if err != nil {
		t.Fatalf("Current: %v", err)
	}

	rules := snap.RulesFor(categoryID)
	if len(rules) != 2 {
		t.Fatalf("RulesFor = %d rules, want 2: %+v", len(rules), rules)
	}

	ruleSet := snap.RuleSetFor(categoryID)
	fourth, _ := booking.ParseCalendarDate("2025-07-04")
	if !ruleSet.HasFullDay(fourth) {
		t.Fatalf("expected full-day rule for 2025-07-04")
	}
	twentieth, _ := booking.ParseCalendarDate("2025-07-20")
	if len(ruleSet.For(twentieth)) != 0 {
		t.Fatalf("rule scoped to another category leaked into 2025-07-20")
	}
}

func TestRefreshLoadsPriceTableAndAddons(t *testing.T) {
	svc, database, _, tourID := newTestService(t)
	ctx := context.Background()

	demoResult, err := database.ExecContext(ctx,
		"INSERT INTO demographics (name) VALUES (?)", "Adult")
	if err != nil {
		t.Fatalf("insert demographic: %v", err)
	}
	adultID, _ := demoResult.LastInsertId()

	baseTier, err := database.ExecContext(ctx,
		"INSERT INTO price_tiers (tour_id, guest_threshold) VALUES (?, ?)", tourID, 0)
	if err != nil {
		t.Fatalf("insert base tier: %v", err)
	}
	baseTierID, _ := baseTier.LastInsertId()

	groupTier, err := database.ExecContext(ctx,
		"INSERT INTO price_tiers (tour_id, guest_threshold) VALUES (?, ?)", tourID, 10)
	if err != nil {
		t.Fatalf("insert group tier: %v", err)
	}
	groupTierID, _ := groupTier.LastInsertId()

	rates := []struct {
		tierID      int64
		demographic any
		base        int64
		amount      any
		unit        any
		op          any
	}{
		{tierID: baseTierID, demographic: nil, base: 16900},
		{tierID: baseTierID, demographic: adultID, base: 16900},
		{tierID: groupTierID, demographic: nil, base: 16900, amount: "10", unit: "%", op: "markdown"},
	}
	for _, rate := range rates {
		if _, err := database.ExecContext(ctx,
			`INSERT INTO price_tier_rates (tier_id, demographic_id, base_cents, adjustment_amount, adjustment_unit, adjustment_op)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			rate.tierID, rate.demographic, rate.base, rate.amount, rate.unit, rate.op); err != nil {
			t.Fatalf("insert rate: %v", err)
		}
	}

	if _, err := database.ExecContext(ctx,
		"INSERT INTO addons (tour_id, label, kind, unit_price_cents) VALUES (?, ?, ?, ?)",
		tourID, "Photo package", "CHECKBOX", 2500); err != nil {
		t.Fatalf("insert addon: %v", err)
	}

	if err := svc.Refresh(ctx); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	snap, err := svc.Current()
	if err != nil {
		t.Fatalf("Current: %v", err)
	}

	table := snap.PriceTable(tourID)
	pricing, err := booking.ResolveGuestPricing(table, 12, nil)
	if err != nil {
		t.Fatalf("ResolveGuestPricing: %v", err)
	}
	if pricing.PerGuestCents != 15210 {
		t.Fatalf("PerGuestCents = %d, want 15210", pricing.PerGuestCents)
	}

	split, err := booking.ResolveGuestPricing(table, 2, map[int64]int{adultID: 2})
	if err != nil {
		t.Fatalf("ResolveGuestPricing split: %v", err)
	}
	if split.GuestTotalCents != 33800 {
		t.Fatalf("split GuestTotalCents = %d, want 33800", split.GuestTotalCents)
	}

	addons := snap.Addons(tourID)
	if len(addons) != 1 || addons[0].Kind != booking.AddonCheckbox || addons[0].UnitPriceCents != 2500 {
		t.Fatalf("addons = %+v", addons)
	}

	if demographics := snap.Demographics(); len(demographics) != 1 || demographics[0].Name != "Adult" {
		t.Fatalf("demographics = %+v", demographics)
	}
}

func TestFailedRefreshKeepsPreviousSnapshot(t *testing.T) {
	svc, database, _, tourID := newTestService(t)
	ctx := context.Background()

	if err := svc.Refresh(ctx); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	// Break the next load without touching the served snapshot.
	if _, err := database.ExecContext(ctx, "DROP TABLE addons"); err != nil {
		t.Fatalf("drop addons: %v", err)
	}

	err := svc.Refresh(ctx)
	if !errors.Is(err, booking.ErrDataUnavailable) {
		t.Fatalf("failed refresh = %v, want ErrDataUnavailable", err)
	}

	snap, err := svc.Current()
	if err != nil {
		t.Fatalf("Current after failed refresh: %v", err)
	}
	if _, ok := snap.Tour(tourID); !ok {
		t.Fatalf("previous snapshot lost after failed refresh")
	}
}

func TestPriceTableUnknownTourIsEmpty(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	if err := svc.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	snap, _ := svc.Current()

	table := snap.PriceTable(999)
	if _, err := booking.ResolveGuestPricing(table, 3, nil); !errors.Is(err, booking.ErrIncompletePricingData) {
		t.Fatalf("pricing for unknown tour = %v, want ErrIncompletePricingData", err)
	}
}
