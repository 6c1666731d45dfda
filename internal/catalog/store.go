package catalog

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/harborlight/tourbook/internal/booking"
	appdb "github.com/harborlight/tourbook/internal/db"
)

// loadSnapshot reads the whole catalog in one transaction so the
// snapshot is internally consistent.
func loadSnapshot(ctx context.Context, database *appdb.DB) (*Snapshot, error) {
	snap := newSnapshot()
	err := database.RunInTx(ctx, func(tx *sql.Tx) error {
		if err := loadTours(ctx, tx, snap); err != nil {
			return err
		}
		if err := loadSlots(ctx, tx, snap); err != nil {
			return err
		}
		if err := loadBlackoutRules(ctx, tx, snap); err != nil {
			return err
		}
		if err := loadDemographics(ctx, tx, snap); err != nil {
			return err
		}
		if err := loadPriceTables(ctx, tx, snap); err != nil {
			return err
		}
		return loadAddons(ctx, tx, snap)
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}

func loadTours(ctx context.Context, tx *sql.Tx, snap *Snapshot) error {
	rows, err := tx.QueryContext(ctx,
		`SELECT id, category_id, name, min_guests_per_event, price_per_guest_cents FROM tours`)
	if err != nil {
		return fmt.Errorf("load tours: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var tour booking.TourContext
		if err := rows.Scan(&tour.TourID, &tour.CategoryID, &tour.Name,
			&tour.MinGuestsPerEvent, &tour.PricePerGuestCents); err != nil {
			return fmt.Errorf("scan tour: %w", err)
		}
		snap.tours[tour.TourID] = tour
	}
	return rows.Err()
}

func loadSlots(ctx context.Context, tx *sql.Tx, snap *Snapshot) error {
	rows, err := tx.QueryContext(ctx,
		`SELECT tour_id, departs_at FROM tour_slots ORDER BY tour_id, departs_at`)
	if err != nil {
		return fmt.Errorf("load tour slots: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var tourID int64
		var departsAt string
		if err := rows.Scan(&tourID, &departsAt); err != nil {
			return fmt.Errorf("scan tour slot: %w", err)
		}
		slot, err := booking.ParseTimeOfDay(departsAt)
		if err != nil {
			return fmt.Errorf("tour %d slot: %w", tourID, err)
		}
		tour, ok := snap.tours[tourID]
		if !ok {
			return fmt.Errorf("tour slot references unknown tour %d", tourID)
		}
		tour.Slots = append(tour.Slots, slot)
		snap.tours[tourID] = tour
	}
	return rows.Err()
}

func loadBlackoutRules(ctx context.Context, tx *sql.Tx, snap *Snapshot) error {
	rows, err := tx.QueryContext(ctx,
		`SELECT rule_date, category_id, start_time, end_time FROM blackout_rules`)
	if err != nil {
		return fmt.Errorf("load blackout rules: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var rawDate string
		var categoryID sql.NullInt64
		var startTime, endTime sql.NullString
		if err := rows.Scan(&rawDate, &categoryID, &startTime, &endTime); err != nil {
			return fmt.Errorf("scan blackout rule: %w", err)
		}

		rule := booking.BlackoutRule{}
		rule.Date, err = booking.ParseCalendarDate(rawDate)
		if err != nil {
			return fmt.Errorf("blackout rule: %w", err)
		}
		if categoryID.Valid {
			id := categoryID.Int64
			rule.CategoryID = &id
		}
		if startTime.Valid {
			start, err := booking.ParseTimeOfDay(startTime.String)
			if err != nil {
				return fmt.Errorf("blackout rule for %s: %w", rawDate, err)
			}
			end, err := booking.ParseTimeOfDay(endTime.String)
			if err != nil {
				return fmt.Errorf("blackout rule for %s: %w", rawDate, err)
			}
			rule.Start, rule.End = &start, &end
		}
		if err := rule.Validate(); err != nil {
			return err
		}

		if rule.CategoryID == nil {
			snap.globalRules = append(snap.globalRules, rule)
		} else {
			snap.categoryRules[*rule.CategoryID] = append(snap.categoryRules[*rule.CategoryID], rule)
		}
	}
	return rows.Err()
}

func loadDemographics(ctx context.Context, tx *sql.Tx, snap *Snapshot) error {
	rows, err := tx.QueryContext(ctx, `SELECT id, name FROM demographics ORDER BY id`)
	if err != nil {
		return fmt.Errorf("load demographics: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var d booking.Demographic
		if err := rows.Scan(&d.ID, &d.Name); err != nil {
			return fmt.Errorf("scan demographic: %w", err)
		}
		snap.demographics = append(snap.demographics, d)
	}
	return rows.Err()
}

func loadPriceTables(ctx context.Context, tx *sql.Tx, snap *Snapshot) error {
	tierRows, err := tx.QueryContext(ctx,
		`SELECT id, tour_id, guest_threshold FROM price_tiers ORDER BY tour_id, guest_threshold`)
	if err != nil {
		return fmt.Errorf("load price tiers: %w", err)
	}
	defer tierRows.Close()

	tiersByID := make(map[int64]*booking.PriceTier)
	tierTour := make(map[int64]int64)
	for tierRows.Next() {
		var tier booking.PriceTier
		var tourID int64
		if err := tierRows.Scan(&tier.ID, &tourID, &tier.GuestThreshold); err != nil {
			return fmt.Errorf("scan price tier: %w", err)
		}
		tiersByID[tier.ID] = &tier
		tierTour[tier.ID] = tourID
	}
	if err := tierRows.Err(); err != nil {
		return err
	}

	rateRows, err := tx.QueryContext(ctx,
		`SELECT tier_id, demographic_id, base_cents, adjustment_amount, adjustment_unit, adjustment_op
		 FROM price_tier_rates`)
	if err != nil {
		return fmt.Errorf("load price tier rates: %w", err)
	}
	defer rateRows.Close()

	for rateRows.Next() {
		var tierID int64
		var demographicID sql.NullInt64
		var rate booking.TierRate
		var amount, unit, op sql.NullString
		if err := rateRows.Scan(&tierID, &demographicID, &rate.BaseCents, &amount, &unit, &op); err != nil {
			return fmt.Errorf("scan price tier rate: %w", err)
		}

		if amount.Valid {
			adjustment, err := parseAdjustment(amount.String, unit.String, op.String)
			if err != nil {
				return fmt.Errorf("tier %d rate: %w", tierID, err)
			}
			rate.Adjustment = adjustment
		}

		tier, ok := tiersByID[tierID]
		if !ok {
			return fmt.Errorf("rate references unknown price tier %d", tierID)
		}
		if demographicID.Valid {
			if tier.DemographicRates == nil {
				tier.DemographicRates = make(map[int64]booking.TierRate)
			}
			tier.DemographicRates[demographicID.Int64] = rate
		} else {
			tier.FlatRate = &rate
		}
	}
	if err := rateRows.Err(); err != nil {
		return err
	}

	for tierID, tier := range tiersByID {
		tourID := tierTour[tierID]
		table := snap.tables[tourID]
		table.TourID = tourID
		table.Tiers = append(table.Tiers, *tier)
		snap.tables[tourID] = table
	}
	for tourID, table := range snap.tables {
		if err := table.Validate(); err != nil {
			return err
		}
		snap.tables[tourID] = table
	}
	return nil
}

func parseAdjustment(amount, unit, op string) (*booking.Adjustment, error) {
	parsedAmount, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("invalid adjustment amount %q", amount)
	}
	parsedUnit, err := booking.ParseAdjustmentUnit(unit)
	if err != nil {
		return nil, err
	}
	parsedOp, err := booking.ParseAdjustmentOp(op)
	if err != nil {
		return nil, err
	}
	return &booking.Adjustment{Amount: parsedAmount, Unit: parsedUnit, Op: parsedOp}, nil
}

func loadAddons(ctx context.Context, tx *sql.Tx, snap *Snapshot) error {
	rows, err := tx.QueryContext(ctx,
		`SELECT id, tour_id, label, kind, description, unit_price_cents FROM addons ORDER BY tour_id, id`)
	if err != nil {
		return fmt.Errorf("load addons: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var addon booking.Addon
		var tourID int64
		var kind string
		if err := rows.Scan(&addon.ID, &tourID, &addon.Label, &kind, &addon.Description, &addon.UnitPriceCents); err != nil {
			return fmt.Errorf("scan addon: %w", err)
		}
		addon.Kind, err = booking.ParseAddonKind(kind)
		if err != nil {
			return fmt.Errorf("addon %d: %w", addon.ID, err)
		}
		snap.addons[tourID] = append(snap.addons[tourID], addon)
	}
	return rows.Err()
}
