// Package catalog maintains an immutable snapshot of the booking
// catalog: tours, blackout rules, price tiers, demographics, and
// add-ons. Resolution always runs against a fully loaded snapshot;
// before the first successful load the service reports not ready
// rather than compute against partial data.
package catalog

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/harborlight/tourbook/internal/booking"
	appdb "github.com/harborlight/tourbook/internal/db"
)

// Snapshot is one immutable load of the catalog. All accessors return
// data owned by the snapshot; callers must not mutate it.
type Snapshot struct {
	LoadedAt time.Time

	tours         map[int64]booking.TourContext
	globalRules   []booking.BlackoutRule
	categoryRules map[int64][]booking.BlackoutRule
	tables        map[int64]booking.PriceTable
	demographics  []booking.Demographic
	addons        map[int64][]booking.Addon
}

func newSnapshot() *Snapshot {
	return &Snapshot{
		tours:         make(map[int64]booking.TourContext),
		categoryRules: make(map[int64][]booking.BlackoutRule),
		tables:        make(map[int64]booking.PriceTable),
		addons:        make(map[int64][]booking.Addon),
	}
}

// Tour returns the tour context for id.
func (s *Snapshot) Tour(id int64) (booking.TourContext, bool) {
	tour, ok := s.tours[id]
	return tour, ok
}

// RulesFor returns the union of global blackout rules and rules scoped
// to categoryID, deduplicated by (date, start, end).
func (s *Snapshot) RulesFor(categoryID int64) []booking.BlackoutRule {
	return booking.MergeRules(s.globalRules, s.categoryRules[categoryID])
}

// RuleSetFor builds the indexed rule set for a tour category.
func (s *Snapshot) RuleSetFor(categoryID int64) booking.RuleSet {
	return booking.NewRuleSet(s.RulesFor(categoryID))
}

// PriceTable returns the tier table for a tour. The zero table (no
// tiers) is returned for tours without pricing rows; the resolver
// treats that as incomplete pricing data.
func (s *Snapshot) PriceTable(tourID int64) booking.PriceTable {
	table, ok := s.tables[tourID]
	if !ok {
		return booking.PriceTable{TourID: tourID}
	}
	return table
}

// Addons returns the add-ons offered for a tour.
func (s *Snapshot) Addons(tourID int64) []booking.Addon {
	return s.addons[tourID]
}

// Demographics returns the tenant's guest classifications.
func (s *Snapshot) Demographics() []booking.Demographic {
	return s.demographics
}

// Service loads catalog snapshots from the database and swaps them
// atomically. A failed refresh keeps the previous snapshot; readers
// never observe a partial load.
type Service struct {
	db *appdb.DB

	mu   sync.RWMutex
	snap *Snapshot
}

// NewService wraps the catalog database. Call Refresh before serving.
func NewService(database *appdb.DB) (*Service, error) {
	if database == nil {
		return nil, fmt.Errorf("catalog service requires a database")
	}
	return &Service{db: database}, nil
}

// Refresh loads a fresh snapshot and swaps it in. On failure the
// current snapshot, if any, stays in place.
func (s *Service) Refresh(ctx context.Context) error {
	snap, err := loadSnapshot(ctx, s.db)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("Catalog refresh failed")
		return fmt.Errorf("refresh catalog: %v: %w", err, booking.ErrDataUnavailable)
	}
	snap.LoadedAt = time.Now()

	s.mu.Lock()
	s.snap = snap
	s.mu.Unlock()

	log.Ctx(ctx).Info().
		Int("tours", len(snap.tours)).
		Int("global_rules", len(snap.globalRules)).
		Int("demographics", len(snap.demographics)).
		Time("loaded_at", snap.LoadedAt).
		Msg("Catalog snapshot refreshed")
	return nil
}

// Current returns the active snapshot, or ErrNotReady before the first
// successful refresh.
func (s *Service) Current() (*Snapshot, error) {
	s.mu.RLock()
	snap := s.snap
	s.mu.RUnlock()
	if snap == nil {
		return nil, booking.ErrNotReady
	}
	return snap, nil
}
