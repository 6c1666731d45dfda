package booking

import (
	"fmt"
	"sort"
)

// AddonKind distinguishes quantity add-ons from on/off add-ons.
type AddonKind int

const (
	// AddonSelect carries an integer quantity, zero or more.
	AddonSelect AddonKind = iota
	// AddonCheckbox carries a boolean.
	AddonCheckbox
)

// ParseAddonKind maps the stored kind name to an AddonKind.
func ParseAddonKind(raw string) (AddonKind, error) {
	switch raw {
	case "SELECT":
		return AddonSelect, nil
	case "CHECKBOX":
		return AddonCheckbox, nil
	}
	return 0, fmt.Errorf("invalid addon kind %q", raw)
}

// Addon is an optional extra priced alongside the guest total.
type Addon struct {
	ID             int64
	Label          string
	Kind           AddonKind
	Description    string
	UnitPriceCents int64
}

// AddonSelection is the session's choice for one add-on. Quantity is
// read for AddonSelect add-ons, Checked for AddonCheckbox add-ons.
type AddonSelection struct {
	Quantity int  `json:"quantity,omitempty"`
	Checked  bool `json:"checked,omitempty"`
}

// AddonLine is one priced add-on within a quote.
type AddonLine struct {
	AddonID    int64 `json:"addon_id"`
	Quantity   int   `json:"quantity"`
	TotalCents int64 `json:"total_cents"`
}

// ResolveAddonPricing prices the selected add-ons against the tour's
// add-on list. Selections naming an unknown add-on, or a negative
// quantity, are rejected; the caller re-prompts.
func ResolveAddonPricing(addons []Addon, selected map[int64]AddonSelection) ([]AddonLine, int64, error) {
	byID := make(map[int64]Addon, len(addons))
	for _, addon := range addons {
		byID[addon.ID] = addon
	}

	ids := make([]int64, 0, len(selected))
	for id := range selected {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var lines []AddonLine
	var total int64
	for _, id := range ids {
		addon, ok := byID[id]
		if !ok {
			return nil, 0, fmt.Errorf("unknown addon %d: %w", id, ErrInvalidQuantity)
		}
		selection := selected[id]

		var quantity int
		switch addon.Kind {
		case AddonCheckbox:
			if !selection.Checked {
				continue
			}
			quantity = 1
		default:
			if selection.Quantity < 0 {
				return nil, 0, fmt.Errorf("addon %d quantity %d: %w", id, selection.Quantity, ErrInvalidQuantity)
			}
			if selection.Quantity == 0 {
				continue
			}
			quantity = selection.Quantity
		}

		line := AddonLine{
			AddonID:    id,
			Quantity:   quantity,
			TotalCents: addon.UnitPriceCents * int64(quantity),
		}
		lines = append(lines, line)
		total += line.TotalCents
	}
	return lines, total, nil
}
