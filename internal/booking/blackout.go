package booking

import (
	"fmt"
	"sort"
)

// BlackoutRule declares an unavailability window. A rule with no times
// blocks its whole day; with times it blocks only that window. A nil
// CategoryID scopes the rule globally, otherwise it applies only to
// tours in that category. Rules are written by back-office tooling and
// are read-only here.
type BlackoutRule struct {
	Date       CalendarDate
	CategoryID *int64
	Start      *TimeOfDay
	End        *TimeOfDay
}

// FullDay reports whether the rule blocks its entire date.
func (r BlackoutRule) FullDay() bool {
	return r.Start == nil || r.End == nil
}

// Covers reports whether the rule blocks time t on its date.
func (r BlackoutRule) Covers(t TimeOfDay) bool {
	if r.FullDay() {
		return true
	}
	return *r.Start <= t && t <= *r.End
}

// Validate checks the rule's window ordering.
func (r BlackoutRule) Validate() error {
	if r.Date.IsZero() {
		return fmt.Errorf("blackout rule is missing a date")
	}
	if (r.Start == nil) != (r.End == nil) {
		return fmt.Errorf("blackout rule for %s has only one end of its time window", r.Date)
	}
	if r.Start != nil {
		if !r.Start.Valid() || !r.End.Valid() {
			return fmt.Errorf("blackout rule for %s has a time outside 00:00-23:59", r.Date)
		}
		if *r.Start > *r.End {
			return fmt.Errorf("blackout rule for %s starts at %s after it ends at %s", r.Date, r.Start, r.End)
		}
	}
	return nil
}

type ruleKey struct {
	date  CalendarDate
	start TimeOfDay
	end   TimeOfDay
	full  bool
}

func (r BlackoutRule) key() ruleKey {
	k := ruleKey{date: r.Date, full: r.FullDay()}
	if !k.full {
		k.start = *r.Start
		k.end = *r.End
	}
	return k
}

// MergeRules unions global rules with category-scoped rules,
// deduplicating by (date, start, end). A full-day duplicate of a
// time-ranged rule is kept; only exact window duplicates collapse.
func MergeRules(global, scoped []BlackoutRule) []BlackoutRule {
	seen := make(map[ruleKey]struct{}, len(global)+len(scoped))
	merged := make([]BlackoutRule, 0, len(global)+len(scoped))
	for _, rules := range [][]BlackoutRule{global, scoped} {
		for _, rule := range rules {
			k := rule.key()
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			merged = append(merged, rule)
		}
	}
	return merged
}

// RuleSet indexes blackout rules by date for resolution. Build one per
// invocation from the rules already merged for the tour's category.
type RuleSet struct {
	byDate map[CalendarDate][]BlackoutRule
}

// NewRuleSet indexes rules by date. Full-day rules sort ahead of
// time-ranged rules so day-level checks can stop at the first rule.
func NewRuleSet(rules []BlackoutRule) RuleSet {
	byDate := make(map[CalendarDate][]BlackoutRule, len(rules))
	for _, rule := range rules {
		byDate[rule.Date] = append(byDate[rule.Date], rule)
	}
	for _, dayRules := range byDate {
		sort.SliceStable(dayRules, func(i, j int) bool {
			return dayRules[i].FullDay() && !dayRules[j].FullDay()
		})
	}
	return RuleSet{byDate: byDate}
}

// For returns the rules declared for date, full-day rules first.
func (s RuleSet) For(date CalendarDate) []BlackoutRule {
	return s.byDate[date]
}

// HasFullDay reports whether a full-day rule exists for date.
func (s RuleSet) HasFullDay(date CalendarDate) bool {
	rules := s.byDate[date]
	return len(rules) > 0 && rules[0].FullDay()
}
