// ABOUTME: Category catalog for trackable health metrics.
// ABOUTME: Each category carries an aggregation kind, unit, emoji, and number format.
package models

import "fmt"

// AggregationKind determines how raw samples for a category are reduced.
type AggregationKind string

const (
	// KindCumulativeSum sums per-day bucketed values (steps, distance, water).
	KindCumulativeSum AggregationKind = "cumulative_sum"
	// KindDiscreteAverage averages per-day bucketed values (weight, heart rate).
	KindDiscreteAverage AggregationKind = "discrete_average"
	// KindDurationFromIntervals sums interval lengths in minutes (sleep, mindfulness).
	KindDurationFromIntervals AggregationKind = "duration_from_intervals"
	// KindEventCount counts whole samples as events (workouts).
	KindEventCount AggregationKind = "event_count"
)

// Valid reports whether the kind is one of the four known aggregation kinds.
func (k AggregationKind) Valid() bool {
	switch k {
	case KindCumulativeSum, KindDiscreteAverage, KindDurationFromIntervals, KindEventCount:
		return true
	}
	return false
}

// Category is one trackable metric class. Immutable after registry construction.
type Category struct {
	Name  string
	Kind  AggregationKind
	Unit  string
	Emoji string

	// Number formatting for totals and averages.
	Decimals int
	Grouping bool
}

// Label returns the category's display label: emoji plus name.
func (c Category) Label() string {
	return c.Emoji + " " + c.Name
}

// Registry is a read-only catalog of categories keyed by name.
type Registry struct {
	byName map[string]Category
	order  []string
}

// NewRegistry builds a registry from the given categories.
// Names must be unique and kinds must be valid.
func NewRegistry(categories []Category) (*Registry, error) {
	r := &Registry{byName: make(map[string]Category, len(categories))}
	for _, c := range categories {
		if !c.Kind.Valid() {
			return nil, fmt.Errorf("category %s: unknown aggregation kind %q", c.Name, c.Kind)
		}
		if _, dup := r.byName[c.Name]; dup {
			return nil, fmt.Errorf("duplicate category name: %s", c.Name)
		}
		r.byName[c.Name] = c
		r.order = append(r.order, c.Name)
	}
	return r, nil
}

// Get returns the category with the given name.
func (r *Registry) Get(name string) (Category, bool) {
	c, ok := r.byName[name]
	return c, ok
}

// Names returns category names in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// All returns all categories in registration order.
func (r *Registry) All() []Category {
	out := make([]Category, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.byName[name])
	}
	return out
}

// DefaultRegistry returns the built-in category catalog.
func DefaultRegistry() *Registry {
	r, err := NewRegistry([]Category{
		{Name: "steps", Kind: KindCumulativeSum, Unit: "steps", Emoji: "👣", Decimals: 0, Grouping: true},
		{Name: "distance", Kind: KindCumulativeSum, Unit: "km", Emoji: "📍", Decimals: 1},
		{Name: "active_energy", Kind: KindCumulativeSum, Unit: "kcal", Emoji: "🔥", Decimals: 0, Grouping: true},
		{Name: "water", Kind: KindCumulativeSum, Unit: "ml", Emoji: "💧", Decimals: 0, Grouping: true},
		{Name: "weight", Kind: KindDiscreteAverage, Unit: "kg", Emoji: "⚖️", Decimals: 1},
		{Name: "heart_rate", Kind: KindDiscreteAverage, Unit: "bpm", Emoji: "❤️", Decimals: 0},
		{Name: "sleep", Kind: KindDurationFromIntervals, Unit: "min", Emoji: "😴"},
		{Name: "mindfulness", Kind: KindDurationFromIntervals, Unit: "min", Emoji: "🧘"},
		{Name: "workouts", Kind: KindEventCount, Unit: "workout", Emoji: "💪"},
	})
	if err != nil {
		// The built-in catalog is static; a construction failure is a programming error.
		panic(err)
	}
	return r
}

// IsValidCategoryName checks a name against the default registry.
func IsValidCategoryName(name string) bool {
	_, ok := DefaultRegistry().Get(name)
	return ok
}
