package plan

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nutridash/dashboard/internal/domain/food"
	"github.com/nutridash/dashboard/internal/domain/shared"
)

// Default portion bounds in grams
const (
	DefaultMinGrams = 10.0
	DefaultMaxGrams = 1000.0
)

// FoodLookup resolves catalog records by ID. *food.Catalog implements it.
type FoodLookup interface {
	Lookup(id string) (food.Record, bool)
}

// Bounds is the inclusive range of allowed grams per entry
type Bounds struct {
	Min float64
	Max float64
}

// DefaultBounds returns [10, 1000]
func DefaultBounds() Bounds {
	return Bounds{Min: DefaultMinGrams, Max: DefaultMaxGrams}
}

// Validate checks 0 < Min <= Max
func (b Bounds) Validate() error {
	if b.Min <= 0 || b.Min > b.Max {
		return ErrInvalidBounds
	}
	return nil
}

// Contains reports whether grams is inside the bounds
func (b Bounds) Contains(grams float64) bool {
	return grams >= b.Min && grams <= b.Max
}

// Store is the ordered collection of plan entries for one session.
// Insertion order is the display order. A failed call leaves the store
// unchanged. Store is not safe for concurrent use.
type Store struct {
	shared.AggregateRoot

	entries []Entry
	lookup  FoodLookup
	bounds  Bounds
	now     func() time.Time
}

// StoreOption configures a Store
type StoreOption func(*Store)

// WithBounds overrides the default gram bounds
func WithBounds(b Bounds) StoreOption {
	return func(s *Store) {
		s.bounds = b
	}
}

// WithClock overrides the event timestamp source
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) {
		s.now = now
	}
}

// NewStore creates an empty store that validates food IDs against lookup
func NewStore(lookup FoodLookup, opts ...StoreOption) (*Store, error) {
	s := &Store{
		lookup: lookup,
		bounds: DefaultBounds(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.bounds.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Bounds returns the configured gram bounds
func (s *Store) Bounds() Bounds {
	return s.bounds
}

// Add appends a new entry at the end of the plan
func (s *Store) Add(slot MealSlot, foodID string, grams float64) (Entry, error) {
	if !slot.IsValid() {
		return Entry{}, fmt.Errorf("%w: %q", ErrUnknownMealSlot, slot)
	}
	if err := s.checkGrams(grams); err != nil {
		return Entry{}, err
	}
	if _, ok := s.lookup.Lookup(foodID); !ok {
		return Entry{}, fmt.Errorf("%w: %s", ErrUnknownFood, foodID)
	}

	entry := Entry{
		id:       uuid.New(),
		mealSlot: slot,
		foodID:   foodID,
		grams:    grams,
	}
	s.entries = append(s.entries, entry)

	s.AddEvent(EntryAddedEvent{
		EntryID:  entry.id,
		MealSlot: slot,
		FoodID:   foodID,
		Grams:    grams,
		AddedAt:  s.now(),
	})
	return entry, nil
}

// Update changes the grams of the entry at index
func (s *Store) Update(index int, grams float64) (Entry, error) {
	if err := s.checkIndex(index); err != nil {
		return Entry{}, err
	}
	if err := s.checkGrams(grams); err != nil {
		return Entry{}, err
	}

	old := s.entries[index].grams
	s.entries[index].grams = grams

	s.AddEvent(EntryGramsUpdatedEvent{
		EntryID:   s.entries[index].id,
		OldGrams:  old,
		NewGrams:  grams,
		UpdatedAt: s.now(),
	})
	return s.entries[index], nil
}

// MoveToMeal reassigns the entry at index to another meal
func (s *Store) MoveToMeal(index int, slot MealSlot) (Entry, error) {
	if err := s.checkIndex(index); err != nil {
		return Entry{}, err
	}
	if !slot.IsValid() {
		return Entry{}, fmt.Errorf("%w: %q", ErrUnknownMealSlot, slot)
	}

	from := s.entries[index].mealSlot
	s.entries[index].mealSlot = slot

	s.AddEvent(EntryMovedEvent{
		EntryID: s.entries[index].id,
		From:    from,
		To:      slot,
		MovedAt: s.now(),
	})
	return s.entries[index], nil
}

// Remove deletes the entry at index and shifts the rest down by one
func (s *Store) Remove(index int) (Entry, error) {
	if err := s.checkIndex(index); err != nil {
		return Entry{}, err
	}

	removed := s.entries[index]
	s.entries = append(s.entries[:index:index], s.entries[index+1:]...)

	s.AddEvent(EntryRemovedEvent{
		EntryID:   removed.id,
		FoodID:    removed.foodID,
		RemovedAt: s.now(),
	})
	return removed, nil
}

// Clear drops every entry
func (s *Store) Clear() {
	n := len(s.entries)
	s.entries = nil
	s.AddEvent(PlanClearedEvent{Removed: n, ClearedAt: s.now()})
}

// List returns a snapshot of the entries in insertion order
func (s *Store) List() []Entry {
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Len returns the number of entries
func (s *Store) Len() int {
	return len(s.entries)
}

// IsEmpty reports whether the plan has no entries
func (s *Store) IsEmpty() bool {
	return len(s.entries) == 0
}

func (s *Store) checkIndex(index int) error {
	if index < 0 || index >= len(s.entries) {
		return &IndexOutOfRangeError{Index: index, Len: len(s.entries)}
	}
	return nil
}

func (s *Store) checkGrams(grams float64) error {
	if !s.bounds.Contains(grams) {
		return fmt.Errorf("%w: %g not in [%g, %g]", ErrGramsOutOfBounds, grams, s.bounds.Min, s.bounds.Max)
	}
	return nil
}
