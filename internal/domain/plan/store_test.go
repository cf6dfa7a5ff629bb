package plan_test

import (
	"testing"
	"time"

	"github.com/nutridash/dashboard/internal/domain/food"
	"github.com/nutridash/dashboard/internal/domain/plan"
	"github.com/nutridash/dashboard/test/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// StoreTestSuite covers the plan store and the nutrient math over it
type StoreTestSuite struct {
	suite.Suite
	catalog *food.Catalog
	store   *plan.Store
}

func (suite *StoreTestSuite) SetupTest() {
	suite.catalog = testutils.SampleCatalog(suite.T())

	store, err := plan.NewStore(suite.catalog)
	suite.Require().NoError(err)
	suite.store = store
}

func (suite *StoreTestSuite) TestAdd() {
	suite.Run("ScalesOatmeal", func() {
		entry, err := suite.store.Add(plan.Breakfast, "1", 200)
		suite.Require().NoError(err)

		record, _ := suite.catalog.Lookup(entry.FoodID())
		calories, ok := plan.Scale(record, entry.Grams()).Calories.Value()
		suite.True(ok)
		suite.InDelta(136.0, calories, 1e-9)
	})

	suite.Run("BoundsAreInclusive", func() {
		_, err := suite.store.Add(plan.Lunch, "2", 10)
		suite.NoError(err)
		_, err = suite.store.Add(plan.Lunch, "2", 1000)
		suite.NoError(err)
	})

	suite.Run("RejectionsLeaveStoreUnchanged", func() {
		before := suite.store.List()

		_, err := suite.store.Add(plan.Lunch, "2", 9.99)
		suite.ErrorIs(err, plan.ErrGramsOutOfBounds)
		_, err = suite.store.Add(plan.Lunch, "2", 1000.01)
		suite.ErrorIs(err, plan.ErrGramsOutOfBounds)
		_, err = suite.store.Add(plan.Lunch, "missing", 100)
		suite.ErrorIs(err, plan.ErrUnknownFood)
		_, err = suite.store.Add(plan.MealSlot("Brunch"), "2", 100)
		suite.ErrorIs(err, plan.ErrUnknownMealSlot)

		suite.Equal(before, suite.store.List())
	})

	suite.Run("EntriesGetDistinctIDs", func() {
		a, err := suite.store.Add(plan.Snack, "7", 120)
		suite.Require().NoError(err)
		b, err := suite.store.Add(plan.Snack, "7", 120)
		suite.Require().NoError(err)
		suite.NotEqual(a.ID(), b.ID())
	})
}

func (suite *StoreTestSuite) TestUpdateAndMove() {
	_, err := suite.store.Add(plan.Breakfast, "1", 200)
	suite.Require().NoError(err)

	suite.Run("UpdateGrams", func() {
		entry, err := suite.store.Update(0, 300)
		suite.Require().NoError(err)
		suite.Equal(300.0, entry.Grams())
		suite.Equal(300.0, suite.store.List()[0].Grams())
	})

	suite.Run("UpdateOutOfBoundsKeepsGrams", func() {
		_, err := suite.store.Update(0, 5)
		suite.ErrorIs(err, plan.ErrGramsOutOfBounds)
		suite.Equal(300.0, suite.store.List()[0].Grams())
	})

	suite.Run("MoveToMeal", func() {
		entry, err := suite.store.MoveToMeal(0, plan.Dinner)
		suite.Require().NoError(err)
		suite.Equal(plan.Dinner, entry.MealSlot())
	})

	suite.Run("IndexOutOfRange", func() {
		for _, idx := range []int{-1, 1} {
			_, err := suite.store.Update(idx, 100)
			suite.ErrorIs(err, plan.ErrIndexOutOfRange)

			var rangeErr *plan.IndexOutOfRangeError
			suite.Require().ErrorAs(err, &rangeErr)
			suite.Equal(idx, rangeErr.Index)
			suite.Equal(1, rangeErr.Len)
		}
	})
}

func (suite *StoreTestSuite) TestRemoveAndClear() {
	suite.Run("RemoveOnlyEntryEmptiesPlan", func() {
		_, err := suite.store.Add(plan.Lunch, "2", 150)
		suite.Require().NoError(err)

		_, err = suite.store.Remove(0)
		suite.Require().NoError(err)
		suite.Empty(suite.store.List())

		totals, err := plan.Aggregate(suite.store.List(), suite.catalog)
		suite.Require().NoError(err)
		suite.Equal(plan.Totals{}, totals)
	})

	suite.Run("RemoveShiftsLaterEntries", func() {
		for _, id := range []string{"1", "2", "3"} {
			_, err := suite.store.Add(plan.Lunch, id, 100)
			suite.Require().NoError(err)
		}

		removed, err := suite.store.Remove(1)
		suite.Require().NoError(err)
		suite.Equal("2", removed.FoodID())

		list := suite.store.List()
		suite.Require().Len(list, 2)
		suite.Equal("1", list[0].FoodID())
		suite.Equal("3", list[1].FoodID())
	})

	suite.Run("RemoveOutOfRange", func() {
		_, err := suite.store.Remove(5)
		suite.ErrorIs(err, plan.ErrIndexOutOfRange)
		suite.Equal(2, suite.store.Len())
	})

	suite.Run("Clear", func() {
		suite.store.Clear()
		suite.True(suite.store.IsEmpty())
	})
}

func (suite *StoreTestSuite) TestListReturnsSnapshot() {
	_, err := suite.store.Add(plan.Lunch, "2", 150)
	suite.Require().NoError(err)

	list := suite.store.List()
	list[0] = plan.RestoreEntry(list[0].ID(), plan.Dinner, "3", 999)

	suite.Equal("2", suite.store.List()[0].FoodID())
}

func (suite *StoreTestSuite) TestEvents() {
	fixed := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	store, err := plan.NewStore(suite.catalog, plan.WithClock(func() time.Time { return fixed }))
	suite.Require().NoError(err)

	_, err = store.Add(plan.Lunch, "2", 150)
	suite.Require().NoError(err)
	_, err = store.Update(0, 200)
	suite.Require().NoError(err)
	_, err = store.Add(plan.Lunch, "missing", 150)
	suite.Require().Error(err)

	events := store.Events()
	suite.Require().Len(events, 2)
	suite.Equal("plan.entry.added", events[0].EventName())
	suite.Equal(fixed, events[0].OccurredAt())
	suite.Equal("plan.entry.grams_updated", events[1].EventName())
	suite.Empty(store.Events())
}

func TestStoreTestSuite(t *testing.T) {
	suite.Run(t, new(StoreTestSuite))
}

func TestNewStore_InvalidBounds(t *testing.T) {
	c := testutils.SampleCatalog(t)
	for _, b := range []plan.Bounds{{Min: 0, Max: 10}, {Min: 20, Max: 10}} {
		_, err := plan.NewStore(c, plan.WithBounds(b))
		assert.ErrorIs(t, err, plan.ErrInvalidBounds)
	}

	store, err := plan.NewStore(c, plan.WithBounds(plan.Bounds{Min: 1, Max: 5000}))
	require.NoError(t, err)
	_, err = store.Add(plan.Lunch, "2", 2500)
	assert.NoError(t, err)
}

func TestAggregateAndProgress(t *testing.T) {
	c := testutils.SampleCatalog(t)
	store, err := plan.NewStore(c)
	require.NoError(t, err)

	_, err = store.Add(plan.Lunch, "2", 150)
	require.NoError(t, err)

	totals, err := plan.Aggregate(store.List(), c)
	require.NoError(t, err)
	assert.InDelta(t, 247.5, totals.Calories, 1e-9)
	assert.InDelta(t, 46.5, totals.Protein, 1e-9)
	assert.Equal(t, 1, totals.Entries)

	progress, err := plan.ProgressFraction(totals, plan.NewDailyTarget(2000))
	require.NoError(t, err)
	assert.InDelta(t, 0.12375, progress, 1e-9)

	t.Run("AbsentValuesContributeZero", func(t *testing.T) {
		_, err := store.Add(plan.Snack, "12", 100)
		require.NoError(t, err)

		totals, err := plan.Aggregate(store.List(), c)
		require.NoError(t, err)
		assert.InDelta(t, 247.5, totals.Calories, 1e-9)
		assert.InDelta(t, 51.5, totals.Protein, 1e-9)
	})

	t.Run("ProgressIsCapped", func(t *testing.T) {
		progress, err := plan.ProgressFraction(plan.Totals{Calories: 5000}, plan.NewDailyTarget(2000))
		require.NoError(t, err)
		assert.Equal(t, 1.0, progress)
	})

	t.Run("ZeroTarget", func(t *testing.T) {
		_, err := plan.ProgressFraction(totals, plan.NewDailyTarget(0))
		assert.ErrorIs(t, err, plan.ErrDivisionUndefined)
	})

	t.Run("UnknownFood", func(t *testing.T) {
		entries := []plan.Entry{plan.RestoreEntry(store.List()[0].ID(), plan.Lunch, "gone", 100)}
		_, err := plan.Aggregate(entries, c)
		assert.ErrorIs(t, err, plan.ErrUnknownFood)
	})
}

func TestScale_LinearAndMonotonic(t *testing.T) {
	for _, record := range testutils.SampleRecords() {
		t.Run(record.Name, func(t *testing.T) {
			per100g, hasCalories := record.Calories.Value()
			prev := -1.0
			for grams := 10.0; grams <= 1000; grams += 10 {
				scaled := plan.Scale(record, grams)
				calories, ok := scaled.Calories.Value()
				require.Equal(t, hasCalories, ok, "absent stays absent")
				if !ok {
					continue
				}
				assert.InDelta(t, per100g*grams/100, calories, 1e-9)
				assert.GreaterOrEqual(t, calories, prev)
				prev = calories
			}

			// doubling the portion doubles every present value
			single, double := plan.Scale(record, 150), plan.Scale(record, 300)
			for _, pair := range [][2]food.Amount{
				{single.Protein, double.Protein},
				{single.Fat, double.Fat},
				{single.Sugar, double.Sugar},
			} {
				if v, ok := pair[0].Value(); ok {
					w, _ := pair[1].Value()
					assert.InDelta(t, 2*v, w, 1e-9)
				}
			}
		})
	}
}

func TestAggregate_Idempotent(t *testing.T) {
	c := testutils.SampleCatalog(t)
	store, err := plan.NewStore(c)
	require.NoError(t, err)

	for _, add := range []struct {
		slot   plan.MealSlot
		foodID string
		grams  float64
	}{
		{plan.Breakfast, "1", 200},
		{plan.Lunch, "5", 150},
		{plan.Dinner, "3", 180},
		{plan.Snack, "12", 40},
	} {
		_, err := store.Add(add.slot, add.foodID, add.grams)
		require.NoError(t, err)
	}

	first, err := plan.Aggregate(store.List(), c)
	require.NoError(t, err)
	second, err := plan.Aggregate(store.List(), c)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 4, first.Entries)
	assert.Len(t, store.List(), 4)
}

func TestNewDailyTarget(t *testing.T) {
	target := plan.NewDailyTarget(2000)

	assert.Equal(t, 2000.0, target.Calories)
	assert.InDelta(t, 125.0, target.Protein, 1e-9)
	assert.InDelta(t, 250.0, target.Carbs, 1e-9)
	assert.InDelta(t, 55.556, target.Fat, 1e-3)
	assert.InDelta(t, 28.0, target.Fiber, 1e-9)
	assert.InDelta(t, 50.0, target.SugarCeiling, 1e-9)
}

func TestParseCalorieBasis(t *testing.T) {
	basis, err := plan.ParseCalorieBasis("")
	require.NoError(t, err)
	assert.Equal(t, plan.BasisTDEE, basis)

	basis, err = plan.ParseCalorieBasis("bmr")
	require.NoError(t, err)
	assert.Equal(t, 1500.0, basis.Pick(1500, 2000))

	_, err = plan.ParseCalorieBasis("RMR")
	assert.ErrorIs(t, err, plan.ErrUnknownBasis)
}

func TestParseMealSlot(t *testing.T) {
	slot, err := plan.ParseMealSlot(" breakfast ")
	require.NoError(t, err)
	assert.Equal(t, plan.Breakfast, slot)

	_, err = plan.ParseMealSlot("Brunch")
	assert.ErrorIs(t, err, plan.ErrUnknownMealSlot)
}
