package food_test

import (
	"encoding/json"
	"testing"

	"github.com/nutridash/dashboard/internal/domain/food"
	"github.com/nutridash/dashboard/test/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// CatalogTestSuite covers catalog construction and the dashboard queries
type CatalogTestSuite struct {
	suite.Suite
	catalog *food.Catalog
}

func (suite *CatalogTestSuite) SetupTest() {
	suite.catalog = testutils.SampleCatalog(suite.T())
}

func names(c *food.Catalog) []string {
	out := make([]string, 0, c.Len())
	for _, r := range c.Records() {
		out = append(out, r.Name)
	}
	return out
}

func (suite *CatalogTestSuite) TestNewCatalog() {
	suite.Run("KeepsRowOrderAndIndexesByID", func() {
		suite.Equal(12, suite.catalog.Len())
		suite.Equal("Oatmeal", suite.catalog.At(0).Name)

		r, ok := suite.catalog.Lookup("9")
		suite.True(ok)
		suite.Equal("Cheddar Cheese", r.Name)
		suite.False(suite.catalog.Contains("999"))
	})

	suite.Run("DuplicateID_ShouldFail", func() {
		_, err := food.NewCatalog([]food.Record{
			testutils.NewFoodBuilder("1", "Apple").Build(),
			testutils.NewFoodBuilder("1", "Pear").Build(),
		})
		suite.ErrorIs(err, food.ErrDuplicateID)
	})

	suite.Run("NegativeNutrient_ShouldFail", func() {
		_, err := food.NewCatalog([]food.Record{
			testutils.NewFoodBuilder("1", "Apple").WithCalories(-1).Build(),
		})
		suite.ErrorIs(err, food.ErrNegativeNutrient)
	})

	suite.Run("EmptyName_ShouldFail", func() {
		_, err := food.NewCatalog([]food.Record{testutils.NewFoodBuilder("1", " ").Build()})
		suite.ErrorIs(err, food.ErrEmptyName)
	})

	suite.Run("EmptyCatalogIsValid", func() {
		c, err := food.NewCatalog(nil)
		suite.Require().NoError(err)
		suite.True(c.IsEmpty())
	})
}

func (suite *CatalogTestSuite) TestCategories() {
	suite.Equal([]string{
		"Dairy", "Fruit", "Grains", "Legumes", "Meat", "Nuts", "Seafood", "Snacks", "Vegetables",
	}, suite.catalog.Categories())
}

func (suite *CatalogTestSuite) TestSearch() {
	suite.Run("ByCategory", func() {
		got := suite.catalog.Search(food.Query{Categories: []string{"Dairy"}})
		suite.Equal([]string{"Greek Yogurt", "Cheddar Cheese"}, names(got))
	})

	suite.Run("ByNameIsCaseInsensitive", func() {
		got := suite.catalog.Search(food.Query{Search: "  CHEESE "})
		suite.Equal([]string{"Cheddar Cheese"}, names(got))
	})

	suite.Run("CategoriesAndName", func() {
		got := suite.catalog.Search(food.Query{Categories: []string{"Legumes", "Fruit"}, Search: "o"})
		suite.Equal([]string{"Tofu"}, names(got))
	})

	suite.Run("EmptyQueryReturnsEverything", func() {
		suite.Equal(12, suite.catalog.Search(food.Query{}).Len())
	})
}

func (suite *CatalogTestSuite) TestTopFoods() {
	suite.Run("RanksByProteinDescending", func() {
		ranked, err := suite.catalog.TopFoods(food.Protein, 5)
		suite.Require().NoError(err)
		suite.Require().Len(ranked, 5)

		got := make([]string, 0, len(ranked))
		for _, r := range ranked {
			got = append(got, r.Record.Name)
		}
		suite.Equal([]string{"Chicken Breast", "Cheddar Cheese", "Almonds", "Salmon Fillet", "Boiled Egg"}, got)
		suite.Equal(31.0, ranked[0].Value)
	})

	suite.Run("SkipsRowsMissingTheNutrient", func() {
		ranked, err := suite.catalog.TopFoods(food.Calories, 30)
		suite.Require().NoError(err)
		suite.Len(ranked, 11)
		for _, r := range ranked {
			suite.NotEqual("Mystery Bar", r.Record.Name)
		}
	})

	suite.Run("DuplicateNamesKeepHighestValue", func() {
		c, err := food.NewCatalog([]food.Record{
			testutils.NewFoodBuilder("a", "Apple").WithSugar(10).Build(),
			testutils.NewFoodBuilder("b", "Apple").WithSugar(12).Build(),
			testutils.NewFoodBuilder("c", "Date").WithSugar(63).Build(),
		})
		suite.Require().NoError(err)

		ranked, err := c.TopFoods(food.Sugar, 5)
		suite.Require().NoError(err)
		suite.Require().Len(ranked, 2)
		suite.Equal("Date", ranked[0].Record.Name)
		suite.Equal("b", ranked[1].Record.ID)
	})

	suite.Run("CountOutOfRange_ShouldFail", func() {
		for _, k := range []int{0, 4, 31} {
			_, err := suite.catalog.TopFoods(food.Protein, k)
			suite.ErrorIs(err, food.ErrInvalidTopCount, "k=%d", k)
		}
	})

	suite.Run("UnknownNutrient_ShouldFail", func() {
		_, err := suite.catalog.TopFoods(food.Nutrient("sodium"), 5)
		suite.ErrorIs(err, food.ErrUnknownNutrient)
	})
}

func (suite *CatalogTestSuite) TestDietFilter() {
	suite.Run("OmnivoreKeepsEverything", func() {
		got, err := food.Filter(suite.catalog, food.DietOmnivore)
		suite.Require().NoError(err)
		suite.Equal(12, got.Len())
	})

	suite.Run("VegetarianDropsMeatAndSeafood", func() {
		got, err := food.Filter(suite.catalog, food.DietVegetarian)
		suite.Require().NoError(err)
		suite.Equal(10, got.Len())
		suite.NotContains(names(got), "Chicken Breast")
		suite.NotContains(names(got), "Salmon Fillet")
		suite.Contains(names(got), "Cheddar Cheese")
	})

	suite.Run("VeganAlsoDropsAnimalProducts", func() {
		got, err := food.Filter(suite.catalog, food.DietVegan)
		suite.Require().NoError(err)
		suite.Equal([]string{"Oatmeal", "Lentils", "Tofu", "Banana", "Broccoli", "Almonds", "Mystery Bar"}, names(got))
	})

	suite.Run("CustomKeywords", func() {
		f := food.NewDietFilter(food.Keywords{Meat: []string{"TOFU"}})
		got, err := f.Apply(suite.catalog, food.DietVegetarian)
		suite.Require().NoError(err)
		suite.Equal(11, got.Len())
		suite.NotContains(names(got), "Tofu")
	})

	suite.Run("FilteringLeavesSourceUntouched", func() {
		_, err := food.Filter(suite.catalog, food.DietVegan)
		suite.Require().NoError(err)
		suite.Equal(12, suite.catalog.Len())
	})

	suite.Run("UnknownDiet_ShouldFail", func() {
		_, err := food.Filter(suite.catalog, food.DietType("paleo"))
		suite.ErrorIs(err, food.ErrUnknownDietType)
	})
}

func TestCatalogTestSuite(t *testing.T) {
	suite.Run(t, new(CatalogTestSuite))
}

func TestParseDietType(t *testing.T) {
	tests := []struct {
		in   string
		want food.DietType
	}{
		{"", food.DietOmnivore},
		{"Non-Vegetarian", food.DietOmnivore},
		{"omnivore", food.DietOmnivore},
		{"Vegetarian", food.DietVegetarian},
		{" VEGAN ", food.DietVegan},
	}
	for _, tt := range tests {
		got, err := food.ParseDietType(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := food.ParseDietType("paleo")
	assert.ErrorIs(t, err, food.ErrUnknownDietType)
}

func TestParseNutrient(t *testing.T) {
	n, err := food.ParseNutrient("Protein")
	require.NoError(t, err)
	assert.Equal(t, food.Protein, n)
	assert.Equal(t, "g", n.Unit())
	assert.Equal(t, "kcal", food.Calories.Unit())

	_, err = food.ParseNutrient("sodium")
	assert.ErrorIs(t, err, food.ErrUnknownNutrient)
}

func TestAmount(t *testing.T) {
	t.Run("AbsentComparisonsAreFalse", func(t *testing.T) {
		assert.False(t, food.None().LessOrEqual(food.Some(1)))
		assert.False(t, food.Some(1).GreaterOrEqual(food.None()))
		assert.True(t, food.Some(1).LessOrEqual(food.Some(1)))
	})

	t.Run("MulKeepsAbsence", func(t *testing.T) {
		assert.False(t, food.None().Mul(2).Present())
		v, ok := food.Some(68).Mul(2).Value()
		assert.True(t, ok)
		assert.Equal(t, 136.0, v)
	})

	t.Run("JSON", func(t *testing.T) {
		data, err := json.Marshal(struct {
			A food.Amount `json:"a"`
			B food.Amount `json:"b"`
		}{food.Some(1.5), food.None()})
		require.NoError(t, err)
		assert.JSONEq(t, `{"a":1.5,"b":null}`, string(data))

		var decoded struct {
			A food.Amount `json:"a"`
			B food.Amount `json:"b"`
		}
		require.NoError(t, json.Unmarshal([]byte(`{"a":2,"b":null}`), &decoded))
		assert.Equal(t, food.Some(2), decoded.A)
		assert.False(t, decoded.B.Present())
	})
}
