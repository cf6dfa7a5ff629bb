package catalog

import (
	"strings"
	"testing"

	"github.com/nutridash/dashboard/internal/domain/food"
	"github.com/nutridash/dashboard/test/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_SampleCSV(t *testing.T) {
	c, err := Parse(strings.NewReader(testutils.SampleCSV()), SchemaV1)
	require.NoError(t, err)

	assert.Equal(t, 12, c.Len())
	assert.Equal(t, testutils.SampleRecords(), c.Records())
}

func TestParse_Cells(t *testing.T) {
	csv := "\uFEFFFood , CATEGORY,Calories,Protein (g),Carbs (g),Fat (g),Fiber (g),Sugar (g)\n" +
		"Apple,Fruit,52,0.3,14,0.2,2.4,10\n" +
		"Weird,Snacks,abc,-1,,NaN,1e400,3\n" +
		",Fruit,1,1,1,1,1,1\n" +
		"Short,Fruit,10\n"

	c, err := Parse(strings.NewReader(csv), SchemaV1)
	require.NoError(t, err)
	require.Equal(t, 3, c.Len())

	apple := c.At(0)
	assert.Equal(t, "1", apple.ID)
	assert.Equal(t, food.Some(52), apple.Calories)

	weird := c.At(1)
	assert.Equal(t, "2", weird.ID)
	for _, a := range []food.Amount{weird.Calories, weird.Protein, weird.Carbs, weird.Fat, weird.Fiber} {
		assert.False(t, a.Present())
	}
	assert.Equal(t, food.Some(3), weird.Sugar)

	short := c.At(2)
	assert.Equal(t, "4", short.ID, "row numbers count skipped rows")
	assert.Equal(t, food.Some(10), short.Calories)
	assert.False(t, short.Sugar.Present())
}

func TestParse_DuplicateSourceIDsFallBackToRowNumbers(t *testing.T) {
	csv := "id,Food,Category,Calories,Protein,Carbs,Fat,Fiber,Sugar\n" +
		"7,A,X,1,1,1,1,1,1\n" +
		"7,B,X,1,1,1,1,1,1\n"

	c, err := Parse(strings.NewReader(csv), SchemaV1)
	require.NoError(t, err)
	assert.Equal(t, "1", c.At(0).ID)
	assert.Equal(t, "2", c.At(1).ID)
}

func TestParse_ColumnResolution(t *testing.T) {
	tests := map[string]string{
		"Empty":         "",
		"MissingSugar":  "Food,Category,Calories,Protein,Carbs,Fat,Fiber\n",
		"AmbiguousFood": "Food,Description,Category,Calories,Protein,Carbs,Fat,Fiber,Sugar\n",
	}
	for name, csv := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(csv), SchemaV1)
			assert.ErrorIs(t, err, food.ErrColumnResolution)
		})
	}
}

func TestLookupSchema(t *testing.T) {
	s, err := LookupSchema("")
	require.NoError(t, err)
	assert.Equal(t, "v1", s.Version)

	s, err = LookupSchema("V1")
	require.NoError(t, err)
	assert.Equal(t, "v1", s.Version)

	_, err = LookupSchema("v9")
	assert.Error(t, err)
}
