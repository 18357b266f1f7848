package advisor

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HerbHall/cropadvisor/internal/knapsack"
	"github.com/HerbHall/cropadvisor/internal/recommend"
	"github.com/HerbHall/cropadvisor/internal/testutil"
	"github.com/HerbHall/cropadvisor/pkg/crop"
)

func newAdvisor(t *testing.T, records ...crop.Record) *Advisor {
	t.Helper()
	a, err := New(testutil.NewDataset(records...), testutil.Logger())
	require.NoError(t, err)
	return a
}

func TestNew_NilDataset(t *testing.T) {
	_, err := New(nil, nil)
	assert.ErrorIs(t, err, recommend.ErrNoDataset)
}

func TestRecommend_SingleMatch(t *testing.T) {
	rice := testutil.NewRecord()
	a := newAdvisor(t, rice)

	rec, err := a.Recommend(testutil.QueryFor(rice))
	require.NoError(t, err)
	assert.Equal(t, []string{"rice"}, rec.Labels)
	assert.Equal(t, 1, rec.Matches)
	assert.False(t, rec.Fallback)
}

func TestRecommend_FallbackWhenNothingMatches(t *testing.T) {
	a := newAdvisor(t, testutil.NewRecord())

	rec, err := a.Recommend(crop.Query{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Recommended crop: cotton"}, rec.Labels)
	assert.True(t, rec.Fallback)
	assert.Zero(t, rec.Matches)
}

func TestRecommend_CustomFallback(t *testing.T) {
	a, err := New(testutil.NewDataset(), nil, WithFallbackLabel("millet"))
	require.NoError(t, err)

	rec, err := a.Recommend(crop.Query{})
	require.NoError(t, err)
	assert.Equal(t, []string{"millet"}, rec.Labels)
}

func TestRecommend_RankOrder(t *testing.T) {
	ten := testutil.NewRecord(testutil.WithLabel("ten"), testutil.WithYield(10))
	five := testutil.NewRecord(testutil.WithLabel("five"), testutil.WithYield(5))
	a := newAdvisor(t, ten, five)

	rec, err := a.Recommend(testutil.QueryFor(ten))
	require.NoError(t, err)
	assert.Equal(t, []string{"five", "ten"}, rec.Labels)
}

func TestRecommend_StructuralErrorPropagates(t *testing.T) {
	a := newAdvisor(t, testutil.NewRecord(testutil.WithoutField("ph")))

	_, err := a.Recommend(crop.Query{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, crop.ErrMissingAttribute))
}

func TestGreeting(t *testing.T) {
	got := Greeting("Asha", Recommendation{Labels: []string{"rice", "maize"}})
	assert.Equal(t, "Hello Asha, Recommended crop: rice, maize", got)
}

func TestSelect(t *testing.T) {
	a := newAdvisor(t)
	items := []knapsack.Item{
		{Label: "a", Weight: 2, Value: 3},
		{Label: "b", Weight: 3, Value: 4},
		{Label: "c", Weight: 4, Value: 5},
	}

	res, err := a.Select(items, 5)
	require.NoError(t, err)
	assert.Equal(t, 7, res.TotalValue)

	_, err = a.Select(items, -1)
	assert.ErrorIs(t, err, knapsack.ErrInvalidInput)
}

func TestSelect_MaxCells(t *testing.T) {
	a, err := New(testutil.NewDataset(), nil, WithMaxCells(10))
	require.NoError(t, err)

	_, err = a.Select([]knapsack.Item{{Weight: 1, Value: 1}}, 100)
	assert.ErrorIs(t, err, knapsack.ErrTableTooLarge)
}

func TestPlan_UsesDatasetWeightsAndValues(t *testing.T) {
	a := newAdvisor(t,
		testutil.NewRecord(testutil.WithLabel("a"), testutil.WithField("weight", 2), testutil.WithField("value", 3)),
		testutil.NewRecord(testutil.WithLabel("b"), testutil.WithField("weight", 3), testutil.WithField("value", 4)),
		testutil.NewRecord(testutil.WithLabel("c"), testutil.WithField("weight", 4), testutil.WithField("value", 5)),
	)

	res, err := a.Plan(5)
	require.NoError(t, err)
	assert.Equal(t, 7, res.TotalValue)

	labels := make([]string, len(res.Items))
	for i, it := range res.Items {
		labels[i] = it.Label
	}
	assert.ElementsMatch(t, []string{"a", "b"}, labels)
}

func TestPlan_MissingWeight(t *testing.T) {
	a := newAdvisor(t, testutil.NewRecord(testutil.WithoutField("weight")))

	_, err := a.Plan(5)
	assert.ErrorIs(t, err, crop.ErrMissingAttribute)
}

func TestItems_NonIntegerValue(t *testing.T) {
	_, err := Items([]crop.Record{testutil.NewRecord(testutil.WithField("value", 2.5))})
	assert.ErrorIs(t, err, crop.ErrNotInteger)
}
