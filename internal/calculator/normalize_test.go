package calculator

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MarketAnalyst/internal/model"
)

func TestNormalize_CompoundsStepReturns(t *testing.T) {
	got, err := Normalize(daily("A", date(2024, 1, 1), 100, 110, 121))
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{100, 110, 121}, []float64(got.Values), 1e-9)
	assert.Len(t, got.Times, 3)
}

func TestNormalize_FirstValueIsBase(t *testing.T) {
	for seed := int64(1); seed <= 5; seed++ {
		got, err := Normalize(daily("A", date(2020, 1, 1), randomWalk(seed, 50)...))
		require.NoError(t, err)
		assert.InDelta(t, IndexBase, got.Values[0], 1e-9)
	}
}

func TestNormalize_SkipsLeadingNonPositive(t *testing.T) {
	got, err := Normalize(daily("A", date(2024, 1, 1), 0, 50, 55))
	require.NoError(t, err)
	assert.Equal(t, date(2024, 1, 2), got.Times[0])
	assert.InDeltaSlice(t, []float64{100, 110}, []float64(got.Values), 1e-9)
}

func TestNormalize_NoPositiveClose(t *testing.T) {
	_, err := Normalize(daily("A", date(2024, 1, 1), 0, 0))
	assert.True(t, errors.Is(err, model.ErrDataUnavailable))
}

func TestIntersect_InnerJoinDropsDisjointSymbol(t *testing.T) {
	a, _ := Normalize(daily("A", date(2024, 1, 1), 10, 11, 12))
	b, _ := Normalize(daily("B", date(2024, 1, 2), 20, 22, 24))
	c, _ := Normalize(daily("C", date(2024, 2, 1), 5, 6))

	cmp := Intersect(model.Period1mo, a, b, c)

	require.Len(t, cmp.Series, 2)
	assert.Equal(t, []string{"A", "B"}, []string{cmp.Series[0].Symbol, cmp.Series[1].Symbol})
	assert.Equal(t, []time.Time{date(2024, 1, 2), date(2024, 1, 3)}, cmp.Times)
	assert.InDeltaSlice(t, []float64{110, 120}, []float64(cmp.Series[0].Values), 1e-9)
	assert.InDeltaSlice(t, []float64{100, 110}, []float64(cmp.Series[1].Values), 1e-9)

	require.Len(t, cmp.Dropped, 1)
	assert.Equal(t, "C", cmp.Dropped[0].Symbol)
	assert.Equal(t, model.KindInsufficientHistory, cmp.Dropped[0].Kind)
}

func TestIntersect_Empty(t *testing.T) {
	cmp := Intersect(model.Period1y)
	assert.Empty(t, cmp.Series)
	assert.Empty(t, cmp.Times)
}
