package matrix

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sdkchurn/internal/churn/normalize"
	"sdkchurn/internal/churn/state"
	"sdkchurn/internal/gateway/entity"
)

var (
	firebase = entity.Sdk{ID: 1, Name: "Firebase"}
	sentry   = entity.Sdk{ID: 2, Name: "Sentry"}
	bugsnag  = entity.Sdk{ID: 3, Name: "Bugsnag"}
)

func fixtureEdges() []entity.NormalizedChurnEdge {
	return normalize.Normalize([]entity.ChurnEdge{
		{From: 1, To: 1, Count: 3},
		{From: 1, To: 2, Count: 1},
		{From: 2, To: 2, Count: 5},
		{From: 2, To: 9, Count: 4},
	}, []entity.SdkID{1, 2, 3})
}

func TestIntensity(t *testing.T) {
	assert.Equal(t, 251.0, Intensity(0))
	assert.Equal(t, 0.0, Intensity(0.95))
	assert.InDelta(t, 127.5, Intensity(0.45), 1e-9)
	assert.InDelta(t, 191.25, Intensity(0.2), 1e-9)

	t.Run("out of range input does not panic", func(t *testing.T) {
		assert.NotPanics(t, func() {
			assert.Equal(t, 0.0, Intensity(1))
			assert.Equal(t, 0.0, Intensity(25))
			assert.Equal(t, 251.0, Intensity(-1))
		})
	})
}

func TestTextColor(t *testing.T) {
	assert.Equal(t, "white", TextColor(0))
	assert.Equal(t, "white", TextColor(126.9))
	assert.Equal(t, "black", TextColor(127))
	assert.Equal(t, "black", TextColor(251))
}

func TestCellColor(t *testing.T) {
	assert.Equal(t, RGB{R: 255, G: 10, B: 10}, CellColor(10, state.RawCount))
	assert.Equal(t, RGB{R: 10, G: 10, B: 255}, CellColor(10, state.Normalized))
	assert.Equal(t, "rgb(255, 216.75, 216.75)", CellColor(216.75, state.RawCount).CSS())
}

func TestBuildLayout(t *testing.T) {
	sdks := []entity.Sdk{sentry, firebase, bugsnag}
	m := Build(sdks, fixtureEdges(), state.RawCount)

	require.Len(t, m.Rows, 3)
	assert.Equal(t, sdks, m.Columns)
	for i, row := range m.Rows {
		assert.Equal(t, sdks[i], row.Sdk)
		require.Len(t, row.Cells, 3)
		for j, c := range row.Cells {
			assert.Equal(t, sdks[i], c.From)
			assert.Equal(t, sdks[j], c.To)
			assert.Equal(t, entity.Pair{From: sdks[i].ID, To: sdks[j].ID}, c.Target())
		}
	}
}

func TestBuildCells(t *testing.T) {
	m := Build([]entity.Sdk{firebase, sentry, bugsnag}, fixtureEdges(), state.RawCount)

	t.Run("retention cell", func(t *testing.T) {
		c, ok := m.Cell(1, 1)
		require.True(t, ok)
		assert.Equal(t, 3, c.Count)
		assert.InDelta(t, 0.75, c.Normal, 1e-9)
		assert.Equal(t, 75, c.Percent)
		assert.Equal(t, "3", c.Displayed)
		assert.Equal(t, "75%", c.Fallback)
		assert.Equal(t, "white", c.TextColor)
	})

	t.Run("missing pair defaults to zero", func(t *testing.T) {
		c, ok := m.Cell(3, 1)
		require.True(t, ok)
		assert.Zero(t, c.Count)
		assert.Zero(t, c.Normal)
		assert.Equal(t, 251.0, c.Intensity)
		assert.Equal(t, RGB{R: 255, G: 251, B: 251}, c.Color)
		assert.Equal(t, "black", c.TextColor)
	})

	t.Run("out of set edge is not laid out", func(t *testing.T) {
		_, ok := m.Cell(2, 9)
		assert.False(t, ok)
		c, _ := m.Cell(2, 2)
		assert.InDelta(t, 1.0, c.Normal, 1e-9)
	})

	t.Run("self cell is clickable", func(t *testing.T) {
		c, _ := m.Cell(2, 2)
		assert.Equal(t, entity.Pair{From: 2, To: 2}, c.Target())
	})
}

func TestDisplayModeOnlyChangesPresentation(t *testing.T) {
	sdks := []entity.Sdk{firebase, sentry, bugsnag}
	raw := Build(sdks, fixtureEdges(), state.RawCount)
	norm := Build(sdks, fixtureEdges(), state.Normalized)

	for i := range raw.Rows {
		for j := range raw.Rows[i].Cells {
			r, n := raw.Rows[i].Cells[j], norm.Rows[i].Cells[j]
			assert.Equal(t, r.Count, n.Count)
			assert.Equal(t, r.Normal, n.Normal)
			assert.Equal(t, r.Intensity, n.Intensity)
			assert.Equal(t, r.TextColor, n.TextColor)
			assert.Equal(t, r.Displayed, n.Fallback)
			assert.Equal(t, r.Fallback, n.Displayed)
			assert.Equal(t, RGB{R: r.Color.B, G: r.Color.G, B: r.Color.R}, n.Color)
		}
	}

	c, _ := norm.Cell(1, 2)
	assert.Equal(t, "25%", c.Displayed)
	assert.Equal(t, "1", c.Fallback)
}

func TestBuildEmpty(t *testing.T) {
	m := Build(nil, nil, state.RawCount)
	assert.Empty(t, m.Rows)
	assert.Empty(t, m.Columns)
}
