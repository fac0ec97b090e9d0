// Package matrix builds the render-ready churn grid. It knows nothing about
// HTML; a template or a script client consumes the rows as they are.
package matrix

import (
	"math"
	"strconv"

	"sdkchurn/internal/churn/normalize"
	"sdkchurn/internal/churn/state"
	"sdkchurn/internal/gateway/entity"
)

type Cell struct {
	From      entity.Sdk `json:"from"`
	To        entity.Sdk `json:"to"`
	Count     int        `json:"count"`
	Normal    float64    `json:"normal"`
	Percent   int        `json:"percent"`
	Intensity float64    `json:"color_intensity"`
	Color     RGB        `json:"color"`
	TextColor string     `json:"text_color"`
	// Displayed is the emphasized value for the active mode, Fallback the
	// other one.
	Displayed string `json:"displayed_value"`
	Fallback  string `json:"fallback_value"`
}

// Target is the drill-down pair a click on the cell selects.
func (c Cell) Target() entity.Pair {
	return entity.Pair{From: c.From.ID, To: c.To.ID}
}

func (c Cell) Style() string {
	return "background-color: " + c.Color.CSS() + "; color: " + c.TextColor
}

type Row struct {
	Sdk   entity.Sdk `json:"sdk"`
	Cells []Cell     `json:"cells"`
}

type Matrix struct {
	Columns     []entity.Sdk      `json:"columns"`
	Rows        []Row             `json:"rows"`
	DisplayMode state.DisplayMode `json:"display_mode"`
}

// Build lays out one row and one column per sdk, in the given order.
func Build(sdks []entity.Sdk, edges []entity.NormalizedChurnEdge, mode state.DisplayMode) Matrix {
	idx := normalize.NewIndex(edges)
	m := Matrix{
		Columns:     append([]entity.Sdk(nil), sdks...),
		Rows:        make([]Row, 0, len(sdks)),
		DisplayMode: mode,
	}
	for _, from := range sdks {
		row := Row{Sdk: from, Cells: make([]Cell, 0, len(sdks))}
		for _, to := range sdks {
			row.Cells = append(row.Cells, buildCell(from, to, idx.Lookup(from.ID, to.ID), mode))
		}
		m.Rows = append(m.Rows, row)
	}
	return m
}

func buildCell(from, to entity.Sdk, e entity.NormalizedChurnEdge, mode state.DisplayMode) Cell {
	intensity := Intensity(e.Normal)
	c := Cell{
		From:      from,
		To:        to,
		Count:     e.Count,
		Normal:    e.Normal,
		Percent:   Percent(e.Normal),
		Intensity: intensity,
		Color:     CellColor(intensity, mode),
		TextColor: TextColor(intensity),
	}
	count := strconv.Itoa(c.Count)
	percent := strconv.Itoa(c.Percent) + "%"
	if mode == state.Normalized {
		c.Displayed, c.Fallback = percent, count
	} else {
		c.Displayed, c.Fallback = count, percent
	}
	return c
}

func Percent(normal float64) int {
	if math.IsNaN(normal) || math.IsInf(normal, 0) {
		return 0
	}
	return int(math.Round(normal * 100))
}

// Cell returns the cell at (from, to), if both are laid out.
func (m Matrix) Cell(from, to entity.SdkID) (Cell, bool) {
	for _, r := range m.Rows {
		if r.Sdk.ID != from {
			continue
		}
		for _, c := range r.Cells {
			if c.To.ID == to {
				return c, true
			}
		}
	}
	return Cell{}, false
}
