// Package state holds the interaction state of the churn page and the codec
// that maps it to and from the page address. The address is the only place
// the state lives; every change produces a new address.
package state

import (
	"fmt"
	"slices"

	"sdkchurn/internal/gateway/entity"
)

type DisplayMode int

const (
	RawCount DisplayMode = iota
	Normalized
)

func (m DisplayMode) String() string {
	if m == Normalized {
		return "normalized"
	}
	return "raw"
}

func (m DisplayMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *DisplayMode) UnmarshalText(b []byte) error {
	switch string(b) {
	case "normalized":
		*m = Normalized
	case "raw", "":
		*m = RawCount
	default:
		return fmt.Errorf("unknown display mode %q", string(b))
	}
	return nil
}

// State is an immutable value. Mutators return a copy.
type State struct {
	// SelectedSDKs is ordered; the order is the matrix row/column order.
	SelectedSDKs []entity.SdkID
	DisplayMode  DisplayMode
	DrillDown    *entity.Pair
}

var (
	bootstrapSDKs      = []entity.SdkID{875, 13, 2081, 33}
	bootstrapDrillDown = entity.Pair{From: 13, To: 2081}
)

// Bootstrap returns the canonical first-visit state. The display mode of the
// incoming state is kept.
func Bootstrap(mode DisplayMode) State {
	dd := bootstrapDrillDown
	return State{
		SelectedSDKs: slices.Clone(bootstrapSDKs),
		DisplayMode:  mode,
		DrillDown:    &dd,
	}
}

func (s State) IsEmpty() bool {
	return len(s.SelectedSDKs) == 0
}

func (s State) Contains(id entity.SdkID) bool {
	return slices.Contains(s.SelectedSDKs, id)
}

// Toggle adds id to the end of the selection, or removes it if present.
func (s State) Toggle(id entity.SdkID) State {
	out := s.clone()
	if i := slices.Index(out.SelectedSDKs, id); i >= 0 {
		out.SelectedSDKs = slices.Delete(out.SelectedSDKs, i, i+1)
		return out
	}
	out.SelectedSDKs = append(out.SelectedSDKs, id)
	return out
}

func (s State) ToggleDisplayMode() State {
	out := s.clone()
	if out.DisplayMode == Normalized {
		out.DisplayMode = RawCount
	} else {
		out.DisplayMode = Normalized
	}
	return out
}

func (s State) Select(from, to entity.SdkID) State {
	out := s.clone()
	out.DrillDown = &entity.Pair{From: from, To: to}
	return out
}

func (s State) ClearSelection() State {
	out := s.clone()
	out.DrillDown = nil
	return out
}

// ResolvedDrillDown reports the drill-down pair only when both ends are part
// of the current selection.
func (s State) ResolvedDrillDown() (entity.Pair, bool) {
	if s.DrillDown == nil {
		return entity.Pair{}, false
	}
	p := *s.DrillDown
	if !s.Contains(p.From) || !s.Contains(p.To) {
		return entity.Pair{}, false
	}
	return p, true
}

func (s State) clone() State {
	out := State{
		SelectedSDKs: slices.Clone(s.SelectedSDKs),
		DisplayMode:  s.DisplayMode,
	}
	if out.SelectedSDKs == nil {
		out.SelectedSDKs = []entity.SdkID{}
	}
	if s.DrillDown != nil {
		dd := *s.DrillDown
		out.DrillDown = &dd
	}
	return out
}
