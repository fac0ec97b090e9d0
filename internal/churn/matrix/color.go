package matrix

import (
	"fmt"
	"math"
	"strconv"

	"sdkchurn/internal/churn/state"
)

const (
	// EmptyIntensity keeps zero cells a faint pink instead of the page white.
	EmptyIntensity = 251.0
	// intensityCeiling is the proportion that maps to full saturation.
	intensityCeiling = 0.95
	textThreshold    = 127.0
)

// Intensity maps a proportion to the green/blue channel value in [0, 251].
func Intensity(normal float64) float64 {
	if normal == 0 || math.IsNaN(normal) {
		return EmptyIntensity
	}
	v := (intensityCeiling - normal) * 255
	switch {
	case v < 0:
		return 0
	case v > EmptyIntensity:
		return EmptyIntensity
	}
	return v
}

type RGB struct {
	R float64 `json:"r"`
	G float64 `json:"g"`
	B float64 `json:"b"`
}

// CellColor is red-scaled for raw counts. The proportion view reverses the
// channel order so the two modes are told apart at a glance.
func CellColor(intensity float64, mode state.DisplayMode) RGB {
	if mode == state.Normalized {
		return RGB{R: intensity, G: intensity, B: 255}
	}
	return RGB{R: 255, G: intensity, B: intensity}
}

func (c RGB) CSS() string {
	return fmt.Sprintf("rgb(%s, %s, %s)", channel(c.R), channel(c.G), channel(c.B))
}

func channel(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func TextColor(intensity float64) string {
	if intensity < textThreshold {
		return "white"
	}
	return "black"
}
