package domain

import "math"

// RadiusScale maps node weight to a draw radius. The mapping is logarithmic,
// monotonically non-decreasing in weight, and clamped to [Min, Max]: weight 0
// yields Min and any weight at or above CapWeight yields Max.
type RadiusScale struct {
	Min       float64 `json:"min" yaml:"min"`
	Max       float64 `json:"max" yaml:"max"`
	CapWeight float64 `json:"cap_weight" yaml:"cap_weight"`
}

// DefaultRadiusScale returns the standard radius mapping
func DefaultRadiusScale() RadiusScale {
	return RadiusScale{Min: 4, Max: 24, CapWeight: 1000}
}

// Radius returns the draw radius for a node weight
func (s RadiusScale) Radius(weight float64) float64 {
	if weight <= 0 {
		return s.Min
	}
	if weight >= s.CapWeight {
		return s.Max
	}
	t := math.Log10(weight+1) / math.Log10(s.CapWeight+1)
	return clampf(s.Min+(s.Max-s.Min)*t, s.Min, s.Max)
}

// statusPalette is the fixed status-to-fill-color mapping
var statusPalette = map[Status]string{
	StatusOptimized:       "#2ecc71",
	StatusOpportunity:     "#f39c12",
	StatusUnderperforming: "#e67e22",
	StatusMissing:         "#e74c3c",
	StatusExcluded:        "#7f8c8d",
	StatusUnknown:         "#95a5a6",
}

// Color returns the fill color for a status category
func (s Status) Color() string {
	if c, ok := statusPalette[s]; ok {
		return c
	}
	return statusPalette[StatusUnknown]
}
