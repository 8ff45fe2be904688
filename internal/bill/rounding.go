package bill

import (
	"fmt"
	"math"
	"strings"
)

// RoundingMode selects how a discounted price is snapped onto the denomination grid.
type RoundingMode string

const (
	// RoundNearest rounds half away from zero to the nearest denomination multiple.
	RoundNearest RoundingMode = "nearest"
	// RoundUp always rounds up to the next denomination multiple.
	RoundUp RoundingMode = "up"
)

// Policy is the single rounding rule in force for a ledger. The same policy
// applies to manual edits and to allocation so the two computation paths can
// never disagree on a rounded figure.
type Policy struct {
	Denomination int64        `json:"denomination"`
	Mode         RoundingMode `json:"mode"`
}

// DefaultPolicy rounds half away from zero to the nearest 1000, the rupiah
// convention used when redistributing a negotiated discount.
func DefaultPolicy() Policy {
	return Policy{Denomination: 1000, Mode: RoundNearest}
}

// ParsePolicy builds a Policy from configuration values.
func ParsePolicy(denomination int64, mode string) (Policy, error) {
	if denomination <= 0 {
		return Policy{}, fmt.Errorf("bill: denomination must be positive, got %d", denomination)
	}
	switch RoundingMode(strings.ToLower(strings.TrimSpace(mode))) {
	case RoundNearest, "":
		return Policy{Denomination: denomination, Mode: RoundNearest}, nil
	case RoundUp:
		return Policy{Denomination: denomination, Mode: RoundUp}, nil
	default:
		return Policy{}, fmt.Errorf("bill: unknown rounding mode %q", mode)
	}
}

// Round snaps the value onto the denomination grid according to the mode.
func (p Policy) Round(value float64) int64 {
	denom := p.Denomination
	if denom <= 0 {
		denom = 1000
	}
	units := value / float64(denom)
	if p.Mode == RoundUp {
		return int64(math.Ceil(units)) * denom
	}
	return int64(math.Round(units)) * denom
}
