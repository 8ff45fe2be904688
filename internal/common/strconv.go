package common

import "strconv"

// ParseFloatDefault converts the provided string to a float64 falling back to the default when parsing fails.
// Free-text numeric inputs rely on this contract: empty or malformed entries behave as the default value.
func ParseFloatDefault(value string, def float64) float64 {
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return def
	}
	return parsed
}
