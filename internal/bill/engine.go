package bill

import (
	"errors"
	"strconv"
	"strings"

	"github.com/noah-isme/backend-splitbill/internal/common"
)

var (
	// ErrNoItems is returned when allocation is requested on an empty ledger.
	ErrNoItems = errors.New("bill: no items to allocate")
	// ErrItemIncomplete indicates at least one item is missing a name or a positive price.
	ErrItemIncomplete = errors.New("bill: every item needs a name and a positive price")
	// ErrFinalPriceRequired indicates the final paid amount is missing or not positive.
	ErrFinalPriceRequired = errors.New("bill: final price must be greater than zero")
	// ErrItemNotFound is returned when the referenced row does not exist.
	ErrItemNotFound = errors.New("bill: item not found")
	// ErrUnknownField is returned for fields UpdateItem does not accept.
	ErrUnknownField = errors.New("bill: unknown item field")
)

// Allocate distributes the gap between the sum of original prices and the
// final paid amount proportionally across the items: each item keeps its
// share of the original total. Discount is stored as text formatted to two
// decimals so it re-displays exactly as computed; the rounded price follows
// the ledger policy. The returned slice fully replaces the per-item discount
// state, so manual discounts entered before an allocation are discarded.
func Allocate(items []Item, finalPrice string, policy Policy) ([]Item, error) {
	if len(items) == 0 {
		return nil, ErrNoItems
	}
	var total float64
	for i := range items {
		if strings.TrimSpace(items[i].Name) == "" {
			return nil, ErrItemIncomplete
		}
		price := common.ParseFloatDefault(items[i].Price, 0)
		if price <= 0 {
			return nil, ErrItemIncomplete
		}
		total += price
	}
	final := common.ParseFloatDefault(finalPrice, 0)
	if final <= 0 {
		return nil, ErrFinalPriceRequired
	}
	if total <= 0 {
		// Unreachable given the per-item check above, kept so a zero total
		// can never reach the division.
		return nil, ErrItemIncomplete
	}

	ratio := final / total
	out := make([]Item, len(items))
	for i, item := range items {
		price := common.ParseFloatDefault(item.Price, 0)
		proportional := price * ratio
		item.Discount = strconv.FormatFloat(price-proportional, 'f', 2, 64)
		item.DiscountedPrice = proportional
		item.RoundedPrice = policy.Round(proportional)
		out[i] = item
	}
	return out, nil
}
