package bill

import (
	"math"

	"github.com/google/uuid"

	"github.com/noah-isme/backend-splitbill/internal/common"
)

// Item is a single line on the bill. Price and Discount keep the raw text the
// user typed; DiscountedPrice and RoundedPrice are derived from them (or from
// the allocation ratio) and are recomputed on every edit, never set directly.
type Item struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Price           string  `json:"price"`
	Discount        string  `json:"discount"`
	DiscountedPrice float64 `json:"discountedPrice"`
	RoundedPrice    int64   `json:"roundedPrice"`
}

// User-editable item fields accepted by UpdateItem.
const (
	FieldName     = "name"
	FieldPrice    = "price"
	FieldDiscount = "discount"
)

// Ledger holds the ordered item collection together with the derived
// aggregate view. Every mutation ends with a synchronous recompute of the
// aggregate, so readers always observe totals consistent with the items.
type Ledger struct {
	Items              []Item  `json:"items"`
	FinalPrice         string  `json:"finalPrice"`
	TotalPrice         float64 `json:"totalPrice"`
	DiscountPercentage float64 `json:"discountPercentage"`
	Policy             Policy  `json:"policy"`
}

// NewLedger constructs an empty ledger using the provided rounding policy.
func NewLedger(policy Policy) *Ledger {
	if policy.Denomination <= 0 {
		policy = DefaultPolicy()
	}
	return &Ledger{Items: []Item{}, Policy: policy}
}

// AddItem appends a fresh empty row and returns it.
func (l *Ledger) AddItem() Item {
	item := Item{ID: uuid.NewString()}
	l.Items = append(l.Items, item)
	l.recomputeTotals()
	return item
}

// RemoveItem deletes the row with the given id and reports whether anything
// changed. Deleting the sole remaining row is a silent no-op: a bill keeps at
// least one row once started.
func (l *Ledger) RemoveItem(id string) bool {
	if len(l.Items) <= 1 {
		return false
	}
	idx := l.indexOf(id)
	if idx < 0 {
		return false
	}
	l.Items = append(l.Items[:idx], l.Items[idx+1:]...)
	l.recomputeTotals()
	return true
}

// UpdateItem sets one user-editable field on the row with the given id.
// Editing price or discount immediately rederives the discounted price using
// the manual-subtraction rule and re-rounds it, keeping both derived fields
// in sync with their inputs.
func (l *Ledger) UpdateItem(id, field, value string) error {
	idx := l.indexOf(id)
	if idx < 0 {
		return ErrItemNotFound
	}
	item := &l.Items[idx]
	switch field {
	case FieldName:
		item.Name = value
	case FieldPrice:
		item.Price = value
	case FieldDiscount:
		item.Discount = value
	default:
		return ErrUnknownField
	}
	if field == FieldPrice || field == FieldDiscount {
		price := math.Max(common.ParseFloatDefault(item.Price, 0), 0)
		discount := math.Max(common.ParseFloatDefault(item.Discount, 0), 0)
		item.DiscountedPrice = price - discount
		item.RoundedPrice = l.Policy.Round(item.DiscountedPrice)
	}
	l.recomputeTotals()
	return nil
}

// SetFinalPrice records the amount actually paid for the whole bill.
func (l *Ledger) SetFinalPrice(value string) {
	l.FinalPrice = value
	l.recomputeTotals()
}

// Allocate redistributes the bill-level discount proportionally across the
// items and overwrites their discount, discounted and rounded prices.
func (l *Ledger) Allocate() error {
	items, err := Allocate(l.Items, l.FinalPrice, l.Policy)
	if err != nil {
		return err
	}
	l.Items = items
	l.recomputeTotals()
	return nil
}

func (l *Ledger) indexOf(id string) int {
	for i := range l.Items {
		if l.Items[i].ID == id {
			return i
		}
	}
	return -1
}

// recomputeTotals rederives the aggregate view from the current items and
// final price. The percentage is defined as 0 whenever either the original
// total or the final price is missing, so no division can ever run on zero.
func (l *Ledger) recomputeTotals() {
	var total float64
	for i := range l.Items {
		total += common.ParseFloatDefault(l.Items[i].Price, 0)
	}
	l.TotalPrice = total

	final := common.ParseFloatDefault(l.FinalPrice, 0)
	if total > 0 && final > 0 {
		l.DiscountPercentage = round2((total - final) / total * 100)
	} else {
		l.DiscountPercentage = 0
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
