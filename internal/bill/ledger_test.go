package bill_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-splitbill/internal/bill"
)

func TestUpdateItemDerivesDiscountedPrice(t *testing.T) {
	l := bill.NewLedger(bill.DefaultPolicy())
	item := l.AddItem()

	require.NoError(t, l.UpdateItem(item.ID, bill.FieldPrice, "10000"))
	require.NoError(t, l.UpdateItem(item.ID, bill.FieldDiscount, "2500"))

	got := l.Items[0]
	require.InDelta(t, 7500, got.DiscountedPrice, 1e-9)
	require.Equal(t, int64(8000), got.RoundedPrice)
}

func TestUpdateItemClampsNegativeInputs(t *testing.T) {
	l := bill.NewLedger(bill.DefaultPolicy())
	item := l.AddItem()

	require.NoError(t, l.UpdateItem(item.ID, bill.FieldPrice, "-5000"))
	require.NoError(t, l.UpdateItem(item.ID, bill.FieldDiscount, "1000"))

	require.InDelta(t, -1000, l.Items[0].DiscountedPrice, 1e-9)
}

func TestUpdateItemUnparseableValueDefaultsToZero(t *testing.T) {
	l := bill.NewLedger(bill.DefaultPolicy())
	item := l.AddItem()

	require.NoError(t, l.UpdateItem(item.ID, bill.FieldPrice, "abc"))

	require.Equal(t, "abc", l.Items[0].Price)
	require.InDelta(t, 0, l.Items[0].DiscountedPrice, 1e-9)
	require.InDelta(t, 0, l.TotalPrice, 1e-9)
}

func TestUpdateItemErrors(t *testing.T) {
	l := bill.NewLedger(bill.DefaultPolicy())
	item := l.AddItem()

	require.ErrorIs(t, l.UpdateItem("missing", bill.FieldName, "x"), bill.ErrItemNotFound)
	require.ErrorIs(t, l.UpdateItem(item.ID, "quantity", "2"), bill.ErrUnknownField)
}

func TestRemoveItemKeepsLastRow(t *testing.T) {
	l := bill.NewLedger(bill.DefaultPolicy())
	only := l.AddItem()

	require.False(t, l.RemoveItem(only.ID))
	require.Len(t, l.Items, 1)

	second := l.AddItem()
	require.True(t, l.RemoveItem(second.ID))
	require.Len(t, l.Items, 1)
	require.Equal(t, only.ID, l.Items[0].ID)
}

func TestAggregateDiscountPercentage(t *testing.T) {
	l := bill.NewLedger(bill.DefaultPolicy())
	a := l.AddItem()
	b := l.AddItem()
	require.NoError(t, l.UpdateItem(a.ID, bill.FieldPrice, "100000"))
	require.NoError(t, l.UpdateItem(b.ID, bill.FieldPrice, "50000"))

	l.SetFinalPrice("120000")

	require.InDelta(t, 150000, l.TotalPrice, 1e-9)
	require.InDelta(t, 20, l.DiscountPercentage, 1e-9)
}

func TestAggregateZeroGuard(t *testing.T) {
	l := bill.NewLedger(bill.DefaultPolicy())
	l.AddItem()

	l.SetFinalPrice("120000")
	require.InDelta(t, 0, l.DiscountPercentage, 1e-9)

	l.SetFinalPrice("")
	require.InDelta(t, 0, l.DiscountPercentage, 1e-9)
}

func TestAggregateNegativePercentageWhenOverpaid(t *testing.T) {
	l := bill.NewLedger(bill.DefaultPolicy())
	item := l.AddItem()
	require.NoError(t, l.UpdateItem(item.ID, bill.FieldPrice, "100000"))

	l.SetFinalPrice("110000")

	require.InDelta(t, -10, l.DiscountPercentage, 1e-9)
}
