package bill_test

import (
	"errors"
	"math"
	"testing"

	"github.com/noah-isme/backend-splitbill/internal/bill"
)

func allocItems() []bill.Item {
	return []bill.Item{
		{ID: "a", Name: "Nasi Goreng", Price: "100000"},
		{ID: "b", Name: "Es Teh", Price: "50000"},
	}
}

func TestAllocateProportionalSplit(t *testing.T) {
	out, err := bill.Allocate(allocItems(), "120000", bill.DefaultPolicy())
	if err != nil {
		t.Fatalf("allocate: %v", err)
	}

	if got := out[0].DiscountedPrice; math.Abs(got-80000) > 1e-9 {
		t.Fatalf("item a discounted price = %v, want 80000", got)
	}
	if got := out[1].DiscountedPrice; math.Abs(got-40000) > 1e-9 {
		t.Fatalf("item b discounted price = %v, want 40000", got)
	}
	if out[0].Discount != "20000.00" || out[1].Discount != "10000.00" {
		t.Fatalf("discounts = %q, %q, want 20000.00, 10000.00", out[0].Discount, out[1].Discount)
	}
	if out[0].RoundedPrice != 80000 || out[1].RoundedPrice != 40000 {
		t.Fatalf("rounded prices = %d, %d, want 80000, 40000", out[0].RoundedPrice, out[1].RoundedPrice)
	}
}

func TestAllocateConservesFinalPrice(t *testing.T) {
	items := []bill.Item{
		{ID: "a", Name: "Sate", Price: "33333"},
		{ID: "b", Name: "Gado-Gado", Price: "27777"},
		{ID: "c", Name: "Jus Alpukat", Price: "19999"},
	}
	out, err := bill.Allocate(items, "70000", bill.DefaultPolicy())
	if err != nil {
		t.Fatalf("allocate: %v", err)
	}
	var sum float64
	for _, item := range out {
		sum += item.DiscountedPrice
	}
	if math.Abs(sum-70000) > 1e-9 {
		t.Fatalf("sum of discounted prices = %v, want 70000", sum)
	}
}

func TestAllocateIsIdempotent(t *testing.T) {
	first, err := bill.Allocate(allocItems(), "120000", bill.DefaultPolicy())
	if err != nil {
		t.Fatalf("first allocate: %v", err)
	}
	second, err := bill.Allocate(first, "120000", bill.DefaultPolicy())
	if err != nil {
		t.Fatalf("second allocate: %v", err)
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("item %d changed on re-allocation: %+v != %+v", i, first[i], second[i])
		}
	}
}

func TestAllocateOverwritesManualDiscounts(t *testing.T) {
	items := allocItems()
	items[0].Discount = "99999"
	out, err := bill.Allocate(items, "120000", bill.DefaultPolicy())
	if err != nil {
		t.Fatalf("allocate: %v", err)
	}
	if out[0].Discount != "20000.00" {
		t.Fatalf("manual discount survived allocation: %q", out[0].Discount)
	}
}

func TestAllocateValidation(t *testing.T) {
	cases := []struct {
		name  string
		items []bill.Item
		final string
		want  error
	}{
		{"no items", nil, "120000", bill.ErrNoItems},
		{"blank name", []bill.Item{{ID: "a", Name: "  ", Price: "1000"}}, "500", bill.ErrItemIncomplete},
		{"zero price", []bill.Item{{ID: "a", Name: "Bakso", Price: "0"}}, "500", bill.ErrItemIncomplete},
		{"unparseable price", []bill.Item{{ID: "a", Name: "Bakso", Price: "abc"}}, "500", bill.ErrItemIncomplete},
		{"missing final price", allocItems(), "", bill.ErrFinalPriceRequired},
		{"zero final price", allocItems(), "0", bill.ErrFinalPriceRequired},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := bill.Allocate(tc.items, tc.final, bill.DefaultPolicy()); !errors.Is(err, tc.want) {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestAllocateMarkupWhenFinalExceedsTotal(t *testing.T) {
	out, err := bill.Allocate(allocItems(), "180000", bill.DefaultPolicy())
	if err != nil {
		t.Fatalf("allocate: %v", err)
	}
	if got := out[0].DiscountedPrice; math.Abs(got-120000) > 1e-9 {
		t.Fatalf("item a discounted price = %v, want 120000", got)
	}
	if out[0].Discount != "-20000.00" {
		t.Fatalf("item a discount = %q, want -20000.00", out[0].Discount)
	}
}
