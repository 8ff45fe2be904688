package export_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-splitbill/internal/export"
)

func TestFormatRupiah(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{0, "Rp 0"},
		{999, "Rp 999"},
		{1000, "Rp 1.000"},
		{80000, "Rp 80.000"},
		{1234567, "Rp 1.234.567"},
		{1499.6, "Rp 1.500"},
		{-20000, "-Rp 20.000"},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, export.FormatRupiah(tc.in), "amount %v", tc.in)
	}
}

func TestFormatPercent(t *testing.T) {
	require.Equal(t, "20.00%", export.FormatPercent(20))
	require.Equal(t, "-10.50%", export.FormatPercent(-10.5))
}

func TestHTMLRendersSnapshot(t *testing.T) {
	page, err := export.HTML(export.Snapshot{
		Lines: []export.Line{
			{Name: "Nasi Goreng", Price: 100000, Discount: 20000, DiscountedPrice: 80000, RoundedPrice: 80000},
			{Name: "Es Teh", Price: 50000, Discount: 10000, DiscountedPrice: 40000, RoundedPrice: 40000},
		},
		TotalPrice:         150000,
		FinalPrice:         120000,
		DiscountPercentage: 20,
	})
	require.NoError(t, err)

	html := string(page)
	require.Contains(t, html, "Nasi Goreng")
	require.Contains(t, html, "Rp 80.000")
	require.Contains(t, html, "Rp 120.000")
	require.Contains(t, html, "20.00%")
}

func TestHTMLEscapesItemNames(t *testing.T) {
	page, err := export.HTML(export.Snapshot{
		Lines: []export.Line{{Name: "<script>alert(1)</script>", Price: 1000}},
	})
	require.NoError(t, err)
	require.NotContains(t, string(page), "<script>alert(1)</script>")
}
