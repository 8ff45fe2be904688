package bill

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/noah-isme/backend-splitbill/internal/common"
)

// Record is the persisted shape of a computed bill.
type Record struct {
	TotalPrice         float64      `json:"totalPrice"`
	FinalPrice         float64      `json:"finalPrice"`
	DiscountPercentage float64      `json:"discountPercentage"`
	Items              []ItemRecord `json:"items"`
}

// ItemRecord is one persisted bill line.
type ItemRecord struct {
	Name            string  `json:"name"`
	Price           float64 `json:"price"`
	Discount        float64 `json:"discount"`
	DiscountedPrice float64 `json:"discountedPrice"`
	RoundedPrice    int64   `json:"roundedPrice"`
}

// RecordFromLedger converts an allocated ledger into its persisted form.
func RecordFromLedger(l *Ledger) Record {
	items := make([]ItemRecord, len(l.Items))
	for i, item := range l.Items {
		items[i] = ItemRecord{
			Name:            item.Name,
			Price:           common.ParseFloatDefault(item.Price, 0),
			Discount:        common.ParseFloatDefault(item.Discount, 0),
			DiscountedPrice: item.DiscountedPrice,
			RoundedPrice:    item.RoundedPrice,
		}
	}
	return Record{
		TotalPrice:         l.TotalPrice,
		FinalPrice:         common.ParseFloatDefault(l.FinalPrice, 0),
		DiscountPercentage: l.DiscountPercentage,
		Items:              items,
	}
}

// Saver persists a computed bill and returns its identifier.
type Saver interface {
	Save(ctx context.Context, rec Record) (uuid.UUID, error)
}

// Store writes bills to PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore constructs a Store on the given pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Save writes the bill header and then bulk-inserts its items keyed by the
// returned bill id. The two steps deliberately do not share a transaction:
// when the item insert fails the already-created bill row stays behind and
// the failure is surfaced to the caller instead of compensated.
func (s *Store) Save(ctx context.Context, rec Record) (uuid.UUID, error) {
	var billID uuid.UUID
	err := s.pool.QueryRow(ctx, `
		INSERT INTO bills (total_price, final_price, discount_percentage)
		VALUES ($1, $2, $3)
		RETURNING id
	`, rec.TotalPrice, rec.FinalPrice, rec.DiscountPercentage).Scan(&billID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert bill: %w", err)
	}

	batch := &pgx.Batch{}
	for _, item := range rec.Items {
		batch.Queue(`
			INSERT INTO bill_items (bill_id, name, price, discount, discounted_price, rounded_price)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, billID, item.Name, item.Price, item.Discount, item.DiscountedPrice, item.RoundedPrice)
	}
	results := s.pool.SendBatch(ctx, batch)
	defer func() { _ = results.Close() }()
	for range rec.Items {
		if _, err := results.Exec(); err != nil {
			return billID, fmt.Errorf("insert bill items: %w", err)
		}
	}
	return billID, nil
}
