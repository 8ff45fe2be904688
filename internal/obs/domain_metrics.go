package obs

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// AllocationsTotal counts allocation attempts by outcome.
	AllocationsTotal *prometheus.CounterVec
	// BillSavesTotal counts persistence outcomes for computed bills.
	BillSavesTotal *prometheus.CounterVec
	// ExportsTotal counts export renders by format.
	ExportsTotal *prometheus.CounterVec
	// LedgerItemsPerBill observes the item count of each allocated bill.
	LedgerItemsPerBill prometheus.Histogram
)

// MustRegisterDomainMetrics initialises and registers domain-specific Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		AllocationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "allocations_total",
			Help:      "Count of discount allocation attempts by outcome.",
		}, []string{"result"})
		BillSavesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bill_saves_total",
			Help:      "Count of bill persistence outcomes.",
		}, []string{"result"})
		ExportsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "exports_total",
			Help:      "Count of rendered bill exports by format.",
		}, []string{"format"})
		LedgerItemsPerBill = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "ledger_items_per_bill",
			Help:      "Distribution of item counts on allocated bills.",
			Buckets:   []float64{1, 2, 3, 5, 8, 13, 21, 34},
		})

		mustRegisterCollector(reg, AllocationsTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				AllocationsTotal = v
			}
		})
		mustRegisterCollector(reg, BillSavesTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				BillSavesTotal = v
			}
		})
		mustRegisterCollector(reg, ExportsTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				ExportsTotal = v
			}
		})
		mustRegisterCollector(reg, LedgerItemsPerBill, func(existing prometheus.Collector) {
			if v, ok := existing.(prometheus.Histogram); ok {
				LedgerItemsPerBill = v
			}
		})
	})
}

func mustRegisterCollector(reg prometheus.Registerer, collector prometheus.Collector, reuse func(prometheus.Collector)) {
	if err := reg.Register(collector); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if reuse != nil {
				reuse(are.ExistingCollector)
			}
			return
		}
		panic(fmt.Errorf("register domain metric: %w", err))
	}
}
