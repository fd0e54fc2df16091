package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	slotAllocated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "parklot",
			Name:      "slot_allocated_total",
			Help:      "Count of slot allocations by tenant category.",
		},
		[]string{"category"},
	)

	slotReleased = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "parklot",
			Name:      "slot_released_total",
			Help:      "Count of slot releases.",
		},
	)

	revenueCollected = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "parklot",
			Name:      "revenue_collected_total",
			Help:      "Total fees collected, in currency units.",
		},
	)

	occupiedSlots = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "parklot",
			Name:      "occupied_slots",
			Help:      "Current number of occupied slots.",
		},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(slotAllocated, slotReleased, revenueCollected, occupiedSlots)
	})
}

func IncSlotAllocated(category string) {
	slotAllocated.WithLabelValues(category).Inc()
}

func IncSlotReleased() {
	slotReleased.Inc()
}

func AddRevenue(amount float64) {
	if amount > 0 {
		revenueCollected.Add(amount)
	}
}

func SetOccupiedSlots(n int) {
	occupiedSlots.Set(float64(n))
}
