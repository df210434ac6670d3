package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "storefront"

// Storefront records cart, catalog and checkout activity.
type Storefront struct {
	cartMutations  *prometheus.CounterVec
	slotFailures   *prometheus.CounterVec
	catalogFetch   *prometheus.HistogramVec
	orderOutcomes  *prometheus.CounterVec
	activeShoppers prometheus.Gauge
}

// NewStorefront registers the storefront metrics on the provided registerer.
// A nil registerer yields a no-op recorder.
func NewStorefront(reg prometheus.Registerer) *Storefront {
	if reg == nil {
		return &Storefront{}
	}
	cartMutations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cart_mutations_total",
		Help:      "Cart mutations applied, by operation.",
	}, []string{"op"})
	slotFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cart_slot_failures_total",
		Help:      "Durable cart slot failures, by operation (read, decode, write).",
	}, []string{"op"})
	catalogFetch := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "catalog_fetch_duration_seconds",
		Help:      "Duration of remote catalog fetches in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"outcome"})
	orderOutcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "order_submissions_total",
		Help:      "Order submissions, by outcome.",
	}, []string{"outcome"})
	activeShoppers := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "shopper_sessions_active",
		Help:      "Shopper sessions currently held in memory.",
	})
	reg.MustRegister(cartMutations, slotFailures, catalogFetch, orderOutcomes, activeShoppers)
	return &Storefront{
		cartMutations:  cartMutations,
		slotFailures:   slotFailures,
		catalogFetch:   catalogFetch,
		orderOutcomes:  orderOutcomes,
		activeShoppers: activeShoppers,
	}
}

func (s *Storefront) IncCartMutation(op string) {
	if s == nil || s.cartMutations == nil {
		return
	}
	s.cartMutations.WithLabelValues(normalizeLabel(op)).Inc()
}

func (s *Storefront) IncSlotFailure(op string) {
	if s == nil || s.slotFailures == nil {
		return
	}
	s.slotFailures.WithLabelValues(normalizeLabel(op)).Inc()
}

// ObserveCatalogFetch records a fetch duration labelled success or failure.
func (s *Storefront) ObserveCatalogFetch(duration time.Duration, err error) {
	if s == nil || s.catalogFetch == nil {
		return
	}
	s.catalogFetch.WithLabelValues(outcome(err)).Observe(duration.Seconds())
}

// IncOrderOutcome counts an order submission; outcome is free-form (success, failure, empty_cart...).
func (s *Storefront) IncOrderOutcome(result string) {
	if s == nil || s.orderOutcomes == nil {
		return
	}
	s.orderOutcomes.WithLabelValues(normalizeLabel(result)).Inc()
}

func (s *Storefront) SetActiveShoppers(n int) {
	if s == nil || s.activeShoppers == nil {
		return
	}
	s.activeShoppers.Set(float64(n))
}

func outcome(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}

func normalizeLabel(label string) string {
	if label == "" {
		return "unknown"
	}
	return label
}
