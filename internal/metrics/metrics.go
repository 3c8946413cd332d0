package metrics

import (
	"errors"
	"math/big"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/feral-file/ff-marketplace-ledger/internal/domain"
)

const namespace = "marketplace"

var (
	registerOnce sync.Once

	operationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "State-changing operations by result.",
		},
		[]string{"operation", "result"},
	)

	settlementsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "settlements_total",
			Help:      "Completed sales by sale type.",
		},
		[]string{"sale_type"},
	)

	settlementVolume = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "settlement_volume_wei",
			Help:      "Settled sale volume in the smallest currency unit (approximate).",
		},
		[]string{"sale_type"},
	)

	bidsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bids_total",
			Help:      "Bids by result.",
		},
		[]string{"result"},
	)

	payoutsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payouts_total",
			Help:      "Payout status transitions by kind.",
		},
		[]string{"kind", "status"},
	)

	httpInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "http_in_flight_requests",
		Help:      "In-flight HTTP requests.",
	})

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latencies in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
)

// Init registers the collectors with the default registry. Safe to call more than once.
func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			operationsTotal,
			settlementsTotal,
			settlementVolume,
			bidsTotal,
			payoutsTotal,
			httpInFlight,
			httpRequestDuration,
		)
	})
}

// Handler serves the default registry
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveOperation counts an operation outcome; err is reduced to its domain error code
func ObserveOperation(operation string, err error) {
	operationsTotal.WithLabelValues(operation, result(err)).Inc()
}

// ObserveSettlement counts a completed sale
func ObserveSettlement(saleType domain.SaleType, price *big.Int) {
	settlementsTotal.WithLabelValues(string(saleType)).Inc()
	if price != nil {
		v, _ := new(big.Float).SetInt(price).Float64()
		settlementVolume.WithLabelValues(string(saleType)).Add(v)
	}
}

// ObserveBid counts a bid attempt
func ObserveBid(err error) {
	bidsTotal.WithLabelValues(result(err)).Inc()
}

// ObservePayout counts a payout reaching status
func ObservePayout(kind domain.PayoutKind, status domain.PayoutStatus) {
	payoutsTotal.WithLabelValues(string(kind), string(status)).Inc()
}

// GinMiddleware records in-flight requests and latency per matched route
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		httpInFlight.Inc()
		start := time.Now()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		httpRequestDuration.
			WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
		httpInFlight.Dec()
	}
}

var resultErrors = []struct {
	err  error
	code string
}{
	{domain.ErrTokenNotFound, "token_not_found"},
	{domain.ErrNotOwner, "not_owner"},
	{domain.ErrInvalidPrice, "invalid_price"},
	{domain.ErrAlreadyListed, "already_listed"},
	{domain.ErrNotListed, "not_listed"},
	{domain.ErrAuctionAlreadyActive, "auction_already_active"},
	{domain.ErrNoActiveAuction, "no_active_auction"},
	{domain.ErrAuctionExpired, "auction_expired"},
	{domain.ErrAuctionNotExpired, "auction_not_expired"},
	{domain.ErrBidTooLow, "bid_too_low"},
	{domain.ErrBidderIsSeller, "bidder_is_seller"},
	{domain.ErrAuctionHasBids, "auction_has_bids"},
	{domain.ErrInsufficientPayment, "insufficient_payment"},
	{domain.ErrBuyerIsOwner, "buyer_is_owner"},
	{domain.ErrNothingToWithdraw, "nothing_to_withdraw"},
}

func result(err error) string {
	if err == nil {
		return "ok"
	}
	for _, r := range resultErrors {
		if errors.Is(err, r.err) {
			return r.code
		}
	}
	return "error"
}
