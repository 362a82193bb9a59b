package metrics

import (
	"fmt"
	"net/url"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"resty.dev/v3"
)

var (
	apiLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "postify_api_request_latency",
			Help:    "Histogram of API request latency in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10},
		},
		[]string{"method", "path", "status_code"},
	)

	Reactions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "postify_reactions_total",
		Help: "Like and dislike toggles by outcome.",
	}, []string{"reaction", "result"})

	Rollbacks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "postify_optimistic_rollbacks_total",
		Help: "Optimistic mutations restored after a failed server call.",
	}, []string{"store"})

	NotificationsReceived = promauto.NewCounter(prometheus.CounterOpts{
		Name: "postify_notifications_received_total",
		Help: "Notifications pushed over the realtime channel.",
	})

	RealtimeConnections = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "postify_realtime_connections_total",
		Help: "Realtime channel connection attempts by outcome.",
	}, []string{"result"})
)

// LatencyMiddleware records every API response in the latency histogram.
func LatencyMiddleware(_ *resty.Client, response *resty.Response) error {
	reqURL, err := url.Parse(response.Request.URL)
	if err != nil {
		return err
	}

	statusCode := response.StatusCode()
	apiLatency.WithLabelValues(
		response.Request.Method,
		reqURL.Path,
		fmt.Sprintf("%d", statusCode),
	).Observe(response.Duration().Seconds())

	return nil
}
