package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"google.golang.org/grpc/codes"
)

var (
	compatibilityResolutionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "compatibility_resolutions_total",
			Help:      "Compatibility resolutions by depth (direct, inverse, both, merged)",
		},
		[]string{"depth"},
	)

	grpcRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "grpc_requests_total",
			Help:      "Total number of gRPC requests",
		},
		[]string{"method", "code"},
	)
)

func init() {
	prometheus.MustRegister(compatibilityResolutionsTotal, grpcRequestsTotal)
}

// Resolutions counts compatibility resolutions; the zero value is ready to use.
type Resolutions struct{}

func (Resolutions) ObserveResolution(depth string) {
	compatibilityResolutionsTotal.WithLabelValues(depth).Inc()
}

// ObserveGRPC counts a finished unary call.
func ObserveGRPC(fullMethod string, code codes.Code) {
	grpcRequestsTotal.WithLabelValues(fullMethod, code.String()).Inc()
}
