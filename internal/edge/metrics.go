package edge

import (
	"github.com/Sternrassler/portal-edge/pkg/routeaccess"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	sourceInterceptor = "interceptor"
	sourceGuard       = "guard"
)

var (
	routeDecisionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "portal_route_decisions_total",
		Help: "Route access decisions by call site and outcome",
	}, []string{"source", "outcome"})

	membershipChecksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "portal_membership_checks_total",
		Help: "Membership lookups by result (cookie, api, error)",
	}, []string{"result"})
)

func recordDecision(source string, d routeaccess.Decision) {
	outcome := "allow"
	if !d.Allowed() {
		outcome = "redirect"
	}
	routeDecisionsTotal.WithLabelValues(source, outcome).Inc()
}
