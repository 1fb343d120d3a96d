package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CrossTenantRejections counts attempts to reach another tenant's rows.
	// Each one is a security-relevant event, not just a bug.
	CrossTenantRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "plotline",
		Subsystem: "tenancy",
		Name:      "cross_tenant_rejections_total",
		Help:      "Rejected cross-tenant access attempts.",
	}, []string{"operation"})

	SubscriptionDenials = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "plotline",
		Subsystem: "billing",
		Name:      "subscription_denials_total",
		Help:      "Requests denied by subscription state.",
	}, []string{"status"})

	SequenceAllocations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "plotline",
		Subsystem: "sequence",
		Name:      "allocations_total",
		Help:      "Per-tenant sequence numbers issued.",
	}, []string{"kind"})

	SequenceRetries = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "plotline",
		Subsystem: "sequence",
		Name:      "allocation_retries_total",
		Help:      "Sequence allocations retried after contention.",
	})
)
