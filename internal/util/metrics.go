package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PaymentsInitiatedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "payments_initiated_total",
		Help: "Total number of payments initiated",
	}, []string{"payment_type"})

	PaymentsCompletedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "payments_completed_total",
		Help: "Total number of payments completed via webhook",
	}, []string{"payment_type"})

	PaymentsFailedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "payments_failed_total",
		Help: "Total number of payments reported failed by the processor",
	})

	WebhookDuplicatesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "payment_webhook_duplicates_total",
		Help: "Total number of duplicate webhook deliveries ignored",
	})

	TierUpgradesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tier_upgrades_total",
		Help: "Total number of tier changes applied from completed payments",
	}, []string{"tier"})

	AdvertsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "adverts_created_total",
		Help: "Total number of adverts created",
	})

	AdvertsDeletedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "adverts_deleted_total",
		Help: "Total number of adverts deleted",
	})

	AdvertsRejectedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "adverts_rejected_total",
		Help: "Total number of advert creations rejected",
	}, []string{"reason"})

	ProductsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "products_created_total",
		Help: "Total number of products created",
	})

	ProductsRejectedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "products_rejected_total",
		Help: "Total number of product creations rejected",
	}, []string{"reason"})

	WebhookProcessingLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "payment_webhook_latency_seconds",
		Help:    "Latency of payment webhook processing",
		Buckets: prometheus.DefBuckets,
	})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
