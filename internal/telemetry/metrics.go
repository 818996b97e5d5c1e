/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler exposes the Prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

var (
	// APIRequestDuration tracks HTTP handler latency per route.
	APIRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "portkiosk",
		Subsystem: "api",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency by method, route and status code.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "status"})

	// APIRequestsTotal counts HTTP requests per route.
	APIRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "portkiosk",
		Subsystem: "api",
		Name:      "requests_total",
		Help:      "HTTP requests by method, route and status code.",
	}, []string{"method", "route", "status"})

	// APIActiveConnections gauges in-flight HTTP requests.
	APIActiveConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "portkiosk",
		Subsystem: "api",
		Name:      "active_connections",
		Help:      "HTTP requests currently being served.",
	})

	// DBQueryDuration tracks database operation latency.
	DBQueryDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "portkiosk",
		Subsystem: "db",
		Name:      "query_duration_seconds",
		Help:      "Database operation latency by operation and table.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// DBQueriesTotal counts database operations.
	DBQueriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "portkiosk",
		Subsystem: "db",
		Name:      "queries_total",
		Help:      "Database operations by operation, table and result.",
	}, []string{"operation", "table", "status"})

	// ImpressionsRecorded counts ad impressions accepted from kiosks.
	ImpressionsRecorded = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "portkiosk",
		Subsystem: "ads",
		Name:      "impressions_recorded_total",
		Help:      "Ad impressions recorded by kiosk.",
	}, []string{"kiosk"})

	// PlaylistsComposed counts kiosk playlist compositions.
	PlaylistsComposed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "portkiosk",
		Subsystem: "ads",
		Name:      "playlists_composed_total",
		Help:      "Kiosk playlists composed with ad insertion.",
	})

	// EligibleCampaigns gauges campaigns passing eligibility at last compose.
	EligibleCampaigns = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "portkiosk",
		Subsystem: "ads",
		Name:      "eligible_campaigns",
		Help:      "Campaigns eligible at the most recent playlist composition.",
	})

	// LeaderStatus reports whether this instance holds the sweeper lease.
	LeaderStatus = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "portkiosk",
		Name:      "leader_status",
		Help:      "1 when this instance is the elected sweeper leader.",
	}, []string{"instance"})

	// WebhookDeliveries counts outbound webhook deliveries by result.
	WebhookDeliveries = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "portkiosk",
		Name:      "webhook_deliveries_total",
		Help:      "Webhook delivery attempts by result.",
	}, []string{"result"})
)
