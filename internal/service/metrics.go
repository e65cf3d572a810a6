package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// 业务指标
var (
	planCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "picwall_plan_cache_lookups_total",
		Help: "Plan cache lookups by result (hit or miss).",
	}, []string{"result"})

	draftsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "picwall_drafts_created_total",
		Help: "Drafts created.",
	})

	limitRejectionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "picwall_limit_rejections_total",
		Help: "Requests rejected by plan limits.",
	}, []string{"resource"})

	sharesCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "picwall_shares_created_total",
		Help: "User-to-user shares created.",
	})

	uploadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "picwall_uploads_total",
		Help: "Image uploads by result (stored or deduplicated).",
	}, []string{"result"})

	moderationActionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "picwall_moderation_actions_total",
		Help: "Moderation actions applied, by resolution and outcome.",
	}, []string{"resolution", "outcome"})
)
