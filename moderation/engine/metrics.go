package engine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var flagCreatedCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "modflag_flags_created",
	Help: "Number of moderation flags persisted",
}, []string{"tier", "source"})

var flagCreateSkippedCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "modflag_flag_creates_skipped",
	Help: "Number of flag creation calls which did not persist a flag",
}, []string{"reason"})

var flagActionCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "modflag_flag_actions",
	Help: "Number of successful reviewer actions on flags",
}, []string{"action"})

var flagActionRejectedCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "modflag_flag_actions_rejected",
	Help: "Number of reviewer actions rejected before applying",
}, []string{"action", "reason"})

var exportCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "modflag_exports",
	Help: "Number of completed flag exports",
}, []string{"format", "dsar"})
