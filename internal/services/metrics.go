package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	notificationsDelivered = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "framewise_notifications_delivered_total",
		Help: "Notifications handed to the delivery channel, by kind.",
	}, []string{"kind"})

	reminderRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "framewise_deadline_reminder_runs_total",
		Help: "Deadline reminder job runs, by outcome.",
	}, []string{"outcome"}) // ok, skipped, error

	suggestionsServed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "framewise_ai_suggestions_total",
		Help: "Suggestion requests answered, by provider and category.",
	}, []string{"provider", "category"})
)
