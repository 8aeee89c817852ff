package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	sessionsStarted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "interview_sessions_started_total",
		Help: "Interview sessions created",
	})

	sessionsCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "interview_sessions_completed_total",
		Help: "Interview sessions finished and persisted",
	})

	sessionsArchived = promauto.NewCounter(prometheus.CounterOpts{
		Name: "interview_sessions_archived_total",
		Help: "Interview sessions archived by the retention sweep",
	})

	recordingEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "interview_recording_events_total",
		Help: "Recording pipeline events by status",
	}, []string{"status"})

	agentConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "interview_agent_connections",
		Help: "Currently connected conversation drivers",
	})

	agentCommands = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "interview_agent_commands_total",
		Help: "Agent gateway commands by type",
	}, []string{"command"})
)
