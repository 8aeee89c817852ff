package services

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/intervox-ai/backend/models"
	"github.com/intervox-ai/backend/repository"
)

type WebhookEndpoints struct {
	store *repository.SessionStore
}

func NewWebhookEndpoints(store *repository.SessionStore) *WebhookEndpoints {
	return &WebhookEndpoints{store: store}
}

// EgressEvent is the recording pipeline's progress notification. The event
// field carries one of started, updated, completed or failed.
type EgressEvent struct {
	Event           string `json:"event"`
	EgressID        string `json:"egress_id"`
	InterviewID     string `json:"interview_id"`
	RoomName        string `json:"room_name"`
	FileURL         string `json:"file_url,omitempty"`
	FileSize        int64  `json:"file_size,omitempty"`
	DurationSeconds int    `json:"duration_seconds,omitempty"`
}

type TranscriptEvent struct {
	InterviewID string  `json:"interview_id"`
	URL         string  `json:"url"`
	WordCount   int     `json:"word_count"`
	CharCount   int     `json:"char_count"`
	Confidence  float64 `json:"confidence"`
}

func (e *WebhookEndpoints) RegisterRoutes(r chi.Router) {
	r.Route("/webhooks", func(r chi.Router) {
		r.Post("/egress", e.EgressWebhookHandler)
		r.Post("/transcript", e.TranscriptWebhookHandler)
	})
}

// EgressWebhookHandler ingests recording pipeline events. Events for unknown
// egress runs and repeats of terminal events are acknowledged without effect
// so the pipeline can deliver at-least-once.
func (e *WebhookEndpoints) EgressWebhookHandler(w http.ResponseWriter, r *http.Request) {
	var event EgressEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		http.Error(w, "Invalid webhook payload", http.StatusBadRequest)
		return
	}
	if event.EgressID == "" {
		http.Error(w, "Egress ID is required", http.StatusBadRequest)
		return
	}

	recordingEvents.WithLabelValues(event.Event).Inc()

	switch event.Event {
	case "started":
		if event.InterviewID == "" {
			http.Error(w, "Interview ID is required for started events", http.StatusBadRequest)
			return
		}
		recordingID, err := e.store.CreateRecordingEntry(r.Context(), event.InterviewID, event.EgressID, event.RoomName)
		if err != nil {
			slog.Error("Failed to open recording for egress", "error", err, "egress_id", event.EgressID, "interview_id", event.InterviewID)
			http.Error(w, "Failed to open recording", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"recording_id": recordingID,
			"message":      "Recording started",
		})

	case "updated", "completed", "failed":
		recording, err := e.store.GetRecordingByEgress(r.Context(), event.EgressID)
		if err != nil {
			http.Error(w, "Failed to look up recording", http.StatusInternalServerError)
			return
		}
		if recording == nil {
			slog.Warn("Egress event for unknown recording", "egress_id", event.EgressID, "event", event.Event)
			w.WriteHeader(http.StatusOK)
			return
		}

		status := models.RecordingStatusRecording
		switch event.Event {
		case "completed":
			status = models.RecordingStatusCompleted
		case "failed":
			status = models.RecordingStatusFailed
		}

		updated, err := e.store.UpdateRecordingStatus(r.Context(), recording.RecordingID, status, event.FileURL, event.FileSize, event.DurationSeconds)
		if err != nil {
			http.Error(w, "Failed to update recording", http.StatusInternalServerError)
			return
		}
		if !updated {
			slog.Info("Egress event ignored for finalized recording", "recording_id", recording.RecordingID, "event", event.Event)
		}
		w.WriteHeader(http.StatusOK)

	default:
		slog.Warn("Unknown egress event", "event", event.Event, "egress_id", event.EgressID)
		http.Error(w, "Unknown event", http.StatusBadRequest)
	}
}

// TranscriptWebhookHandler ingests the transcription pipeline's completion
// notification.
func (e *WebhookEndpoints) TranscriptWebhookHandler(w http.ResponseWriter, r *http.Request) {
	var event TranscriptEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		http.Error(w, "Invalid webhook payload", http.StatusBadRequest)
		return
	}
	if event.InterviewID == "" || event.URL == "" {
		http.Error(w, "Interview ID and URL are required", http.StatusBadRequest)
		return
	}

	transcriptID, err := e.store.CreateTranscriptEntry(r.Context(), event.InterviewID, event.URL, event.WordCount, event.CharCount, event.Confidence)
	if err != nil {
		slog.Error("Failed to record transcript", "error", err, "interview_id", event.InterviewID)
		http.Error(w, "Failed to record transcript", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"transcript_id": transcriptID,
		"message":       "Transcript recorded",
	})
}
