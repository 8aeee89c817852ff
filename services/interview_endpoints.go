package services

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/intervox-ai/backend/models"
	"github.com/intervox-ai/backend/repository"
)

// InterviewStore is the slice of the session store the HTTP API reads and
// writes through. repository.SessionStore satisfies it; tests substitute a
// fake.
type InterviewStore interface {
	CreateSession(ctx context.Context, candidateName, position string) (string, error)
	GetSession(ctx context.Context, interviewID string) (*models.InterviewSession, error)
	ListRecent(ctx context.Context, limit int, position string, includeRecordingInfo bool) ([]models.InterviewSession, error)
	GetAnalytics(ctx context.Context, position string) (*repository.AnalyticsReport, error)
	CleanupOld(ctx context.Context, daysOld int) (int64, error)
	GetStorageUsage(ctx context.Context) (*repository.StorageUsage, error)
}

type InterviewEndpoints struct {
	store       InterviewStore
	tokens      *TokenService
	rooms       RoomService
	objectStore ObjectStore
}

func NewInterviewEndpoints(store InterviewStore, tokens *TokenService, rooms RoomService, objectStore ObjectStore) *InterviewEndpoints {
	return &InterviewEndpoints{
		store:       store,
		tokens:      tokens,
		rooms:       rooms,
		objectStore: objectStore,
	}
}

type CreateTokenRequest struct {
	CandidateName string `json:"candidate_name" validate:"required"`
	Position      string `json:"position"`
}

type CreateTokenResponse struct {
	InterviewID string `json:"interview_id"`
	Token       string `json:"token"`
	RoomName    string `json:"room_name"`
	Identity    string `json:"identity"`
	Message     string `json:"message"`
}

type GetInterviewsResponse struct {
	Interviews []models.InterviewSession `json:"interviews"`
	Count      int                       `json:"count"`
}

type RecordingDownloadResponse struct {
	InterviewID   string `json:"interview_id"`
	RecordingURL  string `json:"recording_url"`
	TranscriptURL string `json:"transcript_url,omitempty"`
	ExpiresIn     string `json:"expires_in"`
}

func (e *InterviewEndpoints) RegisterRoutes(r chi.Router) {
	r.Route("/interviews", func(r chi.Router) {
		r.Post("/token", e.CreateTokenHandler)
		r.Get("/", e.GetInterviewsHandler)
		r.Get("/{id}", e.GetInterviewHandler)
		r.Get("/{id}/recording", e.GetRecordingDownloadHandler)
	})

	r.Get("/analytics", e.GetAnalyticsHandler)
	r.Get("/rooms/active", e.GetActiveRoomsHandler)

	r.Route("/admin", func(r chi.Router) {
		r.Get("/storage", e.GetStorageUsageHandler)
		r.Post("/cleanup", e.CleanupHandler)
	})
}

// CreateTokenHandler opens the session row, provisions a room, and mints a
// participant token so a candidate can join their interview. The returned
// interview_id is what the conversation driver binds its session to.
func (e *InterviewEndpoints) CreateTokenHandler(w http.ResponseWriter, r *http.Request) {
	var req CreateTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.CandidateName == "" {
		http.Error(w, "Candidate name is required", http.StatusBadRequest)
		return
	}

	interviewID, err := e.store.CreateSession(r.Context(), req.CandidateName, req.Position)
	if err != nil {
		slog.Error("Failed to create interview session", "error", err, "candidate_name", req.CandidateName)
		http.Error(w, "Failed to create interview session", http.StatusInternalServerError)
		return
	}
	sessionsStarted.Inc()

	roomName := GenerateRoomName(r.Context(), e.rooms)
	if err := e.rooms.EnsureRoom(r.Context(), roomName); err != nil {
		// The session row stays in_progress; the retention sweep reclaims
		// it if the candidate never retries.
		slog.Error("Failed to provision room", "error", err, "room_name", roomName, "interview_id", interviewID)
		http.Error(w, "Failed to provision room", http.StatusBadGateway)
		return
	}

	identity := "candidate-" + interviewID
	token, err := e.tokens.MintParticipantToken(roomName, identity, req.CandidateName)
	if err != nil {
		slog.Error("Failed to mint participant token", "error", err, "room_name", roomName, "interview_id", interviewID)
		http.Error(w, "Failed to mint token", http.StatusInternalServerError)
		return
	}

	response := CreateTokenResponse{
		InterviewID: interviewID,
		Token:       token,
		RoomName:    roomName,
		Identity:    identity,
		Message:     "Token created successfully",
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(response)

	slog.Info("Participant token created", "interview_id", interviewID, "room_name", roomName, "identity", identity, "candidate_name", req.CandidateName, "position", req.Position)
}

func (e *InterviewEndpoints) GetInterviewsHandler(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			http.Error(w, "Invalid limit", http.StatusBadRequest)
			return
		}
		limit = parsed
	}
	position := r.URL.Query().Get("position")
	includeRecordings := r.URL.Query().Get("include_recordings") == "true"

	sessions, err := e.store.ListRecent(r.Context(), limit, position, includeRecordings)
	if err != nil {
		slog.Error("Failed to list interviews", "error", err, "limit", limit, "position", position)
		http.Error(w, "Failed to list interviews", http.StatusInternalServerError)
		return
	}

	response := GetInterviewsResponse{
		Interviews: sessions,
		Count:      len(sessions),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)

	slog.Info("Interviews listed", "count", len(sessions), "position", position)
}

func (e *InterviewEndpoints) GetInterviewHandler(w http.ResponseWriter, r *http.Request) {
	interviewID := chi.URLParam(r, "id")
	if interviewID == "" {
		http.Error(w, "Interview ID is required", http.StatusBadRequest)
		return
	}

	session, err := e.store.GetSession(r.Context(), interviewID)
	if err != nil {
		slog.Error("Failed to get interview", "error", err, "interview_id", interviewID)
		http.Error(w, "Failed to get interview", http.StatusInternalServerError)
		return
	}
	if session == nil {
		http.Error(w, "Interview not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"interview": session,
	})

	slog.Info("Interview retrieved", "interview_id", interviewID)
}

// GetRecordingDownloadHandler returns short-lived presigned URLs for a
// completed recording and its transcript.
func (e *InterviewEndpoints) GetRecordingDownloadHandler(w http.ResponseWriter, r *http.Request) {
	interviewID := chi.URLParam(r, "id")
	if interviewID == "" {
		http.Error(w, "Interview ID is required", http.StatusBadRequest)
		return
	}

	session, err := e.store.GetSession(r.Context(), interviewID)
	if err != nil {
		slog.Error("Failed to get interview for download", "error", err, "interview_id", interviewID)
		http.Error(w, "Failed to get interview", http.StatusInternalServerError)
		return
	}
	if session == nil {
		http.Error(w, "Interview not found", http.StatusNotFound)
		return
	}
	if session.RecordingStatus != models.RecordingStatusCompleted {
		http.Error(w, "Recording is not available yet", http.StatusConflict)
		return
	}

	recordingURL, err := e.objectStore.PresignDownload(r.Context(), e.objectStore.RecordingKey(interviewID))
	if err != nil {
		slog.Error("Failed to presign recording download", "error", err, "interview_id", interviewID)
		http.Error(w, "Failed to presign recording download", http.StatusInternalServerError)
		return
	}

	response := RecordingDownloadResponse{
		InterviewID:  interviewID,
		RecordingURL: recordingURL,
		ExpiresIn:    "15m",
	}
	if session.TranscriptURL != "" {
		transcriptURL, err := e.objectStore.PresignDownload(r.Context(), e.objectStore.TranscriptKey(interviewID))
		if err != nil {
			slog.Error("Failed to presign transcript download", "error", err, "interview_id", interviewID)
		} else {
			response.TranscriptURL = transcriptURL
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)

	slog.Info("Recording download links issued", "interview_id", interviewID)
}

func (e *InterviewEndpoints) GetAnalyticsHandler(w http.ResponseWriter, r *http.Request) {
	position := r.URL.Query().Get("position")

	report, err := e.store.GetAnalytics(r.Context(), position)
	if err != nil {
		slog.Error("Failed to compute analytics", "error", err, "position", position)
		http.Error(w, "Failed to compute analytics", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(report)

	slog.Info("Analytics report generated", "position", position, "total_interviews", report.TotalInterviews)
}

func (e *InterviewEndpoints) GetActiveRoomsHandler(w http.ResponseWriter, r *http.Request) {
	rooms, err := e.rooms.ListRooms(r.Context())
	if err != nil {
		slog.Error("Failed to list active rooms", "error", err)
		http.Error(w, "Failed to list active rooms", http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"rooms": rooms,
		"count": len(rooms),
	})
}

func (e *InterviewEndpoints) GetStorageUsageHandler(w http.ResponseWriter, r *http.Request) {
	usage, err := e.store.GetStorageUsage(r.Context())
	if err != nil {
		slog.Error("Failed to compute storage usage", "error", err)
		http.Error(w, "Failed to compute storage usage", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(usage)
}

type CleanupRequest struct {
	DaysOld int `json:"days_old"`
}

type CleanupResponse struct {
	ArchivedCount int64  `json:"archived_count"`
	Message       string `json:"message"`
}

// CleanupHandler archives sessions older than the requested cutoff.
func (e *InterviewEndpoints) CleanupHandler(w http.ResponseWriter, r *http.Request) {
	var req CleanupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.DaysOld <= 0 {
		http.Error(w, "days_old must be positive", http.StatusBadRequest)
		return
	}

	archived, err := e.store.CleanupOld(r.Context(), req.DaysOld)
	if err != nil {
		slog.Error("Failed to archive old interviews", "error", err, "days_old", req.DaysOld)
		http.Error(w, "Failed to archive old interviews", http.StatusInternalServerError)
		return
	}
	sessionsArchived.Add(float64(archived))

	response := CleanupResponse{
		ArchivedCount: archived,
		Message:       "Cleanup completed successfully",
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)

	slog.Info("Old interviews archived", "archived_count", archived, "days_old", req.DaysOld)
}
