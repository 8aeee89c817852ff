package services

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/intervox-ai/backend/repository"
	ws "github.com/intervox-ai/backend/websocket"
	"gorm.io/gorm"
)

// Server holds all server dependencies
type Server struct {
	config             *Config
	store              *repository.SessionStore
	db                 *gorm.DB
	tokens             *TokenService
	rooms              RoomService
	objectStore        ObjectStore
	retention          *RetentionService
	agentGateway       *AgentGateway
	interviewEndpoints *InterviewEndpoints
	webhookEndpoints   *WebhookEndpoints
	wsHub              *ws.Hub
	upgrader           websocket.Upgrader
}

// NewServer creates a new server instance
func NewServer(config *Config) *Server {
	return &Server{
		config: config,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return CheckOrigin(r, config.WebSocket.AllowedOrigins)
			},
		},
	}
}

// SetDatabase sets the session store and the raw connection used for health
// checks.
func (s *Server) SetDatabase(store *repository.SessionStore, db *gorm.DB) {
	s.store = store
	s.db = db
}

// InitializeServices initializes all server services
func (s *Server) InitializeServices() error {
	s.tokens = NewTokenService(s.config.LiveKit.APIKey, s.config.LiveKit.APISecret)

	if s.config.LiveKit.URL != "" {
		s.rooms = NewLiveKitRoomService(s.config.LiveKit.URL, s.tokens)
		slog.Info("Room service initialized", "url", s.config.LiveKit.URL)
	} else {
		slog.Warn("LiveKit URL not configured, rooms will not be provisioned")
		s.rooms = noopRoomService{}
	}

	s.objectStore = NewS3ObjectStore(s.config.Storage)
	slog.Info("Object store initialized", "bucket", s.config.Storage.Bucket, "region", s.config.Storage.Region)

	if s.store != nil {
		s.agentGateway = NewAgentGateway(s.store, s.config.Interview.MaxQuestionsPerPhase)
		s.interviewEndpoints = NewInterviewEndpoints(s.store, s.tokens, s.rooms, s.objectStore)
		s.webhookEndpoints = NewWebhookEndpoints(s.store)

		interval, err := time.ParseDuration(s.config.Retention.SweepInterval)
		if err != nil {
			slog.Warn("Invalid retention sweep interval, using 24h", "value", s.config.Retention.SweepInterval)
			interval = 24 * time.Hour
		}
		s.retention = NewRetentionService(s.store, s.config.Retention.Days, interval)
		s.retention.Start()
		slog.Info("Retention service started", "days", s.config.Retention.Days, "interval", interval)
	} else {
		slog.Warn("Database not configured, interview endpoints disabled")
	}

	s.wsHub = ws.NewHub()
	go s.wsHub.Run()

	return nil
}

// SetupRoutes configures all HTTP routes
func (s *Server) SetupRoutes() *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.healthHandler)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/", s.apiV1Handler)

		if s.agentGateway != nil {
			r.Get("/agent/ws", s.agentWebSocketHandler)
		}
		if s.interviewEndpoints != nil {
			s.interviewEndpoints.RegisterRoutes(r)
		}
		if s.webhookEndpoints != nil {
			s.webhookEndpoints.RegisterRoutes(r)
		}
	})

	return r
}

// Start starts the HTTP server
func (s *Server) Start() {
	port := s.config.Server.Port
	if port == "" {
		port = "8080"
	}

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: s.SetupRoutes(),
	}

	// Graceful shutdown
	go func() {
		slog.Info("Starting server", "port", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down server...")
	if s.retention != nil {
		s.retention.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}

	slog.Info("Server exited")
}

// CheckOrigin matches a WebSocket upgrade's Origin header against the
// comma-separated allow-list from configuration.
func CheckOrigin(r *http.Request, allowedOriginsStr string) bool {
	origin := r.Header.Get("Origin")

	// An empty allow-list denies everything.
	if allowedOriginsStr == "" {
		slog.Warn("WebSocket upgrade rejected, no origins allowed", "origin", origin)
		return false
	}

	for _, allowed := range strings.Split(allowedOriginsStr, ",") {
		if strings.TrimSpace(allowed) == origin {
			return true
		}
	}

	slog.Warn("WebSocket upgrade rejected, origin not in allow-list", "origin", origin, "allowed_origins", allowedOriginsStr)
	return false
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	dbStatus := "not configured"

	if s.db != nil {
		if sqlDB, err := s.db.DB(); err == nil {
			if err := sqlDB.Ping(); err != nil {
				dbStatus = "down"
				status = "degraded"
			} else {
				dbStatus = "up"
			}
		} else {
			dbStatus = "down"
			status = "degraded"
		}
	}

	roomStatus := "not configured"
	if s.config.LiveKit.URL != "" && s.config.LiveKit.APIKey != "" && s.config.LiveKit.APISecret != "" {
		roomStatus = "configured"
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"` + status + `","database":"` + dbStatus + `","rooms":"` + roomStatus + `"}`))
}

func (s *Server) apiV1Handler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"message":"API v1","version":"1.0.0"}`))
}

// agentWebSocketHandler upgrades the conversation driver's connection and
// binds it to a fresh interview session.
func (s *Server) agentWebSocketHandler(w http.ResponseWriter, r *http.Request) {
	identity := r.URL.Query().Get("identity")
	roomName := r.URL.Query().Get("room")

	// A minted credential overrides the bare query parameters.
	if token := r.URL.Query().Get("token"); token != "" {
		claims, err := s.tokens.ParseToken(token)
		if err != nil {
			slog.Warn("Agent WebSocket rejected: invalid token", "error", err)
			http.Error(w, "Invalid token", http.StatusUnauthorized)
			return
		}
		identity = claims.Subject
		if claims.Video.Room != "" {
			roomName = claims.Video.Room
		}
	}
	if identity == "" {
		http.Error(w, "Identity is required", http.StatusBadRequest)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("WebSocket upgrade failed", "error", err)
		return
	}

	client := s.wsHub.RegisterClient(conn, identity, roomName)
	s.agentGateway.Attach(client)

	go client.ReadPump()
	go client.WritePump()

	slog.Info("Agent WebSocket connection established", "identity", identity, "room_name", roomName)
}

// noopRoomService stands in when no media server is configured; tokens are
// still minted so local development works without LiveKit.
type noopRoomService struct{}

func (noopRoomService) EnsureRoom(ctx context.Context, name string) error { return nil }
func (noopRoomService) ListRooms(ctx context.Context) ([]Room, error) { return nil, nil }
