package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// Room is a live conversation room on the media server.
type Room struct {
	Name            string `json:"name"`
	NumParticipants int    `json:"num_participants"`
	CreationTime    int64  `json:"creation_time"`
	EmptyTimeout    int    `json:"empty_timeout"`
}

// RoomService provisions and inspects conversation rooms. The media
// server's internals are out of scope; this is the narrow surface the API
// layer depends on.
type RoomService interface {
	EnsureRoom(ctx context.Context, name string) error
	ListRooms(ctx context.Context) ([]Room, error)
}

// LiveKitRoomService talks to a LiveKit-compatible room API over its
// JSON-RPC surface, authenticating with short-lived server tokens.
type LiveKitRoomService struct {
	baseURL string
	tokens  *TokenService
	client  *http.Client
}

func NewLiveKitRoomService(baseURL string, tokens *TokenService) *LiveKitRoomService {
	return &LiveKitRoomService{
		baseURL: baseURL,
		tokens:  tokens,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// EnsureRoom creates the room if it does not already exist. Creation is
// idempotent on the server side, so no existence check is needed first.
func (s *LiveKitRoomService) EnsureRoom(ctx context.Context, name string) error {
	body := map[string]interface{}{
		"name":             name,
		"empty_timeout":    300,
		"max_participants": 10,
	}
	return s.rpc(ctx, "CreateRoom", body, nil)
}

// ListRooms returns the rooms currently active on the media server.
func (s *LiveKitRoomService) ListRooms(ctx context.Context) ([]Room, error) {
	var response struct {
		Rooms []Room `json:"rooms"`
	}
	if err := s.rpc(ctx, "ListRooms", map[string]interface{}{}, &response); err != nil {
		return nil, err
	}
	return response.Rooms, nil
}

func (s *LiveKitRoomService) rpc(ctx context.Context, method string, body interface{}, out interface{}) error {
	if s.baseURL == "" {
		return fmt.Errorf("media server URL not configured")
	}

	token, err := s.tokens.MintServerToken()
	if err != nil {
		return fmt.Errorf("failed to mint server token: %w", err)
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode %s request: %w", method, err)
	}

	url := s.baseURL + "/twirp/livekit.RoomService/" + method
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("room service %s failed: %w", method, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("room service %s returned status %d", method, resp.StatusCode)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode %s response: %w", method, err)
		}
	}
	return nil
}

// GenerateRoomName produces a unique interview room name, checking the
// active room list when possible. If the room list is unavailable the
// generated name is used anyway; the uuid suffix makes collisions unlikely.
func GenerateRoomName(ctx context.Context, rooms RoomService) string {
	name := "interview-" + uuid.New().String()[:8]

	active, err := rooms.ListRooms(ctx)
	if err != nil {
		slog.Warn("Could not check existing rooms, using generated name", "room_name", name, "error", err)
		return name
	}

	for _, room := range active {
		if room.Name == name {
			// Collision on an 8-char prefix; retry with a fresh suffix.
			return GenerateRoomName(ctx, rooms)
		}
	}
	return name
}
