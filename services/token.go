package services

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const defaultTokenTTL = 2 * time.Hour

// VideoGrant describes what a participant token allows inside a room,
// following the media server's claim layout.
type VideoGrant struct {
	Room                 string `json:"room,omitempty"`
	RoomJoin             bool   `json:"roomJoin,omitempty"`
	RoomCreate           bool   `json:"roomCreate,omitempty"`
	RoomList             bool   `json:"roomList,omitempty"`
	CanPublish           bool   `json:"canPublish,omitempty"`
	CanSubscribe         bool   `json:"canSubscribe,omitempty"`
	CanPublishData       bool   `json:"canPublishData,omitempty"`
	CanUpdateOwnMetadata bool   `json:"canUpdateOwnMetadata,omitempty"`
}

// RoomTokenClaims is the signed claim set for a room access credential:
// issuer is the API key, subject is the participant identity, and the video
// grant scopes the credential to one room.
type RoomTokenClaims struct {
	Name  string     `json:"name,omitempty"`
	Video VideoGrant `json:"video"`
	jwt.RegisteredClaims
}

// TokenService mints signed room access credentials.
type TokenService struct {
	apiKey    string
	apiSecret []byte
	ttl       time.Duration
}

func NewTokenService(apiKey, apiSecret string) *TokenService {
	return &TokenService{
		apiKey:    apiKey,
		apiSecret: []byte(apiSecret),
		ttl:       defaultTokenTTL,
	}
}

// MintParticipantToken creates a credential that lets one participant join
// and publish in a single room.
func (s *TokenService) MintParticipantToken(roomName, identity, displayName string) (string, error) {
	if s.apiKey == "" || len(s.apiSecret) == 0 {
		return "", fmt.Errorf("media server credentials not configured")
	}

	now := time.Now()
	claims := &RoomTokenClaims{
		Name: displayName,
		Video: VideoGrant{
			Room:                 roomName,
			RoomJoin:             true,
			CanPublish:           true,
			CanSubscribe:         true,
			CanPublishData:       true,
			CanUpdateOwnMetadata: true,
		},
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.apiKey,
			Subject:   identity,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.apiSecret)
}

// MintServerToken creates a short-lived credential for server-to-server
// room administration calls.
func (s *TokenService) MintServerToken() (string, error) {
	if s.apiKey == "" || len(s.apiSecret) == 0 {
		return "", fmt.Errorf("media server credentials not configured")
	}

	now := time.Now()
	claims := &RoomTokenClaims{
		Video: VideoGrant{
			RoomCreate: true,
			RoomList:   true,
		},
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.apiKey,
			Subject:   s.apiKey,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Minute)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.apiSecret)
}

// ParseToken verifies a credential minted by this service. Used by tests and
// by the agent gateway to validate the driver's credential.
func (s *TokenService) ParseToken(tokenString string) (*RoomTokenClaims, error) {
	claims := &RoomTokenClaims{}
	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.apiSecret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	if !parsed.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}
