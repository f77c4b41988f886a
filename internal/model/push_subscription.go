package model

import (
	"time"

	"github.com/google/uuid"
)

// PushSubscription is a browser push endpoint registered by a dashboard session.
type PushSubscription struct {
	ID        uuid.UUID
	SessionID string
	Endpoint  string
	P256dh    string
	Auth      string
	CreatedAt time.Time
}

// InitMeta initializes the subscription metadata including ID and timestamps.
func (s *PushSubscription) InitMeta() {
	s.ID = uuid.New()
	s.CreatedAt = time.Now()
}
