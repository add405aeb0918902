package events

import (
	"time"

	"github.com/google/uuid"
)

// Topic is the single domain-event topic shared by every producer and consumer.
const Topic = "pulseops.domain-events"

// Event types carried on the bus. Dot-namespaced: <entity>.<what_happened>.
const (
	TypeIncidentCreated       = "incident.created"
	TypeIncidentUpdated       = "incident.updated"
	TypeIncidentStatusChanged = "incident.status_changed"
	TypeIncidentStaleDetected = "incident.stale_detected"
	TypeEvidenceUploaded      = "evidence.uploaded"
	TypeHeartbeat             = "heartbeat"
)

// Envelope is the canonical event shape shared across PulseOps services.
// An envelope is never mutated after creation. IncidentID doubles as the bus
// partition key so all events of one incident are observed in publish order
// by a single consumer group.
type Envelope struct {
	EventID       string         `json:"eventId"`
	Type          string         `json:"type"`
	OccurredAt    time.Time      `json:"occurredAt"`
	Producer      string         `json:"producer"`
	CorrelationID string         `json:"correlationId"`
	EntityID      string         `json:"entityId"`
	IncidentID    string         `json:"incidentId"`
	Payload       map[string]any `json:"payload"`
}

// New builds an envelope with a fresh event id and the current UTC time.
func New(eventType, producer, incidentID, entityID, correlationID string, payload map[string]any) Envelope {
	return Envelope{
		EventID:       uuid.NewString(),
		Type:          eventType,
		OccurredAt:    time.Now().UTC(),
		Producer:      producer,
		CorrelationID: correlationID,
		EntityID:      entityID,
		IncidentID:    incidentID,
		Payload:       payload,
	}
}
