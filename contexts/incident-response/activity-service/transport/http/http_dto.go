package http

import "time"

type ActivityItemResponse struct {
	ID         string         `json:"id"`
	EventID    string         `json:"eventId"`
	Type       string         `json:"type"`
	IncidentID string         `json:"incidentId"`
	OccurredAt time.Time      `json:"occurredAt"`
	Payload    map[string]any `json:"payload"`
}

type ListActivityResponse struct {
	Items []ActivityItemResponse `json:"items"`
}

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
