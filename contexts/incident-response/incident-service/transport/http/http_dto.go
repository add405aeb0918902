package http

import "time"

type CreateIncidentRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Severity    string   `json:"severity"`
	Assignee    string   `json:"assignee"`
	Tags        []string `json:"tags"`
}

type UpdateIncidentRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Severity    *string `json:"severity"`
	Assignee    *string `json:"assignee"`
}

type ChangeStatusRequest struct {
	Status    string `json:"status"`
	Reason    string `json:"reason"`
	ChangedBy string `json:"changedBy"`
}

type IncidentResponse struct {
	ID              string     `json:"id"`
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	Status          string     `json:"status"`
	Severity        string     `json:"severity"`
	Assignee        string     `json:"assignee"`
	Tags            []string   `json:"tags"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
	LastActivityAt  time.Time  `json:"lastActivityAt"`
	Stale           bool       `json:"stale"`
	StaleDetectedAt *time.Time `json:"staleDetectedAt,omitempty"`
}

type ListIncidentsResponse struct {
	Items []IncidentResponse `json:"items"`
}

type ErrorResponse struct {
	Code            string `json:"code"`
	Message         string `json:"message"`
	CurrentStatus   string `json:"currentStatus,omitempty"`
	RequestedStatus string `json:"requestedStatus,omitempty"`
}
