package http

import "time"

type EvidenceResponse struct {
	ID          string    `json:"id"`
	IncidentID  string    `json:"incidentId"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"contentType"`
	SizeBytes   int64     `json:"sizeBytes"`
	UploadedAt  time.Time `json:"uploadedAt"`
}

type ListEvidenceResponse struct {
	Items []EvidenceResponse `json:"items"`
	Total int                `json:"total"`
}

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
