package entities

import (
	"fmt"
	"strings"
	"time"
)

// Status is the incident lifecycle state.
type Status string

const (
	StatusOpen          Status = "OPEN"
	StatusInvestigating Status = "INVESTIGATING"
	StatusMitigated     Status = "MITIGATED"
	StatusClosed        Status = "CLOSED"
)

// validTransitions is the directed transition table. CLOSED is terminal.
// Self-transitions are handled in CanTransition, not listed here.
var validTransitions = map[Status][]Status{
	StatusOpen:          {StatusInvestigating},
	StatusInvestigating: {StatusMitigated, StatusOpen},
	StatusMitigated:     {StatusClosed, StatusInvestigating},
	StatusClosed:        {},
}

// ParseStatus maps a request value onto a Status, case-insensitively.
func ParseStatus(raw string) (Status, error) {
	switch Status(strings.ToUpper(strings.TrimSpace(raw))) {
	case StatusOpen:
		return StatusOpen, nil
	case StatusInvestigating:
		return StatusInvestigating, nil
	case StatusMitigated:
		return StatusMitigated, nil
	case StatusClosed:
		return StatusClosed, nil
	default:
		return "", fmt.Errorf("unknown incident status %q", raw)
	}
}

// CanTransition reports whether from may move to to. A self-transition is
// always permitted as a no-op that still counts as activity.
func CanTransition(from, to Status) bool {
	if from == to {
		return true
	}
	for _, allowed := range validTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// NextStatuses returns the legal targets from a given status, excluding the
// self-loop.
func NextStatuses(from Status) []Status {
	return append([]Status(nil), validTransitions[from]...)
}

// Incident is the aggregate coordinated across services. LastActivityAt moves
// on every human-triggered mutation; the stale detector records its own mark
// in StaleDetectedAt so automated monitoring never masquerades as activity.
type Incident struct {
	ID              string
	Title           string
	Description     string
	Status          Status
	Severity        string
	Assignee        string
	Tags            []string
	CreatedAt       time.Time
	UpdatedAt       time.Time
	LastActivityAt  time.Time
	Stale           bool
	StaleDetectedAt *time.Time
}
