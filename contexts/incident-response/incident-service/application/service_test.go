package application

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"pulseops/contexts/incident-response/incident-service/domain/entities"
	domainerrors "pulseops/contexts/incident-response/incident-service/domain/errors"
	"pulseops/contexts/incident-response/incident-service/ports"
	"pulseops/internal/shared/events"
)

type testRepo struct {
	incidents map[string]entities.Incident
	saveErr   error
}

func newTestRepo() *testRepo {
	return &testRepo{incidents: make(map[string]entities.Incident)}
}

func (r *testRepo) Save(_ context.Context, incident entities.Incident) (entities.Incident, error) {
	if r.saveErr != nil {
		return entities.Incident{}, r.saveErr
	}
	r.incidents[incident.ID] = incident
	return incident, nil
}

func (r *testRepo) FindByID(_ context.Context, id string) (entities.Incident, error) {
	incident, ok := r.incidents[id]
	if !ok {
		return entities.Incident{}, domainerrors.ErrIncidentNotFound
	}
	return incident, nil
}

func (r *testRepo) List(_ context.Context, _ ports.ListFilter) ([]entities.Incident, error) {
	var out []entities.Incident
	for _, incident := range r.incidents {
		out = append(out, incident)
	}
	return out, nil
}

func (r *testRepo) FindStale(_ context.Context, _ []entities.Status, _ time.Time) ([]entities.Incident, error) {
	return nil, nil
}

type captureBus struct {
	published []events.Envelope
	err       error
}

func (b *captureBus) Publish(_ context.Context, _ string, event events.Envelope) error {
	if b.err != nil {
		return b.err
	}
	b.published = append(b.published, event)
	return nil
}

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

type seqIDGen struct {
	n int
}

func (g *seqIDGen) NewID(context.Context) (string, error) {
	g.n++
	return fmt.Sprintf("aaaaaaaa-bbbb-cccc-dddd-%012d", g.n), nil
}

func newTestService(repo *testRepo, bus *captureBus, now time.Time) Service {
	return Service{
		Repo:        repo,
		Publisher:   events.Publisher{Producer: "incident-service", Bus: bus},
		Clock:       fixedClock{now: now},
		IDGenerator: &seqIDGen{},
	}
}

func TestCreateIncidentRequiresTitle(t *testing.T) {
	service := newTestService(newTestRepo(), &captureBus{}, time.Now())

	_, err := service.CreateIncident(context.Background(), CreateIncidentInput{Title: "  "}, "corr-1")
	if !errors.Is(err, domainerrors.ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
}

func TestCreateIncidentPublishesCreatedEvent(t *testing.T) {
	repo := newTestRepo()
	bus := &captureBus{}
	now := time.Date(2026, time.March, 1, 10, 0, 0, 0, time.UTC)
	service := newTestService(repo, bus, now)

	incident, err := service.CreateIncident(context.Background(), CreateIncidentInput{
		Title:    "database outage",
		Severity: "high",
	}, "corr-42")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if incident.Status != entities.StatusOpen {
		t.Fatalf("new incident status = %s, want OPEN", incident.Status)
	}
	if len(incident.ID) != len("INC_")+20 || incident.ID[:4] != "INC_" {
		t.Fatalf("unexpected incident id %q", incident.ID)
	}
	if !incident.LastActivityAt.Equal(now) {
		t.Fatalf("lastActivityAt = %v, want %v", incident.LastActivityAt, now)
	}

	if len(bus.published) != 1 {
		t.Fatalf("expected 1 published event, got %d", len(bus.published))
	}
	event := bus.published[0]
	if event.Type != events.TypeIncidentCreated {
		t.Fatalf("event type = %q", event.Type)
	}
	if event.IncidentID != incident.ID {
		t.Fatalf("partition identity = %q, want %q", event.IncidentID, incident.ID)
	}
	if event.CorrelationID != "corr-42" {
		t.Fatalf("correlation id = %q, want corr-42", event.CorrelationID)
	}
	if event.EventID == "" {
		t.Fatal("event id must be set at publish time")
	}
}

func TestChangeStatusRejectsInvalidTransitionAndLeavesStorageUntouched(t *testing.T) {
	repo := newTestRepo()
	bus := &captureBus{}
	now := time.Date(2026, time.March, 1, 10, 0, 0, 0, time.UTC)
	service := newTestService(repo, bus, now)

	incident, err := service.CreateIncident(context.Background(), CreateIncidentInput{Title: "x"}, "corr")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	bus.published = nil

	_, err = service.ChangeStatus(context.Background(), incident.ID, ChangeStatusInput{Status: "MITIGATED"}, "corr")
	if !errors.Is(err, domainerrors.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}

	var transitionErr *domainerrors.InvalidTransitionError
	if !errors.As(err, &transitionErr) {
		t.Fatalf("expected InvalidTransitionError, got %T", err)
	}
	if transitionErr.Current != "OPEN" || transitionErr.Requested != "MITIGATED" {
		t.Fatalf("transition error carries %q -> %q", transitionErr.Current, transitionErr.Requested)
	}

	stored, _ := repo.FindByID(context.Background(), incident.ID)
	if stored.Status != entities.StatusOpen {
		t.Fatalf("storage changed on rejected transition: %s", stored.Status)
	}
	if len(bus.published) != 0 {
		t.Fatalf("rejected transition must not publish, got %d events", len(bus.published))
	}
}

func TestChangeStatusSelfTransitionCountsAsActivity(t *testing.T) {
	repo := newTestRepo()
	bus := &captureBus{}
	created := time.Date(2026, time.March, 1, 10, 0, 0, 0, time.UTC)
	service := newTestService(repo, bus, created)

	incident, err := service.CreateIncident(context.Background(), CreateIncidentInput{Title: "x"}, "corr")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	later := created.Add(45 * time.Minute)
	service.Clock = fixedClock{now: later}

	updated, err := service.ChangeStatus(context.Background(), incident.ID, ChangeStatusInput{Status: "open"}, "corr")
	if err != nil {
		t.Fatalf("self-transition should succeed, got %v", err)
	}
	if updated.Status != entities.StatusOpen {
		t.Fatalf("status = %s, want OPEN", updated.Status)
	}
	if !updated.LastActivityAt.Equal(later) {
		t.Fatalf("self-transition must refresh lastActivityAt, got %v", updated.LastActivityAt)
	}
}

func TestChangeStatusDistinguishesNotFoundFromInvalidStatus(t *testing.T) {
	service := newTestService(newTestRepo(), &captureBus{}, time.Now())

	_, err := service.ChangeStatus(context.Background(), "INC_MISSING", ChangeStatusInput{Status: "CLOSED"}, "corr")
	if !errors.Is(err, domainerrors.ErrIncidentNotFound) {
		t.Fatalf("expected ErrIncidentNotFound, got %v", err)
	}

	_, err = service.ChangeStatus(context.Background(), "INC_MISSING", ChangeStatusInput{Status: "bogus"}, "corr")
	if !errors.Is(err, domainerrors.ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
}

func TestPublishFailureDoesNotFailTheRequest(t *testing.T) {
	repo := newTestRepo()
	bus := &captureBus{err: errors.New("broker down")}
	service := newTestService(repo, bus, time.Now())

	incident, err := service.CreateIncident(context.Background(), CreateIncidentInput{Title: "x"}, "corr")
	if err != nil {
		t.Fatalf("create must succeed despite publish failure, got %v", err)
	}

	updated, err := service.ChangeStatus(context.Background(), incident.ID, ChangeStatusInput{Status: "INVESTIGATING"}, "corr")
	if err != nil {
		t.Fatalf("status change must succeed despite publish failure, got %v", err)
	}
	if updated.Status != entities.StatusInvestigating {
		t.Fatalf("status = %s, want INVESTIGATING", updated.Status)
	}

	stored, _ := repo.FindByID(context.Background(), incident.ID)
	if stored.Status != entities.StatusInvestigating {
		t.Fatal("state change must be durable even when the event is lost")
	}
}

func TestUpdateIncidentClearsStaleMark(t *testing.T) {
	repo := newTestRepo()
	bus := &captureBus{}
	now := time.Date(2026, time.March, 1, 10, 0, 0, 0, time.UTC)
	service := newTestService(repo, bus, now)

	incident, err := service.CreateIncident(context.Background(), CreateIncidentInput{Title: "x"}, "corr")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	detected := now.Add(time.Hour)
	stale := repo.incidents[incident.ID]
	stale.Stale = true
	stale.StaleDetectedAt = &detected
	repo.incidents[incident.ID] = stale

	title := "renamed"
	updated, err := service.UpdateIncident(context.Background(), incident.ID, UpdateIncidentInput{Title: &title}, "corr")
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Stale || updated.StaleDetectedAt != nil {
		t.Fatal("genuine activity must clear the stale mark")
	}
	if updated.Title != "renamed" {
		t.Fatalf("title = %q", updated.Title)
	}
}
