package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"pulseops/contexts/incident-response/evidence-service/adapters/memory"
	domainerrors "pulseops/contexts/incident-response/evidence-service/domain/errors"
	"pulseops/internal/shared/events"
)

type captureBus struct {
	published []events.Envelope
}

func (b *captureBus) Publish(_ context.Context, _ string, event events.Envelope) error {
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

func newTestService(bus *captureBus) Service {
	store := memory.NewStore()
	return Service{
		Repo:        store,
		Objects:     store,
		Publisher:   events.Publisher{Producer: "evidence-service", Bus: bus},
		Clock:       fixedClock{now: time.Date(2026, time.May, 2, 8, 0, 0, 0, time.UTC)},
		IDGenerator: &seqIDGen{},
	}
}

func TestUploadStoresObjectAndPublishesEvent(t *testing.T) {
	bus := &captureBus{}
	service := newTestService(bus)

	evidence, err := service.Upload(context.Background(), UploadInput{
		IncidentID:  "INC_1",
		Filename:    "pcap.bin",
		ContentType: "application/octet-stream",
		SizeBytes:   4,
		Reader:      strings.NewReader("data"),
	}, "corr-7")
	if err != nil {
		t.Fatalf("upload failed: %v", err)
	}

	if !strings.HasPrefix(evidence.ID, "EV_") {
		t.Fatalf("evidence id %q lacks EV_ prefix", evidence.ID)
	}
	wantKey := "INC_1/" + evidence.ID + "-pcap.bin"
	if evidence.ObjectKey != wantKey {
		t.Fatalf("object key = %q, want %q", evidence.ObjectKey, wantKey)
	}

	meta, reader, err := service.Download(context.Background(), evidence.ID)
	if err != nil {
		t.Fatalf("download failed: %v", err)
	}
	defer reader.Close()
	body, _ := io.ReadAll(reader)
	if string(body) != "data" {
		t.Fatalf("downloaded %q, want original bytes", body)
	}
	if meta.Filename != "pcap.bin" {
		t.Fatalf("metadata filename = %q", meta.Filename)
	}

	if len(bus.published) != 1 {
		t.Fatalf("published %d events, want 1", len(bus.published))
	}
	event := bus.published[0]
	if event.Type != events.TypeEvidenceUploaded {
		t.Fatalf("event type = %q", event.Type)
	}
	if event.IncidentID != "INC_1" || event.EntityID != evidence.ID {
		t.Fatalf("event identity incident=%q entity=%q", event.IncidentID, event.EntityID)
	}
	if event.CorrelationID != "corr-7" {
		t.Fatalf("correlation = %q", event.CorrelationID)
	}
}

func TestUploadValidation(t *testing.T) {
	service := newTestService(&captureBus{})

	_, err := service.Upload(context.Background(), UploadInput{Filename: "x", Reader: strings.NewReader("")}, "corr")
	if !errors.Is(err, domainerrors.ErrInvalidRequest) {
		t.Fatalf("missing incident id: got %v", err)
	}

	_, err = service.Upload(context.Background(), UploadInput{IncidentID: "INC_1", Reader: strings.NewReader("")}, "corr")
	if !errors.Is(err, domainerrors.ErrInvalidRequest) {
		t.Fatalf("missing filename: got %v", err)
	}
}

func TestListForIncidentScopesResults(t *testing.T) {
	service := newTestService(&captureBus{})

	for _, incident := range []string{"INC_1", "INC_1", "INC_2"} {
		if _, err := service.Upload(context.Background(), UploadInput{
			IncidentID: incident,
			Filename:   "f.txt",
			Reader:     strings.NewReader("x"),
		}, "corr"); err != nil {
			t.Fatalf("upload failed: %v", err)
		}
	}

	items, err := service.ListForIncident(context.Background(), "INC_1")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("listed %d items for INC_1, want 2", len(items))
	}

	if _, err := service.ListForIncident(context.Background(), " "); !errors.Is(err, domainerrors.ErrInvalidRequest) {
		t.Fatalf("blank incident id: got %v", err)
	}
}

func TestGetEvidenceNotFound(t *testing.T) {
	service := newTestService(&captureBus{})
	if _, err := service.GetEvidence(context.Background(), "EV_MISSING"); !errors.Is(err, domainerrors.ErrEvidenceNotFound) {
		t.Fatalf("expected ErrEvidenceNotFound, got %v", err)
	}
}
