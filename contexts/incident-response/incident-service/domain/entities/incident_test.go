package entities

import "testing"

func TestParseStatusIsCaseInsensitive(t *testing.T) {
	cases := map[string]Status{
		"open":           StatusOpen,
		"OPEN":           StatusOpen,
		" Investigating": StatusInvestigating,
		"mitigated":      StatusMitigated,
		"Closed":         StatusClosed,
	}
	for raw, want := range cases {
		got, err := ParseStatus(raw)
		if err != nil {
			t.Fatalf("ParseStatus(%q) returned error: %v", raw, err)
		}
		if got != want {
			t.Fatalf("ParseStatus(%q) = %q, want %q", raw, got, want)
		}
	}

	if _, err := ParseStatus("resolved"); err == nil {
		t.Fatal("expected error for unknown status")
	}
	if _, err := ParseStatus(""); err == nil {
		t.Fatal("expected error for empty status")
	}
}

func TestCanTransitionTable(t *testing.T) {
	all := []Status{StatusOpen, StatusInvestigating, StatusMitigated, StatusClosed}
	allowed := map[[2]Status]bool{
		{StatusOpen, StatusInvestigating}:      true,
		{StatusInvestigating, StatusMitigated}: true,
		{StatusInvestigating, StatusOpen}:      true,
		{StatusMitigated, StatusClosed}:        true,
		{StatusMitigated, StatusInvestigating}: true,
	}

	for _, from := range all {
		for _, to := range all {
			want := from == to || allowed[[2]Status{from, to}]
			if got := CanTransition(from, to); got != want {
				t.Errorf("CanTransition(%s, %s) = %v, want %v", from, to, got, want)
			}
		}
	}
}

func TestClosedIsTerminal(t *testing.T) {
	for _, to := range []Status{StatusOpen, StatusInvestigating, StatusMitigated} {
		if CanTransition(StatusClosed, to) {
			t.Errorf("CLOSED must not transition to %s", to)
		}
	}
	if !CanTransition(StatusClosed, StatusClosed) {
		t.Error("self-transition on CLOSED should be permitted")
	}
	if got := NextStatuses(StatusClosed); len(got) != 0 {
		t.Errorf("NextStatuses(CLOSED) = %v, want empty", got)
	}
}
