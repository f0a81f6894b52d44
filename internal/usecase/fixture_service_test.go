package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/riskibarqy/score-predictor/internal/domain/fixture"
)

func TestFixtureService_List_OrdersAndFilters(t *testing.T) {
	t.Parallel()

	base := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	store := newSeededStore(t, seedData{fixtures: []fixture.Fixture{
		upcoming("r2-b", 2, "Chelsea", "Liverpool", base.Add(7*24*time.Hour)),
		{ID: "loose", HomeTeam: "Fulham", AwayTeam: "Brentford"},
		upcoming("r1-late", 1, "Arsenal", "Everton", base.Add(3*time.Hour)),
		upcoming("r1-early", 1, "Wolves", "Leeds", base),
	}})
	svc := NewFixtureService(store)

	items, err := svc.List(context.Background(), nil)
	if err != nil {
		t.Fatalf("list fixtures: %v", err)
	}
	got := make([]string, 0, len(items))
	for _, item := range items {
		got = append(got, item.ID)
	}
	want := []string{"r1-early", "r1-late", "r2-b", "loose"}
	if len(got) != len(want) {
		t.Fatalf("unexpected fixtures: got=%v want=%v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("unexpected order: got=%v want=%v", got, want)
		}
	}

	round := 2
	items, err = svc.List(context.Background(), &round)
	if err != nil {
		t.Fatalf("list round fixtures: %v", err)
	}
	if len(items) != 1 || items[0].ID != "r2-b" {
		t.Fatalf("unexpected round 2 fixtures: %+v", items)
	}
}

func TestFixtureService_List_RejectsBadRound(t *testing.T) {
	t.Parallel()

	round := 0
	_, err := NewFixtureService(newSeededStore(t, seedData{})).List(context.Background(), &round)
	if err == nil {
		t.Fatalf("expected error for round 0")
	}
}
