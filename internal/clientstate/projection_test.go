package clientstate

import (
	"testing"

	"github.com/google/uuid"

	"github.com/elemephant/backend/internal/domain"
	"github.com/elemephant/backend/pkg/client"
)

func elephant(symbol string) client.Elephant {
	return client.Elephant{ID: uuid.New(), ElementSymbol: symbol}
}

func TestGroupBySymbolIsPartition(t *testing.T) {
	elephants := []client.Elephant{
		elephant("H"), elephant("Fe"), elephant("H"), elephant("O"), elephant("Fe"), elephant("H"),
	}
	grouped := GroupBySymbol(elephants)

	if grouped.Total() != len(elephants) {
		t.Fatalf("union of groups has %d records, want %d", grouped.Total(), len(elephants))
	}
	for symbol, group := range grouped {
		for _, e := range group {
			if e.ElementSymbol != symbol {
				t.Fatalf("group %q contains record for %q", symbol, e.ElementSymbol)
			}
		}
	}
	if len(grouped["H"]) != 3 || len(grouped["Fe"]) != 2 || len(grouped["O"]) != 1 {
		t.Fatalf("unexpected group sizes: H=%d Fe=%d O=%d",
			len(grouped["H"]), len(grouped["Fe"]), len(grouped["O"]))
	}
}

func TestApplyCreatePrepends(t *testing.T) {
	grouped := GroupBySymbol([]client.Elephant{elephant("H")})
	newest := elephant("H")
	grouped.ApplyCreate(newest)

	if len(grouped["H"]) != 2 {
		t.Fatalf("expected 2 records, got %d", len(grouped["H"]))
	}
	if grouped["H"][0].ID != newest.ID {
		t.Fatalf("new record should be first (newest-first ordering)")
	}
}

func TestApplyDeleteRemovesEmptyKey(t *testing.T) {
	only := elephant("He")
	grouped := GroupBySymbol([]client.Elephant{only, elephant("H")})

	grouped.ApplyDelete("He", only.ID)
	if _, ok := grouped["He"]; ok {
		t.Fatalf("empty group should have no key")
	}
	if len(grouped["H"]) != 1 {
		t.Fatalf("other groups must be untouched")
	}
}

func TestApplyDeleteKeepsRemaining(t *testing.T) {
	first, second := elephant("H"), elephant("H")
	grouped := GroupBySymbol([]client.Elephant{first, second})

	grouped.ApplyDelete("H", first.ID)
	group := grouped["H"]
	if len(group) != 1 || group[0].ID != second.ID {
		t.Fatalf("expected only the second record to remain, got %+v", group)
	}
}

func TestApplyDeleteUnknownIDIsNoop(t *testing.T) {
	grouped := GroupBySymbol([]client.Elephant{elephant("H")})
	grouped.ApplyDelete("H", uuid.New())
	if len(grouped["H"]) != 1 {
		t.Fatalf("unknown id should not remove anything")
	}
}

func TestOverlayKeepsElementOrder(t *testing.T) {
	elements := []domain.Element{
		{Symbol: "H", AtomicNumber: 1},
		{Symbol: "He", AtomicNumber: 2},
		{Symbol: "Li", AtomicNumber: 3},
	}
	grouped := GroupBySymbol([]client.Elephant{elephant("Li"), elephant("H")})

	views := grouped.Overlay(elements)
	if len(views) != 3 {
		t.Fatalf("expected one view per element, got %d", len(views))
	}
	for i, view := range views {
		if view.Element.Symbol != elements[i].Symbol {
			t.Fatalf("view %d out of order: %s", i, view.Element.Symbol)
		}
	}
	if len(views[0].Elephants) != 1 || len(views[1].Elephants) != 0 || len(views[2].Elephants) != 1 {
		t.Fatalf("unexpected elephant distribution")
	}
}
