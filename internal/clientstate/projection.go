// Package clientstate is the embeddable client-side core of a catalog UI:
// it holds the symbol-grouped projection of the elephant listing, the selected
// cell's detail/carousel state, and the admin form state machine, and keeps
// them consistent with server-confirmed mutations.
//
// The projection is a derived cache. The server remains authoritative; any
// divergence is repaired by the next Load.
package clientstate

import (
	"github.com/google/uuid"

	"github.com/elemephant/backend/internal/domain"
	"github.com/elemephant/backend/pkg/client"
)

// Grouped maps an element symbol to its elephants, newest first. Symbols with
// no elephants have no key.
type Grouped map[string][]client.Elephant

// GroupBySymbol partitions a full listing by element symbol, preserving the
// listing's order within each group.
func GroupBySymbol(elephants []client.Elephant) Grouped {
	grouped := make(Grouped)
	for _, e := range elephants {
		grouped[e.ElementSymbol] = append(grouped[e.ElementSymbol], e)
	}
	return grouped
}

// ApplyCreate inserts a confirmed new elephant at the head of its symbol's
// group (the listing is newest-first).
func (g Grouped) ApplyCreate(e client.Elephant) {
	g[e.ElementSymbol] = append([]client.Elephant{e}, g[e.ElementSymbol]...)
}

// ApplyDelete removes a confirmed-deleted elephant. When the group becomes
// empty its key is removed entirely, so no empty-slice keys linger.
func (g Grouped) ApplyDelete(symbol string, id uuid.UUID) {
	group := g[symbol]
	for i, e := range group {
		if e.ID == id {
			group = append(group[:i:i], group[i+1:]...)
			break
		}
	}
	if len(group) == 0 {
		delete(g, symbol)
		return
	}
	g[symbol] = group
}

// Total counts elephants across all groups.
func (g Grouped) Total() int {
	n := 0
	for _, group := range g {
		n += len(group)
	}
	return n
}

// ElementView is one grid cell: the static element plus its current elephants.
type ElementView struct {
	Element   domain.Element
	Elephants []client.Elephant
}

// Overlay projects the grouping onto the static element list, producing one
// view per element in the list's order. Elements without elephants get a nil
// slice.
func (g Grouped) Overlay(elements []domain.Element) []ElementView {
	views := make([]ElementView, len(elements))
	for i, el := range elements {
		views[i] = ElementView{Element: el, Elephants: g[el.Symbol]}
	}
	return views
}
