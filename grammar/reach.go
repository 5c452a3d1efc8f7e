package grammar

import (
	"github.com/bdsul/grace/internal/queue"
)

// Reachable returns identifiers of all non-terminals derivable from the start symbol in breadth-first order,
// the start symbol comes first. Undefined non-terminals are included.
func (g *Grammar) Reachable() []SymbolID {
	if g.Start == NoSymbol {
		return nil
	}

	seen := map[SymbolID]bool{g.Start: true}
	res := []SymbolID{g.Start}
	q := queue.New(g.Start)
	for !q.IsEmpty() {
		id, _ := q.First()
		r := g.RuleOf(id)
		if r == nil {
			continue
		}

		for _, c := range r.Choices {
			for _, sid := range c.Symbols {
				if g.Symbols[sid].Kind == NonTerminal && !seen[sid] {
					seen[sid] = true
					res = append(res, sid)
					q.Append(sid)
				}
			}
		}
	}
	return res
}

// Unreachable returns left hand side symbols of rules that cannot be derived from the start symbol,
// in rule order.
func (g *Grammar) Unreachable() []Symbol {
	reached := make(map[SymbolID]bool)
	for _, id := range g.Reachable() {
		reached[id] = true
	}

	var res []Symbol
	for _, r := range g.Rules {
		if !reached[r.LHS] {
			res = append(res, g.Symbols[r.LHS])
		}
	}
	return res
}

// Undefined returns non-terminals used in choices but not defined by any rule, in order of appearance.
func (g *Grammar) Undefined() []Symbol {
	seen := make(map[SymbolID]bool)
	var res []Symbol
	for _, r := range g.Rules {
		for _, c := range r.Choices {
			for _, id := range c.Symbols {
				if g.Symbols[id].Kind == NonTerminal && !seen[id] && g.RuleOf(id) == nil {
					seen[id] = true
					res = append(res, g.Symbols[id])
				}
			}
		}
	}
	return res
}
