package grammar

import (
	"github.com/bdsul/grace/internal/ints"
)

// minSweeps is the number of depth sweeps done even if the first one looks stable.
const minSweeps = 2

// Analyze marks recursive rules and choices and computes minimum derivation depths.
// Previous analysis results are discarded.
//
// A rule is recursive if it can derive itself, a choice is recursive if it contains
// a non-terminal that derives the rule the choice belongs to.
// Depth of a choice is 1 plus the largest depth of its defined non-terminals,
// terminals and undefined non-terminals add nothing. Depth of a rule is the smallest depth of its choices.
func Analyze(g *Grammar) {
	for i := range g.Rules {
		r := &g.Rules[i]
		r.Recursive = false
		r.MinimumDepth = InfiniteDepth
		for j := range r.Choices {
			r.Choices[j].Recursive = false
			r.Choices[j].MinimumDepth = InfiniteDepth
		}
	}

	newRecursionFinder(g).run()
	changed := true
	for sweep := 0; changed || sweep < minSweeps; sweep++ {
		changed = updateDepths(g)
	}
}

// recursionFinder searches for strongly connected components of the rule graph.
// Rules on the active path are kept in path.
type recursionFinder struct {
	g       *Grammar
	index   []int
	lowLink []int
	stack   []int
	path    *ints.Set
	counter int
}

func newRecursionFinder(g *Grammar) *recursionFinder {
	f := &recursionFinder{
		g:       g,
		index:   make([]int, len(g.Rules)),
		lowLink: make([]int, len(g.Rules)),
		path:    ints.NewSet(),
	}
	for i := range f.index {
		f.index[i] = -1
	}
	return f
}

func (f *recursionFinder) run() {
	for ri := range f.g.Rules {
		if f.index[ri] < 0 {
			f.visit(ri)
		}
	}
}

func (f *recursionFinder) subRules(c *Choice, visit func(sri int)) {
	for _, id := range c.Symbols {
		if f.g.Symbols[id].Kind != NonTerminal {
			continue
		}
		if sri := f.g.ruleIndexOf(id); sri >= 0 {
			visit(sri)
		}
	}
}

func (f *recursionFinder) visit(ri int) {
	f.index[ri] = f.counter
	f.lowLink[ri] = f.counter
	f.counter++
	f.stack = append(f.stack, ri)
	f.path.Add(ri)

	r := &f.g.Rules[ri]
	for ci := range r.Choices {
		f.subRules(&r.Choices[ci], func(sri int) {
			if f.index[sri] < 0 {
				f.visit(sri)
				f.lowLink[ri] = min(f.lowLink[ri], f.lowLink[sri])
			} else if f.path.Contains(sri) {
				f.lowLink[ri] = min(f.lowLink[ri], f.index[sri])
			}
		})
	}

	if f.lowLink[ri] != f.index[ri] {
		return
	}

	last := len(f.stack) - 1
	first := last
	for f.stack[first] != ri {
		first--
	}
	component := ints.NewSet(f.stack[first:]...)
	f.path.Remove(f.stack[first:]...)
	f.stack = f.stack[:first]
	f.markRecursive(component)
}

func (f *recursionFinder) markRecursive(component *ints.Set) {
	for _, ri := range component.ToSlice() {
		r := &f.g.Rules[ri]
		for ci := range r.Choices {
			c := &r.Choices[ci]
			f.subRules(c, func(sri int) {
				if component.Contains(sri) {
					c.Recursive = true
				}
			})
			r.Recursive = r.Recursive || c.Recursive
		}
	}
}

// updateDepths lowers depths that can be lowered and reports whether anything changed.
func updateDepths(g *Grammar) (changed bool) {
	for ri := range g.Rules {
		r := &g.Rules[ri]
		for ci := range r.Choices {
			c := &r.Choices[ci]
			depth := choiceDepth(g, c)
			if depth < c.MinimumDepth {
				c.MinimumDepth = depth
				changed = true
			}
			if c.MinimumDepth < r.MinimumDepth {
				r.MinimumDepth = c.MinimumDepth
				changed = true
			}
		}
	}
	return
}

func choiceDepth(g *Grammar, c *Choice) int {
	deepest := 0
	for _, id := range c.Symbols {
		if g.Symbols[id].Kind != NonTerminal {
			continue
		}

		sri := g.ruleIndexOf(id)
		if sri < 0 {
			continue
		}

		d := g.Rules[sri].MinimumDepth
		if d >= InfiniteDepth {
			return InfiniteDepth
		}
		deepest = max(deepest, d)
	}
	return deepest + 1
}
