// Package tree implements derivation trees built by decoding a genome.
//
// Each node holds a grammar symbol and its level (root is level 0).
// Terminal nodes are always leaves, a non-terminal node may be a leaf too
// if decoding stopped before expanding it.
package tree

import (
	"bufio"
	"encoding/json"
	"io"
	"strings"

	"github.com/bdsul/grace/grammar"
)

type Node struct {
	Symbol grammar.Symbol
	Level  int

	parent, prev, next    *Node
	firstChild, lastChild *Node
}

// New creates root node.
func New(s grammar.Symbol) *Node {
	return &Node{Symbol: s}
}

// AppendChild creates new last child of n.
func (n *Node) AppendChild(s grammar.Symbol) *Node {
	c := &Node{Symbol: s, Level: n.Level + 1, parent: n, prev: n.lastChild}
	if n.lastChild == nil {
		n.firstChild = c
	} else {
		n.lastChild.next = c
	}
	n.lastChild = c
	return c
}

func (n *Node) IsNonTerm() bool {
	return n.Symbol.Kind == grammar.NonTerminal
}

func (n *Node) IsLeaf() bool {
	return n.firstChild == nil
}

func (n *Node) Parent() *Node {
	return n.parent
}

func (n *Node) Prev() *Node {
	return n.prev
}

func (n *Node) Next() *Node {
	return n.next
}

func (n *Node) FirstChild() *Node {
	return n.firstChild
}

func (n *Node) LastChild() *Node {
	return n.lastChild
}

// Ancestor returns n for level -1, parent for level 0, grandparent for level 1, and so on.
func Ancestor(n *Node, level int) *Node {
	for n != nil && level >= 0 {
		n = n.parent
		level--
	}
	return n
}

// SiblingIndex returns the number of previous siblings.
func SiblingIndex(n *Node) (i int) {
	if n == nil {
		return
	}

	for p := n.prev; p != nil; p = p.prev {
		i++
	}
	return
}

// NthChild returns i-th child counting from 0, negative i counts from the last child (-1).
func NthChild(n *Node, i int) *Node {
	if n == nil {
		return nil
	}

	var c *Node
	if i >= 0 {
		for c = n.firstChild; c != nil && i > 0; i-- {
			c = c.next
		}
	} else {
		for c = n.lastChild; c != nil && i < -1; i++ {
			c = c.prev
		}
	}
	return c
}

// NthSibling returns a sibling i positions after (or before for negative i) n.
func NthSibling(n *Node, i int) *Node {
	for ; n != nil && i < 0; i++ {
		n = n.prev
	}
	for ; n != nil && i > 0; i-- {
		n = n.next
	}
	return n
}

func Children(n *Node) []*Node {
	if n == nil {
		return nil
	}

	res := make([]*Node, 0)
	for c := n.firstChild; c != nil; c = c.next {
		res = append(res, c)
	}
	return res
}

// NodeVisitor is called for each visited node and returns flags telling whether to visit
// its children and its next siblings.
type NodeVisitor func(n *Node) (walkChildren, walkSiblings bool)

type WalkMode int

const (
	WalkLtr WalkMode = 0
	WalkRtl WalkMode = 1
)

// Walk visits n and its descendants depth-first in pre-order.
// Siblings of n itself are never visited.
func Walk(n *Node, mode WalkMode, visitor NodeVisitor) {
	if n != nil {
		visitNode(n, visitor, mode&WalkRtl != 0)
	}
}

func visitNode(n *Node, v NodeVisitor, rtl bool) (walkSiblings bool) {
	walkChildren, walkSiblings := v(n)
	if !walkChildren {
		return
	}

	if rtl {
		for c := n.lastChild; c != nil && visitNode(c, v, true); c = c.prev {
		}
	} else {
		for c := n.firstChild; c != nil && visitNode(c, v, false); c = c.next {
		}
	}
	return
}

// NumOfNodes returns the number of nodes in the subtree including n.
func NumOfNodes(n *Node) int {
	res := 0
	Walk(n, WalkLtr, func(*Node) (bool, bool) {
		res++
		return true, true
	})
	return res
}

// Depth returns the largest distance from n to its descendants, 0 for a leaf.
func Depth(n *Node) int {
	if n == nil {
		return 0
	}

	deepest := n.Level
	Walk(n, WalkLtr, func(nn *Node) (bool, bool) {
		deepest = max(deepest, nn.Level)
		return true, true
	})
	return deepest - n.Level
}

// Leaves returns nodes having no children in left to right order.
func Leaves(n *Node) []*Node {
	var res []*Node
	Walk(n, WalkLtr, func(nn *Node) (bool, bool) {
		if nn.IsLeaf() {
			res = append(res, nn)
		}
		return true, true
	})
	return res
}

// Text returns concatenated texts of all terminal nodes, i.e. the phenotype for the root node.
func Text(n *Node) string {
	sb := strings.Builder{}
	Walk(n, WalkLtr, func(nn *Node) (bool, bool) {
		if !nn.IsNonTerm() {
			sb.WriteString(nn.Symbol.Text)
		}
		return true, true
	})
	return sb.String()
}

// Find returns all nodes of the subtree satisfying filter in pre-order.
// Descendants of a matching node are searched only if deep is true.
func Find(n *Node, filter NodeFilter, deep bool) []*Node {
	var res []*Node
	Walk(n, WalkLtr, func(nn *Node) (bool, bool) {
		if filter(nn) {
			res = append(res, nn)
			return deep, true
		}
		return true, true
	})
	return res
}

type NodeFilter func(n *Node) bool

// IsA matches nodes for listed symbols.
func IsA(symbols ...grammar.Symbol) NodeFilter {
	return func(n *Node) bool {
		for _, s := range symbols {
			if n.Symbol == s {
				return true
			}
		}
		return false
	}
}

func IsNot(f NodeFilter) NodeFilter {
	return func(n *Node) bool {
		return !f(n)
	}
}

// Fprint writes the subtree one node per line, indented by level.
func Fprint(w io.Writer, n *Node) error {
	bw := bufio.NewWriter(w)
	Walk(n, WalkLtr, func(nn *Node) (bool, bool) {
		bw.WriteString(strings.Repeat("  ", nn.Level-n.Level))
		bw.WriteString(nn.Symbol.String())
		bw.WriteByte('\n')
		return true, true
	})
	return bw.Flush()
}

type jsonNode struct {
	Symbol   grammar.Symbol `json:"symbol"`
	Level    int            `json:"level"`
	Children []*Node        `json:"children,omitempty"`
}

func (n *Node) MarshalJSON() ([]byte, error) {
	return json.Marshal(jsonNode{n.Symbol, n.Level, Children(n)})
}

func (n *Node) UnmarshalJSON(data []byte) error {
	var jn jsonNode
	e := json.Unmarshal(data, &jn)
	if e != nil {
		return e
	}

	*n = Node{Symbol: jn.Symbol, Level: jn.Level}
	for _, c := range jn.Children {
		c.parent = n
		c.prev = n.lastChild
		if n.lastChild == nil {
			n.firstChild = c
		} else {
			n.lastChild.next = c
		}
		n.lastChild = c
	}
	return nil
}
