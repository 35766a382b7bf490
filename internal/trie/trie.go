// Package trie provides the prefix tree behind gcomplete's word completion.
// Keys are treated as sequences of Unicode code points and completions are
// produced in ascending code point order.
package trie

import (
	"slices"

	"github.com/samber/lo"
)

// Node is a single position in the trie. The path of runes from the root to
// a node spells a prefix; terminal marks that the prefix is a stored word.
type Node struct {
	children map[rune]*Node
	terminal bool
}

func newNode() *Node {
	return &Node{}
}

// Terminal reports whether the path to this node spells a stored word.
func (n *Node) Terminal() bool {
	return n.terminal
}

// child returns the child for r, or nil.
func (n *Node) child(r rune) *Node {
	if n.children == nil {
		return nil
	}
	return n.children[r]
}

// sortedKeys returns the child runes in ascending order.
func (n *Node) sortedKeys() []rune {
	keys := lo.Keys(n.children)
	slices.Sort(keys)
	return keys
}

// Trie is a prefix tree of words. It is not safe for concurrent use;
// callers that share a Trie across goroutines must provide their own locking.
type Trie struct {
	root  *Node
	words int
	nodes int
}

// New creates an empty Trie.
func New() *Trie {
	return &Trie{
		root:  newNode(),
		nodes: 1,
	}
}

// FromWords creates a Trie holding the given words.
func FromWords(words ...string) *Trie {
	t := New()
	for _, w := range words {
		t.Insert(w)
	}
	return t
}

// Insert stores word in the trie. Inserting the empty string marks the root
// terminal, making "" itself a stored word. Inserting an existing word is a
// no-op.
func (t *Trie) Insert(word string) {
	node := t.root
	for _, r := range word {
		next := node.child(r)
		if next == nil {
			if node.children == nil {
				node.children = make(map[rune]*Node)
			}
			next = newNode()
			node.children[r] = next
			t.nodes++
		}
		node = next
	}

	if !node.terminal {
		node.terminal = true
		t.words++
	}
}

// lookupNode returns the node reached by consuming prefix from the root,
// or nil if the path does not exist.
func (t *Trie) lookupNode(prefix string) *Node {
	node := t.root
	for _, r := range prefix {
		node = node.child(r)
		if node == nil {
			return nil
		}
	}
	return node
}

// Contains reports whether word is a stored word.
func (t *Trie) Contains(word string) bool {
	node := t.lookupNode(word)
	return node != nil && node.terminal
}

// HasPrefix reports whether any stored word starts with prefix.
func (t *Trie) HasPrefix(prefix string) bool {
	node := t.lookupNode(prefix)
	if node == nil {
		return false
	}
	return node.terminal || len(node.children) > 0
}

// Complete returns every stored word that starts with prefix, in ascending
// code point order. The result is empty, never nil, when nothing matches.
func (t *Trie) Complete(prefix string) []string {
	results := make([]string, 0)
	t.Walk(prefix, func(word string) bool {
		results = append(results, word)
		return true
	})
	return results
}

// Words returns every stored word. It is equivalent to Complete("").
func (t *Trie) Words() []string {
	return t.Complete("")
}

// Len returns the number of stored words.
func (t *Trie) Len() int {
	return t.words
}

// NodeCount returns the number of nodes in the trie, including the root.
func (t *Trie) NodeCount() int {
	return t.nodes
}

// WalkFunc is called for each completed word. Returning false stops the walk.
type WalkFunc func(word string) bool

// frame is a pending node on the walk stack together with the runes that
// lead to it.
type frame struct {
	node *Node
	path []rune
}

// Walk visits every stored word starting with prefix in the same order as
// Complete. Each node of the prefix subtree is visited exactly once.
func (t *Trie) Walk(prefix string, fn WalkFunc) {
	start := t.lookupNode(prefix)
	if start == nil {
		return
	}

	stack := []frame{{node: start, path: []rune(prefix)}}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if top.node.terminal {
			if !fn(string(top.path)) {
				return
			}
		}

		// Push in descending order so the smallest rune is popped first.
		keys := top.node.sortedKeys()
		for i := len(keys) - 1; i >= 0; i-- {
			r := keys[i]
			path := make([]rune, len(top.path)+1)
			copy(path, top.path)
			path[len(top.path)] = r
			stack = append(stack, frame{node: top.node.children[r], path: path})
		}
	}
}
