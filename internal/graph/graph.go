// Package graph is the append-only commit tree.
//
// Nodes live in an arena and are addressed by NodeID. Parent and child links
// are NodeIDs, so copying a node allocates a new slot and never aliases
// another node's state. Nodes are only released with the whole Graph.
package graph

import (
	"fmt"

	"svc/internal/change"
	"svc/internal/snapshot"
)

// NodeID addresses a node in its Graph.
type NodeID int

// None is the parent of the root and the head before the first commit.
const None NodeID = -1

func (id NodeID) Valid() bool { return id >= 0 }

// Node is an open staging area or a sealed commit.
type Node struct {
	branch   string
	message  string
	commitID string
	actions  change.Set
	files    *snapshot.Snapshot
	sealed   bool
	parent   NodeID
	children []NodeID
}

func (n *Node) Branch() string   { return n.branch }
func (n *Node) Message() string  { return n.message }
func (n *Node) CommitID() string { return n.commitID }

// Sealed reports whether the node has been committed.
func (n *Node) Sealed() bool { return n.sealed }

// Actions returns a copy of the sealed action list.
func (n *Node) Actions() change.Set {
	return append(change.Set(nil), n.actions...)
}

// Files is the node's tracked set. It stays mutable on sealed nodes so a
// reset can edit history in place.
func (n *Node) Files() *snapshot.Snapshot { return n.files }

func (n *Node) Parent() NodeID { return n.parent }

// Children returns the child handles. The first child of a sealed node is
// the continuation of its own branch; later ones are branch points.
func (n *Node) Children() []NodeID {
	out := make([]NodeID, len(n.children))
	copy(out, n.children)
	return out
}

// Graph owns every node.
type Graph struct {
	nodes []*Node
}

// New creates a graph with one open root node labelled branch.
func New(branch string) *Graph {
	g := &Graph{}
	g.nodes = append(g.nodes, &Node{
		branch: branch,
		files:  snapshot.New(),
		parent: None,
	})
	return g
}

// Root is always the first node.
func (g *Graph) Root() NodeID { return 0 }

func (g *Graph) Len() int { return len(g.nodes) }

// Node returns the node for id, or nil if id is not in this graph.
func (g *Graph) Node(id NodeID) *Node {
	if id < 0 || int(id) >= len(g.nodes) {
		return nil
	}
	return g.nodes[id]
}

func (g *Graph) mustNode(id NodeID) *Node {
	n := g.Node(id)
	if n == nil {
		panic(fmt.Sprintf("graph: unknown node %d", id))
	}
	return n
}

// Spawn appends a new open child of parent holding files. parent must be
// sealed.
func (g *Graph) Spawn(parent NodeID, branch string, files *snapshot.Snapshot) (NodeID, error) {
	p := g.Node(parent)
	if p == nil {
		return None, fmt.Errorf("spawning child: unknown parent %d", parent)
	}
	if !p.sealed {
		return None, fmt.Errorf("spawning child: parent %d is open", parent)
	}
	if files == nil {
		files = snapshot.New()
	}

	id := NodeID(len(g.nodes))
	g.nodes = append(g.nodes, &Node{
		branch: branch,
		files:  files,
		parent: parent,
	})
	p.children = append(p.children, id)
	return id, nil
}

// Seal freezes an open node. A sealed node's id, message and actions never
// change afterwards.
func (g *Graph) Seal(id NodeID, message, commitID string, actions change.Set, files *snapshot.Snapshot) error {
	n := g.Node(id)
	if n == nil {
		return fmt.Errorf("sealing: unknown node %d", id)
	}
	if n.sealed {
		return fmt.Errorf("sealing: node %d is already commit %s", id, n.commitID)
	}
	n.message = message
	n.commitID = commitID
	n.actions = actions
	if files != nil {
		n.files = files
	}
	n.sealed = true
	return nil
}

// Tip follows first children from id until it reaches an open node.
func (g *Graph) Tip(id NodeID) (NodeID, bool) {
	n := g.Node(id)
	for n != nil && n.sealed {
		if len(n.children) == 0 {
			return None, false
		}
		id = n.children[0]
		n = g.Node(id)
	}
	if n == nil {
		return None, false
	}
	return id, true
}

// Ancestors returns the handles from id's parent up to the root.
func (g *Graph) Ancestors(id NodeID) []NodeID {
	var out []NodeID
	for n := g.Node(id); n != nil && n.parent.Valid(); n = g.Node(n.parent) {
		out = append(out, n.parent)
	}
	return out
}

// Depth is the number of parent links from id to the root.
func (g *Graph) Depth(id NodeID) int {
	return len(g.Ancestors(id))
}

// Walk visits every node depth-first from the root, parents before
// children, children in creation order.
func (g *Graph) Walk(fn func(id NodeID, n *Node)) {
	if len(g.nodes) == 0 {
		return
	}
	stack := []NodeID{g.Root()}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n := g.mustNode(id)
		fn(id, n)
		for i := len(n.children) - 1; i >= 0; i-- {
			stack = append(stack, n.children[i])
		}
	}
}
