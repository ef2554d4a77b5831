package graph

import (
	"testing"

	"svc/internal/change"
	"svc/internal/snapshot"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seal(t *testing.T, g *Graph, id NodeID, commitID string) NodeID {
	require.NoError(t, g.Seal(id, "msg "+commitID, commitID, change.Set{{Kind: change.Add, Name: commitID}}, nil))
	child, err := g.Spawn(id, g.Node(id).Branch(), g.Node(id).Files().Clone())
	require.NoError(t, err)
	return child
}

func TestNewGraphHasOpenRoot(t *testing.T) {
	g := New("master")

	root := g.Node(g.Root())
	require.NotNil(t, root)
	assert.Equal(t, "master", root.Branch())
	assert.False(t, root.Sealed())
	assert.Equal(t, None, root.Parent())
	assert.Equal(t, 1, g.Len())

	tip, ok := g.Tip(g.Root())
	assert.True(t, ok)
	assert.Equal(t, g.Root(), tip)
}

func TestSealIsOneWay(t *testing.T) {
	g := New("master")
	require.NoError(t, g.Seal(g.Root(), "init", "de0bef", nil, nil))

	err := g.Seal(g.Root(), "again", "000001", nil, nil)
	assert.Error(t, err)
	assert.Equal(t, "de0bef", g.Node(g.Root()).CommitID())
	assert.Equal(t, "init", g.Node(g.Root()).Message())
}

func TestSpawnRequiresSealedParent(t *testing.T) {
	g := New("master")

	_, err := g.Spawn(g.Root(), "dev", nil)
	assert.Error(t, err)

	_, err = g.Spawn(NodeID(42), "dev", nil)
	assert.Error(t, err)
	assert.Equal(t, 1, g.Len())
}

func TestTipFollowsFirstChild(t *testing.T) {
	g := New("master")
	c1 := seal(t, g, g.Root(), "000001")

	// branch point at the root
	dev, err := g.Spawn(g.Root(), "dev", snapshot.New())
	require.NoError(t, err)

	c2 := seal(t, g, c1, "000002")

	tip, ok := g.Tip(g.Root())
	require.True(t, ok)
	assert.Equal(t, c2, tip)

	tip, ok = g.Tip(dev)
	require.True(t, ok)
	assert.Equal(t, dev, tip)

	assert.Equal(t, []NodeID{c1, dev}, g.Node(g.Root()).Children())
}

func TestAncestorsAndDepth(t *testing.T) {
	g := New("master")
	id := g.Root()
	var chain []NodeID
	for i := 0; i < 4; i++ {
		chain = append(chain, id)
		id = seal(t, g, id, string(rune('a'+i)))
	}

	assert.Equal(t, 4, g.Depth(id))
	assert.Equal(t, []NodeID{chain[3], chain[2], chain[1], chain[0]}, g.Ancestors(id))
	assert.Equal(t, 0, g.Depth(g.Root()))
	assert.Nil(t, g.Ancestors(g.Root()))
}

func TestWalkOrder(t *testing.T) {
	g := New("master")
	c1 := seal(t, g, g.Root(), "000001")
	dev, err := g.Spawn(g.Root(), "dev", nil)
	require.NoError(t, err)

	var seen []NodeID
	g.Walk(func(id NodeID, _ *Node) { seen = append(seen, id) })

	assert.Equal(t, []NodeID{g.Root(), c1, dev}, seen)
}

func TestView(t *testing.T) {
	g := New("master")
	g.Node(g.Root()).Files().Add(snapshot.Entry{Name: "a.txt", Fingerprint: 560})
	c1 := seal(t, g, g.Root(), "de0bef")
	_, err := g.Spawn(g.Root(), "dev", nil)
	require.NoError(t, err)

	v, ok := g.View(g.Root())
	require.True(t, ok)
	assert.Equal(t, "de0bef", v.ID)
	assert.True(t, v.Sealed)
	assert.Equal(t, []string{"open:master", "open:dev"}, v.Children)
	assert.Equal(t, []FileView{{Name: "a.txt", Fingerprint: 560}}, v.Files)
	assert.Len(t, v.Actions, 1)

	child, ok := g.View(c1)
	require.True(t, ok)
	assert.Empty(t, child.ID)
	assert.Equal(t, "de0bef", child.Parent)
	assert.Nil(t, child.Actions)

	_, ok = g.View(NodeID(99))
	assert.False(t, ok)
}

func TestActionsAreCopied(t *testing.T) {
	g := New("master")
	seal(t, g, g.Root(), "000001")

	acts := g.Node(g.Root()).Actions()
	acts[0].Name = "mutated"
	assert.Equal(t, "000001", g.Node(g.Root()).Actions()[0].Name)
}
