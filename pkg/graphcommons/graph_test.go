package graphcommons

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const baseGraphJSON = `{
	"id": "g1",
	"name": "Base",
	"status": 0,
	"license": "CC BY",
	"users": [{"id": "u1"}],
	"layout": {"springLength": 100},
	"description": "base description",
	"subtitle": "base subtitle",
	"nodes": [
		{"id": "1", "name": "A", "type": {"id": "t1", "name": "Person", "color": "#f00"}},
		{"id": "2", "name": "B", "type": {"id": "t1", "name": "Person", "color": "#f00"}},
		{"id": "3", "name": "C", "type": {"id": "t2", "name": "Org", "color": "#0f0"}}
	],
	"edges": [
		{"id": "10", "from": "1", "to": "2", "type_id": "e1", "edge_type": "KNOWS", "weight": 2},
		{"id": "11", "from": "2", "to": "3", "type_id": "e2", "edge_type": "WORKS_AT"},
		{"id": "12", "from": "1", "to": "3", "type_id": "e2", "edge_type": "WORKS_AT"}
	],
	"nodeTypes": [
		{"id": "t1", "name": "Person", "color": "#f00", "size": 10},
		{"id": "t2", "name": "Org", "color": "#0f0"}
	],
	"edgeTypes": [
		{"id": "e1", "name": "KNOWS", "weighted": true},
		{"id": "e2", "name": "WORKS_AT", "weighted": false}
	]
}`

func mustGraph(t *testing.T, data string) *Graph {
	t.Helper()
	var g Graph
	require.NoError(t, json.Unmarshal([]byte(data), &g))
	return &g
}

func TestNewGraph(t *testing.T) {
	t.Run("absent arrays are empty", func(t *testing.T) {
		g := NewGraph(Entity{"id": "g"})

		assert.Empty(t, g.Nodes)
		assert.Empty(t, g.Edges)
		assert.Empty(t, g.NodeTypes)
		assert.Empty(t, g.EdgeTypes)
		_, ok := g.GetNode("1")
		assert.False(t, ok)
	})

	t.Run("indexes every record", func(t *testing.T) {
		g := mustGraph(t, baseGraphJSON)

		require.Len(t, g.Nodes, 3)
		require.Len(t, g.Edges, 3)
		for _, n := range g.Nodes {
			got, ok := g.GetNode(n.ID())
			require.True(t, ok)
			assert.Equal(t, n, got)
		}
		for _, e := range g.Edges {
			got, ok := g.GetEdge(e.ID())
			require.True(t, ok)
			assert.Equal(t, e, got)
		}

		nt, ok := g.GetNodeType("t2")
		require.True(t, ok)
		assert.Equal(t, "Org", nt.Name())

		et, ok := g.GetEdgeType("e1")
		require.True(t, ok)
		assert.Equal(t, true, et.Get("weighted"))

		_, ok = g.GetEdgeType("missing")
		assert.False(t, ok)
	})

	t.Run("first duplicate wins", func(t *testing.T) {
		g := mustGraph(t, `{"nodes": [{"id": "1", "name": "first"}, {"id": "1", "name": "second"}]}`)

		n, ok := g.GetNode("1")
		require.True(t, ok)
		assert.Equal(t, "first", n.Name())
		assert.Len(t, g.Nodes, 2)
	})

	t.Run("non-object items are skipped", func(t *testing.T) {
		g := mustGraph(t, `{"nodes": [{"id": "1"}, "junk", null]}`)
		assert.Len(t, g.Nodes, 1)
	})

	t.Run("metadata stays accessible", func(t *testing.T) {
		g := mustGraph(t, baseGraphJSON)
		assert.Equal(t, "g1", g.ID())
		assert.Equal(t, "base description", g.String("description"))
	})
}

func TestGraphAdjacency(t *testing.T) {
	g := mustGraph(t, baseGraphJSON)

	edgeIDs := func(edges []Edge) []string {
		ids := make([]string, 0, len(edges))
		for _, e := range edges {
			ids = append(ids, e.ID())
		}
		return ids
	}

	t.Run("edges from node", func(t *testing.T) {
		a, _ := g.GetNode("1")
		assert.Equal(t, []string{"10", "12"}, edgeIDs(g.EdgesFrom(a)))
		assert.Equal(t, []string{"10", "12"}, edgeIDs(g.EdgesFrom(&a)))
	})

	t.Run("edges to id", func(t *testing.T) {
		assert.Equal(t, []string{"11", "12"}, edgeIDs(g.EdgesTo("3")))
		assert.Empty(t, g.EdgesTo("1"))
	})

	t.Run("unresolved id yields no edges", func(t *testing.T) {
		assert.Empty(t, g.EdgesFrom("404"))
		assert.Empty(t, g.EdgesTo("404"))
	})

	t.Run("unsupported argument yields no edges", func(t *testing.T) {
		assert.Empty(t, g.EdgesFrom(42))
		assert.Empty(t, g.EdgesFrom((*Node)(nil)))
	})

	t.Run("every edge is reported from its source and to its target", func(t *testing.T) {
		for _, n := range g.Nodes {
			for _, e := range g.EdgesFrom(n) {
				assert.Equal(t, n.ID(), e.From())
			}
			for _, e := range g.EdgesTo(n) {
				assert.Equal(t, n.ID(), e.To())
			}
		}
		total := 0
		for _, n := range g.Nodes {
			total += len(g.EdgesFrom(n))
		}
		assert.Equal(t, len(g.Edges), total)
	})
}
