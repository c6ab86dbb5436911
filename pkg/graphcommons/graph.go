package graphcommons

import "encoding/json"

// Graph is a fetched graph payload with id indexes over its nodes, edges and
// types. Indexes are built once in NewGraph; a Graph is read-only afterwards.
type Graph struct {
	Entity

	Nodes     []Node
	Edges     []Edge
	NodeTypes []NodeType
	EdgeTypes []EdgeType

	nodes     map[string]Node
	edges     map[string]Edge
	nodeTypes map[string]NodeType
	edgeTypes map[string]EdgeType
}

// NewGraph builds a Graph from a graph object with optional "nodes",
// "edges", "nodeTypes" and "edgeTypes" arrays. When an id repeats, the
// first occurrence is the one indexed.
func NewGraph(payload Entity) *Graph {
	g := &Graph{
		Entity:    payload,
		Nodes:     entities[Node](payload.Get("nodes"), func(e Entity) Node { return Node{e} }),
		Edges:     entities[Edge](payload.Get("edges"), func(e Entity) Edge { return Edge{e} }),
		NodeTypes: entities[NodeType](payload.Get("nodeTypes"), func(e Entity) NodeType { return NodeType{e} }),
		EdgeTypes: entities[EdgeType](payload.Get("edgeTypes"), func(e Entity) EdgeType { return EdgeType{e} }),
	}
	g.nodes = index(g.Nodes)
	g.edges = index(g.Edges)
	g.nodeTypes = index(g.NodeTypes)
	g.edgeTypes = index(g.EdgeTypes)
	return g
}

// UnmarshalJSON decodes a graph object and builds its indexes.
func (g *Graph) UnmarshalJSON(b []byte) error {
	var payload Entity
	if err := json.Unmarshal(b, &payload); err != nil {
		return err
	}
	*g = *NewGraph(payload)
	return nil
}

// entities converts a decoded JSON array into typed records, skipping
// anything that is not an object.
func entities[T any](raw any, wrap func(Entity) T) []T {
	items, _ := raw.([]any)
	out := make([]T, 0, len(items))
	for _, item := range items {
		switch m := item.(type) {
		case map[string]any:
			out = append(out, wrap(m))
		case Entity:
			out = append(out, wrap(m))
		}
	}
	return out
}

func index[T Record](items []T) map[string]T {
	idx := make(map[string]T, len(items))
	for _, item := range items {
		id := item.ID()
		if _, dup := idx[id]; dup {
			continue
		}
		idx[id] = item
	}
	return idx
}

// GetNode looks up a node by id.
func (g *Graph) GetNode(id string) (Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// GetEdge looks up an edge by id.
func (g *Graph) GetEdge(id string) (Edge, bool) {
	e, ok := g.edges[id]
	return e, ok
}

// GetNodeType looks up a node type by id.
func (g *Graph) GetNodeType(id string) (NodeType, bool) {
	t, ok := g.nodeTypes[id]
	return t, ok
}

// GetEdgeType looks up an edge type by id.
func (g *Graph) GetEdgeType(id string) (EdgeType, bool) {
	t, ok := g.edgeTypes[id]
	return t, ok
}

// EdgesFrom returns the edges leaving node, given as a Node or an id.
// An id that does not resolve to a node of this graph yields no edges.
func (g *Graph) EdgesFrom(node any) []Edge {
	return g.edgesFor(node, Edge.From)
}

// EdgesTo returns the edges entering node, given as a Node or an id.
func (g *Graph) EdgesTo(node any) []Edge {
	return g.edgesFor(node, Edge.To)
}

func (g *Graph) edgesFor(node any, endpoint func(Edge) string) []Edge {
	var id string
	switch n := node.(type) {
	case Node:
		id = n.ID()
	case *Node:
		if n == nil {
			return nil
		}
		id = n.ID()
	case string:
		resolved, ok := g.GetNode(n)
		if !ok {
			return nil
		}
		id = resolved.ID()
	default:
		return nil
	}

	var out []Edge
	for _, e := range g.Edges {
		if endpoint(e) == id {
			out = append(out, e)
		}
	}
	return out
}
