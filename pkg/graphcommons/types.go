package graphcommons

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Kind tags a record with the domain type it represents.
type Kind string

// Record kinds.
const (
	KindNode     Kind = "node"
	KindEdge     Kind = "edge"
	KindNodeType Kind = "nodetype"
	KindEdgeType Kind = "edgetype"
	KindSignal   Kind = "signal"
	KindPath     Kind = "path"
)

// Record is the common surface of every domain record.
type Record interface {
	Get(key string) any
	ID() string
	Kind() Kind
}

// Entity is a generic JSON object. Field access never fails: absent keys
// resolve to nil or the zero value of the requested type.
type Entity map[string]any

// Get returns the raw value stored under key, or nil.
func (e Entity) Get(key string) any {
	if e == nil {
		return nil
	}
	return e[key]
}

// String returns the value under key if it is a string.
func (e Entity) String(key string) string {
	s, _ := e.Get(key).(string)
	return s
}

// Map returns the nested object under key, or nil.
func (e Entity) Map(key string) map[string]any {
	switch v := e.Get(key).(type) {
	case map[string]any:
		return v
	case Entity:
		return v
	}
	return nil
}

// ID returns the entity id normalized to a string. Numeric ids are
// formatted without a fractional part.
func (e Entity) ID() string {
	return idString(e.Get("id"))
}

// Name returns the entity name.
func (e Entity) Name() string {
	return e.String("name")
}

// MarshalJSON encodes the entity as a flat object.
func (e Entity) MarshalJSON() ([]byte, error) {
	if e == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(map[string]any(e))
}

// UnmarshalJSON decodes a flat object into the entity.
func (e *Entity) UnmarshalJSON(b []byte) error {
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return err
	}
	*e = m
	return nil
}

func idString(v any) string {
	switch id := v.(type) {
	case nil:
		return ""
	case string:
		return id
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64)
	case int:
		return strconv.Itoa(id)
	case int64:
		return strconv.FormatInt(id, 10)
	case json.Number:
		return id.String()
	default:
		return fmt.Sprint(id)
	}
}

// TypeRef is the type summary embedded in a node payload.
type TypeRef struct {
	ID    string
	Name  string
	Color string
}

// Node is a graph vertex.
type Node struct{ Entity }

func (Node) Kind() Kind { return KindNode }

// Type returns the node's embedded type, or nil when the payload has none.
func (n Node) Type() *TypeRef {
	t := Entity(n.Map("type"))
	if t == nil {
		return nil
	}
	return &TypeRef{ID: t.ID(), Name: t.Name(), Color: t.String("color")}
}

// Edge is a directed connection between two nodes of the same graph.
type Edge struct{ Entity }

func (Edge) Kind() Kind { return KindEdge }

// From returns the id of the source node.
func (e Edge) From() string { return idString(e.Get("from")) }

// To returns the id of the target node.
func (e Edge) To() string { return idString(e.Get("to")) }

// TypeID returns the id of the edge's EdgeType.
func (e Edge) TypeID() string { return idString(e.Get("type_id")) }

// TypeName returns the edge type display name.
func (e Edge) TypeName() string { return e.String("edge_type") }

// NodeType describes a class of nodes.
type NodeType struct{ Entity }

func (NodeType) Kind() Kind { return KindNodeType }

// EdgeType describes a class of edges.
type EdgeType struct{ Entity }

func (EdgeType) Kind() Kind { return KindEdgeType }

// Path is one route through a graph as returned by the paths endpoint.
type Path struct {
	Nodes      []Node
	Edges      []Edge
	Dirs       []any
	PathString string
}

func (Path) Kind() Kind { return KindPath }

// ID returns the path string, the only identifying value a path carries.
func (p Path) ID() string { return p.PathString }

// Get exposes the path fields by their wire names.
func (p Path) Get(key string) any {
	switch key {
	case "nodes":
		return p.Nodes
	case "edges":
		return p.Edges
	case "dirs":
		return p.Dirs
	case "path_string":
		return p.PathString
	}
	return nil
}
