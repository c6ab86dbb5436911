package graphcommons

import "fmt"

// Action verbs accepted by the encoders.
const (
	ActionCreate = "create"
	ActionUpdate = "update"
)

// Signal actions understood by the service.
const (
	SignalNodeCreate     = "node_create"
	SignalNodeUpdate     = "node_update"
	SignalNodeDelete     = "node_delete"
	SignalEdgeCreate     = "edge_create"
	SignalEdgeUpdate     = "edge_update"
	SignalNodeTypeCreate = "nodetype_create"
	SignalNodeTypeUpdate = "nodetype_update"
	SignalEdgeTypeCreate = "edgetype_create"
	SignalEdgeTypeUpdate = "edgetype_update"
)

// Allow-lists of fields copied into type signals.
var (
	nodeTypeFields = []string{"name", "color", "name_alias", "properties", "image_as_icon", "image", "size_limit", "size"}
	edgeTypeFields = []string{"name", "color", "name_alias", "properties", "image_as_icon", "image", "weighted"}
)

// Signal is one mutation operation. It is built only to be serialized into
// a request body.
type Signal struct{ Entity }

func (Signal) Kind() Kind { return KindSignal }

// Action returns the signal action, e.g. "node_create".
func (s Signal) Action() string { return s.String("action") }

func newSignal(action string, fields Entity) Signal {
	fields["action"] = action
	return Signal{fields}
}

func signalAction(prefix, action string) (string, error) {
	if action != ActionCreate && action != ActionUpdate {
		return "", fmt.Errorf("%w: %q", ErrInvalidAction, action)
	}
	return prefix + "_" + action, nil
}

// copyFields copies keys from src, substituting nil for absent ones.
func copyFields(dst, src Entity, keys ...string) Entity {
	for _, k := range keys {
		dst[k] = src.Get(k)
	}
	return dst
}

// withID adds the target id to update signals.
func withID(fields Entity, action string, r Record) Entity {
	if action == ActionUpdate {
		fields["id"] = r.Get("id")
	}
	return fields
}

// NodeSignal encodes node as a node_create or node_update signal. A node
// without a type yields null "type" and "color" fields.
func NodeSignal(node Node, action string) (Signal, error) {
	name, err := signalAction("node", action)
	if err != nil {
		return Signal{}, err
	}
	fields := copyFields(Entity{}, node.Entity, "name", "reference", "image", "url", "description", "properties")
	t := nodeType(node)
	fields["type"], fields["color"] = t.Get("name"), t.Get("color")
	return newSignal(name, withID(fields, action, node)), nil
}

// EdgeSignal encodes edge as an edge_create or edge_update signal. Both
// endpoints must resolve in g, since the service matches them by name and
// type.
func EdgeSignal(edge Edge, action string, g *Graph) (Signal, error) {
	name, err := signalAction("edge", action)
	if err != nil {
		return Signal{}, err
	}
	if g == nil {
		return Signal{}, fmt.Errorf("encoding edge %s: graph is required", edge.ID())
	}
	from, ok := g.GetNode(edge.From())
	if !ok {
		return Signal{}, &UnresolvedReferenceError{Kind: KindNode, ID: edge.From(), From: "edge " + edge.ID()}
	}
	to, ok := g.GetNode(edge.To())
	if !ok {
		return Signal{}, &UnresolvedReferenceError{Kind: KindNode, ID: edge.To(), From: "edge " + edge.ID()}
	}

	fields := copyFields(Entity{}, edge.Entity, "reference", "weight", "properties")
	fields["name"] = edge.Get("edge_type")
	fields["from_name"], fields["from_type"] = from.Get("name"), typeName(from)
	fields["to_name"], fields["to_type"] = to.Get("name"), typeName(to)
	return newSignal(name, withID(fields, action, edge)), nil
}

// nodeType returns the raw type object embedded in n. Absent fields stay
// absent, so they encode as null rather than "".
func nodeType(n Node) Entity {
	return Entity(n.Map("type"))
}

func typeName(n Node) any {
	return nodeType(n).Get("name")
}

// NodeTypeSignal encodes t as a nodetype_create or nodetype_update signal.
func NodeTypeSignal(t NodeType, action string) (Signal, error) {
	name, err := signalAction("nodetype", action)
	if err != nil {
		return Signal{}, err
	}
	fields := copyFields(Entity{}, t.Entity, nodeTypeFields...)
	return newSignal(name, withID(fields, action, t)), nil
}

// EdgeTypeSignal encodes t as an edgetype_create or edgetype_update signal.
func EdgeTypeSignal(t EdgeType, action string) (Signal, error) {
	name, err := signalAction("edgetype", action)
	if err != nil {
		return Signal{}, err
	}
	fields := copyFields(Entity{}, t.Entity, edgeTypeFields...)
	return newSignal(name, withID(fields, action, t)), nil
}

// NodeDeleteSignal removes node; the service drops its edges with it.
func NodeDeleteSignal(node Node) Signal {
	return newSignal(SignalNodeDelete, Entity{"id": node.Get("id"), "name": node.Get("name")})
}

// Encode dispatches to the encoder for r's kind. g is only consulted for
// edges.
func Encode(r Record, action string, g *Graph) (Signal, error) {
	switch v := r.(type) {
	case Node:
		return NodeSignal(v, action)
	case Edge:
		return EdgeSignal(v, action, g)
	case NodeType:
		return NodeTypeSignal(v, action)
	case EdgeType:
		return EdgeTypeSignal(v, action)
	case nil:
		return Signal{}, fmt.Errorf("cannot encode nil record")
	}
	return Signal{}, fmt.Errorf("cannot encode %s as a signal", r.Kind())
}
