package graphcommons

import (
	"encoding/json"
	"fmt"
	"strings"
)

// GraphRequest is the body of a create or update graph call: graph
// metadata plus the ordered signals to replay.
type GraphRequest struct {
	Metadata Entity
	Signals  []Signal
}

// MarshalJSON flattens the metadata next to the "signals" array.
func (r GraphRequest) MarshalJSON() ([]byte, error) {
	body := make(map[string]any, len(r.Metadata)+1)
	for k, v := range r.Metadata {
		body[k] = v
	}
	if r.Signals != nil {
		body["signals"] = r.Signals
	}
	return json.Marshal(body)
}

// metadataFields are copied from the base graph into a derived graph.
var metadataFields = []string{"status", "license", "users", "layout"}

// SubgraphFromPaths builds the request that recreates, as a new graph named
// name, exactly the nodes and edges visited by paths within base.
//
// Type signals come first, then nodes, then edges: the service rejects an
// entity whose type does not exist yet and an edge whose endpoints do not.
// Nodes and edges visited by several paths are emitted once, at their
// first occurrence. An edge whose endpoint is not among the path nodes is
// an UnresolvedReferenceError.
func SubgraphFromPaths(base *Graph, name string, paths ...Path) (*GraphRequest, error) {
	if len(paths) == 0 {
		return nil, ErrNoPaths
	}
	if base == nil {
		return nil, fmt.Errorf("building subgraph %q: base graph is required", name)
	}

	meta := copyFields(Entity{}, base.Entity, metadataFields...)
	meta["name"] = name
	pathStrings := make([]string, 0, len(paths))
	for _, p := range paths {
		pathStrings = append(pathStrings, p.PathString)
	}
	summary := strings.Join(pathStrings, "\n")
	meta["description"] = withProvenance(summary, base.String("description"))
	meta["subtitle"] = withProvenance(summary, base.String("subtitle"))

	var nodes []Node
	var edges []Edge
	for _, p := range paths {
		nodes = append(nodes, p.Nodes...)
		edges = append(edges, p.Edges...)
	}
	nodes = dedupe(nodes)
	edges = dedupe(edges)

	declared := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		declared[n.ID()] = true
	}
	for _, e := range edges {
		for _, id := range []string{e.From(), e.To()} {
			if !declared[id] {
				return nil, &UnresolvedReferenceError{Kind: KindNode, ID: id, From: "edge " + e.ID()}
			}
		}
	}

	signals := make([]Signal, 0, len(nodes)+len(edges))

	for _, id := range distinct(nodes, nodeTypeID) {
		t, ok := base.GetNodeType(id)
		if !ok {
			return nil, &UnresolvedReferenceError{Kind: KindNodeType, ID: id, From: "graph " + base.ID()}
		}
		s, err := NodeTypeSignal(t, ActionCreate)
		if err != nil {
			return nil, err
		}
		signals = append(signals, s)
	}
	for _, id := range distinct(edges, Edge.TypeID) {
		t, ok := base.GetEdgeType(id)
		if !ok {
			return nil, &UnresolvedReferenceError{Kind: KindEdgeType, ID: id, From: "graph " + base.ID()}
		}
		s, err := EdgeTypeSignal(t, ActionCreate)
		if err != nil {
			return nil, err
		}
		signals = append(signals, s)
	}

	for _, n := range nodes {
		s, err := NodeSignal(n, ActionCreate)
		if err != nil {
			return nil, err
		}
		signals = append(signals, s)
	}
	for _, e := range edges {
		s, err := EdgeSignal(e, ActionCreate, base)
		if err != nil {
			return nil, err
		}
		signals = append(signals, s)
	}

	return &GraphRequest{Metadata: meta, Signals: signals}, nil
}

func withProvenance(summary, original string) string {
	if original == "" {
		return summary
	}
	return summary + "\n\n" + original
}

func nodeTypeID(n Node) string {
	if t := n.Type(); t != nil {
		return t.ID
	}
	return ""
}

// dedupe keeps the first record for each id, preserving order.
func dedupe[T Record](items []T) []T {
	seen := make(map[string]bool, len(items))
	out := make([]T, 0, len(items))
	for _, item := range items {
		if seen[item.ID()] {
			continue
		}
		seen[item.ID()] = true
		out = append(out, item)
	}
	return out
}

// distinct returns the non-empty keys of items in first-seen order.
func distinct[T any](items []T, key func(T) string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, item := range items {
		k := key(item)
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, k)
	}
	return out
}

// ClearSignals deletes every node of g. Edges are removed by the service
// along with their endpoints, so none are emitted.
func ClearSignals(g *Graph) []Signal {
	signals := make([]Signal, 0, len(g.Nodes))
	for _, n := range g.Nodes {
		signals = append(signals, NodeDeleteSignal(n))
	}
	return signals
}

// recordMap is an id-keyed set of records. The service sends an object
// keyed by id, or an empty array when there is nothing to key.
type recordMap map[string]Entity

func (m *recordMap) UnmarshalJSON(b []byte) error {
	var obj map[string]Entity
	if err := json.Unmarshal(b, &obj); err == nil {
		*m = obj
		return nil
	}
	var list []Entity
	if err := json.Unmarshal(b, &list); err != nil {
		return err
	}
	out := make(recordMap, len(list))
	for _, e := range list {
		out[e.ID()] = e
	}
	*m = out
	return nil
}

// pathsPayload is the response of the paths endpoint.
type pathsPayload struct {
	Nodes recordMap `json:"nodes"`
	Edges recordMap `json:"edges"`
	Paths []struct {
		Nodes      []json.RawMessage `json:"nodes"`
		Edges      []json.RawMessage `json:"edges"`
		Dirs       []any             `json:"dirs"`
		PathString string            `json:"path_string"`
	} `json:"paths"`
}

// ParsePaths resolves a paths response, whose paths list node and edge ids
// into top-level id maps, into Paths of full records.
func ParsePaths(data []byte) ([]Path, error) {
	var payload pathsPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("decoding paths: %w", err)
	}

	paths := make([]Path, 0, len(payload.Paths))
	for i, raw := range payload.Paths {
		from := fmt.Sprintf("path %d", i)
		p := Path{Dirs: raw.Dirs, PathString: raw.PathString}
		for _, rawID := range raw.Nodes {
			id, err := rawIDString(rawID)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", from, err)
			}
			n, ok := payload.Nodes[id]
			if !ok {
				return nil, &UnresolvedReferenceError{Kind: KindNode, ID: id, From: from}
			}
			p.Nodes = append(p.Nodes, Node{n})
		}
		for _, rawID := range raw.Edges {
			id, err := rawIDString(rawID)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", from, err)
			}
			e, ok := payload.Edges[id]
			if !ok {
				return nil, &UnresolvedReferenceError{Kind: KindEdge, ID: id, From: from}
			}
			p.Edges = append(p.Edges, Edge{e})
		}
		paths = append(paths, p)
	}
	return paths, nil
}

func rawIDString(raw json.RawMessage) (string, error) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return "", fmt.Errorf("decoding id: %w", err)
	}
	return idString(v), nil
}
