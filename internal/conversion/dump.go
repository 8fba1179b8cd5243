package conversion

import (
	"bytes"
	"encoding/json"

	"github.com/pkg/errors"

	"bim-review-service/internal/models"
)

// The dump is the JSON file written by the decoder tool:
//
//	{
//	  "hierarchy": {"root": 1, "nodes": [{"id": 1, "type": "IFCPROJECT", "children": [2]}]},
//	  "entities": {"2": {"type": "IFCWALL", "Name": "...", "GlobalId": "...", "ObjectType": "...", "psets": [10]}},
//	  "psets": {"10": {"name": "Pset_WallCommon", "properties": [{"name": "FireRating", "value": "F90"}]}},
//	  "geometry": {"2": {"positions": [...], "indices": [...], "color": {"r": 0, "g": 0, "b": 0, "a": 255}}}
//	}
type dump struct {
	Hierarchy struct {
		Root  int64      `json:"root"`
		Nodes []dumpNode `json:"nodes"`
	} `json:"hierarchy"`
	Entities map[int64]dumpEntity   `json:"entities"`
	PSets    map[int64]dumpPSet     `json:"psets"`
	Geometry map[int64]dumpGeometry `json:"geometry"`
}

type dumpNode struct {
	ID       int64   `json:"id"`
	Type     string  `json:"type"`
	Children []int64 `json:"children"`
}

type dumpEntity struct {
	Type       string  `json:"type"`
	Name       string  `json:"Name"`
	GlobalID   string  `json:"GlobalId"`
	ObjectType string  `json:"ObjectType"`
	PSets      []int64 `json:"psets"`
}

type dumpPSet struct {
	Name       string         `json:"name"`
	Properties []dumpProperty `json:"properties"`
}

type dumpProperty struct {
	Name  string          `json:"name"`
	Value json.RawMessage `json:"value"`
}

type dumpGeometry struct {
	Positions []float64     `json:"positions"`
	Indices   []uint32      `json:"indices"`
	Color     *models.Color `json:"color"`
}

// DumpDocument is a Document backed by a parsed decoder dump.
type DumpDocument struct {
	d dump
}

// ParseDump parses the decoder's JSON output.
func ParseDump(data []byte) (*DumpDocument, error) {
	var d dump
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, errors.Wrap(err, "parse decoder output")
	}
	return &DumpDocument{d: d}, nil
}

// Hierarchy converts the id-linked node list into an index arena. Child ids
// without a node entry are dropped.
func (doc *DumpDocument) Hierarchy() (Hierarchy, error) {
	h := Hierarchy{Root: -1, Nodes: make([]Node, 0, len(doc.d.Hierarchy.Nodes))}
	index := make(map[int64]int, len(doc.d.Hierarchy.Nodes))
	for _, n := range doc.d.Hierarchy.Nodes {
		if _, dup := index[n.ID]; dup {
			continue
		}
		index[n.ID] = len(h.Nodes)
		h.Nodes = append(h.Nodes, Node{ExpressID: n.ID, Type: n.Type})
	}
	for _, n := range doc.d.Hierarchy.Nodes {
		parent := index[n.ID]
		if len(h.Nodes[parent].Children) > 0 {
			continue
		}
		for _, c := range n.Children {
			if ci, ok := index[c]; ok {
				h.Nodes[parent].Children = append(h.Nodes[parent].Children, ci)
			}
		}
	}
	if len(h.Nodes) == 0 {
		return h, nil
	}
	root, ok := index[doc.d.Hierarchy.Root]
	if !ok {
		return h, errors.Errorf("hierarchy root %d has no node", doc.d.Hierarchy.Root)
	}
	h.Root = root
	return h, nil
}

func (doc *DumpDocument) Geometry(id int64) (Geometry, error) {
	g, ok := doc.d.Geometry[id]
	if !ok || len(g.Positions) == 0 {
		return Geometry{}, errors.Wrapf(ErrNoGeometry, "entity %d", id)
	}
	return Geometry{Positions: g.Positions, Indices: g.Indices, Color: g.Color}, nil
}

func (doc *DumpDocument) Attributes(id int64) (Attributes, error) {
	e, ok := doc.d.Entities[id]
	if !ok {
		return Attributes{}, errors.Wrapf(ErrUnknownEntity, "entity %d", id)
	}
	return Attributes{Name: e.Name, GlobalID: e.GlobalID, ObjectType: e.ObjectType, Type: e.Type}, nil
}

func (doc *DumpDocument) PropertySets(id int64) ([]int64, error) {
	e, ok := doc.d.Entities[id]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownEntity, "entity %d", id)
	}
	return e.PSets, nil
}

func (doc *DumpDocument) PropertySet(id int64) (PropertySet, error) {
	ps, ok := doc.d.PSets[id]
	if !ok {
		return PropertySet{}, errors.Wrapf(ErrUnknownPropertySet, "pset %d", id)
	}
	out := PropertySet{Name: ps.Name, Properties: make([]Property, 0, len(ps.Properties))}
	for _, p := range ps.Properties {
		out.Properties = append(out.Properties, Property{Name: p.Name, Value: propertyText(p.Value)})
	}
	return out, nil
}

func (doc *DumpDocument) Close() error { return nil }

func propertyText(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}
