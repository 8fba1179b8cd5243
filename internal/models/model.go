package models

import (
	"bytes"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// CurrentSchemaVersion is written into documents produced by the exchange-format importer.
const CurrentSchemaVersion = "1.0.0"

// Vector is the translation applied to an element's mesh.
type Vector struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Rotation is a unit quaternion.
type Rotation struct {
	Qx float64 `json:"qx"`
	Qy float64 `json:"qy"`
	Qz float64 `json:"qz"`
	Qw float64 `json:"qw"`
}

// Color is an 8-bit RGBA source colour.
type Color struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
	A uint8 `json:"a"`
}

// MeshID identifies a mesh inside one model. Files written by older exporters
// carry numeric ids, so both JSON numbers and strings are accepted.
type MeshID string

func (id *MeshID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = MeshID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return errors.Wrap(err, "mesh_id must be a string or a number")
	}
	*id = MeshID(n.String())
	return nil
}

// Mesh is a flat triangle mesh. Coordinates hold x,y,z triples.
type Mesh struct {
	MeshID      MeshID    `json:"mesh_id"`
	Coordinates []float64 `json:"coordinates"`
	Indices     []uint32  `json:"indices"`
}

// VertexCount returns the number of xyz triples in the mesh.
func (m Mesh) VertexCount() int {
	return len(m.Coordinates) / 3
}

// Element is one placed building element.
type Element struct {
	MeshID   MeshID   `json:"mesh_id"`
	Vector   Vector   `json:"vector"`
	Rotation Rotation `json:"rotation"`
	GUID     string   `json:"guid"`
	Type     string   `json:"type"`
	Info     Info     `json:"info"`
	Color    Color    `json:"color"`
}

// Document is the canonical model file.
type Document struct {
	SchemaVersion string    `json:"schema_version"`
	Meshes        []Mesh    `json:"meshes"`
	Elements      []Element `json:"elements"`
	Info          ModelInfo `json:"info"`
}

// Model is a Document loaded into the review session.
type Model struct {
	ID          uuid.UUID `json:"id"`
	FileName    string    `json:"fileName"`
	FilePath    string    `json:"filePath"`
	RevisionID  string    `json:"revisionId,omitempty"`
	ContentHash string    `json:"contentHash,omitempty"`
	UIColor     string    `json:"uiColor"`
	Visible     bool      `json:"visible"`
	Document
}

// ModelSummary is the lightweight view of a Model used in listings.
type ModelSummary struct {
	ID            uuid.UUID `json:"id"`
	FileName      string    `json:"fileName"`
	FilePath      string    `json:"filePath"`
	RevisionID    string    `json:"revisionId,omitempty"`
	SchemaVersion string    `json:"schemaVersion"`
	UIColor       string    `json:"uiColor"`
	Visible       bool      `json:"visible"`
	Selected      bool      `json:"selected"`
	Meshes        int       `json:"meshes"`
	Elements      int       `json:"elements"`
}

// Summary builds the listing view of the model.
func (m *Model) Summary(selected bool) ModelSummary {
	return ModelSummary{
		ID:            m.ID,
		FileName:      m.FileName,
		FilePath:      m.FilePath,
		RevisionID:    m.RevisionID,
		SchemaVersion: m.SchemaVersion,
		UIColor:       m.UIColor,
		Visible:       m.Visible,
		Selected:      selected,
		Meshes:        len(m.Meshes),
		Elements:      len(m.Elements),
	}
}

// GUIDs returns the guids of all elements in file order.
func (m *Model) GUIDs() []string {
	guids := make([]string, 0, len(m.Elements))
	for _, e := range m.Elements {
		guids = append(guids, e.GUID)
	}
	return guids
}

// FindElement returns the element with the given guid.
func (m *Model) FindElement(guid string) (*Element, bool) {
	for i := range m.Elements {
		if m.Elements[i].GUID == guid {
			return &m.Elements[i], true
		}
	}
	return nil, false
}
