// Package conversion talks to the external decoder that turns exchange-format
// (IFC) files into a spatial hierarchy, attributes, property sets and meshes.
package conversion

import (
	"context"

	"github.com/pkg/errors"

	"bim-review-service/internal/models"
)

var (
	ErrNoGeometry         = errors.New("entity has no geometry")
	ErrUnknownEntity      = errors.New("unknown entity")
	ErrUnknownPropertySet = errors.New("unknown property set")
)

// Decoder opens raw exchange-format bytes.
type Decoder interface {
	Decode(ctx context.Context, raw []byte) (Document, error)
}

// Document is a decoded exchange-format model. Lookups are by express id.
type Document interface {
	Hierarchy() (Hierarchy, error)
	Geometry(id int64) (Geometry, error)
	Attributes(id int64) (Attributes, error)
	PropertySets(id int64) ([]int64, error)
	PropertySet(id int64) (PropertySet, error)
	Close() error
}

// Node is one entry of the spatial hierarchy arena. Children are indexes
// into Hierarchy.Nodes, not express ids.
type Node struct {
	ExpressID int64
	Type      string
	Children  []int
}

// Hierarchy is the spatial structure as a flat arena. Root is -1 when empty.
type Hierarchy struct {
	Nodes []Node
	Root  int
}

// Geometry is a triangle mesh in the model's world coordinates.
type Geometry struct {
	Positions []float64
	Indices   []uint32
	Color     *models.Color
}

// Attributes are the direct attributes of an entity.
type Attributes struct {
	Name       string
	GlobalID   string
	ObjectType string
	Type       string
}

// Property is one stringified member of a property set.
type Property struct {
	Name  string
	Value string
}

// PropertySet is a named group of properties.
type PropertySet struct {
	Name       string
	Properties []Property
}
