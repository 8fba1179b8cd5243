package conversion

import (
	"context"
	"os/exec"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const sampleDump = `{
  "hierarchy": {
    "root": 1,
    "nodes": [
      {"id": 1, "type": "IFCPROJECT", "children": [2, 99]},
      {"id": 2, "type": "IFCBUILDINGSTOREY", "children": [3]},
      {"id": 3, "type": "IFCWALL", "children": [1]}
    ]
  },
  "entities": {
    "3": {"type": "IFCWALL", "Name": "Wall-01", "GlobalId": "2O2Fr$t4X7Zf8NOew3FLOH", "ObjectType": "Basic Wall", "psets": [10, 11]}
  },
  "psets": {
    "10": {"name": "Pset_WallCommon", "properties": [
      {"name": "FireRating", "value": "F90"},
      {"name": "IsExternal", "value": true},
      {"name": "ThermalTransmittance", "value": 0.24}
    ]}
  },
  "geometry": {
    "3": {"positions": [0, 0, 0, 1, 0, 0, 0, 1, 0], "indices": [0, 1, 2], "color": {"r": 200, "g": 10, "b": 10, "a": 255}}
  }
}`

func TestParseDumpHierarchy(t *testing.T) {
	doc, err := ParseDump([]byte(sampleDump))
	require.NoError(t, err)

	h, err := doc.Hierarchy()
	require.NoError(t, err)
	require.Equal(t, 0, h.Root)
	require.Len(t, h.Nodes, 3)
	// child 99 has no node entry and is dropped, the 3 -> 1 back edge is kept
	require.Equal(t, []int{1}, h.Nodes[0].Children)
	require.Equal(t, []int{0}, h.Nodes[2].Children)
}

func TestParseDumpLookups(t *testing.T) {
	doc, err := ParseDump([]byte(sampleDump))
	require.NoError(t, err)

	attrs, err := doc.Attributes(3)
	require.NoError(t, err)
	require.Equal(t, "Wall-01", attrs.Name)
	require.Equal(t, "IFCWALL", attrs.Type)

	_, err = doc.Attributes(2)
	require.True(t, errors.Is(err, ErrUnknownEntity))

	g, err := doc.Geometry(3)
	require.NoError(t, err)
	require.Len(t, g.Positions, 9)
	require.NotNil(t, g.Color)
	require.Equal(t, uint8(200), g.Color.R)

	_, err = doc.Geometry(2)
	require.True(t, errors.Is(err, ErrNoGeometry))

	ids, err := doc.PropertySets(3)
	require.NoError(t, err)
	require.Equal(t, []int64{10, 11}, ids)

	ps, err := doc.PropertySet(10)
	require.NoError(t, err)
	require.Equal(t, []Property{
		{Name: "FireRating", Value: "F90"},
		{Name: "IsExternal", Value: "true"},
		{Name: "ThermalTransmittance", Value: "0.24"},
	}, ps.Properties)

	_, err = doc.PropertySet(11)
	require.True(t, errors.Is(err, ErrUnknownPropertySet))
}

func TestCommandDecoderRunsTool(t *testing.T) {
	if _, err := exec.LookPath("cp"); err != nil {
		t.Skip("cp not available")
	}
	dec := NewCommandDecoder("cp", []string{"{input}", "{output}"}, 10*time.Second, zaptest.NewLogger(t))

	doc, err := dec.Decode(context.Background(), []byte(sampleDump))
	require.NoError(t, err)
	defer doc.Close()

	attrs, err := doc.Attributes(3)
	require.NoError(t, err)
	require.Equal(t, "2O2Fr$t4X7Zf8NOew3FLOH", attrs.GlobalID)
}

func TestCommandDecoderReportsFailure(t *testing.T) {
	if _, err := exec.LookPath("false"); err != nil {
		t.Skip("false not available")
	}
	dec := NewCommandDecoder("false", nil, time.Second, nil)
	_, err := dec.Decode(context.Background(), []byte("ISO-10303-21;"))
	require.ErrorContains(t, err, "decoder false failed")
}
