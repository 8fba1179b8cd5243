package normalize

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"bim-review-service/internal/conversion"
	"bim-review-service/internal/models"
)

type fakeDoc struct {
	hierarchy conversion.Hierarchy
	geometry  map[int64]conversion.Geometry
	panics    map[int64]bool
	attrs     map[int64]conversion.Attributes
	psets     map[int64][]int64
	sets      map[int64]conversion.PropertySet
	closed    bool
}

func (d *fakeDoc) Hierarchy() (conversion.Hierarchy, error) { return d.hierarchy, nil }

func (d *fakeDoc) Geometry(id int64) (conversion.Geometry, error) {
	if d.panics[id] {
		panic("tessellation failed")
	}
	g, ok := d.geometry[id]
	if !ok {
		return conversion.Geometry{}, conversion.ErrNoGeometry
	}
	return g, nil
}

func (d *fakeDoc) Attributes(id int64) (conversion.Attributes, error) {
	a, ok := d.attrs[id]
	if !ok {
		return conversion.Attributes{}, conversion.ErrUnknownEntity
	}
	return a, nil
}

func (d *fakeDoc) PropertySets(id int64) ([]int64, error) { return d.psets[id], nil }

func (d *fakeDoc) PropertySet(id int64) (conversion.PropertySet, error) {
	ps, ok := d.sets[id]
	if !ok {
		return conversion.PropertySet{}, conversion.ErrUnknownPropertySet
	}
	return ps, nil
}

func (d *fakeDoc) Close() error {
	d.closed = true
	return nil
}

type fakeDecoder struct {
	doc   *fakeDoc
	calls int
}

func (f *fakeDecoder) Decode(_ context.Context, _ []byte) (conversion.Document, error) {
	f.calls++
	return f.doc, nil
}

// cube returns the eight corners of an axis-aligned cube.
func cube(cx, cy, cz, half float64) []float64 {
	var out []float64
	for _, dx := range []float64{-half, half} {
		for _, dy := range []float64{-half, half} {
			for _, dz := range []float64{-half, half} {
				out = append(out, cx+dx, cy+dy, cz+dz)
			}
		}
	}
	return out
}

// towerDoc: project(1) -> storey(2) -> wall(3), slab(4), beam(5, panics), door(6, no attributes),
// plus a back edge from the slab to the project.
func towerDoc() *fakeDoc {
	red := models.Color{R: 255, A: 255}
	return &fakeDoc{
		hierarchy: conversion.Hierarchy{
			Root: 0,
			Nodes: []conversion.Node{
				{ExpressID: 1, Type: "IFCPROJECT", Children: []int{1}},
				{ExpressID: 2, Type: "IFCBUILDINGSTOREY", Children: []int{2, 3, 4, 5}},
				{ExpressID: 3, Type: "IFCWALL"},
				{ExpressID: 4, Type: "IFCSLAB", Children: []int{0}},
				{ExpressID: 5, Type: "IFCBEAM"},
				{ExpressID: 6, Type: "IFCDOOR"},
			},
		},
		geometry: map[int64]conversion.Geometry{
			3: {Positions: cube(412000, 5650000, 300, 0.5), Color: &red},
			4: {Positions: cube(412010, 5650000, 300, 0.5)},
			6: {Positions: cube(412005, 5650000, 300, 0.5)},
		},
		panics: map[int64]bool{5: true},
		attrs: map[int64]conversion.Attributes{
			3: {Name: "Wall-01", GlobalID: "WALL-GUID", ObjectType: "Basic Wall", Type: "IFCWALL"},
			4: {Name: "Slab-01", ObjectType: "Floor", Type: "IFCSLAB"},
		},
		psets: map[int64][]int64{3: {10, 11, 12}},
		sets: map[int64]conversion.PropertySet{
			10: {Name: "Pset_WallCommon", Properties: []conversion.Property{
				{Name: "FireRating", Value: "F90"},
				{Name: "Disciplina", Value: "Structural"},
			}},
			12: {Name: "Custom", Properties: []conversion.Property{
				{Name: "FireRating", Value: "F30"},
				{Name: "Name", Value: "overridden"},
			}},
		},
	}
}

func TestExchangePartialSuccess(t *testing.T) {
	doc := towerDoc()
	n := NewNormalizer(&fakeDecoder{doc: doc}, zaptest.NewLogger(t))

	res, err := n.Normalize(context.Background(), []byte("ISO-10303-21;\nHEADER;"), "tower.ifc")
	require.NoError(t, err)
	require.True(t, doc.closed)
	require.Equal(t, FormatExchange, res.Format)
	require.Equal(t, models.CurrentSchemaVersion, res.Document.SchemaVersion)
	require.NotNil(t, res.Document.Info.Comments)
	require.Empty(t, res.Document.Info.Comments)

	// the door has geometry but no attributes, so only the wall and slab survive
	require.Len(t, res.Document.Meshes, 2)
	require.Len(t, res.Document.Elements, 2)

	stages := map[string]Stage{}
	for _, f := range res.Failures {
		if _, ok := stages[f.Subject]; !ok {
			stages[f.Subject] = f.Stage
		}
	}
	require.Equal(t, StageGeometry, stages["1"])
	require.Equal(t, StageGeometry, stages["2"])
	require.Equal(t, StageGeometry, stages["5"])
	require.Equal(t, StagePropertySet, stages["3"])
	require.Equal(t, StageProperties, stages["6"])

	wall := res.Document.Elements[0]
	require.Equal(t, "WALL-GUID", wall.GUID)
	require.Equal(t, "IFCWALL", wall.Type)
	require.Equal(t, models.MeshID("3"), wall.MeshID)
	require.Equal(t, models.Color{R: 255, A: 255}, wall.Color)
	require.Equal(t, []string{"Name", "GlobalId", "ObjectType", "FireRating", "Disciplina"}, wall.Info.Keys())
	rating, _ := wall.Info.Get("FireRating")
	require.Equal(t, "F90", rating)
	name, _ := wall.Info.Get("Name")
	require.Equal(t, "Wall-01", name)

	slab := res.Document.Elements[1]
	require.Equal(t, "ifc-4", slab.GUID)
	require.Equal(t, DefaultElementColor, slab.Color)

	for _, e := range res.Document.Elements {
		require.Equal(t, models.Vector{}, e.Vector)
		require.InDelta(t, 0.70710678, e.Rotation.Qx, 1e-6)
		require.InDelta(t, 0, e.Rotation.Qy, 1e-9)
		require.InDelta(t, 0, e.Rotation.Qz, 1e-9)
		require.InDelta(t, 0.70710678, e.Rotation.Qw, 1e-6)
	}

	// generated sequential indices
	require.Equal(t, []uint32{0, 1, 2, 3, 4, 5, 6, 7}, res.Document.Meshes[0].Indices)
}

func TestExchangeCentering(t *testing.T) {
	doc := towerDoc()
	n := NewNormalizer(&fakeDecoder{doc: doc}, zaptest.NewLogger(t))

	res, err := n.Normalize(context.Background(), []byte("ISO-10303-21;"), "tower.ifc")
	require.NoError(t, err)

	var rawSum, centeredSum [3]float64
	var count float64
	for _, m := range res.Document.Meshes {
		raw := doc.geometry[map[models.MeshID]int64{"3": 3, "4": 4}[m.MeshID]].Positions
		require.Len(t, m.Coordinates, len(raw))
		for i := range raw {
			rawSum[i%3] += raw[i]
			centeredSum[i%3] += m.Coordinates[i]
		}
		count += float64(len(raw) / 3)
	}
	for axis := 0; axis < 3; axis++ {
		mean := rawSum[axis] / count
		subtracted := doc.geometry[3].Positions[axis] - res.Document.Meshes[0].Coordinates[axis]
		require.InDelta(t, mean, subtracted, 1e-4)
		require.InDelta(t, 0, centeredSum[axis]/count, 1e-4)
	}
}

func TestExchangeWithoutGeometry(t *testing.T) {
	doc := towerDoc()
	doc.geometry = nil
	n := NewNormalizer(&fakeDecoder{doc: doc}, nil)

	_, err := n.Normalize(context.Background(), []byte("ISO-10303-21;"), "empty.ifc")
	var importErr *ImportError
	require.True(t, errors.As(err, &importErr))
	require.Equal(t, "empty.ifc", importErr.FileName)
}

func TestCollectCandidatesVisitsEveryNodeOnce(t *testing.T) {
	h := conversion.Hierarchy{
		Root: 0,
		Nodes: []conversion.Node{
			{ExpressID: 10, Children: []int{1, 2}},
			{ExpressID: 20, Children: []int{0, 3}},
			{ExpressID: 30, Children: []int{1, 7}},
			{ExpressID: 20},
		},
	}
	var ids []int64
	for _, c := range collectCandidates(h) {
		ids = append(ids, c.id)
	}
	require.Equal(t, []int64{10, 20, 30}, ids)

	require.Empty(t, collectCandidates(conversion.Hierarchy{Root: -1}))
}

const brokenCanonical = `{
  "schema_version": "0.9.2",
  "meshes": [
    {"mesh_id": 1, "coordinates": [0,0,0, 1,0,0, 0,1,0], "indices": [0,1,2]},
    {"mesh_id": "2", "coordinates": [0,0,0, 1], "indices": []},
    {"mesh_id": "3", "coordinates": [0,0,0, 1,0,0, 0,1,0], "indices": [0,1,3]},
    {"mesh_id": "1", "coordinates": [5,5,5], "indices": [0]},
    {"mesh_id": "4", "coordinates": [0,0,0, 0,0,1, 0,1,0], "indices": [2,1,0]}
  ],
  "elements": [
    {"mesh_id": "1", "guid": "A", "type": "IfcWall", "info": {"Disciplina": "Structural", "Height": 3.2},
     "vector": {"x": 1, "y": 2, "z": 3}, "rotation": {"qx": 0, "qy": 0, "qz": 0, "qw": 1},
     "color": {"r": 10, "g": 20, "b": 30, "a": 255}},
    {"mesh_id": "2", "guid": "B", "type": "IfcSlab", "info": {}},
    {"mesh_id": "9", "guid": "C", "type": "IfcDoor", "info": {}},
    {"mesh_id": "4", "guid": "A", "type": "IfcBeam", "info": {}},
    {"mesh_id": 4, "guid": "D", "type": "IfcBeam", "info": {"Discipline": "mep", "Fixed": true}}
  ],
  "info": {"author": {"name": "ACME"}, "comments": [
    {"uuid": "A", "text": "crack", "author": "ana", "date": "2024-05-01T10:00:00Z", "id": "c1"}
  ]}
}`

func TestCanonicalDropsBrokenRecords(t *testing.T) {
	n := NewNormalizer(nil, zaptest.NewLogger(t))

	res, err := n.Normalize(context.Background(), []byte(brokenCanonical), "site.bim")
	require.NoError(t, err)
	require.Equal(t, FormatCanonical, res.Format)
	require.Equal(t, "0.9.2", res.Document.SchemaVersion)

	meshIDs := map[models.MeshID]bool{}
	for _, m := range res.Document.Meshes {
		meshIDs[m.MeshID] = true
	}
	require.Equal(t, map[models.MeshID]bool{"1": true, "4": true}, meshIDs)
	require.Equal(t, []float64{0, 0, 0, 1, 0, 0, 0, 1, 0}, res.Document.Meshes[0].Coordinates)

	var guids []string
	for _, e := range res.Document.Elements {
		require.True(t, meshIDs[e.MeshID], "element %s references missing mesh %s", e.GUID, e.MeshID)
		guids = append(guids, e.GUID)
	}
	require.Equal(t, []string{"A", "D"}, guids)
	require.Len(t, res.Failures, 6)

	height, _ := res.Document.Elements[0].Info.Get("Height")
	require.Equal(t, "3.2", height)
	fixed, _ := res.Document.Elements[1].Info.Get("Fixed")
	require.Equal(t, "true", fixed)
	require.Len(t, res.Document.Info.Comments, 1)
}

func TestCanonicalRoundTrip(t *testing.T) {
	n := NewNormalizer(nil, nil)

	first, err := n.Normalize(context.Background(), []byte(brokenCanonical), "site.bim")
	require.NoError(t, err)

	out, err := json.MarshalIndent(first.Document, "", "  ")
	require.NoError(t, err)

	second, err := n.Normalize(context.Background(), out, "site.bim")
	require.NoError(t, err)
	require.Empty(t, second.Failures)
	require.Equal(t, first.Document, second.Document)

	again, err := json.MarshalIndent(second.Document, "", "  ")
	require.NoError(t, err)
	require.JSONEq(t, string(out), string(again))
	require.Contains(t, string(out), `"author": {`)
}

func TestCanonicalImportErrors(t *testing.T) {
	n := NewNormalizer(nil, nil)
	cases := map[string]string{
		"not json":        `{"meshes": [`,
		"no meshes":       `{"elements": []}`,
		"null meshes":     `{"meshes": null, "elements": []}`,
		"no elements":     `{"meshes": [{"mesh_id": "1", "coordinates": [0,0,0], "indices": [0]}]}`,
		"no valid meshes": `{"meshes": [{"mesh_id": "1", "coordinates": [0,0], "indices": []}], "elements": []}`,
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := n.Normalize(context.Background(), []byte(doc), "bad.json")
			var importErr *ImportError
			require.True(t, errors.As(err, &importErr), "got %v", err)
		})
	}
}

func TestHeaderRoutesToDecoder(t *testing.T) {
	dec := &fakeDecoder{doc: towerDoc()}
	n := NewNormalizer(dec, nil)

	_, err := n.Normalize(context.Background(), []byte("\n  ISO-10303-21;\nHEADER;"), "renamed.bim")
	require.NoError(t, err)
	require.Equal(t, 1, dec.calls)

	_, err = n.Normalize(context.Background(), []byte(brokenCanonical), "site.bim")
	require.NoError(t, err)
	require.Equal(t, 1, dec.calls)
}

func zipOf(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestZippedUpload(t *testing.T) {
	n := NewNormalizer(nil, nil)

	res, err := n.Normalize(context.Background(), zipOf(t, map[string]string{
		"export/site.bim":   brokenCanonical,
		"export/readme.txt": "exported from the authoring tool",
	}), "site.zip")
	require.NoError(t, err)
	require.Equal(t, "export/site.bim", res.Source)
	require.Len(t, res.Document.Elements, 2)

	_, err = n.Normalize(context.Background(), zipOf(t, map[string]string{
		"a.bim": brokenCanonical,
		"b.bim": brokenCanonical,
	}), "two.zip")
	var importErr *ImportError
	require.True(t, errors.As(err, &importErr))
}

func TestNormalizeCanonicalRejectsExchangeFormat(t *testing.T) {
	n := NewNormalizer(&fakeDecoder{doc: towerDoc()}, nil)
	_, err := n.NormalizeCanonical([]byte("ISO-10303-21;"), "tower.ifc")
	var importErr *ImportError
	require.True(t, errors.As(err, &importErr))
}

func TestExtentCoversTranslatedMeshes(t *testing.T) {
	n := NewNormalizer(nil, nil)
	res, err := n.Normalize(context.Background(), []byte(brokenCanonical), "site.bim")
	require.NoError(t, err)

	box := Extent(res.Document)
	require.InDelta(t, 0, box.Min.X, 1e-6)
	require.InDelta(t, 2, box.Max.X, 1e-6)
	require.InDelta(t, 3, box.Max.Y, 1e-6)
	require.InDelta(t, 3, box.Max.Z, 1e-6)
}
