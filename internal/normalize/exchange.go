package normalize

import (
	"context"
	"fmt"
	"strconv"

	"cogentcore.org/core/math32"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"bim-review-service/internal/conversion"
	"bim-review-service/internal/models"
)

// DefaultElementColor is used when the decoder reports no surface colour.
var DefaultElementColor = models.Color{R: 190, G: 190, B: 190, A: 255}

// upAxisRotation is the quarter turn about X applied to every exchange-format
// element; the source and the viewer disagree on the vertical axis.
var upAxisRotation = func() models.Rotation {
	q := math32.NewQuatAxisAngle(math32.Vec3(1, 0, 0), math32.Pi/2)
	return models.Rotation{Qx: float64(q.X), Qy: float64(q.Y), Qz: float64(q.Z), Qw: float64(q.W)}
}()

type candidate struct {
	id       int64
	nodeType string
}

type extracted struct {
	candidate
	geometry conversion.Geometry
}

// fromExchange decodes an IFC file. Each candidate is processed on its own:
// a failure skips that candidate and is recorded in Result.Failures.
func (n *Normalizer) fromExchange(ctx context.Context, raw []byte, fileName string) (*Result, error) {
	if n.decoder == nil {
		return nil, importError(fileName, "no exchange-format decoder configured", nil)
	}
	doc, err := n.decoder.Decode(ctx, raw)
	if err != nil {
		return nil, importError(fileName, "decode exchange format", err)
	}
	defer doc.Close()

	h, err := doc.Hierarchy()
	if err != nil {
		return nil, importError(fileName, "read spatial hierarchy", err)
	}
	candidates := collectCandidates(h)

	res := &Result{Format: FormatExchange}
	fail := func(id int64, stage Stage, err error) {
		res.Failures = append(res.Failures, Failure{Subject: strconv.FormatInt(id, 10), Stage: stage, Cause: err.Error()})
		n.log.Debug("skipped candidate", zap.String("file", fileName), zap.Int64("id", id),
			zap.String("stage", string(stage)), zap.Error(err))
	}

	// Pass 1: geometry and the global bounds. The centre is fixed before any
	// element is built.
	var (
		got    []extracted
		bounds = newBounds()
	)
	for _, c := range candidates {
		g, err := fetchGeometry(doc, c.id)
		if err == nil {
			err = validateGeometry(g)
		}
		if err != nil {
			fail(c.id, StageGeometry, err)
			continue
		}
		bounds.extend(g.Positions)
		got = append(got, extracted{candidate: c, geometry: g})
	}
	if len(got) == 0 {
		return nil, importError(fileName, "no element produced geometry", nil)
	}
	center := bounds.center()

	// Pass 2: meshes and elements.
	doc2 := models.Document{
		SchemaVersion: models.CurrentSchemaVersion,
		Meshes:        make([]models.Mesh, 0, len(got)),
		Elements:      make([]models.Element, 0, len(got)),
		Info:          models.ModelInfo{Comments: []models.Comment{}},
	}
	guids := make(map[string]struct{}, len(got))
	for _, x := range got {
		attrs, err := fetchAttributes(doc, x.id)
		if err != nil {
			fail(x.id, StageProperties, err)
			continue
		}
		guid := attrs.GlobalID
		if guid == "" {
			guid = fmt.Sprintf("ifc-%d", x.id)
		}
		if _, dup := guids[guid]; dup {
			fail(x.id, StageElement, errors.Errorf("duplicate guid %s", guid))
			continue
		}
		guids[guid] = struct{}{}

		meshID := models.MeshID(strconv.FormatInt(x.id, 10))
		doc2.Meshes = append(doc2.Meshes, centeredMesh(meshID, x.geometry, center))

		elementType := attrs.Type
		if elementType == "" {
			elementType = x.nodeType
		}
		color := DefaultElementColor
		if x.geometry.Color != nil {
			color = *x.geometry.Color
		}
		doc2.Elements = append(doc2.Elements, models.Element{
			MeshID:   meshID,
			Rotation: upAxisRotation,
			GUID:     guid,
			Type:     elementType,
			Info:     n.flattenProperties(doc, x.id, attrs, fail),
			Color:    color,
		})
	}
	if len(doc2.Meshes) == 0 {
		return nil, importError(fileName, "no element could be normalized", nil)
	}

	res.Document = doc2
	return res, nil
}

// flattenProperties builds element info: direct attributes first, then the
// members of every property set. The first value written for a key wins.
func (n *Normalizer) flattenProperties(doc conversion.Document, id int64, attrs conversion.Attributes, fail func(int64, Stage, error)) models.Info {
	info := models.NewInfo(
		"Name", attrs.Name,
		"GlobalId", attrs.GlobalID,
		"ObjectType", attrs.ObjectType,
	)
	psets, err := fetchPropertySets(doc, id)
	if err != nil {
		fail(id, StagePropertySet, err)
		return info
	}
	for _, psID := range psets {
		ps, err := fetchPropertySet(doc, psID)
		if err != nil {
			fail(id, StagePropertySet, errors.Wrapf(err, "pset %d", psID))
			continue
		}
		for _, p := range ps.Properties {
			info.SetIfAbsent(p.Name, p.Value)
		}
	}
	return info
}

// collectCandidates walks the hierarchy depth-first with an explicit stack.
// Every visited node is a candidate, not only leaves; nodes without geometry
// drop out in pass 1. Cycles and repeated ids are tolerated.
func collectCandidates(h conversion.Hierarchy) []candidate {
	if h.Root < 0 || h.Root >= len(h.Nodes) {
		return nil
	}
	visited := make([]bool, len(h.Nodes))
	seen := make(map[int64]struct{}, len(h.Nodes))
	var out []candidate

	stack := []int{h.Root}
	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if i < 0 || i >= len(h.Nodes) || visited[i] {
			continue
		}
		visited[i] = true

		node := h.Nodes[i]
		if _, dup := seen[node.ExpressID]; !dup {
			seen[node.ExpressID] = struct{}{}
			out = append(out, candidate{id: node.ExpressID, nodeType: node.Type})
		}
		for c := len(node.Children) - 1; c >= 0; c-- {
			stack = append(stack, node.Children[c])
		}
	}
	return out
}

func validateGeometry(g conversion.Geometry) error {
	return ValidateMesh(models.Mesh{Coordinates: g.Positions, Indices: g.Indices})
}

func centeredMesh(id models.MeshID, g conversion.Geometry, center [3]float64) models.Mesh {
	coords := make([]float64, len(g.Positions))
	for i, v := range g.Positions {
		coords[i] = v - center[i%3]
	}
	indices := g.Indices
	if len(indices) == 0 {
		indices = make([]uint32, len(coords)/3)
		for i := range indices {
			indices[i] = uint32(i)
		}
	}
	return models.Mesh{MeshID: id, Coordinates: coords, Indices: indices}
}

func recovered(r any) error {
	if err, ok := r.(error); ok {
		return errors.Wrap(err, "decoder panic")
	}
	return errors.Errorf("decoder panic: %v", r)
}

func fetchGeometry(doc conversion.Document, id int64) (g conversion.Geometry, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = recovered(r)
		}
	}()
	return doc.Geometry(id)
}

func fetchAttributes(doc conversion.Document, id int64) (a conversion.Attributes, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = recovered(r)
		}
	}()
	return doc.Attributes(id)
}

func fetchPropertySets(doc conversion.Document, id int64) (ids []int64, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = recovered(r)
		}
	}()
	return doc.PropertySets(id)
}

func fetchPropertySet(doc conversion.Document, id int64) (ps conversion.PropertySet, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = recovered(r)
		}
	}()
	return doc.PropertySet(id)
}
