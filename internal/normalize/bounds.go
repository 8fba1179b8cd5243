package normalize

import (
	"math"

	"cogentcore.org/core/math32"

	"bim-review-service/internal/models"
)

// bounds is an axis-aligned box in float64. Source coordinates are often
// georeferenced and lose too much precision in float32.
type bounds struct {
	min, max [3]float64
}

func newBounds() bounds {
	b := bounds{}
	for i := 0; i < 3; i++ {
		b.min[i] = math.Inf(1)
		b.max[i] = math.Inf(-1)
	}
	return b
}

func (b *bounds) extend(coords []float64) {
	for i := 0; i+2 < len(coords); i += 3 {
		for axis := 0; axis < 3; axis++ {
			v := coords[i+axis]
			if v < b.min[axis] {
				b.min[axis] = v
			}
			if v > b.max[axis] {
				b.max[axis] = v
			}
		}
	}
}

func (b bounds) empty() bool {
	return b.max[0] < b.min[0]
}

func (b bounds) center() [3]float64 {
	if b.empty() {
		return [3]float64{}
	}
	return [3]float64{
		(b.min[0] + b.max[0]) / 2,
		(b.min[1] + b.max[1]) / 2,
		(b.min[2] + b.max[2]) / 2,
	}
}

// Extent returns the scene-space box of a normalized document: mesh vertices
// offset by their element's translation. Rotation is ignored, the box is a
// framing hint for the viewer camera.
func Extent(doc models.Document) math32.Box3 {
	box := math32.B3Empty()
	meshes := make(map[models.MeshID]models.Mesh, len(doc.Meshes))
	for _, m := range doc.Meshes {
		meshes[m.MeshID] = m
	}
	for _, e := range doc.Elements {
		m, ok := meshes[e.MeshID]
		if !ok {
			continue
		}
		for i := 0; i+2 < len(m.Coordinates); i += 3 {
			box.ExpandByPoint(math32.Vec3(
				float32(m.Coordinates[i]+e.Vector.X),
				float32(m.Coordinates[i+1]+e.Vector.Y),
				float32(m.Coordinates[i+2]+e.Vector.Z),
			))
		}
	}
	return box
}
