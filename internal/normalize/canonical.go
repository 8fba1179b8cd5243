package normalize

import (
	"bytes"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"bim-review-service/internal/models"
)

type canonicalFile struct {
	SchemaVersion string           `json:"schema_version"`
	Meshes        json.RawMessage  `json:"meshes"`
	Elements      json.RawMessage  `json:"elements"`
	Info          models.ModelInfo `json:"info"`
}

func present(raw json.RawMessage) bool {
	return len(raw) > 0 && !bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// fromCanonical validates an already canonical document. Broken meshes and
// elements pointing at missing meshes are dropped, never repaired.
func (n *Normalizer) fromCanonical(raw []byte, fileName string) (*Result, error) {
	var file canonicalFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, importError(fileName, "malformed model document", err)
	}
	if !present(file.Meshes) {
		return nil, importError(fileName, "document has no meshes field", nil)
	}
	if !present(file.Elements) {
		return nil, importError(fileName, "document has no elements field", nil)
	}

	var meshes []models.Mesh
	if err := json.Unmarshal(file.Meshes, &meshes); err != nil {
		return nil, importError(fileName, "malformed meshes", err)
	}
	var elements []models.Element
	if err := json.Unmarshal(file.Elements, &elements); err != nil {
		return nil, importError(fileName, "malformed elements", err)
	}

	res := &Result{Format: FormatCanonical}
	doc := models.Document{
		SchemaVersion: file.SchemaVersion,
		Meshes:        make([]models.Mesh, 0, len(meshes)),
		Elements:      make([]models.Element, 0, len(elements)),
		Info:          file.Info,
	}

	known := make(map[models.MeshID]struct{}, len(meshes))
	for _, m := range meshes {
		if _, dup := known[m.MeshID]; dup {
			res.Failures = append(res.Failures, Failure{Subject: string(m.MeshID), Stage: StageMesh, Cause: "duplicate mesh id"})
			continue
		}
		if err := ValidateMesh(m); err != nil {
			res.Failures = append(res.Failures, Failure{Subject: string(m.MeshID), Stage: StageMesh, Cause: err.Error()})
			continue
		}
		known[m.MeshID] = struct{}{}
		doc.Meshes = append(doc.Meshes, m)
	}

	guids := make(map[string]struct{}, len(elements))
	for _, e := range elements {
		if _, ok := known[e.MeshID]; !ok {
			res.Failures = append(res.Failures, Failure{Subject: e.GUID, Stage: StageElement, Cause: fmt.Sprintf("mesh %q not found", e.MeshID)})
			continue
		}
		if _, dup := guids[e.GUID]; dup {
			res.Failures = append(res.Failures, Failure{Subject: e.GUID, Stage: StageElement, Cause: "duplicate guid"})
			continue
		}
		guids[e.GUID] = struct{}{}
		doc.Elements = append(doc.Elements, e)
	}

	if len(doc.Meshes) == 0 {
		return nil, importError(fileName, "document contains no valid meshes", nil)
	}
	for _, f := range res.Failures {
		n.log.Debug("dropped record", zap.String("file", fileName), zap.String("subject", f.Subject),
			zap.String("stage", string(f.Stage)), zap.String("cause", f.Cause))
	}
	res.Document = doc
	return res, nil
}

// ValidateMesh checks that coordinates are xyz triples and that every index
// addresses an existing vertex.
func ValidateMesh(m models.Mesh) error {
	if len(m.Coordinates)%3 != 0 {
		return fmt.Errorf("coordinate count %d is not a multiple of 3", len(m.Coordinates))
	}
	vertices := uint32(m.VertexCount())
	for _, idx := range m.Indices {
		if idx >= vertices {
			return fmt.Errorf("index %d out of range for %d vertices", idx, vertices)
		}
	}
	return nil
}
