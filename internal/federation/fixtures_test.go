package federation

import "bim-review-service/internal/models"

func element(guid, typ string, info ...string) models.Element {
	return models.Element{MeshID: "m", GUID: guid, Type: typ, Info: models.NewInfo(info...)}
}

func model(name string, elements ...models.Element) *models.Model {
	return &models.Model{
		FileName: name,
		FilePath: "models/" + name,
		Document: models.Document{
			SchemaVersion: "1.0.0",
			Meshes:        []models.Mesh{{MeshID: "m", Coordinates: []float64{0, 0, 0}, Indices: []uint32{0}}},
			Elements:      elements,
		},
	}
}
