package federation

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"bim-review-service/internal/models"
)

func TestIsolateWithoutCommentsChangesNothing(t *testing.T) {
	s := NewSession(zaptest.NewLogger(t))
	_, err := s.AppendModel(model("a.bim", element("A", "IfcWall"), element("B", "IfcSlab")))
	require.NoError(t, err)
	s.HideElement("B")
	before := s.Filter.HiddenElementGUIDs.Sorted()

	_, err = s.IsolateCommented()
	require.ErrorIs(t, err, ErrNothingToIsolate)
	require.Equal(t, before, s.Filter.HiddenElementGUIDs.Sorted())
}

func TestIsolateHidesUncommentedAcrossModels(t *testing.T) {
	s := NewSession(nil)
	_, err := s.AppendModel(model("a.bim", element("A", "IfcWall"), element("B", "IfcSlab")))
	require.NoError(t, err)
	_, err = s.AppendModel(model("b.bim", element("C", "IfcDuct")))
	require.NoError(t, err)
	_, err = s.AddComment("C", "clash with slab", "ana", nil)
	require.NoError(t, err)

	n, err := s.IsolateCommented()
	require.NoError(t, err)
	require.Equal(t, 2, n)
	require.Equal(t, []string{"A", "B"}, s.Filter.HiddenElementGUIDs.Sorted())
}

func TestAppendMergesEmbeddedComments(t *testing.T) {
	s := NewSession(nil)
	m := model("a.bim", element("A", "IfcWall"))
	m.Info.Comments = []models.Comment{{UUID: "A", ID: "c1", Text: "from file"}}
	s.SetSearch("wall")

	_, err := s.AppendModel(m)
	require.NoError(t, err)
	require.True(t, s.Annotations.HasThread("A"))
	require.Empty(t, s.Filter.SearchQuery)
}

func TestHistoryModeBlocksMutations(t *testing.T) {
	s := NewSession(nil)
	id, err := s.AppendModel(model("a.bim", element("A", "IfcWall")))
	require.NoError(t, err)
	c, err := s.AddComment("A", "check", "ana", nil)
	require.NoError(t, err)
	require.NoError(t, s.SelectElement(id, "A"))

	m, _ := s.Registry.Get(id)
	m.ContentHash = "etag-head"
	color := m.UIColor

	old := models.Document{
		SchemaVersion: "0.9",
		Meshes:        []models.Mesh{{MeshID: "m"}},
		Elements:      []models.Element{element("A0", "IfcWall")},
	}
	require.NoError(t, s.ApplyRevision(id, "rev-1", old))
	require.True(t, s.HistoryMode())
	_, selected := s.SelectedElement()
	require.False(t, selected)

	m, _ = s.Registry.Get(id)
	require.Equal(t, id, m.ID)
	require.Equal(t, color, m.UIColor)
	require.Equal(t, "etag-head", m.ContentHash)
	require.Equal(t, "rev-1", m.RevisionID)
	require.Equal(t, "A0", m.Elements[0].GUID)

	_, err = s.AddComment("A", "more", "ana", nil)
	require.ErrorIs(t, err, ErrHistoryMode)
	require.ErrorIs(t, s.RemoveComment("A", c.ID), ErrHistoryMode)
	_, err = s.IsolateCommented()
	require.ErrorIs(t, err, ErrHistoryMode)
	_, err = s.AppendModel(model("b.bim"))
	require.ErrorIs(t, err, ErrHistoryMode)

	s.ExitHistoryMode()
	require.NoError(t, s.RemoveComment("A", c.ID))
	require.ErrorIs(t, s.ApplyRevision(models.Model{}.ID, "rev-1", old), ErrModelNotFound)
}

func TestSceneReportsDecisions(t *testing.T) {
	s := NewSession(nil)
	id, err := s.AppendModel(model("a.bim",
		element("A", "IfcWall", "Category", "Walls"),
		element("B", "IfcDoor", "Category", "Doors"),
	))
	require.NoError(t, err)
	require.NoError(t, s.SelectElement(id, "B"))
	require.ErrorIs(t, s.SelectElement(id, "nope"), ErrElementNotFound)
	require.True(t, s.ToggleCategory("Doors"))
	require.NoError(t, s.Registry.SetVisible(id, false))

	scene := s.Scene()
	require.Len(t, scene, 1)
	require.False(t, scene[0].Visible)
	require.True(t, scene[0].Elements[0].Visible)
	require.False(t, scene[0].Elements[1].Visible)
	require.True(t, scene[0].Elements[1].Selected)

	s.ShowAllLayers()
	require.True(t, s.Scene()[0].Elements[1].Visible)

	require.NoError(t, s.RemoveModel(id))
	_, selected := s.SelectedElement()
	require.False(t, selected)
}

func TestReplaceFilterFillsNilSets(t *testing.T) {
	s := NewSession(nil)
	s.ReplaceFilter(models.FilterState{SearchQuery: "duct", IsolateByComment: true})
	require.NotNil(t, s.Filter.HiddenElementGUIDs)
	require.NotNil(t, s.Filter.ActiveDisciplines)
	require.False(t, s.ToggleIsolateMode())
	s.HideElement("x")
	s.ShowAllElements()
	require.Empty(t, s.Filter.HiddenElementGUIDs)
}
