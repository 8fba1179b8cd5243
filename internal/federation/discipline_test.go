package federation

import (
	"testing"

	"github.com/stretchr/testify/require"

	"bim-review-service/internal/models"
)

func TestDisciplineAggregation(t *testing.T) {
	s := NewSession(nil)
	_, err := s.AppendModel(model("a.bim",
		element("A", "IfcColumn", "Disciplina", "Structural"),
		element("B", "IfcDuct", "Discipline", "mep"),
	))
	require.NoError(t, err)
	require.Equal(t, []string{"MEP", "STRUCTURAL"}, s.Disciplines.Available())
	require.Equal(t, []string{"MEP", "STRUCTURAL"}, s.Filter.ActiveDisciplines.Sorted())
}

func TestNewDisciplinesStartActive(t *testing.T) {
	s := NewSession(nil)
	_, err := s.AppendModel(model("a.bim", element("A", "IfcColumn", "Sector", "Structural")))
	require.NoError(t, err)
	require.False(t, s.ToggleDiscipline("STRUCTURAL"))

	_, err = s.AppendModel(model("b.bim",
		element("B", "IfcDuct", "DISCIPLINE", " hvac "),
		element("C", "IfcBeam", "sector", "structural"),
	))
	require.NoError(t, err)
	require.Equal(t, []string{"HVAC", "STRUCTURAL"}, s.Disciplines.Available())
	// the user's choice to hide STRUCTURAL survives the second load
	require.Equal(t, []string{"HVAC"}, s.Filter.ActiveDisciplines.Sorted())
}

func TestLookupDisciplineCandidateOrder(t *testing.T) {
	info := models.NewInfo("Category", "Walls", "SECTOR", "arq", "discipline", "Architecture")
	d, ok := LookupDiscipline(info)
	require.True(t, ok)
	require.Equal(t, "ARCHITECTURE", d)

	d, ok = LookupDiscipline(models.NewInfo("Category", " Walls "))
	require.True(t, ok)
	require.Equal(t, "WALLS", d)

	_, ok = LookupDiscipline(models.NewInfo("Name", "Wall"))
	require.False(t, ok)

	e := element("X", "IfcWall")
	require.Equal(t, UnknownDiscipline, DeriveDiscipline(&e))
	require.Equal(t, Uncategorized, DeriveCategory(&e))

	e = element("Y", "IfcWall", "CATEGORY", " Walls ")
	require.Equal(t, " Walls ", DeriveCategory(&e))
}

func TestFileCategories(t *testing.T) {
	cats := FileCategories([]models.Element{
		element("A", "IfcWall", "Category", "Walls"),
		element("B", "IfcDoor"),
	})
	require.Equal(t, []string{"Uncategorized", "Walls"}, cats.Sorted())
}
