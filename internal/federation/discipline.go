package federation

import (
	"strings"

	"bim-review-service/internal/models"
)

const (
	UnknownDiscipline = "UNKNOWN"
	Uncategorized     = "Uncategorized"
)

// disciplineKeys are checked in this order against case-folded info keys.
var disciplineKeys = []string{"disciplina", "discipline", "sector", "category"}

var categoryKeys = []string{"category"}

// lookupFolded returns the value of the first candidate present in info,
// comparing keys after case folding.
func lookupFolded(info models.Info, candidates []string) (string, bool) {
	for _, c := range candidates {
		var (
			value string
			found bool
		)
		info.Range(func(k, v string) bool {
			if strings.ToLower(k) == c {
				value, found = v, true
				return false
			}
			return true
		})
		if found {
			return value, true
		}
	}
	return "", false
}

// LookupDiscipline returns the normalized discipline tag of an element.
func LookupDiscipline(info models.Info) (string, bool) {
	v, ok := lookupFolded(info, disciplineKeys)
	if !ok {
		return "", false
	}
	return strings.ToUpper(strings.TrimSpace(v)), true
}

func DeriveDiscipline(e *models.Element) string {
	if d, ok := LookupDiscipline(e.Info); ok {
		return d
	}
	return UnknownDiscipline
}

// LookupCategory returns the element's category exactly as written.
func LookupCategory(info models.Info) (string, bool) {
	return lookupFolded(info, categoryKeys)
}

func DeriveCategory(e *models.Element) string {
	if c, ok := LookupCategory(e.Info); ok {
		return c
	}
	return Uncategorized
}

// FileDisciplines returns the distinct disciplines of a set of elements.
func FileDisciplines(elements []models.Element) models.StringSet {
	out := models.NewStringSet()
	for i := range elements {
		out.Add(DeriveDiscipline(&elements[i]))
	}
	return out
}

// FileCategories returns the distinct categories of a set of elements.
func FileCategories(elements []models.Element) models.StringSet {
	out := models.NewStringSet()
	for i := range elements {
		out.Add(DeriveCategory(&elements[i]))
	}
	return out
}

// DisciplineSet is the union of disciplines over every model ever appended.
type DisciplineSet struct {
	available models.StringSet
}

func NewDisciplineSet() *DisciplineSet {
	return &DisciplineSet{available: models.NewStringSet()}
}

// Merge adds found to the available set and returns the tags that were new.
func (d *DisciplineSet) Merge(found models.StringSet) []string {
	var added []string
	for _, tag := range found.Sorted() {
		if !d.available.Has(tag) {
			d.available.Add(tag)
			added = append(added, tag)
		}
	}
	return added
}

// Available returns all known disciplines sorted ascending.
func (d *DisciplineSet) Available() []string {
	return d.available.Sorted()
}
