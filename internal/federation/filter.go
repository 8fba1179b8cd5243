package federation

import (
	"strings"

	"bim-review-service/internal/models"
)

const (
	FullOpacity  = 1.0
	GhostOpacity = 0.1
)

// ThreadLookup reports whether an element guid has a non-empty comment thread.
type ThreadLookup interface {
	HasThread(guid string) bool
}

// IsVisible applies the hard-hide rules in order; the first match hides.
func IsVisible(e *models.Element, f models.FilterState, threads ThreadLookup) bool {
	if f.HiddenElementGUIDs.Has(e.GUID) {
		return false
	}
	if len(f.ActiveDisciplines) > 0 && !f.ActiveDisciplines.Has(DeriveDiscipline(e)) {
		return false
	}
	if f.HiddenCategories.Has(DeriveCategory(e)) {
		return false
	}
	if f.IsolateByComment && (threads == nil || !threads.HasThread(e.GUID)) {
		return false
	}
	return true
}

// MatchesSearch is a case-insensitive substring test on the type and every
// info value. An empty query matches everything.
func MatchesSearch(e *models.Element, query string) bool {
	if query == "" {
		return true
	}
	q := strings.ToLower(query)
	if strings.Contains(strings.ToLower(e.Type), q) {
		return true
	}
	matched := false
	e.Info.Range(func(_, v string) bool {
		matched = strings.Contains(strings.ToLower(v), q)
		return !matched
	})
	return matched
}

// Opacity ghosts elements that do not match the search. It never hides.
func Opacity(e *models.Element, f models.FilterState) float64 {
	if MatchesSearch(e, f.SearchQuery) {
		return FullOpacity
	}
	return GhostOpacity
}

// Decision is everything the renderer needs to draw one element.
type Decision struct {
	GUID       string  `json:"guid"`
	Visible    bool    `json:"visible"`
	Opacity    float64 `json:"opacity"`
	HasIssue   bool    `json:"hasIssue"`
	Selected   bool    `json:"selected"`
	Discipline string  `json:"discipline"`
	Category   string  `json:"category"`
}

func Decide(e *models.Element, f models.FilterState, threads ThreadLookup) Decision {
	return Decision{
		GUID:       e.GUID,
		Visible:    IsVisible(e, f, threads),
		Opacity:    Opacity(e, f),
		HasIssue:   threads != nil && threads.HasThread(e.GUID),
		Discipline: DeriveDiscipline(e),
		Category:   DeriveCategory(e),
	}
}

// CountVisible returns how many elements pass IsVisible.
func CountVisible(elements []models.Element, f models.FilterState, threads ThreadLookup) int {
	n := 0
	for i := range elements {
		if IsVisible(&elements[i], f, threads) {
			n++
		}
	}
	return n
}
