// Package federation holds the federated review state: loaded models, the
// discipline union, filter rules and comment threads.
//
// A Session is not safe for concurrent use. It is owned by one controller
// that serialises access.
package federation

import (
	"github.com/google/uuid"
	"go.uber.org/zap"

	"bim-review-service/internal/models"
)

// ElementRef points at one element of one model.
type ElementRef struct {
	ModelID uuid.UUID `json:"modelId"`
	GUID    string    `json:"guid"`
}

type Session struct {
	Registry    *Registry
	Disciplines *DisciplineSet
	Annotations *Annotations
	Filter      models.FilterState

	selectedElement *ElementRef
	historyMode     bool
	log             *zap.Logger
}

func NewSession(log *zap.Logger) *Session {
	if log == nil {
		log = zap.NewNop()
	}
	return &Session{
		Registry:    NewRegistry(),
		Disciplines: NewDisciplineSet(),
		Annotations: NewAnnotations(log),
		Filter:      models.NewFilterState(),
		log:         log,
	}
}

// AppendModel registers m, folds its disciplines into the union (new ones
// start active), merges its embedded comments and clears the search.
func (s *Session) AppendModel(m *models.Model) (uuid.UUID, error) {
	if s.historyMode {
		return uuid.Nil, ErrHistoryMode
	}
	id := s.Registry.Append(m)
	for _, tag := range s.Disciplines.Merge(FileDisciplines(m.Elements)) {
		s.Filter.ActiveDisciplines.Add(tag)
	}
	merged := s.Annotations.Merge(m.Info.Comments)
	s.Filter.SearchQuery = ""
	s.log.Info("model appended",
		zap.Stringer("id", id),
		zap.String("file", m.FileName),
		zap.Int("elements", len(m.Elements)),
		zap.Int("comments_merged", merged))
	return id, nil
}

func (s *Session) RemoveModel(id uuid.UUID) error {
	if err := s.Registry.Remove(id); err != nil {
		return err
	}
	if s.selectedElement != nil && s.selectedElement.ModelID == id {
		s.selectedElement = nil
	}
	return nil
}

// SelectElement marks guid in model id as the selected element.
func (s *Session) SelectElement(id uuid.UUID, guid string) error {
	m, ok := s.Registry.Get(id)
	if !ok {
		return ErrModelNotFound
	}
	if _, ok := m.FindElement(guid); !ok {
		return ErrElementNotFound
	}
	s.selectedElement = &ElementRef{ModelID: id, GUID: guid}
	return nil
}

func (s *Session) ClearElementSelection() {
	s.selectedElement = nil
}

func (s *Session) SelectedElement() (ElementRef, bool) {
	if s.selectedElement == nil {
		return ElementRef{}, false
	}
	return *s.selectedElement, true
}

// AddComment appends to guid's thread. Rejected in history mode.
func (s *Session) AddComment(guid, text, author string, capture SnapshotFunc) (models.Comment, error) {
	if s.historyMode {
		return models.Comment{}, ErrHistoryMode
	}
	return s.Annotations.Add(guid, text, author, capture)
}

// RemoveComment deletes one comment. Rejected in history mode.
func (s *Session) RemoveComment(guid, commentID string) error {
	if s.historyMode {
		return ErrHistoryMode
	}
	return s.Annotations.Remove(guid, commentID)
}

// IsolateCommented hides every element without a thread. With no comments at
// all it changes nothing and returns ErrNothingToIsolate.
func (s *Session) IsolateCommented() (int, error) {
	if s.historyMode {
		return 0, ErrHistoryMode
	}
	if s.Annotations.Len() == 0 {
		return 0, ErrNothingToIsolate
	}
	hidden := models.NewStringSet()
	for _, m := range s.Registry.Models() {
		for _, g := range m.GUIDs() {
			if !s.Annotations.HasThread(g) {
				hidden.Add(g)
			}
		}
	}
	s.Filter.HiddenElementGUIDs = hidden
	return len(hidden), nil
}

func (s *Session) ToggleDiscipline(tag string) bool {
	return s.Filter.ActiveDisciplines.Toggle(tag)
}

func (s *Session) ToggleCategory(category string) bool {
	return s.Filter.HiddenCategories.Toggle(category)
}

func (s *Session) HideElement(guid string) {
	s.Filter.HiddenElementGUIDs.Add(guid)
}

func (s *Session) ShowAllElements() {
	s.Filter.HiddenElementGUIDs = models.NewStringSet()
}

// ShowAllLayers clears hidden categories and hidden elements.
func (s *Session) ShowAllLayers() {
	s.Filter.HiddenCategories = models.NewStringSet()
	s.Filter.HiddenElementGUIDs = models.NewStringSet()
}

func (s *Session) ToggleIsolateMode() bool {
	s.Filter.IsolateByComment = !s.Filter.IsolateByComment
	return s.Filter.IsolateByComment
}

func (s *Session) SetSearch(query string) {
	s.Filter.SearchQuery = query
}

// ReplaceFilter swaps in a complete filter state. Nil sets become empty.
func (s *Session) ReplaceFilter(f models.FilterState) {
	if f.HiddenElementGUIDs == nil {
		f.HiddenElementGUIDs = models.NewStringSet()
	}
	if f.ActiveDisciplines == nil {
		f.ActiveDisciplines = models.NewStringSet()
	}
	if f.HiddenCategories == nil {
		f.HiddenCategories = models.NewStringSet()
	}
	s.Filter = f
}

// ModelScene is the filter outcome for one model.
type ModelScene struct {
	ModelID  uuid.UUID  `json:"modelId"`
	FileName string     `json:"fileName"`
	UIColor  string     `json:"uiColor"`
	Visible  bool       `json:"visible"`
	Elements []Decision `json:"elements"`
}

// Scene evaluates the filter for every element of every model.
func (s *Session) Scene() []ModelScene {
	out := make([]ModelScene, 0, s.Registry.Len())
	for _, m := range s.Registry.Models() {
		ms := ModelScene{
			ModelID:  m.ID,
			FileName: m.FileName,
			UIColor:  m.UIColor,
			Visible:  m.Visible,
			Elements: make([]Decision, 0, len(m.Elements)),
		}
		for i := range m.Elements {
			d := Decide(&m.Elements[i], s.Filter, s.Annotations)
			if s.selectedElement != nil && s.selectedElement.ModelID == m.ID && s.selectedElement.GUID == d.GUID {
				d.Selected = true
			}
			ms.Elements = append(ms.Elements, d)
		}
		out = append(out, ms)
	}
	return out
}
