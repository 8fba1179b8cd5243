package models

import (
	"encoding/json"
	"sort"
)

// StringSet is a set of strings serialised as a sorted JSON array.
type StringSet map[string]struct{}

func NewStringSet(items ...string) StringSet {
	s := make(StringSet, len(items))
	for _, it := range items {
		s[it] = struct{}{}
	}
	return s
}

func (s StringSet) Has(item string) bool {
	_, ok := s[item]
	return ok
}

func (s StringSet) Add(item string) {
	s[item] = struct{}{}
}

func (s StringSet) Remove(item string) {
	delete(s, item)
}

// Toggle flips membership and reports whether item is now present.
func (s StringSet) Toggle(item string) bool {
	if s.Has(item) {
		delete(s, item)
		return false
	}
	s[item] = struct{}{}
	return true
}

// Sorted returns the members in ascending order.
func (s StringSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (s StringSet) Clone() StringSet {
	out := make(StringSet, len(s))
	for k := range s {
		out[k] = struct{}{}
	}
	return out
}

func (s StringSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Sorted())
}

func (s *StringSet) UnmarshalJSON(data []byte) error {
	var items []string
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	*s = NewStringSet(items...)
	return nil
}

// FilterState is the set of rules deciding which elements are drawn.
type FilterState struct {
	HiddenElementGUIDs StringSet `json:"hiddenElementGuids"`
	ActiveDisciplines  StringSet `json:"activeDisciplines"`
	HiddenCategories   StringSet `json:"hiddenCategories"`
	IsolateByComment   bool      `json:"isolateByComment"`
	SearchQuery        string    `json:"searchQuery"`
}

// NewFilterState returns a filter that hides nothing.
func NewFilterState() FilterState {
	return FilterState{
		HiddenElementGUIDs: NewStringSet(),
		ActiveDisciplines:  NewStringSet(),
		HiddenCategories:   NewStringSet(),
	}
}

// Clone returns a deep copy.
func (f FilterState) Clone() FilterState {
	return FilterState{
		HiddenElementGUIDs: f.HiddenElementGUIDs.Clone(),
		ActiveDisciplines:  f.ActiveDisciplines.Clone(),
		HiddenCategories:   f.HiddenCategories.Clone(),
		IsolateByComment:   f.IsolateByComment,
		SearchQuery:        f.SearchQuery,
	}
}
