package federation

import (
	"fmt"
	"math"

	"github.com/google/uuid"

	"bim-review-service/internal/models"
)

// goldenAngle spaces successive model hues as far apart as possible.
const goldenAngle = 137.5

// Registry holds the loaded models in load order.
type Registry struct {
	models   []*models.Model
	selected uuid.UUID
	loads    int
}

func NewRegistry() *Registry {
	return &Registry{}
}

// ModelColor returns the display colour for the n-th model loaded in a session.
func ModelColor(n int) string {
	hue := math.Mod(float64(n)*goldenAngle, 360)
	return fmt.Sprintf("hsl(%g, 70%%, 50%%)", hue)
}

// Append registers m with a fresh id and colour, makes it visible and selects it.
// The colour comes from the session's load count rather than the model's
// current position, so removing a model never recolours the ones after it.
func (r *Registry) Append(m *models.Model) uuid.UUID {
	m.ID = uuid.New()
	m.UIColor = ModelColor(r.loads)
	m.Visible = true
	r.loads++
	r.models = append(r.models, m)
	r.selected = m.ID
	return m.ID
}

func (r *Registry) Remove(id uuid.UUID) error {
	for i, m := range r.models {
		if m.ID == id {
			r.models = append(r.models[:i], r.models[i+1:]...)
			if r.selected == id {
				r.selected = uuid.Nil
			}
			return nil
		}
	}
	return ErrModelNotFound
}

func (r *Registry) SetVisible(id uuid.UUID, visible bool) error {
	m, ok := r.Get(id)
	if !ok {
		return ErrModelNotFound
	}
	m.Visible = visible
	return nil
}

func (r *Registry) Select(id uuid.UUID) error {
	if _, ok := r.Get(id); !ok {
		return ErrModelNotFound
	}
	r.selected = id
	return nil
}

func (r *Registry) Get(id uuid.UUID) (*models.Model, bool) {
	for _, m := range r.models {
		if m.ID == id {
			return m, true
		}
	}
	return nil, false
}

// Selected returns the selected model, if any.
func (r *Registry) Selected() (*models.Model, bool) {
	if r.selected == uuid.Nil {
		return nil, false
	}
	return r.Get(r.selected)
}

func (r *Registry) SelectedID() uuid.UUID {
	return r.selected
}

// Models returns the models in registration order.
func (r *Registry) Models() []*models.Model {
	out := make([]*models.Model, len(r.models))
	copy(out, r.models)
	return out
}

func (r *Registry) Len() int {
	return len(r.models)
}

// FindElement searches models in registration order for guid.
func (r *Registry) FindElement(guid string) (*models.Model, *models.Element, bool) {
	for _, m := range r.models {
		if e, ok := m.FindElement(guid); ok {
			return m, e, true
		}
	}
	return nil, nil, false
}
