package federation

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"bim-review-service/internal/models"
)

// SnapshotFunc captures the current viewport as a data URI.
type SnapshotFunc func() (string, error)

// Thread is the ordered comment list of one element.
type Thread struct {
	GUID     string           `json:"guid"`
	Comments []models.Comment `json:"comments"`
}

// Annotations stores comment threads keyed by element guid. A guid never maps
// to an empty thread.
type Annotations struct {
	threads map[string][]models.Comment
	order   []string
	now     func() time.Time
	log     *zap.Logger
}

func NewAnnotations(log *zap.Logger) *Annotations {
	if log == nil {
		log = zap.NewNop()
	}
	return &Annotations{
		threads: make(map[string][]models.Comment),
		now:     time.Now,
		log:     log,
	}
}

// Add appends a comment to guid's thread. A failing capture leaves the
// snapshot empty and does not fail the call.
func (a *Annotations) Add(guid, text, author string, capture SnapshotFunc) (models.Comment, error) {
	if strings.TrimSpace(text) == "" {
		return models.Comment{}, ErrEmptyComment
	}
	c := models.Comment{
		UUID:     guid,
		Text:     text,
		Author:   author,
		Date:     a.now().UTC().Format(time.RFC3339),
		ID:       uuid.NewString(),
		Snapshot: a.capture(guid, capture),
	}
	a.append(c)
	return c, nil
}

func (a *Annotations) capture(guid string, capture SnapshotFunc) (snapshot string) {
	if capture == nil {
		return ""
	}
	defer func() {
		if r := recover(); r != nil {
			a.log.Warn("snapshot capture panicked", zap.String("guid", guid), zap.Any("panic", r))
			snapshot = ""
		}
	}()
	s, err := capture()
	if err != nil {
		a.log.Warn("snapshot capture failed", zap.String("guid", guid), zap.Error(err))
		return ""
	}
	return s
}

func (a *Annotations) append(c models.Comment) {
	if _, ok := a.threads[c.UUID]; !ok {
		a.order = append(a.order, c.UUID)
	}
	a.threads[c.UUID] = append(a.threads[c.UUID], c)
}

// Remove deletes one comment. The thread is dropped when it becomes empty.
func (a *Annotations) Remove(guid, commentID string) error {
	thread, ok := a.threads[guid]
	if !ok {
		return errors.Wrapf(ErrCommentNotFound, "no thread for %s", guid)
	}
	kept := thread[:0:0]
	for _, c := range thread {
		if c.ID != commentID {
			kept = append(kept, c)
		}
	}
	if len(kept) == len(thread) {
		return errors.Wrapf(ErrCommentNotFound, "comment %s on %s", commentID, guid)
	}
	if len(kept) == 0 {
		delete(a.threads, guid)
		for i, g := range a.order {
			if g == guid {
				a.order = append(a.order[:i], a.order[i+1:]...)
				break
			}
		}
		return nil
	}
	a.threads[guid] = kept
	return nil
}

// Merge adds comments embedded in a model file, grouped by uuid. Comments
// whose id is already in the thread are skipped; comments without an id are
// always kept and get a fresh one. It returns the number added.
func (a *Annotations) Merge(comments []models.Comment) int {
	added := 0
	for _, c := range comments {
		if c.UUID == "" {
			continue
		}
		if c.ID == "" {
			c.ID = uuid.NewString()
		} else if a.hasComment(c.UUID, c.ID) {
			continue
		}
		a.append(c)
		added++
	}
	return added
}

func (a *Annotations) hasComment(guid, id string) bool {
	for _, c := range a.threads[guid] {
		if c.ID == id {
			return true
		}
	}
	return false
}

func (a *Annotations) HasThread(guid string) bool {
	return len(a.threads[guid]) > 0
}

// Thread returns a copy of guid's comments.
func (a *Annotations) Thread(guid string) ([]models.Comment, bool) {
	thread, ok := a.threads[guid]
	if !ok {
		return nil, false
	}
	out := make([]models.Comment, len(thread))
	copy(out, thread)
	return out, true
}

// GUIDs returns commented guids in the order their threads were created.
func (a *Annotations) GUIDs() []string {
	out := make([]string, len(a.order))
	copy(out, a.order)
	return out
}

// Threads returns every thread in creation order.
func (a *Annotations) Threads() []Thread {
	out := make([]Thread, 0, len(a.order))
	for _, g := range a.order {
		c, _ := a.Thread(g)
		out = append(out, Thread{GUID: g, Comments: c})
	}
	return out
}

func (a *Annotations) Len() int {
	return len(a.order)
}

// ForModel returns the comments on m's elements, in thread order.
func (a *Annotations) ForModel(m *models.Model) []models.Comment {
	guids := models.NewStringSet(m.GUIDs()...)
	out := []models.Comment{}
	for _, g := range a.order {
		if guids.Has(g) {
			out = append(out, a.threads[g]...)
		}
	}
	return out
}
