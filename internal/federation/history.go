package federation

import (
	"github.com/google/uuid"
	"go.uber.org/zap"

	"bim-review-service/internal/models"
)

// HistoryMode reports whether a historical revision is being viewed.
func (s *Session) HistoryMode() bool {
	return s.historyMode
}

// ApplyRevision replaces the content of model id with doc in place. Id,
// colour, path and content hash are kept, so a later save still targets the
// head revision. The element selection is cleared and history mode is set.
func (s *Session) ApplyRevision(id uuid.UUID, revisionID string, doc models.Document) error {
	m, ok := s.Registry.Get(id)
	if !ok {
		return ErrModelNotFound
	}
	m.Document = doc
	m.RevisionID = revisionID
	s.selectedElement = nil
	s.historyMode = true
	s.log.Info("revision applied",
		zap.Stringer("id", id),
		zap.String("revision", revisionID),
		zap.Int("elements", len(doc.Elements)))
	return nil
}

// ExitHistoryMode leaves history mode. Model content stays as loaded.
func (s *Session) ExitHistoryMode() {
	s.historyMode = false
}
