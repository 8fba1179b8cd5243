package services

import (
	"context"
	"encoding/json"
	"path"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"bim-review-service/internal/federation"
	"bim-review-service/internal/metrics"
	"bim-review-service/internal/models"
	"bim-review-service/internal/normalize"
	"bim-review-service/internal/report"
	"bim-review-service/internal/storage"
)

// ErrNoRepositoryPath is returned when saving a model that was uploaded
// without a target path.
var ErrNoRepositoryPath = errors.New("model has no repository path")

var browseExtensions = map[string]bool{
	".bim": true, ".ifc": true, ".json": true, ".zip": true,
	".png": true, ".jpg": true, ".txt": true, ".md": true,
}

// ReviewService owns the federated review session. The session is only
// touched under mu; fetching, decoding, exporting and writing happen outside it.
type ReviewService struct {
	mu      sync.RWMutex
	session *federation.Session

	store      storage.ContentStore
	normalizer *normalize.Normalizer
	exporter   *report.Exporter
	metrics    *metrics.Metrics
	log        *zap.Logger

	defaultAuthor string
	snapshot      federation.SnapshotFunc
}

// ReviewOptions configures optional ReviewService behaviour.
type ReviewOptions struct {
	// DefaultAuthor is used for comments submitted without an author.
	DefaultAuthor string
	// Snapshot captures a viewport image when a comment carries none.
	Snapshot federation.SnapshotFunc
}

func NewReviewService(store storage.ContentStore, normalizer *normalize.Normalizer, exporter *report.Exporter,
	m *metrics.Metrics, log *zap.Logger, opts ReviewOptions) *ReviewService {
	if opts.DefaultAuthor == "" {
		opts.DefaultAuthor = "Anonymous"
	}
	return &ReviewService{
		session:       federation.NewSession(log.Named("session")),
		store:         store,
		normalizer:    normalizer,
		exporter:      exporter,
		metrics:       m,
		log:           log,
		defaultAuthor: opts.DefaultAuthor,
		snapshot:      opts.Snapshot,
	}
}

// LoadResult describes a model that was added to the session.
type LoadResult struct {
	Model    models.ModelSummary `json:"model"`
	Format   normalize.Format    `json:"format"`
	Source   string              `json:"source"`
	Failures []normalize.Failure `json:"failures"`
	// Bounds frames the model for the viewer camera. Nil for empty models.
	Bounds *Bounds `json:"bounds,omitempty"`
}

// Bounds is an axis-aligned box in scene space.
type Bounds struct {
	Min [3]float32 `json:"min"`
	Max [3]float32 `json:"max"`
}

func sceneBounds(doc models.Document) *Bounds {
	box := normalize.Extent(doc)
	if box.IsEmpty() {
		return nil
	}
	return &Bounds{
		Min: [3]float32{box.Min.X, box.Min.Y, box.Min.Z},
		Max: [3]float32{box.Max.X, box.Max.Y, box.Max.Z},
	}
}

// LoadModel fetches the latest content of path and federates it.
func (s *ReviewService) LoadModel(ctx context.Context, filePath string) (*LoadResult, error) {
	if err := s.checkWritable(); err != nil {
		return nil, err
	}
	lm := metrics.LatencyFrom(ctx)

	startStage(lm, "store_fetch")
	content, err := s.store.Get(ctx, filePath, "")
	endStage(lm, "store_fetch")
	if err != nil {
		return nil, errors.Wrapf(err, "fetch %s", filePath)
	}
	if lm != nil {
		lm.SetObjectSize(int64(len(content.Data)))
	}
	return s.federate(ctx, path.Base(filePath), filePath, content.Hash, content.Data)
}

// Import federates an uploaded file. A non-empty savePath becomes the
// model's repository path; the first save then creates it.
func (s *ReviewService) Import(ctx context.Context, fileName string, data []byte, savePath string) (*LoadResult, error) {
	if err := s.checkWritable(); err != nil {
		return nil, err
	}
	if lm := metrics.LatencyFrom(ctx); lm != nil {
		lm.SetObjectSize(int64(len(data)))
	}
	return s.federate(ctx, fileName, strings.TrimPrefix(savePath, "/"), "", data)
}

func (s *ReviewService) federate(ctx context.Context, fileName, filePath, hash string, data []byte) (*LoadResult, error) {
	lm := metrics.LatencyFrom(ctx)
	start := time.Now()

	startStage(lm, "normalize")
	res, err := s.normalizer.Normalize(ctx, data, fileName)
	endStage(lm, "normalize")
	if err != nil {
		var importErr *normalize.ImportError
		if errors.As(err, &importErr) {
			s.metrics.RecordImport("unknown", "rejected", time.Since(start))
		} else {
			s.metrics.RecordImport("unknown", "error", time.Since(start))
		}
		return nil, err
	}
	for _, f := range res.Failures {
		s.metrics.RecordSkipped(string(f.Stage))
	}
	if lm != nil {
		lm.SetResult(string(res.Format), len(res.Failures))
	}

	m := &models.Model{
		FileName:    fileName,
		FilePath:    filePath,
		ContentHash: hash,
		Document:    res.Document,
	}

	startStage(lm, "apply")
	s.mu.Lock()
	_, err = s.session.AppendModel(m)
	summary := m.Summary(true)
	s.publishGaugesLocked()
	s.mu.Unlock()
	endStage(lm, "apply")
	if err != nil {
		return nil, err
	}

	s.metrics.RecordImport(string(res.Format), "ok", time.Since(start))
	failures := res.Failures
	if failures == nil {
		failures = []normalize.Failure{}
	}
	return &LoadResult{
		Model:    summary,
		Format:   res.Format,
		Source:   res.Source,
		Failures: failures,
		Bounds:   sceneBounds(res.Document),
	}, nil
}

func (s *ReviewService) checkWritable() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session.HistoryMode() {
		return federation.ErrHistoryMode
	}
	return nil
}

func (s *ReviewService) publishGaugesLocked() {
	s.metrics.SetSessionGauges(s.session.Registry.Len(), s.session.Annotations.Len())
}

func (s *ReviewService) RemoveModel(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.session.RemoveModel(id); err != nil {
		return err
	}
	s.publishGaugesLocked()
	return nil
}

func (s *ReviewService) SetVisible(id uuid.UUID, visible bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session.Registry.SetVisible(id, visible)
}

func (s *ReviewService) SelectModel(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session.Registry.Select(id)
}

// Models lists the federated models in load order.
func (s *ReviewService) Models() []models.ModelSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	selected := s.session.Registry.SelectedID()
	out := make([]models.ModelSummary, 0, s.session.Registry.Len())
	for _, m := range s.session.Registry.Models() {
		out = append(out, m.Summary(m.ID == selected))
	}
	return out
}

func (s *ReviewService) SelectElement(id uuid.UUID, guid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session.SelectElement(id, guid)
}

func (s *ReviewService) ClearElementSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session.ClearElementSelection()
}

// ElementDetail is the inspector view of one element.
type ElementDetail struct {
	ModelID    uuid.UUID        `json:"modelId"`
	FileName   string           `json:"fileName"`
	Element    models.Element   `json:"element"`
	Discipline string           `json:"discipline"`
	Category   string           `json:"category"`
	Comments   []models.Comment `json:"comments"`
}

// Element returns the first element with guid, searching models in load order.
func (s *ReviewService) Element(guid string) (*ElementDetail, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, e, ok := s.session.Registry.FindElement(guid)
	if !ok {
		return nil, errors.Wrap(federation.ErrElementNotFound, guid)
	}
	comments, _ := s.session.Annotations.Thread(guid)
	if comments == nil {
		comments = []models.Comment{}
	}
	return &ElementDetail{
		ModelID:    m.ID,
		FileName:   m.FileName,
		Element:    *e,
		Discipline: federation.DeriveDiscipline(e),
		Category:   federation.DeriveCategory(e),
		Comments:   comments,
	}, nil
}

// Layers is the discipline and category overview of the session.
type Layers struct {
	Disciplines       []string `json:"disciplines"`
	ActiveDisciplines []string `json:"activeDisciplines"`
	Categories        []string `json:"categories"`
	HiddenCategories  []string `json:"hiddenCategories"`
}

func (s *ReviewService) Layers() Layers {
	s.mu.RLock()
	defer s.mu.RUnlock()
	categories := models.NewStringSet()
	for _, m := range s.session.Registry.Models() {
		for c := range federation.FileCategories(m.Elements) {
			categories.Add(c)
		}
	}
	return Layers{
		Disciplines:       s.session.Disciplines.Available(),
		ActiveDisciplines: s.session.Filter.ActiveDisciplines.Sorted(),
		Categories:        categories.Sorted(),
		HiddenCategories:  s.session.Filter.HiddenCategories.Sorted(),
	}
}

// Filter returns a copy of the current filter state.
func (s *ReviewService) Filter() models.FilterState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session.Filter.Clone()
}

// UpdateFilter applies fn to the session and returns the resulting filter.
func (s *ReviewService) UpdateFilter(fn func(*federation.Session)) models.FilterState {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.session)
	return s.session.Filter.Clone()
}

// SceneView is everything a renderer needs to draw the federated scene.
type SceneView struct {
	Models          []federation.ModelScene `json:"models"`
	Filter          models.FilterState      `json:"filter"`
	HistoryMode     bool                    `json:"historyMode"`
	SelectedModel   *uuid.UUID              `json:"selectedModel,omitempty"`
	SelectedElement *federation.ElementRef  `json:"selectedElement,omitempty"`
}

func (s *ReviewService) Scene() SceneView {
	s.mu.RLock()
	defer s.mu.RUnlock()
	view := SceneView{
		Models:      s.session.Scene(),
		Filter:      s.session.Filter.Clone(),
		HistoryMode: s.session.HistoryMode(),
	}
	if id := s.session.Registry.SelectedID(); id != uuid.Nil {
		view.SelectedModel = &id
	}
	if ref, ok := s.session.SelectedElement(); ok {
		view.SelectedElement = &ref
	}
	return view
}

// AddComment attaches a comment to an element. An empty snapshot falls back
// to the configured capture hook.
func (s *ReviewService) AddComment(guid, text, author, snapshot string) (models.Comment, error) {
	if strings.TrimSpace(author) == "" {
		author = s.defaultAuthor
	}
	capture := s.snapshot
	if snapshot != "" {
		capture = func() (string, error) { return snapshot, nil }
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session.HistoryMode() {
		return models.Comment{}, federation.ErrHistoryMode
	}
	if _, _, ok := s.session.Registry.FindElement(guid); !ok {
		return models.Comment{}, errors.Wrap(federation.ErrElementNotFound, guid)
	}
	c, err := s.session.AddComment(guid, text, author, capture)
	if err != nil {
		return models.Comment{}, err
	}
	s.publishGaugesLocked()
	return c, nil
}

func (s *ReviewService) RemoveComment(guid, commentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.session.RemoveComment(guid, commentID); err != nil {
		return err
	}
	s.publishGaugesLocked()
	return nil
}

func (s *ReviewService) Threads() []federation.Thread {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session.Annotations.Threads()
}

func (s *ReviewService) Thread(guid string) ([]models.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	thread, ok := s.session.Annotations.Thread(guid)
	if !ok {
		return nil, errors.Wrap(federation.ErrCommentNotFound, guid)
	}
	return thread, nil
}

// IsolateCommented hides every element without comments and returns how many
// were hidden.
func (s *ReviewService) IsolateCommented() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session.IsolateCommented()
}

// Export builds the report archive from a copy of the session taken under the lock.
func (s *ReviewService) Export(ctx context.Context) (*report.Archive, error) {
	s.mu.RLock()
	src := report.Source{Threads: s.session.Annotations.Threads()}
	for _, m := range s.session.Registry.Models() {
		snapshot := *m
		src.Models = append(src.Models, &snapshot)
	}
	s.mu.RUnlock()

	archive, err := s.exporter.Export(ctx, src)
	switch {
	case errors.Is(err, report.ErrNothingToExport):
		s.metrics.RecordExport("empty")
	case err != nil:
		s.metrics.RecordExport("error")
	default:
		s.metrics.RecordExport("ok")
	}
	return archive, err
}

// SaveResult reports a successful save.
type SaveResult struct {
	ModelID uuid.UUID `json:"modelId"`
	Path    string    `json:"path"`
	Hash    string    `json:"hash"`
}

// Save writes the selected model, with its comments, back to its repository
// path. The write only succeeds if the stored content still has the hash the
// model was loaded with.
func (s *ReviewService) Save(ctx context.Context) (*SaveResult, error) {
	s.mu.RLock()
	if s.session.HistoryMode() {
		s.mu.RUnlock()
		return nil, federation.ErrHistoryMode
	}
	m, ok := s.session.Registry.Selected()
	if !ok {
		s.mu.RUnlock()
		return nil, federation.ErrNoModelSelected
	}
	id, filePath, expected := m.ID, m.FilePath, m.ContentHash
	doc := m.Document
	doc.Info.Comments = s.session.Annotations.ForModel(m)
	s.mu.RUnlock()

	if filePath == "" {
		return nil, ErrNoRepositoryPath
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "encode model")
	}

	hash, err := s.store.Put(ctx, filePath, data, expected)
	if err != nil {
		if storage.IsConflict(err) {
			s.log.Warn("save rejected, content changed", zap.String("path", filePath), zap.Error(err))
			return nil, err
		}
		return nil, errors.Wrapf(err, "save %s", filePath)
	}

	s.mu.Lock()
	if current, ok := s.session.Registry.Get(id); ok && current.ContentHash == expected {
		current.ContentHash = hash
	}
	s.mu.Unlock()

	s.log.Info("model saved",
		zap.Stringer("id", id),
		zap.String("path", filePath),
		zap.Int("comments", len(doc.Info.Comments)))
	return &SaveResult{ModelID: id, Path: filePath, Hash: hash}, nil
}

func (s *ReviewService) modelPath(id uuid.UUID) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.session.Registry.Get(id)
	if !ok {
		return "", federation.ErrModelNotFound
	}
	if m.FilePath == "" {
		return "", ErrNoRepositoryPath
	}
	return m.FilePath, nil
}

// History lists the stored revisions of a model's repository path.
func (s *ReviewService) History(ctx context.Context, id uuid.UUID) ([]storage.Revision, error) {
	filePath, err := s.modelPath(id)
	if err != nil {
		return nil, err
	}
	revs, err := s.store.Revisions(ctx, filePath)
	if err != nil {
		return nil, errors.Wrapf(err, "history of %s", filePath)
	}
	return revs, nil
}

// LoadRevision replaces model id with an older revision of its file and
// enters history mode. Only canonical files can be loaded this way.
func (s *ReviewService) LoadRevision(ctx context.Context, id uuid.UUID, revisionID string) (*models.ModelSummary, error) {
	filePath, err := s.modelPath(id)
	if err != nil {
		return nil, err
	}
	content, err := s.store.Get(ctx, filePath, revisionID)
	if err != nil {
		return nil, errors.Wrapf(err, "fetch %s@%s", filePath, revisionID)
	}
	res, err := s.normalizer.NormalizeCanonical(content.Data, path.Base(filePath))
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.session.ApplyRevision(id, revisionID, res.Document); err != nil {
		return nil, err
	}
	m, _ := s.session.Registry.Get(id)
	summary := m.Summary(s.session.Registry.SelectedID() == id)
	return &summary, nil
}

func (s *ReviewService) HistoryMode() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session.HistoryMode()
}

func (s *ReviewService) ExitHistoryMode() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session.ExitHistoryMode()
}

// Browse lists a repository folder: directories first, then reviewable files,
// each group sorted by name.
func (s *ReviewService) Browse(ctx context.Context, prefix string) ([]storage.Entry, error) {
	entries, err := s.store.List(ctx, prefix)
	if err != nil {
		return nil, errors.Wrapf(err, "list %q", prefix)
	}
	out := make([]storage.Entry, 0, len(entries))
	for _, e := range entries {
		if e.IsDir || browseExtensions[strings.ToLower(path.Ext(e.Name))] {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].IsDir != out[j].IsDir {
			return out[i].IsDir
		}
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out, nil
}

// ReadFile returns the latest raw content of a repository file.
func (s *ReviewService) ReadFile(ctx context.Context, filePath string) (storage.Content, error) {
	content, err := s.store.Get(ctx, filePath, "")
	if err != nil {
		return storage.Content{}, errors.Wrapf(err, "read %s", filePath)
	}
	return content, nil
}

func startStage(lm *metrics.LatencyMetrics, name string) {
	if lm != nil {
		lm.StartStage(name)
	}
}

func endStage(lm *metrics.LatencyMetrics, name string) {
	if lm != nil {
		lm.EndStage(name)
	}
}
