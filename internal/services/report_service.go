package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"bim-review-service/internal/models"
	"bim-review-service/internal/repository"
	"bim-review-service/internal/storage"
)

const reportsPrefix = "reports/"

// ReportService publishes report archives to the content store and keeps
// their metadata in the database.
type ReportService struct {
	reviews *ReviewService
	store   storage.ContentStore
	repo    repository.ReportRepository
	log     *zap.Logger
}

func NewReportService(reviews *ReviewService, store storage.ContentStore, repo repository.ReportRepository, log *zap.Logger) *ReportService {
	return &ReportService{reviews: reviews, store: store, repo: repo, log: log}
}

// Publish exports the current session and stores the archive under reports/.
func (s *ReportService) Publish(ctx context.Context, author string) (*models.Report, error) {
	archive, err := s.reviews.Export(ctx)
	if err != nil {
		return nil, err
	}

	id := uuid.New()
	key := reportsPrefix + id.String() + ".zip"
	if _, err := s.store.Put(ctx, key, archive.Data, ""); err != nil {
		return nil, errors.Wrapf(err, "store report %s", key)
	}

	rep := &models.Report{
		ID:         id,
		FileName:   archive.Name,
		Size:       int64(len(archive.Data)),
		Topics:     archive.Topics,
		Images:     archive.Images,
		Author:     author,
		StorageKey: key,
	}
	if err := s.repo.Create(rep); err != nil {
		return nil, errors.Wrap(err, "record report")
	}
	s.log.Info("report published",
		zap.Stringer("id", id),
		zap.String("key", key),
		zap.Int("topics", rep.Topics))
	return rep, nil
}

func (s *ReportService) List() ([]models.Report, error) {
	return s.repo.List()
}

// Download returns a published report and its archive bytes.
func (s *ReportService) Download(ctx context.Context, id uuid.UUID) (*models.Report, []byte, error) {
	rep, err := s.repo.GetByID(id)
	if err != nil {
		return nil, nil, err
	}
	content, err := s.store.Get(ctx, rep.StorageKey, "")
	if err != nil {
		return nil, nil, errors.Wrapf(err, "fetch report %s", rep.StorageKey)
	}
	return rep, content.Data, nil
}
