package repository

import (
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"bim-review-service/internal/models"
)

// ErrReportNotFound is returned when no report row has the requested id.
var ErrReportNotFound = errors.New("report not found")

// ReportRepository defines methods for published report metadata.
type ReportRepository interface {
	Create(report *models.Report) error
	GetByID(id uuid.UUID) (*models.Report, error)
	List() ([]models.Report, error)
}

// ReportRepositoryImpl provides methods to interact with the Report model in the database.
type ReportRepositoryImpl struct {
	db *gorm.DB
}

// NewReportRepository creates a new ReportRepositoryImpl instance with the provided GORM database connection.
func NewReportRepository(db *gorm.DB) *ReportRepositoryImpl {
	return &ReportRepositoryImpl{db: db}
}

// Migrate creates or updates the reports table.
func (r *ReportRepositoryImpl) Migrate() error {
	return r.db.AutoMigrate(&models.Report{})
}

func (r *ReportRepositoryImpl) Create(report *models.Report) error {
	if report.ID == uuid.Nil {
		report.ID = uuid.New()
	}
	return r.db.Create(report).Error
}

func (r *ReportRepositoryImpl) GetByID(id uuid.UUID) (*models.Report, error) {
	var report models.Report
	err := r.db.First(&report, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.Wrap(ErrReportNotFound, id.String())
	}
	if err != nil {
		return nil, err
	}
	return &report, nil
}

// List returns all reports, newest first.
func (r *ReportRepositoryImpl) List() ([]models.Report, error) {
	var reports []models.Report
	err := r.db.Order("created_at desc").Find(&reports).Error
	return reports, err
}
