package repositories

import (
	"github.com/trailfund/backend/internal/models"
	"gorm.io/gorm"
)

// AuditRepository defines the interface for the admin audit trail (PostgreSQL)
type AuditRepository interface {
	Record(record *models.AuditRecord) error
	ListRecent(limit int) ([]models.AuditRecord, error)
}

type postgresAuditRepository struct {
	db *gorm.DB
}

// NewPostgresAuditRepository creates a new Postgres-backed AuditRepository
func NewPostgresAuditRepository(db *gorm.DB) AuditRepository {
	return &postgresAuditRepository{db: db}
}

func (r *postgresAuditRepository) Record(record *models.AuditRecord) error {
	return r.db.Create(record).Error
}

func (r *postgresAuditRepository) ListRecent(limit int) ([]models.AuditRecord, error) {
	var records []models.AuditRecord
	err := r.db.Order("created_at DESC").Limit(limit).Find(&records).Error
	return records, err
}
