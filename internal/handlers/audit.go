package handlers

import (
	"github.com/trailfund/backend/internal/models"
	"github.com/trailfund/backend/internal/repositories"
	"go.uber.org/zap"
)

// recordAudit appends an admin-action row. Best-effort: the workflow has
// already committed, so a failed insert is only logged.
func recordAudit(audit repositories.AuditRepository, logger *zap.Logger, record *models.AuditRecord) {
	if err := audit.Record(record); err != nil {
		logger.Error("audit record failed",
			zap.String("action", record.Action),
			zap.String("target_id", record.TargetID),
			zap.Error(err))
	}
}
